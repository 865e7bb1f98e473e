// Package config loads and validates the logging core configuration from YAML.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/tradelog/internal/types"
	"github.com/rxtech-lab/tradelog/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" or "24h" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeConfigParseFailed, err, "invalid duration %q", raw)
	}

	*d = Duration(parsed)

	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// CostConfig holds the cost model and alerting thresholds. The pricing
// constants are illustrative defaults and must be recalibrated per deployment.
type CostConfig struct {
	// HotDocUSDPerMillionMonth is the monthly price of one million hot documents.
	HotDocUSDPerMillionMonth float64 `yaml:"hot_doc_usd_per_million_month" validate:"gte=0"`
	// ColdUSDPerGBMonth is the monthly price of one GB of cold storage.
	ColdUSDPerGBMonth float64 `yaml:"cold_usd_per_gb_month" validate:"gte=0"`
	// MaxHotDocuments alerts when total hot documents exceed it. Zero disables.
	MaxHotDocuments int64 `yaml:"max_hot_documents" validate:"gte=0"`
	// MaxColdStorageGB alerts when total cold storage exceeds it. Zero disables.
	MaxColdStorageGB float64 `yaml:"max_cold_storage_gb" validate:"gte=0"`
	// MaxContainerGB alerts when any single container exceeds it. Zero disables.
	MaxContainerGB float64 `yaml:"max_container_gb" validate:"gte=0"`
}

// RedisConfig configures the optional Redis-backed archive version sequence.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

// Config is the full configuration of the logging core.
type Config struct {
	// BotType tags every entry produced by this process.
	BotType string `yaml:"bot_type" validate:"required"`
	// Source is the default source field for entries.
	Source string `yaml:"source"`

	// HotStorePath is the DuckDB database file. ":memory:" for ephemeral use.
	HotStorePath string `yaml:"hot_store_path" validate:"required"`
	// ColdStoreRoot is the filesystem blob backend root directory.
	ColdStoreRoot string `yaml:"cold_store_root" validate:"required"`

	// BatchSize triggers a buffer flush when reached.
	BatchSize int `yaml:"batch_size" validate:"gt=0"`
	// FlushInterval triggers a buffer flush when elapsed.
	FlushInterval Duration `yaml:"flush_interval"`
	// LifecycleInterval schedules full lifecycle runs.
	LifecycleInterval Duration `yaml:"lifecycle_interval"`
	// ShutdownTimeout bounds the final flush during Close.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	// WriteTimeout bounds every backend I/O call.
	WriteTimeout Duration `yaml:"write_timeout"`
	// RetryAttempts is the total attempt budget per write.
	RetryAttempts int `yaml:"retry_attempts" validate:"gt=0"`

	// MigrationCutoffs maps hot collections to the age at which records are
	// migrated into cold archives. Shorter than the hard TTLs.
	MigrationCutoffs map[string]Duration `yaml:"migration_cutoffs"`
	// RetentionDays maps cold containers to their delete horizon.
	RetentionDays map[string]int `yaml:"retention_days"`
	// TransitionAfterDays is the age at which cold objects move to the
	// cheaper storage class.
	TransitionAfterDays int `yaml:"transition_after_days" validate:"gt=0"`
	// InitialStorageClass is the class objects are created in.
	InitialStorageClass string `yaml:"initial_storage_class" validate:"required"`
	// TransitionStorageClass is the cheaper class objects transition into.
	TransitionStorageClass string `yaml:"transition_storage_class" validate:"required"`
	// KeepVersions is how many archive versions per base name pruning keeps.
	KeepVersions int `yaml:"keep_versions" validate:"gt=0"`
	// ExpiryBatchLimit bounds each DeleteExpired page.
	ExpiryBatchLimit int `yaml:"expiry_batch_limit" validate:"gt=0"`
	// MigrationBatchLimit bounds how many aged records each migration page
	// loads into memory.
	MigrationBatchLimit int `yaml:"migration_batch_limit" validate:"gt=0"`

	// VersionSequence selects the archive version counter: "local" (in-process,
	// resets on restart, soft dedup only), "hot" (hot-store counter table), or
	// "redis" (strictly monotonic across processes).
	VersionSequence string      `yaml:"version_sequence" validate:"oneof=local hot redis"`
	Redis           RedisConfig `yaml:"redis"`

	Cost CostConfig `yaml:"cost"`
}

// DefaultConfig returns a Config with production defaults applied.
func DefaultConfig() Config {
	return Config{
		BotType:       "trading-bot",
		Source:        "tradelog",
		HotStorePath:  ":memory:",
		ColdStoreRoot: "./coldstore",

		BatchSize:         50,
		FlushInterval:     Duration(60 * time.Second),
		LifecycleInterval: Duration(24 * time.Hour),
		ShutdownTimeout:   Duration(10 * time.Second),
		WriteTimeout:      Duration(15 * time.Second),
		RetryAttempts:     3,

		MigrationCutoffs: map[string]Duration{
			types.CollectionLiveTrades:             Duration(7 * 24 * time.Hour),
			types.CollectionLiveCognitiveDecisions: Duration(14 * 24 * time.Hour),
		},
		RetentionDays: map[string]int{
			types.ContainerTradeLogs:         365,
			types.ContainerCognitiveArchives: 180,
			types.ContainerSystemLogs:        90,
			types.ContainerAnalyticsData:     730,
			types.ContainerComplianceLogs:    2555,
		},
		TransitionAfterDays:    30,
		InitialStorageClass:    "STANDARD",
		TransitionStorageClass: "COOL",
		KeepVersions:           5,
		ExpiryBatchLimit:       500,
		MigrationBatchLimit:    500,

		VersionSequence: "local",

		Cost: CostConfig{
			HotDocUSDPerMillionMonth: 180.0,
			ColdUSDPerGBMonth:        0.01,
			MaxHotDocuments:          1_000_000,
			MaxColdStorageGB:         500.0,
			MaxContainerGB:           200.0,
		},
	}
}

// Parse unmarshals YAML over the defaults and validates the result.
func Parse(raw []byte) (Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeConfigParseFailed, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeConfigParseFailed, err, "failed to read config file %s", path)
	}

	return Parse(raw)
}

// Validate checks the config against its struct tags and cross-field rules.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeConfigValidateFailed, "invalid configuration", err)
	}

	if c.VersionSequence == "redis" && c.Redis.Addr == "" {
		return errors.New(errors.ErrCodeConfigValidateFailed, "version_sequence redis requires redis.addr")
	}

	for collection := range c.MigrationCutoffs {
		found := false

		for _, known := range types.AllHotCollections() {
			if collection == known {
				found = true

				break
			}
		}

		if !found {
			return errors.Newf(errors.ErrCodeConfigValidateFailed, "unknown hot collection %q in migration_cutoffs", collection)
		}
	}

	return nil
}

// Retention returns the delete horizon for a container, falling back to the
// system-logs default when unset.
func (c Config) Retention(container string) int {
	if days, ok := c.RetentionDays[container]; ok {
		return days
	}

	return 90
}
