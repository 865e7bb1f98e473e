package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/tradelog/internal/types"
	"github.com/rxtech-lab/tradelog/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultsAreValid() {
	cfg := DefaultConfig()

	suite.NoError(cfg.Validate())
	suite.Equal(50, cfg.BatchSize)
	suite.Equal(60*time.Second, cfg.FlushInterval.Std())
	suite.Equal(24*time.Hour, cfg.LifecycleInterval.Std())
	suite.Equal(5, cfg.KeepVersions)
	suite.Equal(500, cfg.MigrationBatchLimit)
	suite.Equal("local", cfg.VersionSequence)
	suite.Equal("STANDARD", cfg.InitialStorageClass)
	suite.Equal("COOL", cfg.TransitionStorageClass)
}

func (suite *ConfigTestSuite) TestDefaultRetention() {
	cfg := DefaultConfig()

	suite.Equal(365, cfg.Retention(types.ContainerTradeLogs))
	suite.Equal(2555, cfg.Retention(types.ContainerComplianceLogs))
	suite.Equal(730, cfg.Retention(types.ContainerAnalyticsData))

	// Unknown containers fall back to the system-logs horizon.
	suite.Equal(90, cfg.Retention("made-up-container"))
}

func (suite *ConfigTestSuite) TestParseOverridesDefaults() {
	cfg, err := Parse([]byte(`
bot_type: futures-bot
batch_size: 25
flush_interval: 30s
lifecycle_interval: 12h
migration_cutoffs:
  live_trades: 72h
cost:
  max_hot_documents: 500
`))

	suite.Require().NoError(err)
	suite.Equal("futures-bot", cfg.BotType)
	suite.Equal(25, cfg.BatchSize)
	suite.Equal(30*time.Second, cfg.FlushInterval.Std())
	suite.Equal(12*time.Hour, cfg.LifecycleInterval.Std())
	suite.Equal(72*time.Hour, cfg.MigrationCutoffs[types.CollectionLiveTrades].Std())
	suite.Equal(int64(500), cfg.Cost.MaxHotDocuments)

	// Untouched fields keep their defaults.
	suite.Equal(":memory:", cfg.HotStorePath)
	suite.Equal(3, cfg.RetryAttempts)
}

func (suite *ConfigTestSuite) TestParseInvalidYAML() {
	_, err := Parse([]byte("batch_size: [not a number"))

	suite.True(errors.HasCode(err, errors.ErrCodeConfigParseFailed))
}

func (suite *ConfigTestSuite) TestParseInvalidDuration() {
	_, err := Parse([]byte("flush_interval: sixty seconds"))

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestValidateRejectsZeroBatchSize() {
	cfg := DefaultConfig()
	cfg.BatchSize = 0

	suite.True(errors.HasCode(cfg.Validate(), errors.ErrCodeConfigValidateFailed))
}

func (suite *ConfigTestSuite) TestValidateRejectsUnknownSequence() {
	cfg := DefaultConfig()
	cfg.VersionSequence = "zookeeper"

	suite.True(errors.HasCode(cfg.Validate(), errors.ErrCodeConfigValidateFailed))
}

func (suite *ConfigTestSuite) TestRedisSequenceRequiresAddr() {
	cfg := DefaultConfig()
	cfg.VersionSequence = "redis"

	suite.True(errors.HasCode(cfg.Validate(), errors.ErrCodeConfigValidateFailed))

	cfg.Redis.Addr = "localhost:6379"
	suite.NoError(cfg.Validate())
}

func (suite *ConfigTestSuite) TestValidateRejectsUnknownMigrationCollection() {
	cfg := DefaultConfig()
	cfg.MigrationCutoffs = map[string]Duration{
		"live_typo": Duration(time.Hour),
	}

	err := cfg.Validate()

	suite.True(errors.HasCode(err, errors.ErrCodeConfigValidateFailed))
	suite.Contains(err.Error(), "live_typo")
}

func (suite *ConfigTestSuite) TestLoad() {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("bot_type: loaded-bot\n"), 0o644))

	cfg, err := Load(path)

	suite.Require().NoError(err)
	suite.Equal("loaded-bot", cfg.BotType)
}

func (suite *ConfigTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(suite.T().TempDir(), "nope.yaml"))

	suite.True(errors.HasCode(err, errors.ErrCodeConfigParseFailed))
}
