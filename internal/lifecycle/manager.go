// Package lifecycle runs the periodic maintenance passes over both storage
// tiers: hot expiry, hot-to-cold migration, storage-class transitions,
// version pruning, and cost reporting.
package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rxtech-lab/tradelog/internal/coldstore"
	"github.com/rxtech-lab/tradelog/internal/config"
	"github.com/rxtech-lab/tradelog/internal/hotstore"
	"github.com/rxtech-lab/tradelog/internal/logger"
	"github.com/rxtech-lab/tradelog/internal/metrics"
	"github.com/rxtech-lab/tradelog/internal/types"
	"github.com/rxtech-lab/tradelog/internal/utils"
	"github.com/rxtech-lab/tradelog/pkg/errors"
	"go.uber.org/zap"
)

// maxPageIterations caps the expiry and migration paging loops per collection.
const maxPageIterations = 50

// AlertFunc raises an ALERT-category entry back through the logging pipeline.
type AlertFunc func(message string, data map[string]any)

// PassReport summarizes one lifecycle pass. One failing unit never aborts
// the remaining units; failures are collected here instead.
type PassReport struct {
	Pass      string   `json:"pass"`
	Processed int      `json:"processed"`
	Failures  []string `json:"failures,omitempty"`
}

func (r *PassReport) fail(unit string, err error) {
	r.Failures = append(r.Failures, fmt.Sprintf("%s: %v", unit, err))
}

// Report aggregates one full lifecycle run.
type Report struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Passes     []PassReport `json:"passes"`
}

// Manager owns the lifecycle passes. Passes never overlap each other (one
// run mutex) but run concurrently with ordinary log ingestion. Every pass is
// independently retriable and assumes nothing about the others.
type Manager struct {
	hot     hotstore.Store
	cold    *coldstore.ColdStore
	cfg     config.Config
	clock   utils.Clock
	logger  *logger.Logger
	metrics *metrics.Metrics
	alert   AlertFunc

	runMu sync.Mutex
}

// NewManager creates a Manager. alert may be nil when no alerting path is
// wired (administrative runs).
func NewManager(hot hotstore.Store, cold *coldstore.ColdStore, cfg config.Config, clock utils.Clock, log *logger.Logger, m *metrics.Metrics, alert AlertFunc) *Manager {
	return &Manager{
		hot:     hot,
		cold:    cold,
		cfg:     cfg,
		clock:   clock,
		logger:  log,
		metrics: m,
		alert:   alert,
	}
}

// RunAll executes every pass once and returns the aggregate report.
func (m *Manager) RunAll(ctx context.Context) Report {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	report := Report{StartedAt: m.clock.Now()}

	report.Passes = append(report.Passes, m.expireHot(ctx))
	report.Passes = append(report.Passes, m.migrateHotToCold(ctx))
	report.Passes = append(report.Passes, m.transitionStorageClasses(ctx))
	report.Passes = append(report.Passes, m.pruneVersions(ctx))

	_, costPass := m.costReport(ctx)
	report.Passes = append(report.Passes, costPass)

	report.FinishedAt = m.clock.Now()

	for _, pass := range report.Passes {
		for range pass.Failures {
			m.metrics.LifecycleFailures.WithLabelValues(pass.Pass).Inc()
		}
	}

	m.logger.Info("lifecycle run finished",
		zap.Time("started_at", report.StartedAt),
		zap.Int("passes", len(report.Passes)),
	)

	return report
}

// ExpireHot deletes TTL-expired hot records, paging in bounded batches.
func (m *Manager) ExpireHot(ctx context.Context) PassReport {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	return m.expireHot(ctx)
}

func (m *Manager) expireHot(ctx context.Context) PassReport {
	report := PassReport{Pass: "hot_expiry"}
	now := m.clock.Now()

	for _, collection := range types.AllHotCollections() {
		for i := 0; i < maxPageIterations; i++ {
			deleted, err := m.hot.DeleteExpired(ctx, collection, now, m.cfg.ExpiryBatchLimit)
			if err != nil {
				report.fail(collection, err)

				break
			}

			if deleted == 0 {
				break
			}

			report.Processed += deleted
			m.metrics.ExpiredDeletions.Add(float64(deleted))
		}
	}

	return report
}

// MigrateHotToCold archives aged hot records into cold storage. Hot records
// are deleted only after the cold write is confirmed.
func (m *Manager) MigrateHotToCold(ctx context.Context) PassReport {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	return m.migrateHotToCold(ctx)
}

func (m *Manager) migrateHotToCold(ctx context.Context) PassReport {
	report := PassReport{Pass: "hot_to_cold_migration"}
	now := m.clock.Now()

	for collection, cutoff := range m.cfg.MigrationCutoffs {
		cutoffTime := now.Add(-cutoff.Std())
		kind := types.ArchiveKindForCollection(collection)

		// Aged records are loaded one bounded page at a time. Migrated
		// records leave the hot tier, so every page re-queries from the
		// oldest remaining record.
		for i := 0; i < maxPageIterations; i++ {
			records, err := m.hot.Query(ctx, collection, hotstore.Query{
				Filters: []hotstore.Filter{{Field: "timestamp", Op: "<=", Value: cutoffTime}},
				OrderBy: "timestamp",
				Limit:   m.cfg.MigrationBatchLimit,
			})
			if err != nil {
				report.fail(collection, err)

				break
			}

			if len(records) == 0 {
				break
			}

			pageMigrated := 0

			for botType, group := range groupByBotType(records) {
				migrated, err := m.archiveGroup(ctx, collection, kind, botType, group)
				if err != nil {
					report.fail(fmt.Sprintf("%s/%s", collection, botType), err)

					continue
				}

				pageMigrated += migrated
				m.metrics.MigratedRecords.Add(float64(migrated))
			}

			report.Processed += pageMigrated

			// A page that moved nothing would be re-queried verbatim.
			if pageMigrated == 0 || len(records) < m.cfg.MigrationBatchLimit {
				break
			}
		}
	}

	return report
}

// archiveGroup writes one bot's aged records to cold storage, then deletes
// them from the hot tier. Write-then-delete ordering is mandatory: a failed
// cold write leaves the hot records untouched.
func (m *Manager) archiveGroup(ctx context.Context, collection string, kind types.ArchiveKind, botType string, group []map[string]any) (int, error) {
	keys := make([]string, 0, len(group))
	docs := make([]map[string]any, 0, len(group))

	for _, record := range group {
		key, _ := record["_key"].(string)
		if key == "" {
			return 0, errors.Newf(errors.ErrCodeMigrationFailed, "record in %s has no key", collection)
		}

		keys = append(keys, key)

		doc := make(map[string]any, len(record))
		for k, v := range record {
			if k == "_key" {
				continue
			}

			doc[k] = v
		}

		docs = append(docs, doc)
	}

	payload, err := json.Marshal(docs)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeSerializeFailed, "failed to serialize migration batch", err)
	}

	container := kind.Container()

	if err := m.cold.EnsureContainer(ctx, container, m.policyFor(container)); err != nil {
		return 0, err
	}

	path, err := m.cold.ArchivePath(ctx, kind, botType, m.clock.Now())
	if err != nil {
		return 0, err
	}

	if err := m.cold.PutCompressed(ctx, container, path, payload); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMigrationFailed, err, "cold write failed for %s", path)
	}

	deleted, err := m.hot.Delete(ctx, collection, keys)
	if err != nil {
		// The archive exists but the hot records remain. The next run will
		// re-archive them under a new version; pruning removes the duplicate.
		return 0, errors.Wrapf(errors.ErrCodeMigrationFailed, err, "hot delete failed after archiving %s", path)
	}

	m.logger.Info("migrated hot records to cold storage",
		zap.String("collection", collection),
		zap.String("path", path),
		zap.Int("records", deleted),
	)

	return deleted, nil
}

// TransitionStorageClasses enforces each container's lifecycle policy:
// transition aged objects to the cheaper class, delete objects past their
// retention horizon. Idempotent; one container's failure never aborts the rest.
func (m *Manager) TransitionStorageClasses(ctx context.Context) PassReport {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	return m.transitionStorageClasses(ctx)
}

func (m *Manager) transitionStorageClasses(ctx context.Context) PassReport {
	report := PassReport{Pass: "storage_class_transition"}
	now := m.clock.Now()

	for _, container := range types.AllContainers() {
		policy := m.policyFor(container)

		if err := m.cold.EnsureContainer(ctx, container, policy); err != nil {
			report.fail(container, err)

			continue
		}

		objects, err := m.cold.ListObjects(ctx, container, "")
		if err != nil {
			report.fail(container, err)

			continue
		}

		for _, obj := range objects {
			ageDays := int(now.Sub(obj.CreatedAt).Hours() / 24)

			switch {
			case policy.DeleteAfterDays > 0 && ageDays >= policy.DeleteAfterDays:
				if err := m.cold.DeleteObject(ctx, container, obj.Path); err != nil {
					report.fail(container+"/"+obj.Path, err)

					continue
				}

				report.Processed++
			case ageDays >= policy.TransitionAfterDays && obj.StorageClass == policy.InitialClass:
				if err := m.cold.Backend().SetStorageClass(ctx, container, obj.Path, policy.TransitionClass); err != nil {
					report.fail(container+"/"+obj.Path, err)

					continue
				}

				report.Processed++
				m.metrics.ClassTransitions.Inc()
			}
		}
	}

	return report
}

// PruneVersions deletes stale archive versions beyond the configured keep
// count, per container.
func (m *Manager) PruneVersions(ctx context.Context) PassReport {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	return m.pruneVersions(ctx)
}

func (m *Manager) pruneVersions(ctx context.Context) PassReport {
	report := PassReport{Pass: "version_pruning"}

	for _, container := range types.AllContainers() {
		deleted, err := m.cold.DeleteOldVersions(ctx, container, m.cfg.KeepVersions)
		if err != nil {
			report.fail(container, err)
		}

		report.Processed += deleted
		m.metrics.PrunedVersions.Add(float64(deleted))
	}

	return report
}

func (m *Manager) policyFor(container string) coldstore.LifecyclePolicy {
	return coldstore.LifecyclePolicy{
		InitialClass:        m.cfg.InitialStorageClass,
		TransitionClass:     m.cfg.TransitionStorageClass,
		TransitionAfterDays: m.cfg.TransitionAfterDays,
		DeleteAfterDays:     m.cfg.Retention(container),
	}
}

func groupByBotType(records []map[string]any) map[string][]map[string]any {
	groups := make(map[string][]map[string]any)

	for _, record := range records {
		botType, _ := record["bot_type"].(string)
		if botType == "" {
			botType = "unknown"
		}

		groups[botType] = append(groups[botType], record)
	}

	return groups
}
