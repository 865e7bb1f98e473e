package tradelog

import (
	"context"
	"encoding/json"

	"github.com/rxtech-lab/tradelog/internal/coldstore"
	"github.com/rxtech-lab/tradelog/internal/config"
	"github.com/rxtech-lab/tradelog/internal/hotstore"
	"github.com/rxtech-lab/tradelog/internal/types"
	"github.com/rxtech-lab/tradelog/internal/utils"
	"github.com/rxtech-lab/tradelog/pkg/errors"
	"go.uber.org/zap"
)

// FlushHot drains the hot buffer: one multi-write attempt, then per-record
// fallback on failure. Records failing transiently are requeued for the next
// cycle; records failing permanently are set aside after one attempt.
func (t *TradingLogger) FlushHot() error {
	t.hotFlushMu.Lock()
	defer t.hotFlushMu.Unlock()

	writes := t.hotBuf.TakeAll()
	if len(writes) == 0 {
		return nil
	}

	t.metrics.FlushTotal.WithLabelValues("hot").Inc()

	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.WriteTimeout.Std())
	defer cancel()

	if err := t.hot.UpsertBatch(ctx, writes); err == nil {
		t.metrics.EntriesWritten.WithLabelValues("hot").Add(float64(len(writes)))

		return nil
	}

	// Batch failed. Degrade to sequential single writes so one bad record
	// cannot poison the rest.
	t.metrics.FlushFailures.WithLabelValues("hot").Inc()

	var requeue []hotstore.Write

	failed := 0

	for _, write := range writes {
		if err := t.upsertSingle(write); err != nil {
			failed++

			if errors.IsPermanent(err) {
				t.metrics.EntriesSetAside.Inc()
				t.selfLogError(err, "hot record set aside after permanent failure")

				continue
			}

			t.metrics.RetriesExhausted.Inc()

			requeue = append(requeue, write)
		}
	}

	if len(requeue) > 0 {
		t.hotBuf.Requeue(requeue)
		t.metrics.EntriesRequeued.Add(float64(len(requeue)))
	}

	t.metrics.EntriesWritten.WithLabelValues("hot").Add(float64(len(writes) - failed))

	if failed > 0 {
		return errors.Newf(errors.ErrCodeFlushFailed, "hot flush degraded: %d/%d records failed", failed, len(writes))
	}

	return nil
}

// FlushCold drains the cold buffer into per-(kind, bot) compressed archives.
// A failed group is requeued whole; insertion order within each archive is
// preserved.
func (t *TradingLogger) FlushCold() error {
	t.coldFlushMu.Lock()
	defer t.coldFlushMu.Unlock()

	entries := t.coldBuf.TakeAll()
	if len(entries) == 0 {
		return nil
	}

	t.metrics.FlushTotal.WithLabelValues("cold").Inc()

	type groupKey struct {
		kind    types.ArchiveKind
		botType string
	}

	groups := make(map[groupKey][]types.LogEntry)

	var order []groupKey

	for _, entry := range entries {
		key := groupKey{kind: types.ArchiveKindFor(entry.Category), botType: entry.BotType}

		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}

		groups[key] = append(groups[key], entry)
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.WriteTimeout.Std())
	defer cancel()

	var firstErr error

	for _, key := range order {
		group := groups[key]

		if err := t.archiveEntries(ctx, key.kind, key.botType, group); err != nil {
			if firstErr == nil {
				firstErr = err
			}

			t.metrics.FlushFailures.WithLabelValues("cold").Inc()

			if errors.IsPermanent(err) {
				t.metrics.EntriesSetAside.Add(float64(len(group)))
				t.selfLogError(err, "cold archive group set aside after permanent failure")

				continue
			}

			t.coldBuf.Requeue(group)
			t.metrics.EntriesRequeued.Add(float64(len(group)))

			continue
		}

		t.metrics.EntriesWritten.WithLabelValues("cold").Add(float64(len(group)))
	}

	return firstErr
}

func (t *TradingLogger) archiveEntries(ctx context.Context, kind types.ArchiveKind, botType string, entries []types.LogEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSerializeFailed, "failed to serialize archive batch", err)
	}

	container := kind.Container()

	policy := coldPolicy(t.cfg, container)

	if err := t.cold.EnsureContainer(ctx, container, policy); err != nil {
		return err
	}

	path, err := t.cold.ArchivePath(ctx, kind, botType, t.clock.Now())
	if err != nil {
		return err
	}

	return utils.Retry(ctx, uint64(t.cfg.RetryAttempts), t.cfg.WriteTimeout.Std()/16, func() error {
		return t.cold.PutCompressed(ctx, container, path, payload)
	})
}

func coldPolicy(cfg config.Config, container string) coldstore.LifecyclePolicy {
	return coldstore.LifecyclePolicy{
		InitialClass:        cfg.InitialStorageClass,
		TransitionClass:     cfg.TransitionStorageClass,
		TransitionAfterDays: cfg.TransitionAfterDays,
		DeleteAfterDays:     cfg.Retention(container),
	}
}

// writeHotNow performs the severity bypass: synchronous hot write with the
// full retry budget, never surfacing the failure to the caller.
func (t *TradingLogger) writeHotNow(write hotstore.Write, internal bool) {
	if err := t.upsertSingle(write); err != nil {
		if errors.IsPermanent(err) {
			t.metrics.EntriesSetAside.Inc()
		} else {
			// At-least-once: park the record in the buffer for the next cycle.
			t.hotBuf.Requeue([]hotstore.Write{write})
			t.metrics.EntriesRequeued.Inc()
			t.metrics.RetriesExhausted.Inc()
		}

		if !internal {
			t.selfLogError(err, "immediate hot write failed")
		}

		return
	}

	t.metrics.EntriesWritten.WithLabelValues("hot").Inc()
}

func (t *TradingLogger) upsertSingle(write hotstore.Write) error {
	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.WriteTimeout.Std())
	defer cancel()

	return utils.Retry(ctx, uint64(t.cfg.RetryAttempts), t.cfg.WriteTimeout.Std()/16, func() error {
		return t.hot.Upsert(ctx, write.Collection, write.Key, write.Data, write.ExpiresAt)
	})
}

// selfLogError routes an internal pipeline failure back through the pipeline
// at WARNING so it shows up in dashboards without triggering the severity
// bypass, and without recursing when the self-log itself fails.
func (t *TradingLogger) selfLogError(cause error, message string) {
	t.log.Warn(message, zap.Error(cause))

	entry, err := types.NewLogEntry(t.clock.Now(), types.EntryParams{
		Level:        types.LogLevelWarning,
		Category:     types.CategoryError,
		RoutingClass: types.RoutingDashboard,
		Message:      message,
		Payload: types.ErrorLogData{
			ErrorType:    "logging_pipeline",
			ErrorMessage: cause.Error(),
			Component:    "tradelog",
			Recoverable:  true,
		},
		Source:    t.cfg.Source,
		SessionID: t.sessionID,
		BotType:   t.cfg.BotType,
	})
	if err != nil {
		return
	}

	t.dispatch(entry, "", true)
}
