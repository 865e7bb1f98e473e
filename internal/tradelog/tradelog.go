// Package tradelog is the public facade of the tiered log storage core. A
// TradingLogger accepts domain events, classifies them, and moves them into
// the hot and cold tiers through buffered background flushing.
package tradelog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/tradelog/internal/buffer"
	"github.com/rxtech-lab/tradelog/internal/coldstore"
	"github.com/rxtech-lab/tradelog/internal/config"
	"github.com/rxtech-lab/tradelog/internal/hotstore"
	"github.com/rxtech-lab/tradelog/internal/lifecycle"
	"github.com/rxtech-lab/tradelog/internal/logger"
	"github.com/rxtech-lab/tradelog/internal/metrics"
	"github.com/rxtech-lab/tradelog/internal/types"
	"github.com/rxtech-lab/tradelog/internal/utils"
	"github.com/rxtech-lab/tradelog/pkg/errors"
	"go.uber.org/zap"
)

// TradingLogger orchestrates the logging pipeline. Construct one instance at
// process start and inject it into callers; it owns the buffers, the
// background scheduler, and the lifecycle manager.
type TradingLogger struct {
	cfg     config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	clock   utils.Clock

	hot       hotstore.Store
	cold      *coldstore.ColdStore
	lifecycle *lifecycle.Manager

	hotBuf  *buffer.Buffer[hotstore.Write]
	coldBuf *buffer.Buffer[types.LogEntry]

	// Per-tier flush locks. Hot-path writes must never block on cold-flush
	// I/O, so these are independent; manual and scheduled flushes serialize
	// on the same lock to prevent double-flush races.
	hotFlushMu  sync.Mutex
	coldFlushMu sync.Mutex

	// Size-triggered flushes are handed to the flusher goroutine so the
	// producer that crossed the threshold never waits on backend I/O. The
	// channels hold one pending signal; extra triggers coalesce.
	flushHotCh  chan struct{}
	flushColdCh chan struct{}
	flusherStop chan struct{}
	flusherDone chan struct{}

	cron      *cron.Cron
	sessionID string
	closed    atomic.Bool
	ownsHot   bool
}

// New wires a TradingLogger from configuration: DuckDB hot store, filesystem
// cold backend, and the configured archive version sequence.
func New(cfg config.Config, log *logger.Logger) (*TradingLogger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := utils.RealClock{}

	hot, err := hotstore.NewDuckDBStore(cfg.HotStorePath, clock, log)
	if err != nil {
		return nil, err
	}

	backend, err := coldstore.NewFSBackend(cfg.ColdStoreRoot, clock)
	if err != nil {
		hot.Close()

		return nil, err
	}

	var seq coldstore.Sequence

	switch cfg.VersionSequence {
	case "redis":
		seq = coldstore.NewRedisSequence(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, "tradelog:seq:")
	case "hot":
		seq = hotSequence{store: hot}
	default:
		seq = coldstore.NewLocalSequence()
	}

	tl, err := NewWithBackends(cfg, log, hot, backend, seq, clock, metrics.NewNop())
	if err != nil {
		hot.Close()

		return nil, err
	}

	tl.ownsHot = true

	return tl, nil
}

// NewWithBackends wires a TradingLogger over injected backends. Used by
// tests and by deployments that bring their own stores.
func NewWithBackends(cfg config.Config, log *logger.Logger, hot hotstore.Store, backend coldstore.BlobBackend, seq coldstore.Sequence, clock utils.Clock, m *metrics.Metrics) (*TradingLogger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cold := coldstore.New(backend, seq, clock, log)

	tl := &TradingLogger{
		cfg:         cfg,
		log:         log,
		metrics:     m,
		clock:       clock,
		hot:         hot,
		cold:        cold,
		hotBuf:      buffer.New[hotstore.Write](clock),
		coldBuf:     buffer.New[types.LogEntry](clock),
		flushHotCh:  make(chan struct{}, 1),
		flushColdCh: make(chan struct{}, 1),
		flusherStop: make(chan struct{}),
		flusherDone: make(chan struct{}),
		cron:        cron.New(),
		sessionID:   uuid.NewString(),
	}

	tl.lifecycle = lifecycle.NewManager(hot, cold, cfg, clock, log, m, tl.raiseAlert)

	go tl.runFlusher()

	return tl, nil
}

// runFlusher drains size-trigger signals off the producer goroutines.
func (t *TradingLogger) runFlusher() {
	defer close(t.flusherDone)

	for {
		select {
		case <-t.flusherStop:
			return
		case <-t.flushHotCh:
			if err := t.FlushHot(); err != nil {
				t.log.Error("hot flush after size trigger failed", zap.Error(err))
			}
		case <-t.flushColdCh:
			if err := t.FlushCold(); err != nil {
				t.log.Error("cold flush after size trigger failed", zap.Error(err))
			}
		}
	}
}

// signalFlush requests a background flush without blocking: a pending signal
// already covers the new trigger.
func (t *TradingLogger) signalFlush(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Start launches the background scheduler: periodic buffer flushes and
// lifecycle runs. Call Close to stop it and drain the buffers.
func (t *TradingLogger) Start() error {
	flushSpec := fmt.Sprintf("@every %s", t.cfg.FlushInterval.Std())

	if _, err := t.cron.AddFunc(flushSpec, func() {
		if err := t.FlushAll(); err != nil {
			t.log.Error("scheduled flush failed", zap.Error(err))
		}
	}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to schedule flush job", err)
	}

	lifecycleSpec := fmt.Sprintf("@every %s", t.cfg.LifecycleInterval.Std())

	if _, err := t.cron.AddFunc(lifecycleSpec, func() {
		t.RunLifecycle(context.Background())
	}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to schedule lifecycle job", err)
	}

	t.cron.Start()
	t.log.Info("trading logger started",
		zap.String("session_id", t.sessionID),
		zap.Duration("flush_interval", t.cfg.FlushInterval.Std()),
		zap.Duration("lifecycle_interval", t.cfg.LifecycleInterval.Std()),
	)

	return nil
}

// RunLifecycle executes all lifecycle passes once. Safe to call manually at
// any time; passes serialize on the manager's run mutex.
func (t *TradingLogger) RunLifecycle(ctx context.Context) lifecycle.Report {
	return t.lifecycle.RunAll(ctx)
}

// Lifecycle exposes the manager for administrative single-pass runs.
func (t *TradingLogger) Lifecycle() *lifecycle.Manager {
	return t.lifecycle
}

// Hot exposes the hot store for dashboard consumers.
func (t *TradingLogger) Hot() hotstore.Store {
	return t.hot
}

// Cold exposes the cold store for compliance tooling.
func (t *TradingLogger) Cold() *coldstore.ColdStore {
	return t.cold
}

// SessionID returns the identifier stamped on every entry from this instance.
func (t *TradingLogger) SessionID() string {
	return t.sessionID
}

// AcknowledgeAlert marks an alert record as read.
func (t *TradingLogger) AcknowledgeAlert(ctx context.Context, key string) error {
	return t.hot.Acknowledge(ctx, types.CollectionLiveAlerts, key)
}

// ResolveAlert marks an alert record as handled.
func (t *TradingLogger) ResolveAlert(ctx context.Context, key string) error {
	return t.hot.Resolve(ctx, types.CollectionLiveAlerts, key)
}

// FlushAll flushes both tier buffers. Serialized against scheduled flushes
// on the per-tier locks.
func (t *TradingLogger) FlushAll() error {
	hotErr := t.FlushHot()
	coldErr := t.FlushCold()

	if hotErr != nil {
		return hotErr
	}

	return coldErr
}

// Close stops the scheduler, drains both buffers within the shutdown
// timeout, and releases owned backends. The logger accepts no entries
// afterwards.
func (t *TradingLogger) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	stopCtx := t.cron.Stop()

	select {
	case <-stopCtx.Done():
	case <-time.After(t.cfg.ShutdownTimeout.Std()):
		t.log.Warn("scheduler did not stop within shutdown timeout")
	}

	close(t.flusherStop)
	<-t.flusherDone

	err := t.FlushAll()
	if err != nil {
		t.log.Error("final flush failed during shutdown", zap.Error(err))
	}

	if t.ownsHot {
		if closeErr := t.hot.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	t.log.Info("trading logger closed", zap.String("session_id", t.sessionID))

	return err
}

// raiseAlert is the lifecycle manager's path back into the pipeline for
// threshold breaches.
func (t *TradingLogger) raiseAlert(message string, data map[string]any) {
	err := t.LogEvent(types.EntryParams{
		Level:        types.LogLevelCritical,
		Category:     types.CategoryAlert,
		RoutingClass: types.RoutingArchival,
		Message:      message,
		Payload:      types.GenericLogData(data),
	})
	if err != nil {
		t.log.Error("failed to raise cost alert", zap.Error(err), zap.String("message", message))
	}
}

// hotSequence adapts the hot store's counter table to the archive version
// sequence contract, surviving process restarts.
type hotSequence struct {
	store hotstore.Store
}

func (s hotSequence) Next(ctx context.Context, key string) (int64, error) {
	return s.store.NextSequence(ctx, "archive:"+key)
}
