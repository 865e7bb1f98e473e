package tradelog

import (
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tradelog/internal/hotstore"
	"github.com/rxtech-lab/tradelog/internal/router"
	"github.com/rxtech-lab/tradelog/internal/types"
	"github.com/rxtech-lab/tradelog/pkg/errors"
	"go.uber.org/zap"
)

// LogTrade records one trade execution. Trades are always routed to both
// tiers for redundancy.
func (t *TradingLogger) LogTrade(data types.TradeLogData, message string) error {
	return t.LogEvent(types.EntryParams{
		Level:        types.LogLevelInfo,
		Category:     types.CategoryTrade,
		RoutingClass: types.RoutingDashboard,
		Message:      message,
		Payload:      data,
		TradeID:      optional.Some(data.TradeID),
		Symbol:       optional.Some(data.Symbol),
		Strategy:     optionalString(data.Strategy),
	})
}

// LogCognitive records one cognitive-layer decision.
func (t *TradingLogger) LogCognitive(data types.CognitiveLogData, message string) error {
	return t.LogEvent(types.EntryParams{
		Level:        types.LogLevelInfo,
		Category:     types.CategoryCognitive,
		RoutingClass: types.RoutingCognitiveLive,
		Message:      message,
		Payload:      data,
	})
}

// LogError records an error event at the given severity. Errors surface in
// the dashboard hot tier at every level; ERROR and CRITICAL additionally
// bypass batching and are archived for redundancy.
func (t *TradingLogger) LogError(level types.LogLevel, data types.ErrorLogData, message string) error {
	return t.LogEvent(types.EntryParams{
		Level:        level,
		Category:     types.CategoryError,
		RoutingClass: types.RoutingDashboard,
		Message:      message,
		Payload:      data,
	})
}

// LogMetrics records a system resource snapshot.
func (t *TradingLogger) LogMetrics(data types.SystemMetricsData, message string) error {
	return t.LogEvent(types.EntryParams{
		Level:        types.LogLevelInfo,
		Category:     types.CategorySystem,
		RoutingClass: types.RoutingRealTime,
		Message:      message,
		Payload:      data,
	})
}

// LogPerformance records aggregate trading performance for dashboards.
func (t *TradingLogger) LogPerformance(data types.PerformanceLogData, message string) error {
	return t.LogEvent(types.EntryParams{
		Level:        types.LogLevelInfo,
		Category:     types.CategoryPerformance,
		RoutingClass: types.RoutingDashboard,
		Message:      message,
		Payload:      data,
	})
}

// LogDailySummary records an end-of-day summary document.
func (t *TradingLogger) LogDailySummary(data types.GenericLogData, message string) error {
	entry, err := t.newEntry(types.EntryParams{
		Level:        types.LogLevelInfo,
		Category:     types.CategoryMarketData,
		RoutingClass: types.RoutingDashboard,
		Message:      message,
		Payload:      data,
	})
	if err != nil {
		return err
	}

	t.dispatch(entry, types.CollectionDailySummaries, false)

	return nil
}

// LogReflection records an end-of-day cognitive reflection document.
func (t *TradingLogger) LogReflection(data types.CognitiveLogData, message string) error {
	entry, err := t.newEntry(types.EntryParams{
		Level:        types.LogLevelInfo,
		Category:     types.CategoryCognitive,
		RoutingClass: types.RoutingCognitiveLive,
		Message:      message,
		Payload:      data,
	})
	if err != nil {
		return err
	}

	t.dispatch(entry, types.CollectionDailyReflections, false)

	return nil
}

// LogEvent is the generic entry point: full control over the entry params.
// It returns an error only for construction-time validation failures;
// backend failures never propagate to callers.
func (t *TradingLogger) LogEvent(params types.EntryParams) error {
	entry, err := t.newEntry(params)
	if err != nil {
		return err
	}

	t.dispatch(entry, "", false)

	return nil
}

func (t *TradingLogger) newEntry(params types.EntryParams) (types.LogEntry, error) {
	if t.closed.Load() {
		return types.LogEntry{}, errors.New(errors.ErrCodeLoggerClosed, "trading logger is closed")
	}

	if params.Source == "" {
		params.Source = t.cfg.Source
	}

	if params.SessionID == "" {
		params.SessionID = t.sessionID
	}

	if params.BotType == "" {
		params.BotType = t.cfg.BotType
	}

	return types.NewLogEntry(t.clock.Now(), params)
}

// dispatch classifies the entry and hands it to its tier(s). internal marks
// self-logged pipeline errors, which must never recurse into more self-logs.
func (t *TradingLogger) dispatch(entry types.LogEntry, collectionOverride string, internal bool) {
	decision := router.Classify(entry)

	if decision.ToHot {
		t.dispatchHot(entry, collectionOverride, decision.Immediate, internal)
	}

	if decision.ToCold {
		n := t.coldBuf.Add(entry)

		// Internal entries never count toward the size trigger: they are
		// produced inside a flush and must not schedule another one.
		if !internal && n >= t.cfg.BatchSize {
			t.signalFlush(t.flushColdCh)
		}
	}
}

func (t *TradingLogger) dispatchHot(entry types.LogEntry, collectionOverride string, immediate, internal bool) {
	data, err := entry.HotData()
	if err != nil {
		t.log.Error("failed to flatten entry for hot tier", zap.Error(err))
		t.metrics.EntriesSetAside.Inc()

		return
	}

	collection := collectionOverride
	if collection == "" {
		collection = types.HotCollectionFor(entry.Category)
	}

	write := hotstore.Write{
		Collection: collection,
		Key:        hotKey(entry),
		Data:       data,
	}

	// The expiry is anchored to the entry's creation timestamp, so time
	// spent in the buffer never extends a record's hot-tier lifetime.
	if expiresAt, ok := entry.ExpiresAt(); ok {
		write.ExpiresAt = expiresAt
	}

	if immediate && !internal {
		t.writeHotNow(write, internal)

		return
	}

	n := t.hotBuf.Add(write)

	if !internal && n >= t.cfg.BatchSize {
		t.signalFlush(t.flushHotCh)
	}
}

// hotKey picks a stable record key so repeated writes for the same logical
// event merge instead of duplicating: trade and position correlation ids
// win, everything else gets a fresh key.
func hotKey(entry types.LogEntry) string {
	if id, err := entry.TradeID.Take(); err == nil && id != "" {
		return id
	}

	if id, err := entry.PositionID.Take(); err == nil && id != "" {
		return id
	}

	return uuid.NewString()
}

func optionalString(s string) optional.Option[string] {
	if s == "" {
		return optional.None[string]()
	}

	return optional.Some(s)
}
