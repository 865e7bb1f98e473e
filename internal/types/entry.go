package types

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/tradelog/pkg/errors"
)

var validate = validator.New()

// EntryParams carries the caller-supplied fields for a new LogEntry.
type EntryParams struct {
	Level        LogLevel
	Category     LogCategory
	RoutingClass RoutingClass
	Message      string
	Payload      LogPayload
	Source       string
	SessionID    string
	BotType      string
	TradeID      optional.Option[string]
	PositionID   optional.Option[string]
	Strategy     optional.Option[string]
	Symbol       optional.Option[string]
}

// LogEntry is the immutable record of one structured event. Timestamp is
// assigned at construction and never mutated afterwards.
type LogEntry struct {
	Timestamp    time.Time               `json:"timestamp"`
	Level        LogLevel                `json:"level"`
	Category     LogCategory             `json:"category"`
	RoutingClass RoutingClass            `json:"routing_class"`
	Message      string                  `json:"message"`
	Payload      LogPayload              `json:"payload"`
	Source       string                  `json:"source,omitempty"`
	SessionID    string                  `json:"session_id,omitempty"`
	BotType      string                  `json:"bot_type"`
	TradeID      optional.Option[string] `json:"trade_id,omitempty"`
	PositionID   optional.Option[string] `json:"position_id,omitempty"`
	Strategy     optional.Option[string] `json:"strategy,omitempty"`
	Symbol       optional.Option[string] `json:"symbol,omitempty"`
}

// NewLogEntry validates params and builds an immutable LogEntry stamped with
// the clock's current time. Payload/category mismatches and invalid enum
// values fail here, synchronously, never later in the pipeline.
func NewLogEntry(now time.Time, params EntryParams) (LogEntry, error) {
	if !params.Level.Valid() {
		return LogEntry{}, errors.Newf(errors.ErrCodeInvalidLevel, "invalid log level %q", params.Level)
	}

	if !params.Category.Valid() {
		return LogEntry{}, errors.Newf(errors.ErrCodeInvalidCategory, "invalid log category %q", params.Category)
	}

	if !params.RoutingClass.Valid() {
		return LogEntry{}, errors.Newf(errors.ErrCodeInvalidRoutingClass, "invalid routing class %q", params.RoutingClass)
	}

	if params.Message == "" {
		return LogEntry{}, errors.New(errors.ErrCodeMissingParameter, "message is required")
	}

	if params.BotType == "" {
		return LogEntry{}, errors.New(errors.ErrCodeMissingParameter, "bot_type is required")
	}

	payload := params.Payload
	if payload == nil {
		payload = GenericLogData{}
	}

	if !PayloadAllowed(params.Category, payload.PayloadKind()) {
		return LogEntry{}, errors.Newf(errors.ErrCodePayloadMismatch,
			"payload kind %q is not allowed for category %q", payload.PayloadKind(), params.Category)
	}

	// Generic payloads have no tags to validate.
	if payload.PayloadKind() != PayloadKindGeneric {
		if err := validate.Struct(payload); err != nil {
			return LogEntry{}, errors.Wrapf(errors.ErrCodeInvalidParameter, err,
				"invalid %s payload", payload.PayloadKind())
		}
	}

	return LogEntry{
		Timestamp:    now.UTC(),
		Level:        params.Level,
		Category:     params.Category,
		RoutingClass: params.RoutingClass,
		Message:      params.Message,
		Payload:      payload,
		Source:       params.Source,
		SessionID:    params.SessionID,
		BotType:      params.BotType,
		TradeID:      params.TradeID,
		PositionID:   params.PositionID,
		Strategy:     params.Strategy,
		Symbol:       params.Symbol,
	}, nil
}

// ExpiresAt derives the hot-tier expiry for the entry. The second return is
// false when the routing class carries no TTL.
func (e LogEntry) ExpiresAt() (time.Time, bool) {
	ttl := e.RoutingClass.HotTTL()
	if ttl == 0 {
		return time.Time{}, false
	}

	return e.Timestamp.Add(ttl), true
}

// HotData flattens the entry into the document shape persisted in the hot
// store. The payload is nested under "payload" as plain JSON types.
func (e LogEntry) HotData() (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerializeFailed, "failed to serialize log entry", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerializeFailed, "failed to flatten log entry", err)
	}

	return data, nil
}
