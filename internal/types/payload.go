package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayloadKind identifies the concrete variant of a LogPayload.
type PayloadKind string

const (
	PayloadKindTrade       PayloadKind = "trade"
	PayloadKindCognitive   PayloadKind = "cognitive"
	PayloadKindError       PayloadKind = "error"
	PayloadKindSystem      PayloadKind = "system"
	PayloadKindPerformance PayloadKind = "performance"
	PayloadKindGeneric     PayloadKind = "generic"
)

// LogPayload is the tagged union of typed payload variants. The variant must
// be compatible with the entry's category; the check happens at construction
// time so grouping at flush time is a total function.
type LogPayload interface {
	PayloadKind() PayloadKind
}

// TradeLogData captures one trade execution.
type TradeLogData struct {
	TradeID    string          `json:"trade_id" validate:"required"`
	Symbol     string          `json:"symbol" validate:"required"`
	Side       string          `json:"side" validate:"required,oneof=BUY SELL"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Fee        decimal.Decimal `json:"fee"`
	PnL        decimal.Decimal `json:"pnl"`
	Strategy   string          `json:"strategy,omitempty"`
	ExecutedAt time.Time       `json:"executed_at"`
}

func (TradeLogData) PayloadKind() PayloadKind { return PayloadKindTrade }

// CognitiveLogData captures one decision made by the cognitive layer.
type CognitiveLogData struct {
	DecisionID string         `json:"decision_id" validate:"required"`
	Decision   string         `json:"decision" validate:"required"`
	Confidence float64        `json:"confidence" validate:"gte=0,lte=1"`
	Reasoning  string         `json:"reasoning,omitempty"`
	Context    string         `json:"context,omitempty"`
	Inputs     map[string]any `json:"inputs,omitempty"`
}

func (CognitiveLogData) PayloadKind() PayloadKind { return PayloadKindCognitive }

// ErrorLogData captures an error or recovery event.
type ErrorLogData struct {
	ErrorType    string `json:"error_type" validate:"required"`
	ErrorMessage string `json:"error_message" validate:"required"`
	StackTrace   string `json:"stack_trace,omitempty"`
	Component    string `json:"component,omitempty"`
	Recoverable  bool   `json:"recoverable"`
}

func (ErrorLogData) PayloadKind() PayloadKind { return PayloadKindError }

// SystemMetricsData captures a point-in-time resource snapshot.
type SystemMetricsData struct {
	CPUPercent     float64 `json:"cpu_percent" validate:"gte=0"`
	MemoryPercent  float64 `json:"memory_percent" validate:"gte=0"`
	DiskPercent    float64 `json:"disk_percent" validate:"gte=0"`
	GoroutineCount int     `json:"goroutine_count" validate:"gte=0"`
	UptimeSeconds  float64 `json:"uptime_seconds" validate:"gte=0"`
}

func (SystemMetricsData) PayloadKind() PayloadKind { return PayloadKindSystem }

// PerformanceLogData captures aggregate trading performance.
type PerformanceLogData struct {
	TotalTrades   int             `json:"total_trades" validate:"gte=0"`
	WinRate       float64         `json:"win_rate" validate:"gte=0,lte=1"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	SharpeRatio   float64         `json:"sharpe_ratio"`
	MaxDrawdown   float64         `json:"max_drawdown"`
}

func (PerformanceLogData) PayloadKind() PayloadKind { return PayloadKindPerformance }

// GenericLogData is the untyped key/value fallback for categories without a
// dedicated variant.
type GenericLogData map[string]any

func (GenericLogData) PayloadKind() PayloadKind { return PayloadKindGeneric }

// allowedPayloadKinds maps each category to the payload variants it accepts.
// TRADE and COGNITIVE are strict; the rest admit the generic fallback.
var allowedPayloadKinds = map[LogCategory][]PayloadKind{
	CategoryTrade:       {PayloadKindTrade},
	CategoryPosition:    {PayloadKindTrade, PayloadKindGeneric},
	CategoryCognitive:   {PayloadKindCognitive},
	CategoryStrategy:    {PayloadKindCognitive, PayloadKindGeneric},
	CategoryError:       {PayloadKindError, PayloadKindGeneric},
	CategoryRecovery:    {PayloadKindError, PayloadKindGeneric},
	CategorySystem:      {PayloadKindSystem, PayloadKindGeneric},
	CategoryPerformance: {PayloadKindPerformance, PayloadKindGeneric},
	CategoryRisk:        {PayloadKindGeneric},
	CategoryMarketData:  {PayloadKindGeneric},
	CategoryAlert:       {PayloadKindGeneric},
}

// PayloadAllowed reports whether the payload variant is compatible with the category.
func PayloadAllowed(category LogCategory, kind PayloadKind) bool {
	for _, allowed := range allowedPayloadKinds[category] {
		if allowed == kind {
			return true
		}
	}

	return false
}
