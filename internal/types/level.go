package types

import "time"

type LogLevel string

const (
	LogLevelDebug    LogLevel = "DEBUG"
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARNING"
	LogLevelError    LogLevel = "ERROR"
	LogLevelCritical LogLevel = "CRITICAL"
)

// AllLogLevels lists every valid level. Used by exhaustive routing tests.
func AllLogLevels() []LogLevel {
	return []LogLevel{LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelCritical}
}

func (l LogLevel) Valid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelCritical:
		return true
	default:
		return false
	}
}

// Severe reports whether the level forces redundant dual-tier routing.
func (l LogLevel) Severe() bool {
	return l == LogLevelError || l == LogLevelCritical
}

type LogCategory string

const (
	CategorySystem      LogCategory = "SYSTEM"
	CategoryTrade       LogCategory = "TRADE"
	CategoryPosition    LogCategory = "POSITION"
	CategoryStrategy    LogCategory = "STRATEGY"
	CategoryRisk        LogCategory = "RISK"
	CategoryPerformance LogCategory = "PERFORMANCE"
	CategoryError       LogCategory = "ERROR"
	CategoryCognitive   LogCategory = "COGNITIVE"
	CategoryMarketData  LogCategory = "MARKET_DATA"
	CategoryRecovery    LogCategory = "RECOVERY"
	CategoryAlert       LogCategory = "ALERT"
)

// AllLogCategories lists every valid category. Used by exhaustive routing tests.
func AllLogCategories() []LogCategory {
	return []LogCategory{
		CategorySystem, CategoryTrade, CategoryPosition, CategoryStrategy,
		CategoryRisk, CategoryPerformance, CategoryError, CategoryCognitive,
		CategoryMarketData, CategoryRecovery, CategoryAlert,
	}
}

func (c LogCategory) Valid() bool {
	switch c {
	case CategorySystem, CategoryTrade, CategoryPosition, CategoryStrategy,
		CategoryRisk, CategoryPerformance, CategoryError, CategoryCognitive,
		CategoryMarketData, CategoryRecovery, CategoryAlert:
		return true
	default:
		return false
	}
}

// RoutingClass determines tier assignment for an entry, independent of its
// semantic category.
type RoutingClass string

const (
	RoutingRealTime      RoutingClass = "REAL_TIME"
	RoutingDashboard     RoutingClass = "DASHBOARD"
	RoutingCognitiveLive RoutingClass = "COGNITIVE_LIVE"
	RoutingArchival      RoutingClass = "ARCHIVAL"
	RoutingBulk          RoutingClass = "BULK"
	RoutingAnalytics     RoutingClass = "ANALYTICS"
)

// AllRoutingClasses lists every valid routing class. Used by exhaustive routing tests.
func AllRoutingClasses() []RoutingClass {
	return []RoutingClass{
		RoutingRealTime, RoutingDashboard, RoutingCognitiveLive,
		RoutingArchival, RoutingBulk, RoutingAnalytics,
	}
}

func (r RoutingClass) Valid() bool {
	switch r {
	case RoutingRealTime, RoutingDashboard, RoutingCognitiveLive,
		RoutingArchival, RoutingBulk, RoutingAnalytics:
		return true
	default:
		return false
	}
}

// HotTTL returns the hot-tier time-to-live derived from the routing class.
// A zero duration means the class is not hot-tier eligible by TTL.
func (r RoutingClass) HotTTL() time.Duration {
	switch r {
	case RoutingRealTime:
		return 7 * 24 * time.Hour
	case RoutingDashboard:
		return 30 * 24 * time.Hour
	case RoutingCognitiveLive:
		return 14 * 24 * time.Hour
	default:
		return 0
	}
}

// HotEligible reports whether the class targets the hot tier.
func (r RoutingClass) HotEligible() bool {
	return r.HotTTL() > 0
}

// ColdEligible reports whether the class targets the cold tier.
func (r RoutingClass) ColdEligible() bool {
	switch r {
	case RoutingArchival, RoutingBulk, RoutingAnalytics:
		return true
	default:
		return false
	}
}
