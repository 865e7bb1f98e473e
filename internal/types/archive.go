package types

// ArchiveKind groups entries into cold-store archives. Every category maps
// to exactly one kind, so flush-time grouping is a total function.
type ArchiveKind string

const (
	ArchiveKindTrades     ArchiveKind = "trades"
	ArchiveKindCognitive  ArchiveKind = "cognitive"
	ArchiveKindErrors     ArchiveKind = "errors"
	ArchiveKindSystem     ArchiveKind = "system"
	ArchiveKindAnalytics  ArchiveKind = "analytics"
	ArchiveKindCompliance ArchiveKind = "compliance"
)

// AllArchiveKinds lists every archive kind.
func AllArchiveKinds() []ArchiveKind {
	return []ArchiveKind{
		ArchiveKindTrades, ArchiveKindCognitive, ArchiveKindErrors,
		ArchiveKindSystem, ArchiveKindAnalytics, ArchiveKindCompliance,
	}
}

// ArchiveKindFor maps a category to its archive kind.
func ArchiveKindFor(category LogCategory) ArchiveKind {
	switch category {
	case CategoryTrade, CategoryPosition:
		return ArchiveKindTrades
	case CategoryCognitive, CategoryStrategy:
		return ArchiveKindCognitive
	case CategoryError, CategoryRecovery:
		return ArchiveKindErrors
	case CategoryPerformance, CategoryMarketData:
		return ArchiveKindAnalytics
	case CategoryRisk, CategoryAlert:
		return ArchiveKindCompliance
	default:
		return ArchiveKindSystem
	}
}

// Cold container names. Stable: compliance tooling and dashboards key on them.
const (
	ContainerTradeLogs         = "trade-logs"
	ContainerCognitiveArchives = "cognitive-archives"
	ContainerSystemLogs        = "system-logs"
	ContainerAnalyticsData     = "analytics-data"
	ContainerComplianceLogs    = "compliance-logs"
)

// AllContainers lists every cold container name.
func AllContainers() []string {
	return []string{
		ContainerTradeLogs, ContainerCognitiveArchives, ContainerSystemLogs,
		ContainerAnalyticsData, ContainerComplianceLogs,
	}
}

// Container returns the cold container an archive kind is written to.
func (k ArchiveKind) Container() string {
	switch k {
	case ArchiveKindTrades:
		return ContainerTradeLogs
	case ArchiveKindCognitive:
		return ContainerCognitiveArchives
	case ArchiveKindAnalytics:
		return ContainerAnalyticsData
	case ArchiveKindCompliance:
		return ContainerComplianceLogs
	default:
		return ContainerSystemLogs
	}
}
