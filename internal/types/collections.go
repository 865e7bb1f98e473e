package types

// Hot collection names. Stable: dashboard consumers key on them.
const (
	CollectionLiveTrades             = "live_trades"
	CollectionLiveAlerts             = "live_alerts"
	CollectionLiveCognitiveDecisions = "live_cognitive_decisions"
	CollectionLiveSystemStatus       = "live_system_status"
	CollectionDailySummaries         = "daily_summaries"
	CollectionDailyReflections       = "daily_reflections"
	CollectionDashboardMetrics       = "dashboard_metrics"
)

// AllHotCollections lists every hot collection name.
func AllHotCollections() []string {
	return []string{
		CollectionLiveTrades, CollectionLiveAlerts, CollectionLiveCognitiveDecisions,
		CollectionLiveSystemStatus, CollectionDailySummaries, CollectionDailyReflections,
		CollectionDashboardMetrics,
	}
}

// ArchiveKindForCollection maps a hot collection to the archive kind its
// records migrate into.
func ArchiveKindForCollection(collection string) ArchiveKind {
	switch collection {
	case CollectionLiveTrades:
		return ArchiveKindTrades
	case CollectionLiveCognitiveDecisions, CollectionDailyReflections:
		return ArchiveKindCognitive
	case CollectionLiveAlerts:
		return ArchiveKindCompliance
	case CollectionDashboardMetrics, CollectionDailySummaries:
		return ArchiveKindAnalytics
	default:
		return ArchiveKindSystem
	}
}

// HotCollectionFor maps a category to the hot collection its entries land in.
func HotCollectionFor(category LogCategory) string {
	switch category {
	case CategoryTrade, CategoryPosition:
		return CollectionLiveTrades
	case CategoryAlert:
		return CollectionLiveAlerts
	case CategoryCognitive, CategoryStrategy:
		return CollectionLiveCognitiveDecisions
	case CategoryPerformance, CategoryMarketData:
		return CollectionDashboardMetrics
	default:
		return CollectionLiveSystemStatus
	}
}
