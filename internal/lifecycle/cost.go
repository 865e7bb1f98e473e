package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rxtech-lab/tradelog/internal/types"
	"go.uber.org/zap"
)

const bytesPerGB = 1024 * 1024 * 1024

// UsageStats is the cost/usage snapshot produced by the cost-report pass.
// The monthly estimate is linear in document count and storage size; the
// pricing constants come from configuration and are not authoritative.
type UsageStats struct {
	GeneratedAt         time.Time        `json:"generated_at"`
	HotDocuments        map[string]int64 `json:"hot_documents"`
	HotDocumentsTotal   int64            `json:"hot_documents_total"`
	ColdBytes           map[string]int64 `json:"cold_bytes"`
	ColdBytesTotal      int64            `json:"cold_bytes_total"`
	EstimatedMonthlyUSD float64          `json:"estimated_monthly_usd"`
	Alerts              []string         `json:"alerts,omitempty"`
}

// CostReport counts hot documents per collection and cold bytes per
// container, estimates monthly cost, raises threshold alerts, and archives
// the report for trend analysis.
func (m *Manager) CostReport(ctx context.Context) (UsageStats, PassReport) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	return m.costReport(ctx)
}

func (m *Manager) costReport(ctx context.Context) (UsageStats, PassReport) {
	report := PassReport{Pass: "cost_report"}

	stats := UsageStats{
		GeneratedAt:  m.clock.Now(),
		HotDocuments: make(map[string]int64),
		ColdBytes:    make(map[string]int64),
	}

	for _, collection := range types.AllHotCollections() {
		count, err := m.hot.Count(ctx, collection)
		if err != nil {
			report.fail(collection, err)

			continue
		}

		stats.HotDocuments[collection] = count
		stats.HotDocumentsTotal += count
		report.Processed++
	}

	for _, container := range types.AllContainers() {
		objects, err := m.cold.ListObjects(ctx, container, "")
		if err != nil {
			report.fail(container, err)

			continue
		}

		var size int64
		for _, obj := range objects {
			size += obj.Size
		}

		stats.ColdBytes[container] = size
		stats.ColdBytesTotal += size
		report.Processed++
	}

	stats.EstimatedMonthlyUSD = float64(stats.HotDocumentsTotal)/1_000_000*m.cfg.Cost.HotDocUSDPerMillionMonth +
		float64(stats.ColdBytesTotal)/bytesPerGB*m.cfg.Cost.ColdUSDPerGBMonth

	m.checkThresholds(&stats)

	if err := m.archiveReport(ctx, stats); err != nil {
		report.fail("report_archive", err)
	}

	m.logger.Info("cost report generated",
		zap.Int64("hot_documents", stats.HotDocumentsTotal),
		zap.Int64("cold_bytes", stats.ColdBytesTotal),
		zap.Float64("estimated_monthly_usd", stats.EstimatedMonthlyUSD),
		zap.Int("alerts", len(stats.Alerts)),
	)

	return stats, report
}

// checkThresholds compares usage against the configured limits and raises
// one alert per breached threshold.
func (m *Manager) checkThresholds(stats *UsageStats) {
	limits := m.cfg.Cost

	if limits.MaxHotDocuments > 0 && stats.HotDocumentsTotal > limits.MaxHotDocuments {
		m.raiseAlert(stats, fmt.Sprintf("hot document count %d exceeds limit %d",
			stats.HotDocumentsTotal, limits.MaxHotDocuments), map[string]any{
			"threshold": "max_hot_documents",
			"value":     stats.HotDocumentsTotal,
			"limit":     limits.MaxHotDocuments,
		})
	}

	coldGB := float64(stats.ColdBytesTotal) / bytesPerGB

	if limits.MaxColdStorageGB > 0 && coldGB > limits.MaxColdStorageGB {
		m.raiseAlert(stats, fmt.Sprintf("cold storage %.2fGB exceeds limit %.2fGB",
			coldGB, limits.MaxColdStorageGB), map[string]any{
			"threshold": "max_cold_storage_gb",
			"value":     coldGB,
			"limit":     limits.MaxColdStorageGB,
		})
	}

	if limits.MaxContainerGB > 0 {
		for container, size := range stats.ColdBytes {
			containerGB := float64(size) / bytesPerGB
			if containerGB > limits.MaxContainerGB {
				m.raiseAlert(stats, fmt.Sprintf("container %s at %.2fGB exceeds limit %.2fGB",
					container, containerGB, limits.MaxContainerGB), map[string]any{
					"threshold": "max_container_gb",
					"container": container,
					"value":     containerGB,
					"limit":     limits.MaxContainerGB,
				})
			}
		}
	}
}

func (m *Manager) raiseAlert(stats *UsageStats, message string, data map[string]any) {
	stats.Alerts = append(stats.Alerts, message)
	m.metrics.CostAlertsRaised.Inc()

	if m.alert != nil {
		m.alert(message, data)
	}
}

// archiveReport writes the usage snapshot to the analytics container so cost
// trends survive hot-tier expiry.
func (m *Manager) archiveReport(ctx context.Context, stats UsageStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	container := types.ArchiveKindAnalytics.Container()

	if err := m.cold.EnsureContainer(ctx, container, m.policyFor(container)); err != nil {
		return err
	}

	path, err := m.cold.ArchivePath(ctx, types.ArchiveKindAnalytics, m.cfg.BotType, stats.GeneratedAt)
	if err != nil {
		return err
	}

	return m.cold.PutCompressed(ctx, container, path, payload)
}
