// Package router decides tier assignment for log entries. Classification is
// a pure function over the entry: no I/O, no side effects.
package router

import (
	"github.com/rxtech-lab/tradelog/internal/types"
)

// Decision is the tier assignment for one entry.
type Decision struct {
	// ToHot is true when the entry belongs in the low-latency queryable tier.
	ToHot bool
	// ToCold is true when the entry belongs in the bulk archival tier.
	ToCold bool
	// Immediate is true when the entry must bypass hot-tier batching and be
	// written synchronously (ERROR/CRITICAL severity).
	Immediate bool
}

// Classify maps an entry to its tier assignment. Entries with severe levels
// or TRADE category are always routed to both tiers for redundancy,
// regardless of routing class. Every entry lands in at least one tier.
func Classify(entry types.LogEntry) Decision {
	decision := Decision{
		ToHot:  entry.RoutingClass.HotEligible(),
		ToCold: entry.RoutingClass.ColdEligible(),
	}

	if entry.Level.Severe() || entry.Category == types.CategoryTrade {
		decision.ToHot = true
		decision.ToCold = true
	}

	if entry.Level.Severe() {
		decision.Immediate = true
	}

	return decision
}
