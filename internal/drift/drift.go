package drift

import (
	"fmt"

	"crossref/internal/shared/observability"
	"crossref/internal/snapshot"
)

// Severity buckets the staleness of a snapshot relative to ground truth.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityStandard Severity = "standard"
	SeveritySevere   Severity = "severe"
)

// Result is the outcome of a drift computation.
type Result struct {
	DriftPercentage float64  `json:"drift_percentage"`
	Severity        Severity `json:"severity"`
	AddedCount      int      `json:"added_count"`
	RemovedCount    int      `json:"removed_count"`
	ModifiedCount   int      `json:"modified_count"`
	Message         string   `json:"message"`
}

// Compute classifies how far a snapshot has drifted. It is a pure function;
// acting on the severity (rescan, warn, ignore) is the caller's decision.
func Compute(oldTotal, added, removed, modified int) Result {
	base := oldTotal
	if base < 1 {
		base = 1
	}
	pct := float64(added+removed+modified) / float64(base) * 100

	var severity Severity
	switch {
	case pct <= 10:
		severity = SeverityNone
	case pct <= 50:
		severity = SeverityStandard
	default:
		severity = SeveritySevere
	}

	observability.DriftChecksTotal.WithLabelValues(string(severity)).Inc()

	return Result{
		DriftPercentage: pct,
		Severity:        severity,
		AddedCount:      added,
		RemovedCount:    removed,
		ModifiedCount:   modified,
		Message: fmt.Sprintf("%.1f%% drift (%d added, %d removed, %d modified of %d)",
			pct, added, removed, modified, oldTotal),
	}
}

// Diff compares two snapshots element by element and feeds the result into
// Compute. An element counts as modified when its id survives but any
// recorded attribute changed.
func Diff(prev, curr *snapshot.Snapshot) Result {
	var added, removed, modified int

	for id, currEl := range curr.Elements {
		prevEl, ok := prev.Elements[id]
		if !ok {
			added++
			continue
		}
		if elementChanged(prevEl, currEl) {
			modified++
		}
	}
	for id := range prev.Elements {
		if _, ok := curr.Elements[id]; !ok {
			removed++
		}
	}

	return Compute(prev.ElementCount(), added, removed, modified)
}

func elementChanged(a, b snapshot.CodeElement) bool {
	if a.Name != b.Name || a.Type != b.Type || a.File != b.File || a.Line != b.Line || a.Exported != b.Exported {
		return true
	}
	if len(a.Parameters) != len(b.Parameters) {
		return true
	}
	for i := range a.Parameters {
		if a.Parameters[i] != b.Parameters[i] {
			return true
		}
	}
	return false
}
