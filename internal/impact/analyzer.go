package impact

import (
	"context"
	"time"

	"crossref/internal/core/config"
	coreerrors "crossref/internal/core/errors"
	"crossref/internal/query"
	"crossref/internal/shared/observability"
	"crossref/internal/snapshot"
)

// Operation is the kind of change being assessed.
type Operation string

const (
	OpModify   Operation = "modify"
	OpDelete   Operation = "delete"
	OpRefactor Operation = "refactor"
)

func (o Operation) Valid() bool {
	switch o {
	case OpModify, OpDelete, OpRefactor:
		return true
	}
	return false
}

// RiskLevel classifies how dangerous a change is, by affected count.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// escalate bumps a risk level one tier, capped at CRITICAL. LOW is a floor:
// a change small enough to land in the lowest tier stays there even for a
// delete.
func (r RiskLevel) escalate() RiskLevel {
	switch r {
	case RiskMedium:
		return RiskHigh
	case RiskHigh:
		return RiskCritical
	default:
		return r
	}
}

// RippleEffect is one downstream consequence of the proposed change.
type RippleEffect struct {
	File     string `json:"file"`
	Impact   string `json:"impact"`   // "direct call" or "indirect dependency"
	Severity string `json:"severity"` // "breaking", "major" or "minor"
}

// Result is the outcome of a change-impact analysis.
type Result struct {
	ElementID     string         `json:"element_id"`
	Operation     Operation      `json:"operation"`
	AffectedCount int            `json:"affected_count"`
	RiskLevel     RiskLevel      `json:"risk_level"`
	RippleEffects []RippleEffect `json:"ripple_effects"`
}

// Analyzer computes transitive dependents of an element and classifies the
// risk of changing it. Dependents come from the same reverse traversal the
// query engine uses for "-me" queries.
type Analyzer struct {
	engine *query.Engine
	risk   config.Risk
}

func NewAnalyzer(engine *query.Engine, risk config.Risk) *Analyzer {
	return &Analyzer{engine: engine, risk: risk}
}

// Analyze walks reverse edges from elementID up to maxDepth and classifies
// the change. AffectedCount counts distinct files by default; the elements
// mode counts distinct dependent elements instead.
func (a *Analyzer) Analyze(ctx context.Context, snap *snapshot.Snapshot, elementID string, op Operation, maxDepth int) (Result, error) {
	if !op.Valid() {
		return Result{}, coreerrors.Newf(coreerrors.CodeInvalidParameter, "unknown operation %q", op)
	}

	target, ok := snap.Element(elementID)
	if !ok {
		return Result{}, coreerrors.Newf(coreerrors.CodeElementNotFound,
			"element id %q not found in snapshot", elementID)
	}

	started := time.Now()
	dependents, err := a.engine.QueryByID(ctx, snap, query.TypeDependsOnMe, elementID, maxDepth)
	if err != nil {
		return Result{}, err
	}

	affectedFiles := make(map[string]struct{}, len(dependents))
	for _, d := range dependents {
		affectedFiles[d.File] = struct{}{}
	}

	affected := len(affectedFiles)
	if a.risk.CountMode == "elements" {
		affected = len(dependents)
	}

	result := Result{
		ElementID:     elementID,
		Operation:     op,
		AffectedCount: affected,
		RiskLevel:     a.classify(affected, op),
		RippleEffects: rippleEffects(target, dependents),
	}

	observability.ImpactDuration.Observe(time.Since(started).Seconds())
	return result, nil
}

// classify maps an affected count onto the configured risk table. Deleting
// is one tier riskier than modifying or refactoring.
func (a *Analyzer) classify(affected int, op Operation) RiskLevel {
	var level RiskLevel
	switch {
	case affected <= a.risk.LowMax:
		level = RiskLow
	case affected <= a.risk.MediumMax:
		level = RiskMedium
	case affected <= a.risk.HighMax:
		level = RiskHigh
	default:
		level = RiskCritical
	}

	if op == OpDelete {
		level = level.escalate()
	}
	return level
}

func rippleEffects(target snapshot.CodeElement, dependents []query.RelationshipRecord) []RippleEffect {
	effects := make([]RippleEffect, 0, len(dependents))
	for _, d := range dependents {
		effect := RippleEffect{File: d.File, Impact: "indirect dependency", Severity: "minor"}
		if d.Depth == 1 {
			effect.Impact = "direct call"
			if target.Exported {
				effect.Severity = "breaking"
			} else {
				effect.Severity = "major"
			}
		}
		effects = append(effects, effect)
	}
	return effects
}
