package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"crossref/internal/cache"
	"crossref/internal/core/config"
	coreerrors "crossref/internal/core/errors"
	"crossref/internal/drift"
	"crossref/internal/history"
	"crossref/internal/impact"
	"crossref/internal/query"
	"crossref/internal/shared/observability"
	"crossref/internal/shared/util"
	"crossref/internal/snapshot"
)

const patternFrequencyKind = "pattern-frequency"

// Service is the engine facade a protocol or CLI layer talks to. It owns the
// snapshot store, the query and impact engines, the optional load history,
// and the derived-analysis cache.
type Service struct {
	cfg      *config.Config
	store    *snapshot.Store
	engine   *query.Engine
	analyzer *impact.Analyzer
	history  *history.Store // nil when db is disabled
	patterns *cache.TTLCache[string, PatternFrequency]
	limiter  *util.ReloadLimiter
}

func New(cfg *config.Config, hist *history.Store) *Service {
	engine := query.NewEngine(cfg.Engine.DefaultDepth, cfg.Engine.MaxDepth)
	return &Service{
		cfg:      cfg,
		store:    snapshot.NewStore(cfg.Paths.SnapshotDir),
		engine:   engine,
		analyzer: impact.NewAnalyzer(engine, cfg.Risk),
		history:  hist,
		patterns: cache.NewTTLCache[string, PatternFrequency](),
		limiter:  util.NewReloadLimiter(cfg.Watch.ReloadRate, cfg.Watch.ReloadBurst),
	}
}

// Store exposes the snapshot store for hosts that need direct access (the
// watcher wiring maps file paths through it).
func (s *Service) Store() *snapshot.Store {
	return s.store
}

// Relationships answers one of the six relationship queries for a project.
func (s *Service) Relationships(ctx context.Context, projectID string, queryType query.Type, target string, maxDepth int) ([]query.RelationshipRecord, error) {
	ctx, span := observability.Tracer.Start(ctx, "service.Relationships", trace.WithAttributes(
		attribute.String("project", projectID),
		attribute.String("query_type", string(queryType)),
	))
	defer span.End()

	reqID := uuid.NewString()
	snap, err := s.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	records, err := s.engine.Query(ctx, snap, queryType, target, maxDepth)
	if err != nil {
		return nil, err
	}

	slog.Debug("relationship query answered",
		"request_id", reqID,
		"project", projectID,
		"query_type", queryType,
		"target", target,
		"results", len(records))
	return records, nil
}

// Impact analyzes the consequences of changing the named element. The target
// may be a fully qualified id or a short name; ids win when both match.
func (s *Service) Impact(ctx context.Context, projectID, target string, op impact.Operation, maxDepth int) (impact.Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "service.Impact", trace.WithAttributes(
		attribute.String("project", projectID),
		attribute.String("operation", string(op)),
	))
	defer span.End()

	snap, err := s.store.Get(ctx, projectID)
	if err != nil {
		return impact.Result{}, err
	}

	elementID := target
	if _, ok := snap.Element(target); !ok {
		el, ok := snap.FindByName(target)
		if !ok {
			return impact.Result{}, coreerrors.Newf(coreerrors.CodeElementNotFound,
				"element %q not found in snapshot", target)
		}
		elementID = el.ID
	}

	return s.analyzer.Analyze(ctx, snap, elementID, op, maxDepth)
}

// Reload drops the cached snapshot, loads a fresh one, and records its shape
// in the load history.
func (s *Service) Reload(ctx context.Context, projectID string) (*snapshot.Snapshot, error) {
	ctx, span := observability.Tracer.Start(ctx, "service.Reload", trace.WithAttributes(
		attribute.String("project", projectID),
	))
	defer span.End()

	s.store.Invalidate(projectID)
	s.patterns.Evict(patternKey(projectID))

	snap, err := s.store.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.recordHistory(snap)
	return snap, nil
}

// Drift reloads the project and reports how far the previously known shape
// had drifted. The baseline is the in-memory snapshot when one is cached,
// falling back to the latest history row; a project with neither has nothing
// to drift from and reports none.
func (s *Service) Drift(ctx context.Context, projectID string) (drift.Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "service.Drift", trace.WithAttributes(
		attribute.String("project", projectID),
	))
	defer span.End()

	var (
		prev      *snapshot.Snapshot
		prevStats history.LoadStats
		havePrev  bool
		haveStats bool
	)
	if s.store.Cached(projectID) {
		if cached, err := s.store.Get(ctx, projectID); err == nil {
			prev, havePrev = cached, true
		}
	}
	if !havePrev && s.history != nil {
		stats, ok, err := s.history.Latest(projectID)
		if err != nil {
			return drift.Result{}, coreerrors.Wrap(err, coreerrors.CodeInternal, "read load history")
		}
		prevStats, haveStats = stats, ok
	}

	curr, err := s.Reload(ctx, projectID)
	if err != nil {
		return drift.Result{}, err
	}

	switch {
	case havePrev:
		return drift.Diff(prev, curr), nil
	case haveStats:
		// Only totals survive in history, so the delta collapses into
		// adds or removes.
		added, removed := 0, 0
		if delta := curr.ElementCount() - prevStats.ElementCount; delta > 0 {
			added = delta
		} else {
			removed = -delta
		}
		return drift.Compute(prevStats.ElementCount, added, removed, 0), nil
	default:
		return drift.Compute(curr.ElementCount(), 0, 0, 0), nil
	}
}

// PatternFrequency returns derived element-pattern statistics, cached per
// project with a TTL. Concurrent misses may compute twice; the result is a
// pure function of the snapshot so the duplicate work is harmless.
func (s *Service) PatternFrequency(ctx context.Context, projectID string) (PatternFrequency, error) {
	ctx, span := observability.Tracer.Start(ctx, "service.PatternFrequency", trace.WithAttributes(
		attribute.String("project", projectID),
	))
	defer span.End()

	key := patternKey(projectID)
	if freq, ok := s.patterns.Get(key); ok {
		observability.PatternCacheHitsTotal.Inc()
		return freq, nil
	}
	observability.PatternCacheMissesTotal.Inc()

	snap, err := s.store.Get(ctx, projectID)
	if err != nil {
		return PatternFrequency{}, err
	}

	freq := computePatternFrequency(snap)
	s.patterns.Put(key, freq, s.cfg.Cache.TTL)
	return freq, nil
}

// HandleSnapshotChanges is the watcher callback: it maps changed document
// paths to projects and reloads each one, reporting drift. Reloads are rate
// limited so a rescan storm cannot thrash the store.
func (s *Service) HandleSnapshotChanges(ctx context.Context, paths []string) []drift.Result {
	results := make([]drift.Result, 0, len(paths))
	for _, path := range paths {
		projectID := s.store.ProjectForPath(path)
		if projectID == "" {
			continue
		}
		if !s.limiter.Allow() {
			slog.Warn("reload throttled", "project", projectID, "path", path)
			continue
		}

		result, err := s.Drift(ctx, projectID)
		if err != nil {
			if coreerrors.IsCode(err, coreerrors.CodeSnapshotNotFound) {
				// Document was removed; drop the stale snapshot.
				s.store.Invalidate(projectID)
				slog.Info("snapshot document removed", "project", projectID)
				continue
			}
			slog.Error("reload after change failed", "project", projectID, "error", err)
			continue
		}

		slog.Info("snapshot reloaded after upstream rescan",
			"project", projectID,
			"drift_pct", result.DriftPercentage,
			"severity", result.Severity)
		results = append(results, result)
	}
	return results
}

func (s *Service) recordHistory(snap *snapshot.Snapshot) {
	if s.history == nil {
		return
	}
	err := s.history.Record(history.LoadStats{
		ProjectKey:    snap.ProjectID,
		Timestamp:     snap.LoadedAt,
		ElementCount:  snap.ElementCount(),
		EdgeCount:     snap.EdgeCount(),
		FileCount:     snap.Files(),
		ExportedCount: snap.ExportedCount(),
	})
	if err != nil {
		slog.Warn("failed to record load history", "project", snap.ProjectID, "error", err)
	}
}

func patternKey(projectID string) string {
	return projectID + "/" + patternFrequencyKind
}

// PatternFrequency summarizes how element kinds are distributed across a
// snapshot: the raw material for "what does this codebase look like"
// answers.
type PatternFrequency struct {
	ProjectID     string                       `json:"project_id"`
	ComputedAt    time.Time                    `json:"computed_at"`
	TotalElements int                          `json:"total_elements"`
	ByType        map[snapshot.ElementType]int `json:"by_type"`
	ExportedRatio float64                      `json:"exported_ratio"`
	HotFiles      []FileElementCount           `json:"hot_files"`
}

type FileElementCount struct {
	File     string `json:"file"`
	Elements int    `json:"elements"`
}

const hotFileLimit = 10

func computePatternFrequency(snap *snapshot.Snapshot) PatternFrequency {
	byType := make(map[snapshot.ElementType]int)
	byFile := make(map[string]int)
	exported := 0

	for _, el := range snap.Elements {
		byType[el.Type]++
		byFile[el.File]++
		if el.Exported {
			exported++
		}
	}

	hot := make([]FileElementCount, 0, len(byFile))
	for file, n := range byFile {
		hot = append(hot, FileElementCount{File: file, Elements: n})
	}
	sort.Slice(hot, func(i, j int) bool {
		if hot[i].Elements == hot[j].Elements {
			return hot[i].File < hot[j].File
		}
		return hot[i].Elements > hot[j].Elements
	})
	if len(hot) > hotFileLimit {
		hot = hot[:hotFileLimit]
	}

	ratio := 0.0
	if snap.ElementCount() > 0 {
		ratio = float64(exported) / float64(snap.ElementCount())
	}

	return PatternFrequency{
		ProjectID:     snap.ProjectID,
		ComputedAt:    time.Now().UTC(),
		TotalElements: snap.ElementCount(),
		ByType:        byType,
		ExportedRatio: ratio,
		HotFiles:      hot,
	}
}
