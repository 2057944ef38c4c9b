package query

import (
	"context"
	"log/slog"
	"sort"
	"time"

	coreerrors "crossref/internal/core/errors"
	"crossref/internal/shared/observability"
	"crossref/internal/snapshot"
)

const (
	// DepthLimit is the hard upper bound on traversal depth.
	DepthLimit = 10
)

// Engine answers bounded-depth relationship queries over a snapshot.
type Engine struct {
	defaultDepth int
	maxDepth     int
}

// NewEngine creates a query engine. defaultDepth applies when a query passes
// depth 0; maxDepth caps requested depths and is itself capped at DepthLimit.
func NewEngine(defaultDepth, maxDepth int) *Engine {
	if maxDepth <= 0 || maxDepth > DepthLimit {
		maxDepth = DepthLimit
	}
	if defaultDepth <= 0 || defaultDepth > maxDepth {
		defaultDepth = 3
	}
	return &Engine{defaultDepth: defaultDepth, maxDepth: maxDepth}
}

// Query resolves targetName and walks the graph breadth-first up to maxDepth
// hops. Results come back in level order, nearest relationships first. A
// depth of 0 selects the engine default; depths outside [1, maxDepth] are
// rejected before any traversal begins.
func (e *Engine) Query(ctx context.Context, snap *snapshot.Snapshot, queryType Type, targetName string, maxDepth int) ([]RelationshipRecord, error) {
	if !queryType.Valid() {
		return nil, coreerrors.Newf(coreerrors.CodeInvalidParameter, "unknown query type %q", queryType)
	}
	depth, err := e.resolveDepth(maxDepth)
	if err != nil {
		return nil, err
	}

	target, ok := snap.FindByName(targetName)
	if !ok {
		return nil, coreerrors.AddContext(
			coreerrors.Newf(coreerrors.CodeElementNotFound, "element %q not found in snapshot", targetName),
			coreerrors.CtxProject, snap.ProjectID)
	}

	started := time.Now()
	records, err := e.walk(ctx, snap, queryType, target.ID, depth)
	if err != nil {
		return nil, err
	}
	observability.QueryDuration.WithLabelValues(string(queryType)).Observe(time.Since(started).Seconds())
	return records, nil
}

// QueryByID is Query for callers that already hold a fully qualified id.
func (e *Engine) QueryByID(ctx context.Context, snap *snapshot.Snapshot, queryType Type, targetID string, maxDepth int) ([]RelationshipRecord, error) {
	if !queryType.Valid() {
		return nil, coreerrors.Newf(coreerrors.CodeInvalidParameter, "unknown query type %q", queryType)
	}
	depth, err := e.resolveDepth(maxDepth)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.Element(targetID); !ok {
		return nil, coreerrors.Newf(coreerrors.CodeElementNotFound,
			"element id %q not found in snapshot", targetID)
	}
	return e.walk(ctx, snap, queryType, targetID, depth)
}

func (e *Engine) resolveDepth(maxDepth int) (int, error) {
	if maxDepth == 0 {
		return e.defaultDepth, nil
	}
	if maxDepth < 1 || maxDepth > e.maxDepth {
		return 0, coreerrors.Newf(coreerrors.CodeInvalidParameter,
			"max_depth must be between 1 and %d, got %d", e.maxDepth, maxDepth)
	}
	return maxDepth, nil
}

// walk is the single traversal primitive behind all six query types. The
// visited set makes it cycle-safe; edges pointing at ids absent from the
// element map are data hygiene problems, skipped and counted, never fatal.
func (e *Engine) walk(ctx context.Context, snap *snapshot.Snapshot, queryType Type, startID string, maxDepth int) ([]RelationshipRecord, error) {
	adjacency := snap.Edges
	if queryType.Reverse() {
		adjacency = snap.ReverseEdges
	}

	visited := map[string]bool{startID: true}
	frontier := []string{startID}
	records := make([]RelationshipRecord, 0)

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := make([]string, 0)
		for _, id := range frontier {
			neighbors := append([]string(nil), adjacency[id]...)
			sort.Strings(neighbors)
			for _, to := range neighbors {
				if visited[to] {
					continue
				}
				visited[to] = true

				el, ok := snap.Element(to)
				if !ok {
					observability.DanglingEdgesTotal.Inc()
					slog.Debug("skipping dangling edge",
						"project", snap.ProjectID, "from", id, "to", to)
					continue
				}

				records = append(records, RelationshipRecord{
					From:  id,
					To:    to,
					File:  el.File,
					Line:  el.Line,
					Depth: depth,
				})
				next = append(next, to)
			}
		}
		frontier = next
	}

	return records, nil
}
