package snapshot

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	coreerrors "crossref/internal/core/errors"
	"crossref/internal/shared/observability"
)

// Store caches one immutable Snapshot per project and answers reloads with an
// atomic swap: a new snapshot is fully constructed, reverse index included,
// before it replaces the old one.
type Store struct {
	dir string

	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewStore creates a store reading snapshot documents from dir, one
// <projectID>.json per project.
func NewStore(dir string) *Store {
	return &Store{
		dir:       dir,
		snapshots: make(map[string]*Snapshot),
	}
}

// Get returns the cached snapshot for projectID, loading it on first access.
func (s *Store) Get(ctx context.Context, projectID string) (*Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.snapshots[projectID]
	s.mu.RUnlock()
	if ok {
		return snap, nil
	}
	return s.Load(ctx, projectID)
}

// Load reads, validates and indexes the snapshot document for projectID and
// publishes it, replacing any cached snapshot. Nothing is published when any
// step fails.
func (s *Store) Load(ctx context.Context, projectID string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateProjectID(projectID); err != nil {
		return nil, err
	}

	started := time.Now()
	path := filepath.Join(s.dir, projectID+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, coreerrors.Newf(coreerrors.CodeSnapshotNotFound,
				"no snapshot document for project %q", projectID)
		}
		return nil, coreerrors.Wrap(err, coreerrors.CodeInternal, "read snapshot document")
	}

	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeCorruptSnapshot, "snapshot document is not valid JSON")
	}
	if err := validateDocument(generic); err != nil {
		return nil, coreerrors.AddContext(err, coreerrors.CtxProject, projectID)
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CodeCorruptSnapshot, "decode snapshot document")
	}

	snap, err := newSnapshot(projectID, doc)
	if err != nil {
		return nil, coreerrors.AddContext(err, coreerrors.CtxProject, projectID)
	}

	s.mu.Lock()
	s.snapshots[projectID] = snap
	s.mu.Unlock()

	observability.SnapshotReloadsTotal.Inc()
	observability.SnapshotLoadDuration.WithLabelValues(projectID).Observe(time.Since(started).Seconds())
	observability.SnapshotElements.WithLabelValues(projectID).Set(float64(snap.ElementCount()))
	observability.SnapshotEdges.WithLabelValues(projectID).Set(float64(snap.EdgeCount()))

	slog.Info("snapshot loaded",
		"project", projectID,
		"elements", snap.ElementCount(),
		"edges", snap.EdgeCount(),
		"duration", time.Since(started))

	return snap, nil
}

// Invalidate drops the cached snapshot so the next Get reloads from disk.
// It is a no-op for unknown projects.
func (s *Store) Invalidate(projectID string) {
	s.mu.Lock()
	delete(s.snapshots, projectID)
	s.mu.Unlock()
}

// Cached reports whether a snapshot for projectID is currently published.
func (s *Store) Cached(projectID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.snapshots[projectID]
	return ok
}

// Projects returns the ids of all currently cached projects.
func (s *Store) Projects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		out = append(out, id)
	}
	return out
}

// ProjectForPath maps a snapshot document path back to its project id, or ""
// when the path is not a snapshot document under the store directory.
func (s *Store) ProjectForPath(path string) string {
	if filepath.Ext(path) != ".json" {
		return ""
	}
	dir := filepath.Dir(path)
	if filepath.Clean(dir) != filepath.Clean(s.dir) {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(path), ".json")
}

func validateProjectID(projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return coreerrors.New(coreerrors.CodeInvalidParameter, "project id must not be empty")
	}
	if strings.ContainsAny(projectID, `/\`) || projectID == "." || projectID == ".." {
		return coreerrors.Newf(coreerrors.CodeInvalidParameter, "project id %q must not contain path separators", projectID)
	}
	return nil
}
