package snapshot

import (
	"log/slog"
	"time"

	coreerrors "crossref/internal/core/errors"
)

// Snapshot is the loaded graph state for one project at one point in time.
// It is immutable after construction; a reload produces a new Snapshot that
// replaces the old one wholesale, so concurrent readers never need a lock.
type Snapshot struct {
	ProjectID string
	LoadedAt  time.Time

	Elements     map[string]CodeElement
	Edges        map[string][]string
	ReverseEdges map[string][]string

	// order preserves document order of element ids, giving FindByName a
	// deterministic first match.
	order []string
}

type rawDocument struct {
	Elements []CodeElement       `json:"elements"`
	Edges    map[string][]string `json:"edges"`
}

// New builds a snapshot directly from in-memory elements and edges, deriving
// the reverse index. Producers that do not go through the on-disk load
// contract (and tests) use this; Store.Load validates documents first and
// then delegates here.
func New(projectID string, elements []CodeElement, edges map[string][]string) (*Snapshot, error) {
	return newSnapshot(projectID, rawDocument{Elements: elements, Edges: edges})
}

// newSnapshot builds the immutable aggregate, deriving the reverse index by
// a single pass over the edge set. Duplicate element ids are a corrupt
// document.
func newSnapshot(projectID string, doc rawDocument) (*Snapshot, error) {
	elements := make(map[string]CodeElement, len(doc.Elements))
	order := make([]string, 0, len(doc.Elements))
	for _, el := range doc.Elements {
		if _, dup := elements[el.ID]; dup {
			return nil, coreerrors.Newf(coreerrors.CodeCorruptSnapshot, "duplicate element id %q", el.ID)
		}
		elements[el.ID] = el
		order = append(order, el.ID)
	}

	edges := make(map[string][]string, len(doc.Edges))
	reverse := make(map[string][]string)
	for from, targets := range doc.Edges {
		edges[from] = append([]string(nil), targets...)
		for _, to := range targets {
			reverse[to] = append(reverse[to], from)
		}
	}

	return &Snapshot{
		ProjectID:    projectID,
		LoadedAt:     time.Now().UTC(),
		Elements:     elements,
		Edges:        edges,
		ReverseEdges: reverse,
		order:        order,
	}, nil
}

func (s *Snapshot) ElementCount() int {
	return len(s.Elements)
}

func (s *Snapshot) EdgeCount() int {
	n := 0
	for _, targets := range s.Edges {
		n += len(targets)
	}
	return n
}

// Element looks up an element by its fully qualified id. This is the precise
// alternative to FindByName.
func (s *Snapshot) Element(id string) (CodeElement, bool) {
	el, ok := s.Elements[id]
	return el, ok
}

// FindByName returns the first element with the given short name, in document
// order. Names are not unique across files; when the name is ambiguous the
// first match wins and a warning is logged. Callers needing precision should
// resolve the fully qualified id instead.
func (s *Snapshot) FindByName(name string) (CodeElement, bool) {
	var (
		found   CodeElement
		matches int
	)
	for _, id := range s.order {
		el := s.Elements[id]
		if el.Name != name {
			continue
		}
		if matches == 0 {
			found = el
		}
		matches++
	}
	if matches == 0 {
		return CodeElement{}, false
	}
	if matches > 1 {
		slog.Warn("ambiguous element name, using first match",
			"project", s.ProjectID,
			"name", name,
			"matches", matches,
			"chosen", found.ID)
	}
	return found, true
}

// Files returns the number of distinct files contributing elements.
func (s *Snapshot) Files() int {
	seen := make(map[string]struct{}, len(s.Elements))
	for _, el := range s.Elements {
		seen[el.File] = struct{}{}
	}
	return len(seen)
}

// ExportedCount returns the number of exported elements.
func (s *Snapshot) ExportedCount() int {
	n := 0
	for _, el := range s.Elements {
		if el.Exported {
			n++
		}
	}
	return n
}
