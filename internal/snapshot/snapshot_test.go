package snapshot

import (
	"testing"
)

func buildTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	doc := rawDocument{
		Elements: []CodeElement{
			{ID: "a.ts:1:A", Name: "A", Type: TypeFunction, File: "a.ts", Line: 1, Exported: true},
			{ID: "b.ts:1:B", Name: "B", Type: TypeFunction, File: "b.ts", Line: 1},
			{ID: "c.ts:1:C", Name: "C", Type: TypeComponent, File: "c.ts", Line: 1},
			{ID: "d.ts:9:B", Name: "B", Type: TypeMethod, File: "d.ts", Line: 9},
		},
		Edges: map[string][]string{
			"a.ts:1:A": {"b.ts:1:B"},
			"b.ts:1:B": {"c.ts:1:C"},
		},
	}
	snap, err := newSnapshot("demo", doc)
	if err != nil {
		t.Fatalf("newSnapshot: %v", err)
	}
	return snap
}

func TestSnapshot_ReverseIndexSymmetry(t *testing.T) {
	snap := buildTestSnapshot(t)

	// if y is in edges[x] then x must be in reverseEdges[y], and vice versa
	for x, targets := range snap.Edges {
		for _, y := range targets {
			found := false
			for _, back := range snap.ReverseEdges[y] {
				if back == x {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("edge %s -> %s missing from reverse index", x, y)
			}
		}
	}
	for y, sources := range snap.ReverseEdges {
		for _, x := range sources {
			found := false
			for _, fwd := range snap.Edges[x] {
				if fwd == y {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("reverse edge %s <- %s has no forward edge", y, x)
			}
		}
	}
}

func TestSnapshot_DuplicateIDRejected(t *testing.T) {
	doc := rawDocument{
		Elements: []CodeElement{
			{ID: "a.ts:1:A", Name: "A", Type: TypeFunction, File: "a.ts", Line: 1},
			{ID: "a.ts:1:A", Name: "A", Type: TypeFunction, File: "a.ts", Line: 1},
		},
		Edges: map[string][]string{},
	}
	if _, err := newSnapshot("demo", doc); err == nil {
		t.Fatal("expected duplicate element id to be rejected")
	}
}

func TestSnapshot_FindByName(t *testing.T) {
	snap := buildTestSnapshot(t)

	el, ok := snap.FindByName("A")
	if !ok || el.ID != "a.ts:1:A" {
		t.Fatalf("unexpected lookup result: %+v ok=%v", el, ok)
	}

	// "B" exists in two files; document order decides the winner.
	el, ok = snap.FindByName("B")
	if !ok || el.ID != "b.ts:1:B" {
		t.Fatalf("expected first match b.ts:1:B, got %+v", el)
	}

	if _, ok := snap.FindByName("Nope"); ok {
		t.Fatal("expected miss for unknown name")
	}
}

func TestSnapshot_Counts(t *testing.T) {
	snap := buildTestSnapshot(t)

	if snap.ElementCount() != 4 {
		t.Errorf("expected 4 elements, got %d", snap.ElementCount())
	}
	if snap.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", snap.EdgeCount())
	}
	if snap.Files() != 4 {
		t.Errorf("expected 4 files, got %d", snap.Files())
	}
	if snap.ExportedCount() != 1 {
		t.Errorf("expected 1 exported element, got %d", snap.ExportedCount())
	}
}
