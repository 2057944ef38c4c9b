package query

import (
	"context"
	"testing"

	coreerrors "crossref/internal/core/errors"
	"crossref/internal/snapshot"
)

func chainSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.New("demo",
		[]snapshot.CodeElement{
			{ID: "a.ts:1:A", Name: "A", Type: snapshot.TypeFunction, File: "a.ts", Line: 1, Exported: true},
			{ID: "b.ts:1:B", Name: "B", Type: snapshot.TypeFunction, File: "b.ts", Line: 1},
			{ID: "c.ts:1:C", Name: "C", Type: snapshot.TypeFunction, File: "c.ts", Line: 1},
		},
		map[string][]string{
			"a.ts:1:A": {"b.ts:1:B"},
			"b.ts:1:B": {"c.ts:1:C"},
		})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return snap
}

func targets(records []RelationshipRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.To)
	}
	return out
}

func TestQuery_ForwardDepths(t *testing.T) {
	snap := chainSnapshot(t)
	engine := NewEngine(3, 10)

	// depth 1 stops at B
	got, err := engine.Query(context.Background(), snap, TypeCalls, "A", 1)
	if err != nil {
		t.Fatalf("query depth 1: %v", err)
	}
	if len(got) != 1 || got[0].To != "b.ts:1:B" || got[0].Depth != 1 {
		t.Fatalf("unexpected depth-1 result: %+v", got)
	}

	// depth 2 reaches C, level order
	got, err = engine.Query(context.Background(), snap, TypeCalls, "A", 2)
	if err != nil {
		t.Fatalf("query depth 2: %v", err)
	}
	want := []string{"b.ts:1:B", "c.ts:1:C"}
	ts := targets(got)
	if len(ts) != 2 || ts[0] != want[0] || ts[1] != want[1] {
		t.Fatalf("unexpected depth-2 targets: %v", ts)
	}
	if got[1].Depth != 2 {
		t.Fatalf("expected C at depth 2, got %d", got[1].Depth)
	}
}

func TestQuery_Reverse(t *testing.T) {
	snap := chainSnapshot(t)
	engine := NewEngine(3, 10)

	got, err := engine.Query(context.Background(), snap, TypeCallsMe, "C", 2)
	if err != nil {
		t.Fatalf("reverse query: %v", err)
	}
	ts := targets(got)
	if len(ts) != 2 || ts[0] != "b.ts:1:B" || ts[1] != "a.ts:1:A" {
		t.Fatalf("expected [B, A], got %v", ts)
	}
	if got[0].Depth != 1 || got[1].Depth != 2 {
		t.Fatalf("unexpected depths: %+v", got)
	}
}

func TestQuery_DepthBound(t *testing.T) {
	snap := chainSnapshot(t)
	engine := NewEngine(3, 10)

	for d := 1; d <= 5; d++ {
		got, err := engine.Query(context.Background(), snap, TypeDependsOn, "A", d)
		if err != nil {
			t.Fatalf("query depth %d: %v", d, err)
		}
		for _, r := range got {
			if r.Depth > d {
				t.Errorf("depth %d query returned record at depth %d: %+v", d, r.Depth, r)
			}
		}
	}
}

func TestQuery_CycleTerminates(t *testing.T) {
	snap, err := snapshot.New("cyclic",
		[]snapshot.CodeElement{
			{ID: "a.ts:1:A", Name: "A", Type: snapshot.TypeFunction, File: "a.ts", Line: 1},
			{ID: "b.ts:1:B", Name: "B", Type: snapshot.TypeFunction, File: "b.ts", Line: 1},
		},
		map[string][]string{
			"a.ts:1:A": {"b.ts:1:B"},
			"b.ts:1:B": {"a.ts:1:A"},
		})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	engine := NewEngine(3, 10)
	got, err := engine.Query(context.Background(), snap, TypeCalls, "A", 5)
	if err != nil {
		t.Fatalf("cyclic query: %v", err)
	}
	if len(got) != 1 || got[0].To != "b.ts:1:B" {
		t.Fatalf("expected B exactly once, got %v", targets(got))
	}
}

func TestQuery_Idempotent(t *testing.T) {
	snap := chainSnapshot(t)
	engine := NewEngine(3, 10)

	first, err := engine.Query(context.Background(), snap, TypeImports, "A", 3)
	if err != nil {
		t.Fatalf("first query: %v", err)
	}
	second, err := engine.Query(context.Background(), snap, TypeImports, "A", 3)
	if err != nil {
		t.Fatalf("second query: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("result sets differ in size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("result %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestQuery_ElementNotFound(t *testing.T) {
	snap := chainSnapshot(t)
	engine := NewEngine(3, 10)

	_, err := engine.Query(context.Background(), snap, TypeCalls, "Ghost", 2)
	if !coreerrors.IsCode(err, coreerrors.CodeElementNotFound) {
		t.Fatalf("expected ELEMENT_NOT_FOUND, got %v", err)
	}
}

func TestQuery_InvalidParameters(t *testing.T) {
	snap := chainSnapshot(t)
	engine := NewEngine(3, 10)

	if _, err := engine.Query(context.Background(), snap, "explodes", "A", 2); !coreerrors.IsCode(err, coreerrors.CodeInvalidParameter) {
		t.Errorf("expected INVALID_PARAMETER for unknown query type, got %v", err)
	}
	if _, err := engine.Query(context.Background(), snap, TypeCalls, "A", -1); !coreerrors.IsCode(err, coreerrors.CodeInvalidParameter) {
		t.Errorf("expected INVALID_PARAMETER for negative depth, got %v", err)
	}
	if _, err := engine.Query(context.Background(), snap, TypeCalls, "A", 11); !coreerrors.IsCode(err, coreerrors.CodeInvalidParameter) {
		t.Errorf("expected INVALID_PARAMETER for depth over limit, got %v", err)
	}
}

func TestQuery_DefaultDepth(t *testing.T) {
	snap := chainSnapshot(t)
	engine := NewEngine(1, 10)

	// depth 0 selects the engine default (1), so only B comes back.
	got, err := engine.Query(context.Background(), snap, TypeCalls, "A", 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected default depth 1 to return one record, got %v", targets(got))
	}
}

func TestQuery_DanglingEdgeSkipped(t *testing.T) {
	snap, err := snapshot.New("ragged",
		[]snapshot.CodeElement{
			{ID: "a.ts:1:A", Name: "A", Type: snapshot.TypeFunction, File: "a.ts", Line: 1},
			{ID: "b.ts:1:B", Name: "B", Type: snapshot.TypeFunction, File: "b.ts", Line: 1},
		},
		map[string][]string{
			"a.ts:1:A": {"deleted.ts:9:Gone", "b.ts:1:B"},
		})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	engine := NewEngine(3, 10)
	got, err := engine.Query(context.Background(), snap, TypeCalls, "A", 3)
	if err != nil {
		t.Fatalf("query over dangling edge: %v", err)
	}
	if len(got) != 1 || got[0].To != "b.ts:1:B" {
		t.Fatalf("expected dangling target to be skipped, got %v", targets(got))
	}
}

func TestQuery_Cancelled(t *testing.T) {
	snap := chainSnapshot(t)
	engine := NewEngine(3, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Query(ctx, snap, TypeCalls, "A", 3); err == nil {
		t.Fatal("expected cancelled context to abort the query")
	}
}
