package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RecordAndLatest(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := []LoadStats{
		{ProjectKey: "demo", Timestamp: base, ElementCount: 100, EdgeCount: 250, FileCount: 12, ExportedCount: 30},
		{ProjectKey: "demo", Timestamp: base.Add(time.Hour), ElementCount: 110, EdgeCount: 260, FileCount: 13, ExportedCount: 31},
		{ProjectKey: "other", Timestamp: base, ElementCount: 7, EdgeCount: 3, FileCount: 2, ExportedCount: 1},
	}
	for _, r := range rows {
		if err := store.Record(r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	latest, ok, err := store.Latest("demo")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !ok {
		t.Fatal("expected history for demo")
	}
	if latest.ElementCount != 110 || !latest.Timestamp.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected latest row: %+v", latest)
	}
}

func TestStore_LatestMissingProject(t *testing.T) {
	store := openTestStore(t)
	_, ok, err := store.Latest("ghost")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if ok {
		t.Fatal("expected no history for unknown project")
	}
}

func TestStore_RecordUpsert(t *testing.T) {
	store := openTestStore(t)
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := store.Record(LoadStats{ProjectKey: "demo", Timestamp: ts, ElementCount: 5}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record(LoadStats{ProjectKey: "demo", Timestamp: ts, ElementCount: 9}); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	latest, _, err := store.Latest("demo")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ElementCount != 9 {
		t.Fatalf("expected upsert to win, got %d", latest.ElementCount)
	}
}

func TestStore_HistorySinceAndPrune(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		err := store.Record(LoadStats{
			ProjectKey:   "demo",
			Timestamp:    base.Add(time.Duration(i) * time.Hour),
			ElementCount: 100 + i,
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	all, err := store.History("demo", time.Time{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(all))
	}
	if all[0].ElementCount != 100 || all[4].ElementCount != 104 {
		t.Fatalf("expected oldest-first ordering: %+v", all)
	}

	since, err := store.History("demo", base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("history since: %v", err)
	}
	if len(since) != 2 {
		t.Fatalf("expected 2 rows since cutoff, got %d", len(since))
	}

	deleted, err := store.Prune("demo", 2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 pruned rows, got %d", deleted)
	}
	remaining, err := store.History("demo", time.Time{})
	if err != nil {
		t.Fatalf("history after prune: %v", err)
	}
	if len(remaining) != 2 || remaining[1].ElementCount != 104 {
		t.Fatalf("expected newest rows to survive prune: %+v", remaining)
	}
}

func TestStore_DefaultProjectKey(t *testing.T) {
	store := openTestStore(t)
	if err := store.Record(LoadStats{ElementCount: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	_, ok, err := store.Latest("")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !ok {
		t.Fatal("expected blank keys to normalize to the default project")
	}
}
