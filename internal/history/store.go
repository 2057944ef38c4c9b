package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Store persists one LoadStats row per successful snapshot load.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record upserts the stats row for (project, timestamp).
func (s *Store) Record(stats LoadStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeKey(stats.ProjectKey)
	ts := stats.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.Exec(`
INSERT INTO load_stats (project_key, ts_utc, element_count, edge_count, file_count, exported_count)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(project_key, ts_utc) DO UPDATE SET
  element_count=excluded.element_count,
  edge_count=excluded.edge_count,
  file_count=excluded.file_count,
  exported_count=excluded.exported_count
`,
		key,
		ts.UTC().Format(time.RFC3339Nano),
		stats.ElementCount,
		stats.EdgeCount,
		stats.FileCount,
		stats.ExportedCount,
	)
	if err != nil {
		return fmt.Errorf("record load stats: %w", err)
	}
	return nil
}

// Latest returns the most recent stats row for the project. The second
// return value is false when the project has no history yet.
func (s *Store) Latest(projectKey string) (LoadStats, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
SELECT project_key, ts_utc, element_count, edge_count, file_count, exported_count
FROM load_stats
WHERE project_key = ?
ORDER BY ts_utc DESC
LIMIT 1
`, normalizeKey(projectKey))

	stats, err := scanStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return LoadStats{}, false, nil
	}
	if err != nil {
		return LoadStats{}, false, fmt.Errorf("load latest stats: %w", err)
	}
	return stats, true, nil
}

// History returns all stats rows for the project at or after since, oldest
// first. A zero since returns everything.
func (s *Store) History(projectKey string, since time.Time) ([]LoadStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT project_key, ts_utc, element_count, edge_count, file_count, exported_count
FROM load_stats
WHERE project_key = ?
`
	args := []any{normalizeKey(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var out []LoadStats
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, stats)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep rows per project and deletes the rest,
// returning the number of deleted rows.
func (s *Store) Prune(projectKey string, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	res, err := s.db.Exec(`
DELETE FROM load_stats
WHERE project_key = ?
  AND ts_utc NOT IN (
    SELECT ts_utc FROM load_stats
    WHERE project_key = ?
    ORDER BY ts_utc DESC
    LIMIT ?
  )
`, normalizeKey(projectKey), normalizeKey(projectKey), keep)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStats(row rowScanner) (LoadStats, error) {
	var (
		stats LoadStats
		ts    string
	)
	if err := row.Scan(&stats.ProjectKey, &ts, &stats.ElementCount, &stats.EdgeCount, &stats.FileCount, &stats.ExportedCount); err != nil {
		return LoadStats{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return LoadStats{}, fmt.Errorf("parse stats timestamp %q: %w", ts, err)
	}
	stats.Timestamp = parsed
	return stats, nil
}

func normalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "default"
	}
	return key
}
