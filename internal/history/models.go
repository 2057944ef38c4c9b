package history

import "time"

const SchemaVersion = 1

// LoadStats is one row of load history: the shape of a project's snapshot at
// the moment it was loaded. The latest row supplies the "old total" when a
// fresh load is checked for drift.
type LoadStats struct {
	ProjectKey    string    `json:"project_key"`
	Timestamp     time.Time `json:"timestamp"`
	ElementCount  int       `json:"element_count"`
	EdgeCount     int       `json:"edge_count"`
	FileCount     int       `json:"file_count"`
	ExportedCount int       `json:"exported_count"`
}
