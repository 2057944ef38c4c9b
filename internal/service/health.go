package service

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// Health reports component status for the /health endpoint.
func (s *Service) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	projects := s.store.Projects()
	status.Components["store"] = fmt.Sprintf("ok (%d cached projects)", len(projects))

	if s.history != nil {
		status.Components["history"] = "ok"
	} else if s.cfg.DB.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	} else {
		status.Components["history"] = "disabled"
	}

	status.Components["pattern_cache"] = fmt.Sprintf("ok (%d entries)", s.patterns.Len())

	return status
}
