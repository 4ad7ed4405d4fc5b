package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker tracks the outcome of the most recent pipeline run
// and serves it as a health endpoint for surrounding tooling.
type HealthChecker struct {
	mu         sync.RWMutex
	lastRun    time.Time
	lastScore  float64
	lastStatus string
	errors     []string
}

// HealthStatus is the JSON payload of the health endpoint.
type HealthStatus struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	LastRun      time.Time `json:"last_run"`
	QualityScore float64   `json:"quality_score"`
	Uptime       string    `json:"uptime"`
	Errors       []string  `json:"errors,omitempty"`
}

// NewHealthChecker creates a health checker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{errors: make([]string, 0), lastStatus: "idle"}
}

// RecordRun updates the checker after a pipeline run.
func (h *HealthChecker) RecordRun(status string, score float64, runErr error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = time.Now()
	h.lastStatus = status
	h.lastScore = score
	if runErr != nil {
		h.errors = append(h.errors, runErr.Error())
		if len(h.errors) > 10 {
			h.errors = h.errors[len(h.errors)-10:]
		}
	}
}

// ServeHTTP serves the health endpoint.
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.lastStatus == "failed" {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:       status,
		Timestamp:    time.Now(),
		LastRun:      h.lastRun,
		QualityScore: h.lastScore,
		Uptime:       time.Since(startTime).String(),
		Errors:       h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
