package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"multinic-controller/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// HealthService provides health check functionality
type HealthService struct {
	mu                 sync.RWMutex
	clock              interfaces.Clock
	logger             *logrus.Logger
	startTime          time.Time
	dbHealthy          bool
	dbError            error
	reconciled         int64
	rejected           int64
	failedReconciles   int64
	leaseBatches       int64
	failedLeaseBatches int64
}

// HealthStatus represents health check status
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResponse is the health check response struct
type HealthResponse struct {
	Status     HealthStatus           `json:"status"`
	Timestamp  string                 `json:"timestamp"`
	LastCheck  string                 `json:"last_check"`
	Components map[string]interface{} `json:"components"`
	Statistics map[string]interface{} `json:"statistics"`
}

// NewHealthService creates a new HealthService
func NewHealthService(clock interfaces.Clock, logger *logrus.Logger) *HealthService {
	return &HealthService{
		clock:     clock,
		logger:    logger,
		startTime: clock.Now(),
		dbHealthy: false,
	}
}

// UpdateDBHealth updates the database health status
func (h *HealthService) UpdateDBHealth(healthy bool, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dbHealthy = healthy
	h.dbError = err
}

// RecordReconcile records the outcome of one reconciliation request
func (h *HealthService) RecordReconcile(err error, rejected bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case err == nil:
		h.reconciled++
	case rejected:
		h.rejected++
	default:
		h.failedReconciles++
	}
}

// RecordLeaseBatch records the outcome of one lease update batch
func (h *HealthService) RecordLeaseBatch(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err == nil {
		h.leaseBatches++
	} else {
		h.failedLeaseBatches++
	}
}

// ServeHTTP handles the HTTP health check endpoint
func (h *HealthService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := h.buildHealthResponse()

	// Set HTTP status code based on health status
	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("failed to encode health check response")
	}
}

// buildHealthResponse constructs the health check response
func (h *HealthService) buildHealthResponse() HealthResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.clock.Now()

	// Determine overall status
	status := h.determineOverallStatus()

	// Component status
	components := map[string]interface{}{
		"database": map[string]interface{}{
			"healthy": h.dbHealthy,
			"error":   h.formatError(h.dbError),
		},
	}

	// Statistics information
	statistics := map[string]interface{}{
		"reconciled":           h.reconciled,
		"rejected":             h.rejected,
		"failed_reconciles":    h.failedReconciles,
		"lease_batches":        h.leaseBatches,
		"failed_lease_batches": h.failedLeaseBatches,
		"uptime":               h.formatUptime(now.Sub(h.startTime)),
	}

	return HealthResponse{
		Status:     status,
		Timestamp:  now.Format(time.RFC3339),
		LastCheck:  now.Format(time.RFC3339),
		Components: components,
		Statistics: statistics,
	}
}

// determineOverallStatus determines the overall health status.
// Rejected requests are normal operation and do not degrade the status.
func (h *HealthService) determineOverallStatus() HealthStatus {
	// If database is unhealthy, overall status is unhealthy
	if !h.dbHealthy {
		return StatusUnhealthy
	}

	// If internal failures are 50% or more of handled requests, status is degraded
	handled := h.reconciled + h.failedReconciles
	if handled > 0 && h.failedReconciles > 0 {
		failureRate := float64(h.failedReconciles) / float64(handled)
		if failureRate >= 0.5 {
			return StatusDegraded
		}
	}

	return StatusHealthy
}

// formatError formats an error to string
func (h *HealthService) formatError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// formatUptime formats uptime duration to human-readable format
func (h *HealthService) formatUptime(duration time.Duration) string {
	days := int(duration.Hours()) / 24
	hours := int(duration.Hours()) % 24
	minutes := int(duration.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd%dh%dm", days, hours, minutes)
	} else if hours > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	} else {
		return fmt.Sprintf("%dm", minutes)
	}
}
