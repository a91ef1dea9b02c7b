// Package health provides health checking functionality for the pharmacology API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/pharmacology-api/contentparser"
	"github.com/giygas/pharmacology-api/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore     interfaces.DataStore
	auditInterval time.Duration
}

// NewHealthChecker creates a new health checker with injected dependencies.
// auditInterval is the period of the content audit job.
func NewHealthChecker(dataStore interfaces.DataStore, auditInterval time.Duration) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore:     dataStore,
		auditInterval: auditInterval,
	}
}

// HealthCheck returns HTTP-specific health data.
// Content read from a directory is reloaded on every audit, so it is stale
// once two audits in a row failed to publish a new catalog.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	catalog := h.dataStore.GetCatalog()
	source := h.dataStore.GetContentSource()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()
	ready := h.dataStore.IsReady()

	medications := catalog.Medications().Len()
	mappings := catalog.Targets().Len()
	dataAge := time.Since(lastUpdate)
	reloadable := source != "" && source != contentparser.EmbeddedSource

	switch {
	case !ready:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case medications == 0 || mappings == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case reloadable && h.auditInterval > 0 && dataAge > 2*h.auditInterval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_update":     lastUpdate.Format(time.RFC3339),
		"data_age_hours":  math.Round(dataAge.Hours()*10) / 10,
		"source":          source,
		"ready":           ready,
		"is_updating":     isUpdating,
		"next_audit":      h.CalculateNextAudit().Format(time.RFC3339),
		"medications":     medications,
		"target_mappings": mappings,
		"interactions":    catalog.Interactions().Len(),
	}

	return status, data, httpStatus
}

// CalculateNextAudit returns the next scheduled content audit.
// Audits run every auditInterval starting from the server start time.
func (h *HealthCheckerImpl) CalculateNextAudit() time.Time {
	now := time.Now()
	if h.auditInterval <= 0 {
		return now
	}

	start := h.dataStore.GetServerStartTime()
	if start.IsZero() || start.After(now) {
		return now.Add(h.auditInterval)
	}

	elapsed := now.Sub(start)
	periods := elapsed/h.auditInterval + 1
	return start.Add(periods * h.auditInterval)
}
