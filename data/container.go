// Package data provides thread-safe storage of the content catalog.
// The DataContainer publishes whole catalog snapshots atomically so readers
// never observe a half-built set of stores.
package data

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giygas/pharmacology-api/interfaces"
	"github.com/giygas/pharmacology-api/logging"
	"github.com/giygas/pharmacology-api/stores"
)

// Compile-time checks
var (
	_ interfaces.DataStore      = (*DataContainer)(nil)
	_ interfaces.ContentCatalog = (*stores.Catalog)(nil)
)

// DataContainer holds the current catalog with atomic values for zero-downtime reloads
type DataContainer struct {
	catalog         atomic.Value // *stores.Catalog
	source          atomic.Value // string
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time

	ready     chan struct{}
	readyOnce sync.Once
}

// NewDataContainer creates a container holding an empty catalog.
// It is not ready until the first UpdateCatalog call.
func NewDataContainer() *DataContainer {
	dc := &DataContainer{ready: make(chan struct{})}
	dc.catalog.Store(stores.EmptyCatalog())
	dc.source.Store("")
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// GetCatalog returns the current snapshot. A snapshot is never mutated, so
// callers may keep it for the whole request.
func (dc *DataContainer) GetCatalog() *stores.Catalog {
	if v := dc.catalog.Load(); v != nil {
		if catalog, ok := v.(*stores.Catalog); ok && catalog != nil {
			return catalog
		}
	}

	logging.Warn("Catalog is empty or invalid")
	return stores.EmptyCatalog()
}

// GetContentSource returns where the current catalog was loaded from
func (dc *DataContainer) GetContentSource() string {
	if v, ok := dc.source.Load().(string); ok {
		return v
	}
	return ""
}

// GetLastUpdated returns the timestamp of the last catalog update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a reload is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// IsReady reports whether a catalog has been published
func (dc *DataContainer) IsReady() bool {
	select {
	case <-dc.ready:
		return true
	default:
		return false
	}
}

// WaitReady blocks until the first catalog is published or ctx is done
func (dc *DataContainer) WaitReady(ctx context.Context) error {
	select {
	case <-dc.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateCatalog atomically replaces the catalog. The first call releases
// every WaitReady caller.
func (dc *DataContainer) UpdateCatalog(catalog *stores.Catalog, source string) {
	if catalog == nil {
		logging.Warn("Ignoring nil catalog update", "source", source)
		return
	}

	// Atomic swap (zero downtime replacement)
	dc.catalog.Store(catalog)
	dc.source.Store(source)
	dc.lastUpdated.Store(time.Now())

	dc.readyOnce.Do(func() { close(dc.ready) })
}

// BeginUpdate marks the start of a reload.
// Returns true if the reload can proceed, false if another one is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
