package data

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/giygas/pharmacology-api/contentparser/entities"
	"github.com/giygas/pharmacology-api/stores"
)

func testCatalog(t *testing.T, ids ...entities.MedicationID) *stores.Catalog {
	t.Helper()
	mappings := make([]entities.TargetMapping, len(ids))
	for i, id := range ids {
		mappings[i] = entities.TargetMapping{
			MedicationID: id,
			Primary:      []entities.Target{{Organ: "Heart", Region: "body.torso.thorax.heart"}},
		}
	}
	targets, err := stores.NewTargetMap(mappings)
	if err != nil {
		t.Fatalf("failed to build target map: %v", err)
	}
	return stores.NewCatalog(targets, nil, nil, nil, nil, nil, nil)
}

func TestNewDataContainer(t *testing.T) {
	dc := NewDataContainer()

	if dc == nil {
		t.Fatal("NewDataContainer returned nil")
	}

	if dc.IsUpdating() {
		t.Error("NewDataContainer should not be updating")
	}

	if dc.IsReady() {
		t.Error("NewDataContainer should not be ready")
	}

	if !dc.GetLastUpdated().IsZero() {
		t.Error("NewDataContainer should have zero lastUpdated time")
	}

	if dc.GetCatalog() == nil {
		t.Fatal("Catalog should never be nil")
	}

	if dc.GetCatalog().Targets().Len() != 0 {
		t.Error("NewDataContainer should have an empty catalog")
	}

	if dc.GetContentSource() != "" {
		t.Errorf("Expected empty source, got %q", dc.GetContentSource())
	}
}

func TestUpdateCatalog(t *testing.T) {
	dc := NewDataContainer()

	dc.UpdateCatalog(testCatalog(t, "metoprolol", "furosemide"), "embedded")

	if got := dc.GetCatalog().Targets().Len(); got != 2 {
		t.Errorf("Expected 2 mappings, got %d", got)
	}

	if _, ok := dc.GetCatalog().TargetMapping("metoprolol"); !ok {
		t.Error("Expected metoprolol to be mapped")
	}

	if dc.GetContentSource() != "embedded" {
		t.Errorf("Expected source embedded, got %q", dc.GetContentSource())
	}

	if dc.GetLastUpdated().IsZero() {
		t.Error("LastUpdated should be set after UpdateCatalog")
	}

	if !dc.IsReady() {
		t.Error("Container should be ready after the first update")
	}
}

func TestUpdateCatalogIgnoresNil(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateCatalog(testCatalog(t, "warfarin"), "embedded")

	dc.UpdateCatalog(nil, "/srv/content")

	if dc.GetContentSource() != "embedded" {
		t.Errorf("Nil update should keep the previous source, got %q", dc.GetContentSource())
	}
	if _, ok := dc.GetCatalog().TargetMapping("warfarin"); !ok {
		t.Error("Nil update should keep the previous catalog")
	}
}

func TestOldSnapshotIsUnchanged(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateCatalog(testCatalog(t, "warfarin"), "embedded")

	old := dc.GetCatalog()
	dc.UpdateCatalog(testCatalog(t, "ibuprofen"), "/srv/content")

	if _, ok := old.TargetMapping("warfarin"); !ok {
		t.Error("Held snapshot should still contain warfarin")
	}
	if _, ok := old.TargetMapping("ibuprofen"); ok {
		t.Error("Held snapshot should not see the new catalog")
	}
	if _, ok := dc.GetCatalog().TargetMapping("ibuprofen"); !ok {
		t.Error("Current snapshot should contain ibuprofen")
	}
}

func TestWaitReady(t *testing.T) {
	dc := NewDataContainer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := dc.WaitReady(ctx); err != context.DeadlineExceeded {
		t.Errorf("Expected deadline exceeded before the first update, got %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			errs <- dc.WaitReady(ctx)
		}()
	}

	dc.UpdateCatalog(testCatalog(t, "warfarin"), "embedded")
	// Second update must not close the channel again
	dc.UpdateCatalog(testCatalog(t, "warfarin"), "embedded")

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Expected waiters to be released, got %v", err)
		}
	}
}

func TestBeginUpdateEndUpdate(t *testing.T) {
	dc := NewDataContainer()

	if dc.IsUpdating() {
		t.Error("Should not be updating initially")
	}

	if !dc.BeginUpdate() {
		t.Error("BeginUpdate should return true first time")
	}

	if !dc.IsUpdating() {
		t.Error("Should be updating after BeginUpdate")
	}

	if dc.BeginUpdate() {
		t.Error("BeginUpdate should return false when already updating")
	}

	dc.EndUpdate()

	if dc.IsUpdating() {
		t.Error("Should not be updating after EndUpdate")
	}

	if !dc.BeginUpdate() {
		t.Error("BeginUpdate should return true after EndUpdate")
	}

	dc.EndUpdate()
}

func TestServerStartTime(t *testing.T) {
	dc := NewDataContainer()

	if !dc.GetServerStartTime().IsZero() {
		t.Error("Server start time should initially be zero")
	}

	now := time.Now()
	dc.SetServerStartTime(now)

	if !dc.GetServerStartTime().Equal(now) {
		t.Errorf("Expected start time %v, got %v", now, dc.GetServerStartTime())
	}
}

func TestConcurrentAccess(t *testing.T) {
	dc := NewDataContainer()
	dc.UpdateCatalog(testCatalog(t, "warfarin"), "embedded")

	var wg sync.WaitGroup

	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for range 100 {
				catalog := dc.GetCatalog()
				// Every snapshot is complete: it holds one mapping or the other
				if catalog.Targets().Len() != 1 {
					t.Errorf("reader %d saw a partial catalog", n)
					return
				}
				_ = dc.GetLastUpdated()
				_ = dc.GetContentSource()
			}
		}(i)
	}

	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				if dc.BeginUpdate() {
					dc.UpdateCatalog(testCatalog(t, "ibuprofen"), "reload")
					dc.EndUpdate()
				}
			}
		}()
	}

	wg.Wait()

	if dc.IsUpdating() {
		t.Error("No update should be in progress after all writers finished")
	}
}
