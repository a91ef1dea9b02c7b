package health

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/giygas/pharmacology-api/contentparser"
	"github.com/giygas/pharmacology-api/contentparser/entities"
	"github.com/giygas/pharmacology-api/interfaces"
	"github.com/giygas/pharmacology-api/stores"
)

// MockHealthDataStore for testing
type MockHealthDataStore struct {
	catalog     *stores.Catalog
	source      string
	lastUpdated time.Time
	startTime   time.Time
	isUpdating  bool
	ready       bool
}

var _ interfaces.DataStore = (*MockHealthDataStore)(nil)

func (m *MockHealthDataStore) GetCatalog() *stores.Catalog {
	if m.catalog == nil {
		return stores.EmptyCatalog()
	}
	return m.catalog
}

func (m *MockHealthDataStore) GetContentSource() string      { return m.source }
func (m *MockHealthDataStore) GetLastUpdated() time.Time     { return m.lastUpdated }
func (m *MockHealthDataStore) IsUpdating() bool              { return m.isUpdating }
func (m *MockHealthDataStore) GetServerStartTime() time.Time { return m.startTime }
func (m *MockHealthDataStore) IsReady() bool                 { return m.ready }

func (m *MockHealthDataStore) WaitReady(ctx context.Context) error { return nil }

func (m *MockHealthDataStore) UpdateCatalog(catalog *stores.Catalog, source string) {
	// Not used in health tests
}

func (m *MockHealthDataStore) BeginUpdate() bool { return true }
func (m *MockHealthDataStore) EndUpdate()        {}

func loadedStore(t testing.TB) *MockHealthDataStore {
	t.Helper()
	catalog, err := contentparser.NewEmbeddedParser().Load()
	if err != nil {
		t.Fatalf("failed to load embedded content: %v", err)
	}
	return &MockHealthDataStore{
		catalog:     catalog,
		source:      contentparser.EmbeddedSource,
		lastUpdated: time.Now().Add(-1 * time.Hour),
		startTime:   time.Now().Add(-1 * time.Hour),
		ready:       true,
	}
}

func TestNewHealthChecker(t *testing.T) {
	healthChecker := NewHealthChecker(&MockHealthDataStore{}, time.Hour)

	if healthChecker == nil {
		t.Fatal("NewHealthChecker returned nil")
	}

	if _, ok := healthChecker.(*HealthCheckerImpl); !ok {
		t.Error("NewHealthChecker should return *HealthCheckerImpl")
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	healthChecker := NewHealthChecker(loadedStore(t), 6*time.Hour)
	status, details, httpStatus := healthChecker.HealthCheck()

	if status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", status)
	}
	if httpStatus != http.StatusOK {
		t.Errorf("Expected HTTP 200, got %d", httpStatus)
	}

	requiredFields := []string{
		"last_update", "data_age_hours", "source", "ready", "is_updating",
		"next_audit", "medications", "target_mappings", "interactions",
	}
	for _, field := range requiredFields {
		if _, ok := details[field]; !ok {
			t.Errorf("Details should contain '%s'", field)
		}
	}

	if details["medications"] != 16 {
		t.Errorf("Expected 16 medications, got %v", details["medications"])
	}
	if details["target_mappings"] != 16 {
		t.Errorf("Expected 16 target mappings, got %v", details["target_mappings"])
	}
	if details["interactions"] != 13 {
		t.Errorf("Expected 13 interactions, got %v", details["interactions"])
	}
	if details["source"] != contentparser.EmbeddedSource {
		t.Errorf("Expected embedded source, got %v", details["source"])
	}
}

func TestHealthCheck_Statuses(t *testing.T) {
	mappingOnly, err := stores.NewTargetMap([]entities.TargetMapping{{
		MedicationID: "metoprolol",
		Primary:      []entities.Target{{Organ: "Heart", Region: "body.torso.thorax.heart"}},
	}})
	if err != nil {
		t.Fatalf("failed to build target map: %v", err)
	}

	tests := []struct {
		name       string
		modify     func(m *MockHealthDataStore)
		status     string
		httpStatus int
	}{
		{
			name:       "not ready",
			modify:     func(m *MockHealthDataStore) { m.ready = false },
			status:     "unhealthy",
			httpStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "empty catalog",
			modify:     func(m *MockHealthDataStore) { m.catalog = stores.EmptyCatalog() },
			status:     "unhealthy",
			httpStatus: http.StatusServiceUnavailable,
		},
		{
			name: "no medication identities",
			modify: func(m *MockHealthDataStore) {
				m.catalog = stores.NewCatalog(mappingOnly, nil, nil, nil, nil, nil, nil)
			},
			status:     "unhealthy",
			httpStatus: http.StatusServiceUnavailable,
		},
		{
			name: "stale directory content",
			modify: func(m *MockHealthDataStore) {
				m.source = "/srv/content"
				m.lastUpdated = time.Now().Add(-13 * time.Hour)
			},
			status:     "degraded",
			httpStatus: http.StatusServiceUnavailable,
		},
		{
			name: "fresh directory content",
			modify: func(m *MockHealthDataStore) {
				m.source = "/srv/content"
				m.lastUpdated = time.Now().Add(-7 * time.Hour)
			},
			status:     "healthy",
			httpStatus: http.StatusOK,
		},
		{
			name:       "old embedded content never goes stale",
			modify:     func(m *MockHealthDataStore) { m.lastUpdated = time.Now().Add(-72 * time.Hour) },
			status:     "healthy",
			httpStatus: http.StatusOK,
		},
		{
			name:       "updating",
			modify:     func(m *MockHealthDataStore) { m.isUpdating = true },
			status:     "healthy",
			httpStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := loadedStore(t)
			tt.modify(store)

			status, details, httpStatus := NewHealthChecker(store, 6*time.Hour).HealthCheck()

			if status != tt.status {
				t.Errorf("Expected status '%s', got '%s'", tt.status, status)
			}
			if httpStatus != tt.httpStatus {
				t.Errorf("Expected HTTP %d, got %d", tt.httpStatus, httpStatus)
			}
			if details["is_updating"] != store.isUpdating {
				t.Errorf("Expected is_updating %v, got %v", store.isUpdating, details["is_updating"])
			}
		})
	}
}

func TestHealthCheck_DataAge(t *testing.T) {
	store := loadedStore(t)
	store.lastUpdated = time.Now().Add(-25 * time.Hour)

	_, details, _ := NewHealthChecker(store, 6*time.Hour).HealthCheck()

	dataAge := details["data_age_hours"].(float64)
	if dataAge < 24 {
		t.Errorf("Expected data age > 24 hours, got %f", dataAge)
	}
}

func TestCalculateNextAudit(t *testing.T) {
	interval := 6 * time.Hour

	t.Run("from server start", func(t *testing.T) {
		start := time.Now().Add(-13 * time.Hour)
		store := &MockHealthDataStore{startTime: start}

		next := NewHealthChecker(store, interval).CalculateNextAudit()

		expected := start.Add(18 * time.Hour)
		if !next.Equal(expected) {
			t.Errorf("Expected next audit at %v, got %v", expected, next)
		}
	})

	t.Run("always in the future", func(t *testing.T) {
		store := &MockHealthDataStore{startTime: time.Now().Add(-6 * time.Hour)}

		next := NewHealthChecker(store, interval).CalculateNextAudit()

		if !next.After(time.Now()) {
			t.Errorf("Next audit %v should be in the future", next)
		}
		if next.After(time.Now().Add(interval)) {
			t.Errorf("Next audit %v should be within one interval", next)
		}
	})

	t.Run("zero start time", func(t *testing.T) {
		before := time.Now()
		next := NewHealthChecker(&MockHealthDataStore{}, interval).CalculateNextAudit()

		if next.Before(before.Add(interval)) {
			t.Errorf("Expected next audit one interval from now, got %v", next)
		}
	})

	t.Run("next audit is RFC3339 in details", func(t *testing.T) {
		_, details, _ := NewHealthChecker(loadedStore(t), interval).HealthCheck()

		nextAudit, ok := details["next_audit"].(string)
		if !ok || nextAudit == "" {
			t.Fatal("Next audit should not be empty")
		}
		if _, err := time.Parse(time.RFC3339, nextAudit); err != nil {
			t.Errorf("Next audit should be valid RFC3339 format: %v", err)
		}
	})
}

func BenchmarkHealthCheck(b *testing.B) {
	healthChecker := NewHealthChecker(loadedStore(b), 6*time.Hour)

	b.ResetTimer()
	for b.Loop() {
		healthChecker.HealthCheck()
	}
}
