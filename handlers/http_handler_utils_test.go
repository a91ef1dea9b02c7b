package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/pharmacology-api/contentparser"
	"github.com/giygas/pharmacology-api/interfaces"
	"github.com/giygas/pharmacology-api/stores"
	"github.com/giygas/pharmacology-api/validation"
)

// ============================================================================
// TEST DATA
// ============================================================================

var (
	embeddedOnce    sync.Once
	embeddedCatalog *stores.Catalog
	embeddedErr     error
)

// loadCatalog returns the embedded content, parsed once per test binary
func loadCatalog(tb testing.TB) *stores.Catalog {
	tb.Helper()
	embeddedOnce.Do(func() {
		embeddedCatalog, embeddedErr = contentparser.NewEmbeddedParser().Load()
	})
	if embeddedErr != nil {
		tb.Fatalf("Failed to load embedded content: %v", embeddedErr)
	}
	return embeddedCatalog
}

// ============================================================================
// MOCK DATA STORE
// ============================================================================

type MockDataStore struct {
	catalog     *stores.Catalog
	source      string
	lastUpdated time.Time
	startTime   time.Time
	updating    bool
}

func (m *MockDataStore) GetCatalog() *stores.Catalog {
	if m.catalog == nil {
		return stores.EmptyCatalog()
	}
	return m.catalog
}

func (m *MockDataStore) GetContentSource() string                  { return m.source }
func (m *MockDataStore) GetLastUpdated() time.Time                 { return m.lastUpdated }
func (m *MockDataStore) IsUpdating() bool                          { return m.updating }
func (m *MockDataStore) GetServerStartTime() time.Time             { return m.startTime }
func (m *MockDataStore) IsReady() bool                             { return m.catalog != nil }
func (m *MockDataStore) WaitReady(ctx context.Context) error       { return nil }
func (m *MockDataStore) UpdateCatalog(c *stores.Catalog, s string) { m.catalog, m.source = c, s }
func (m *MockDataStore) BeginUpdate() bool                         { return true }
func (m *MockDataStore) EndUpdate()                                {}

// MockDataStoreBuilder builds data stores for handler tests
type MockDataStoreBuilder struct {
	store *MockDataStore
}

func NewMockDataStoreBuilder() *MockDataStoreBuilder {
	return &MockDataStoreBuilder{store: &MockDataStore{
		source:      contentparser.EmbeddedSource,
		lastUpdated: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		startTime:   time.Now().Add(-90 * time.Minute),
	}}
}

func (b *MockDataStoreBuilder) WithCatalog(catalog *stores.Catalog) *MockDataStoreBuilder {
	b.store.catalog = catalog
	return b
}

func (b *MockDataStoreBuilder) WithSource(source string) *MockDataStoreBuilder {
	b.store.source = source
	return b
}

func (b *MockDataStoreBuilder) WithLastUpdated(t time.Time) *MockDataStoreBuilder {
	b.store.lastUpdated = t
	return b
}

func (b *MockDataStoreBuilder) WithStartTime(t time.Time) *MockDataStoreBuilder {
	b.store.startTime = t
	return b
}

func (b *MockDataStoreBuilder) Build() *MockDataStore {
	return b.store
}

// ============================================================================
// MOCK VALIDATOR
// ============================================================================

// MockValidator delegates to the real validator unless a report is forced
type MockValidator struct {
	interfaces.ContentValidator
	report *interfaces.CoverageReport
}

func (m *MockValidator) ReportCoverage(catalog *stores.Catalog) *interfaces.CoverageReport {
	if m.report != nil {
		return m.report
	}
	return m.ContentValidator.ReportCoverage(catalog)
}

type MockValidatorBuilder struct {
	validator *MockValidator
}

func NewMockValidatorBuilder() *MockValidatorBuilder {
	return &MockValidatorBuilder{validator: &MockValidator{ContentValidator: validation.NewDataValidator()}}
}

func (b *MockValidatorBuilder) WithReport(report *interfaces.CoverageReport) *MockValidatorBuilder {
	b.validator.report = report
	return b
}

func (b *MockValidatorBuilder) Build() *MockValidator {
	return b.validator
}

// ============================================================================
// MOCK HEALTH CHECKER
// ============================================================================

type MockHealthChecker struct {
	status     string
	details    map[string]any
	httpStatus int
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, m.details, m.httpStatus
}

func (m *MockHealthChecker) CalculateNextAudit() time.Time {
	return time.Now().Add(time.Hour)
}

type MockHealthCheckerBuilder struct {
	checker *MockHealthChecker
}

func NewMockHealthCheckerBuilder() *MockHealthCheckerBuilder {
	return &MockHealthCheckerBuilder{checker: &MockHealthChecker{
		status:     "healthy",
		details:    map[string]any{"medications": 16},
		httpStatus: http.StatusOK,
	}}
}

func (b *MockHealthCheckerBuilder) WithStatus(status string, httpStatus int) *MockHealthCheckerBuilder {
	b.checker.status = status
	b.checker.httpStatus = httpStatus
	return b
}

func (b *MockHealthCheckerBuilder) Build() *MockHealthChecker {
	return b.checker
}

var (
	_ interfaces.DataStore        = (*MockDataStore)(nil)
	_ interfaces.ContentValidator = (*MockValidator)(nil)
	_ interfaces.HealthChecker    = (*MockHealthChecker)(nil)
)

// ============================================================================
// HELPERS
// ============================================================================

// newTestHandler wires a handler on the embedded content
func newTestHandler(tb testing.TB) interfaces.HTTPHandler {
	tb.Helper()
	return NewHTTPHandler(
		NewMockDataStoreBuilder().WithCatalog(loadCatalog(tb)).Build(),
		NewMockValidatorBuilder().Build(),
		NewMockHealthCheckerBuilder().Build(),
	)
}

// newTestRouter mounts h with the same routes the server exposes
func newTestRouter(h interfaces.HTTPHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", h.HealthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/medications", h.SearchMedications)
		r.Get("/medications/{id}", h.GetMedication)
		r.Post("/patients/medications/resolve", h.ResolvePatientMedications)
		r.Get("/targets", h.SearchTargets)
		r.Get("/targets/medications", h.MedicationsForRegion)
		r.Get("/pharmacokinetics", h.SearchPharmacokinetics)
		r.Get("/interactions", h.GetInteractions)
		r.Get("/interactions/search", h.SearchInteractions)
		r.Get("/interactions/{id}", h.GetInteraction)
		r.Get("/drug-classes", h.SearchDrugClasses)
		r.Get("/drug-classes/{id}/mechanism", h.GetMechanism)
		r.Get("/mechanisms", h.SearchMechanisms)
		r.Get("/mechanisms/{id}", h.GetMechanismByID)
		r.Get("/side-effects", h.SearchSideEffects)
		r.Get("/side-effects/{id}", h.GetSideEffect)
		r.Get("/combinations", h.SearchCombinations)
		r.Get("/combinations/{id}", h.GetCombination)
		r.Get("/stats", h.GetStats)
		r.Get("/coverage", h.GetCoverage)
	})
	return r
}

// serve runs one request through the router
func serve(h interfaces.HTTPHandler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rr, req)
	return rr
}

func get(h interfaces.HTTPHandler, target string) *httptest.ResponseRecorder {
	return serve(h, http.MethodGet, target, nil)
}

func post(h interfaces.HTTPHandler, target, body string) *httptest.ResponseRecorder {
	return serve(h, http.MethodPost, target, strings.NewReader(body))
}

// decode unmarshals the response body into out
func decode(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
}

// expectStatus fails the test when the status code differs
func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

// expectError checks the status and the error body shape
func expectError(t *testing.T, rr *httptest.ResponseRecorder, want int) ErrorResponse {
	t.Helper()
	expectStatus(t, rr, want)
	var body ErrorResponse
	decode(t, rr, &body)
	if body.Code != want || body.Error != http.StatusText(want) || body.Message == "" {
		t.Errorf("Unexpected error body: %+v", body)
	}
	return body
}

// ids extracts the "id" field of every element of a JSON array
func ids(t *testing.T, rr *httptest.ResponseRecorder, field string) []string {
	t.Helper()
	var items []map[string]any
	decode(t, rr, &items)
	out := make([]string, len(items))
	for i, item := range items {
		out[i], _ = item[field].(string)
	}
	return out
}
