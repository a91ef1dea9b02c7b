package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ============================================================================
// BENCHMARKS
// ============================================================================

// BenchmarkResolvePatientMedications benchmarks a typical five-medication list
func BenchmarkResolvePatientMedications(b *testing.B) {
	handler := newTestHandler(b)
	body := `{"medications":[{"id":"warfarin"},{"id":"amiodarone"},{"id":"digoxin"},{"id":"furosemide"},{"id":"lisinopril"}]}`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/patients/medications/resolve", strings.NewReader(body))
		handler.ResolvePatientMedications(rr, req)
	}
}

// BenchmarkSearchMedications benchmarks an accent-insensitive text search
func BenchmarkSearchMedications(b *testing.B) {
	handler := newTestHandler(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/medications?q=statin", nil)
		handler.SearchMedications(rr, req)
	}
}

// BenchmarkGetInteractions benchmarks pairwise lookups over ten medications
func BenchmarkGetInteractions(b *testing.B) {
	handler := newTestHandler(b)
	target := "/v1/interactions?ids=warfarin,ibuprofen,sertraline,tramadol,amiodarone,digoxin,furosemide,lisinopril,clopidogrel,omeprazole"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		handler.GetInteractions(rr, req)
	}
}

// BenchmarkSearchTargets benchmarks a region subtree scan
func BenchmarkSearchTargets(b *testing.B) {
	handler := newTestHandler(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/targets?region=body.torso", nil)
		handler.SearchTargets(rr, req)
	}
}
