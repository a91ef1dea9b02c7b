package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		query        string
		expectedCost int64
	}{
		{"Health endpoint", "/health", "", 5},
		{"Metrics endpoint", "/metrics", "", 5},

		// Medications
		{"Full medication list", "/v1/medications", "", 50},
		{"Medication text search", "/v1/medications", "q=statin", 20},
		{"Medication class filter", "/v1/medications", "class=statin", 20},
		{"Medication by id", "/v1/medications/warfarin", "", 10},
		{"Patient resolution", "/v1/patients/medications/resolve", "", 50},

		// Targets and pharmacokinetics
		{"Target region scan", "/v1/targets", "region=body.torso", 20},
		{"Medications for a region", "/v1/targets/medications", "region=body.neck", 10},
		{"Pharmacokinetics filter", "/v1/pharmacokinetics", "renal=true", 20},

		// Interactions
		{"Pairwise interactions", "/v1/interactions", "ids=warfarin,ibuprofen", 30},
		{"Interaction search", "/v1/interactions/search", "severity=major", 20},
		{"Interaction by id", "/v1/interactions/warfarin-ibuprofen", "", 10},

		// Mechanisms and side effects
		{"Class mechanism", "/v1/drug-classes/statin/mechanism", "", 10},
		{"Drug class search", "/v1/drug-classes", "category=cardiovascular", 20},
		{"Mechanism search", "/v1/mechanisms", "q=cholesterol", 20},
		{"Mechanism by id", "/v1/mechanisms/statins", "", 10},
		{"Side effect by id", "/v1/side-effects/statin-myopathy", "", 10},
		{"Combination search", "/v1/combinations", "type=dangerous", 20},
		{"Combination by id", "/v1/combinations/ssri-maoi", "", 10},
		{"Side effects by medication", "/v1/side-effects", "medication=simvastatin", 10},
		{"Side effects by class", "/v1/side-effects", "class=statin", 10},
		{"Side effects text search", "/v1/side-effects", "q=muscle", 20},
		{"Side effects medication and level", "/v1/side-effects", "medication=simvastatin&level=2", 20},
		{"Side effects empty medication", "/v1/side-effects", "medication=", 20},

		// Reports
		{"Stats", "/v1/stats", "", 50},
		{"Coverage", "/v1/coverage", "", 100},

		// Default case
		{"Unknown endpoint", "/unknown", "", 5},
		{"Root path", "/", "", 5},
		{"Unknown v1 endpoint", "/v1/unknown", "", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path+"?"+tt.query, nil)
			cost := getTokenCost(req)

			if cost != tt.expectedCost {
				t.Errorf("Expected cost %d for path %s with query %s, got %d",
					tt.expectedCost, tt.path, tt.query, cost)
			}
		})
	}
}

func TestHasSingleParam(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		allowedParams []string
		expected      bool
	}{
		{"Single param present", "medication=warfarin", []string{"medication", "class"}, true},
		{"Second allowed param", "class=statin", []string{"medication", "class"}, true},
		{"No params present", "", []string{"medication", "class"}, false},
		{"Two params present", "medication=warfarin&class=statin", []string{"medication", "class"}, false},
		{"Param not in allowed list", "q=muscle", []string{"medication", "class"}, false},
		{"Empty string param", "medication=", []string{"medication"}, false},
		{"Empty allowed list", "medication=warfarin", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			result := HasSingleParam(values, tt.allowedParams)

			if result != tt.expected {
				t.Errorf("Expected %v for query %s with allowed %v, got %v",
					tt.expected, tt.query, tt.allowedParams, result)
			}
		})
	}
}

func TestRateLimiter_Headers(t *testing.T) {
	rl := NewRateLimiter(3, 100)
	handler := rl.Handler(okHandler())

	req := httptest.NewRequest("GET", "/v1/medications/warfarin", nil)
	req.RemoteAddr = "203.0.113.10"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "100" {
		t.Errorf("Expected X-RateLimit-Limit 100, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Rate"); got != "3" {
		t.Errorf("Expected X-RateLimit-Rate 3, got %q", got)
	}

	remaining, err := strconv.ParseInt(rr.Header().Get("X-RateLimit-Remaining"), 10, 64)
	if err != nil {
		t.Fatalf("Invalid X-RateLimit-Remaining: %v", err)
	}
	// Refill may add a token between Take and Available
	if remaining < 90 || remaining > 91 {
		t.Errorf("Expected about 90 tokens remaining, got %d", remaining)
	}
}

func TestRateLimiter_Exhausted(t *testing.T) {
	// Capacity below the coverage cost rejects the first call
	rl := NewRateLimiter(0.001, 60)
	handler := rl.Handler(okHandler())

	req := httptest.NewRequest("GET", "/v1/coverage", nil)
	req.RemoteAddr = "203.0.113.11"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Expected Retry-After 60, got %q", rr.Header().Get("Retry-After"))
	}
	if rr.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Expected X-RateLimit-Remaining 0, got %q", rr.Header().Get("X-RateLimit-Remaining"))
	}

	// The bucket is untouched, so a cheaper call still passes
	if got := rl.getBucket("203.0.113.11").Available(); got != 60 {
		t.Errorf("Expected the rejected request to leave 60 tokens, got %d", got)
	}
	req = httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "203.0.113.11"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected cheap request to pass, got %d", rr.Code)
	}
}

func TestRateLimiter_SeparateClients(t *testing.T) {
	rl := NewRateLimiter(0.001, 50)
	handler := rl.Handler(okHandler())

	for _, addr := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest("POST", "/v1/patients/medications/resolve", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("Expected first request from %s to pass, got %d", addr, rr.Code)
		}
	}

	req := httptest.NewRequest("POST", "/v1/patients/medications/resolve", nil)
	req.RemoteAddr = "198.51.100.1"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Expected second request to be limited, got %d", rr.Code)
	}
}

func TestRateLimiter_RemoveIdle(t *testing.T) {
	rl := NewRateLimiter(0.001, 100)

	rl.getBucket("idle")
	busy := rl.getBucket("busy")
	busy.TakeAvailable(10)

	if removed := rl.removeIdle(); removed != 1 {
		t.Errorf("Expected 1 idle bucket removed, got %d", removed)
	}

	rl.mu.RLock()
	_, idleKept := rl.clients["idle"]
	_, busyKept := rl.clients["busy"]
	rl.mu.RUnlock()

	if idleKept || !busyKept {
		t.Errorf("Expected only the busy bucket to remain, idle=%v busy=%v", idleKept, busyKept)
	}
}

func TestRateLimiter_StartCleanup(t *testing.T) {
	rl := NewRateLimiter(3, 100)
	rl.getBucket("idle")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl.StartCleanup(ctx, 10*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rl.mu.RLock()
		n := len(rl.clients)
		rl.mu.RUnlock()
		if n == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Expected cleanup to remove the idle bucket")
}
