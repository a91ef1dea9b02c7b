package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/juju/ratelimit"

	"github.com/giygas/pharmacology-api/config"
	"github.com/giygas/pharmacology-api/handlers"
	"github.com/giygas/pharmacology-api/logging"
	"github.com/giygas/pharmacology-api/metrics"
)

const (
	// Bucket refill rate per client, in tokens per second
	rateLimitRate = 3
	// Bucket capacity per client
	rateLimitCapacity = 1000
)

// RealIPMiddleware sets RemoteAddr to the client IP, without port.
// X-Forwarded-For wins over X-Real-IP.
func RealIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Take the first IP from the comma-separated list
			if idx := strings.Index(xff, ","); idx != -1 {
				xff = xff[:idx]
			}
			r.RemoteAddr = strings.TrimSpace(xff)
		} else if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			r.RemoteAddr = strings.TrimSpace(realIP)
		} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			r.RemoteAddr = host
		}
		next.ServeHTTP(w, r)
	})
}

// BlockDirectAccessMiddleware only lets through requests relayed by the
// reverse proxy, plus localhost. allowDirect disables the check.
func BlockDirectAccessMiddleware(allowDirect bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowDirect || r.Header.Get("X-Real-IP") != "" || r.Header.Get("X-Forwarded-For") != "" {
				next.ServeHTTP(w, r)
				return
			}

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if host == "127.0.0.1" || host == "::1" || host == "localhost" {
				next.ServeHTTP(w, r)
				return
			}

			logging.Warn("Direct access blocked", "remote_addr", r.RemoteAddr, "user_agent", r.Header.Get("User-Agent"))
			handlers.RespondWithError(w, http.StatusForbidden, "Direct access not allowed")
		})
	}
}

// RequestSizeMiddleware limits the size of request headers and body.
// Bodies without a Content-Length are capped while they are read.
func RequestSizeMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			length := r.ContentLength
			if header := r.Header.Get("Content-Length"); header != "" {
				if parsed, err := strconv.ParseInt(header, 10, 64); err == nil {
					length = max(length, parsed)
				}
			}

			if length > cfg.MaxRequestBody {
				logging.Warn("Request body too large",
					"content_length", length,
					"max_allowed", cfg.MaxRequestBody,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent())

				handlers.RespondWithError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("Request body too large. Maximum allowed size is %d bytes", cfg.MaxRequestBody))
				return
			}

			// Rough estimate of the header size
			headerSize := int64(0)
			for key, values := range r.Header {
				headerSize += int64(len(key))
				for _, value := range values {
					headerSize += int64(len(value))
				}
			}

			if headerSize > cfg.MaxHeaderSize {
				logging.Warn("Request headers too large",
					"header_size", headerSize,
					"max_allowed", cfg.MaxHeaderSize,
					"remote_addr", r.RemoteAddr,
					"user_agent", r.UserAgent())

				handlers.RespondWithError(w, http.StatusRequestHeaderFieldsTooLarge,
					fmt.Sprintf("Request headers too large. Maximum allowed size is %d bytes", cfg.MaxHeaderSize))
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxRequestBody)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter manages per-client token buckets
type RateLimiter struct {
	clients  map[string]*ratelimit.Bucket
	mu       sync.RWMutex
	rate     float64
	capacity int64
}

// NewRateLimiter creates a rate limiter refilling rate tokens per second up to capacity
func NewRateLimiter(rate float64, capacity int64) *RateLimiter {
	return &RateLimiter{
		clients:  make(map[string]*ratelimit.Bucket),
		rate:     rate,
		capacity: capacity,
	}
}

func (rl *RateLimiter) getBucket(clientIP string) *ratelimit.Bucket {
	rl.mu.RLock()
	bucket, exists := rl.clients[clientIP]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		if bucket, exists = rl.clients[clientIP]; !exists {
			bucket = ratelimit.NewBucketWithRate(rl.rate, rl.capacity)
			rl.clients[clientIP] = bucket
			metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
		}
		rl.mu.Unlock()
	}

	return bucket
}

// removeIdle drops clients whose bucket has refilled completely
func (rl *RateLimiter) removeIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, bucket := range rl.clients {
		if bucket.Available() == bucket.Capacity() {
			delete(rl.clients, ip)
			removed++
		}
	}
	metrics.RateLimiterBucketsTotal.Set(float64(len(rl.clients)))
	return removed
}

// StartCleanup removes idle clients every interval until ctx is done
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := rl.removeIdle(); removed > 0 {
					logging.Debug("Removed idle rate limit buckets", "count", removed)
				}
			}
		}
	}()
}

// HasSingleParam reports whether exactly one of allowed is present with a
// non-empty value, and no other parameter is set.
func HasSingleParam(values url.Values, allowed []string) bool {
	if len(values) != 1 {
		return false
	}
	for _, name := range allowed {
		if values.Get(name) != "" {
			return true
		}
	}
	return false
}

// getTokenCost prices a request by how much of the catalog it scans
func getTokenCost(r *http.Request) int64 {
	path := r.URL.Path
	query := r.URL.Query()

	switch path {
	case "/health", "/metrics":
		return 5
	case "/v1/medications":
		if len(query) == 0 {
			return 50 // Full medication list
		}
		return 20
	case "/v1/patients/medications/resolve":
		return 50
	case "/v1/targets", "/v1/pharmacokinetics", "/v1/interactions/search",
		"/v1/drug-classes", "/v1/mechanisms", "/v1/combinations":
		return 20
	case "/v1/targets/medications":
		return 10
	case "/v1/interactions":
		return 30
	case "/v1/side-effects":
		if HasSingleParam(query, []string{"medication", "class"}) {
			return 10
		}
		return 20
	case "/v1/stats":
		return 50
	case "/v1/coverage":
		return 100 // Cross-store consistency scan
	}

	switch {
	case strings.HasPrefix(path, "/v1/medications/"):
		return 10
	case strings.HasPrefix(path, "/v1/drug-classes/"),
		strings.HasPrefix(path, "/v1/interactions/"),
		strings.HasPrefix(path, "/v1/mechanisms/"),
		strings.HasPrefix(path, "/v1/side-effects/"),
		strings.HasPrefix(path, "/v1/combinations/"):
		return 10
	}

	return 5
}

// Handler implements rate limiting using token buckets keyed by client address
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	limit := strconv.FormatInt(rl.capacity, 10)
	rate := strconv.FormatFloat(rl.rate, 'f', -1, 64)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket := rl.getBucket(r.RemoteAddr)
		tokenCost := getTokenCost(r)

		w.Header().Set("X-RateLimit-Limit", limit)
		w.Header().Set("X-RateLimit-Rate", rate)

		// A rejected request takes no tokens
		if _, ok := bucket.TakeMaxDuration(tokenCost, 0); !ok {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			handlers.RespondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(bucket.Available(), 10))
		next.ServeHTTP(w, r)
	})
}
