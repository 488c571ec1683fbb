package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady probes the storage backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{
		"rate_limiter": map[string]any{
			"active_clients": s.rateLimiter.ActiveClients(),
			"status":         "ok",
		},
	}

	switch {
	case s.ledger == nil || s.views == nil || s.calculator == nil:
		checks["services"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	case s.ready != nil:
		if err := s.ready(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	default:
		checks["backend"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	counter := func(name, help string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, value)
	}
	gauge := func(name, help string, value float64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %.0f\n\n", name, help, name, name, value)
	}

	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("transactions_created_total", "Transactions created through the API", atomic.LoadInt64(&s.appMetrics.transactions))
	counter("calculations_total", "Projections and driver calculations served", atomic.LoadInt64(&s.appMetrics.calculations))
	counter("rate_limit_hits_total", "Requests rejected by the rate limiter", rateLimitMetrics.TotalHits)
	counter("suspicious_requests_total", "Suspicious requests detected", securityMetrics.SuspiciousRequests)
	if s.cacheStats != nil {
		st := s.cacheStats()
		counter("cache_hits_total", "In-process cache hits", int64(st.Hits))
		counter("cache_misses_total", "In-process cache misses", int64(st.Misses))
		counter("cache_evictions_total", "Entries evicted to respect the cache size", int64(st.Evictions))
	}
	gauge("active_rate_limit_clients", "Currently tracked rate limit clients", float64(rateLimitMetrics.ClientCount))
	gauge("uptime_seconds", "Application uptime in seconds", time.Since(s.appMetrics.uptime).Seconds())
}
