package ratelimit

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"delivery-dispatch/internal/logx"
)

// Middleware rejects clients that exhaust their per-IP request quota
// with a 429 and a JSON error body.
type Middleware struct {
	logger  logx.Logger
	counter prometheus.Counter
	limiter Limiter
}

// New creates the middleware. A nil limiter disables limiting.
func New(logger logx.Logger, counter prometheus.Counter, limiter Limiter) *Middleware {
	if limiter == nil {
		limiter = NopLimiter{}
	}
	return &Middleware{logger: logger, counter: counter, limiter: limiter}
}

// Handler returns the chi-compatible wrapper.
func (m *Middleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if m.limiter.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}
			m.reject(w, r, ip)
		})
	}
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, ip string) {
	if m.counter != nil {
		m.counter.Inc()
	}
	m.logger.Warn("rate limit exceeded",
		logx.String("ip", ip),
		logx.String("method", r.Method),
		logx.String("path", r.URL.Path),
	)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	if _, err := w.Write([]byte(`{"error":"too many requests"}`)); err != nil {
		// the client may have hung up already
		m.logger.Debug("rate limit response write failed",
			logx.String("ip", ip),
			logx.Err(err),
		)
	}
}

// clientIP keys the limiter by remote host so that connections from the
// same client on different ephemeral ports share one quota.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
