package ratelimit

// Limiter answers whether the request identified by key fits within the
// current window.
type Limiter interface {
	Allow(key string) bool
}
