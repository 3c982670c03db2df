package ratelimit

// NopLimiter admits every request. It stands in when rate limiting is
// disabled by configuration.
type NopLimiter struct{}

// NewNopLimiter returns a Limiter that never rejects.
func NewNopLimiter() Limiter { return NopLimiter{} }

func (NopLimiter) Allow(string) bool { return true }
