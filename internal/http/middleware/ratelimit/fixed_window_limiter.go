package ratelimit

import (
	"sync"
	"time"
)

// Config stores FixedWindowLimiter settings.
type Config struct {
	Limit   int           // requests per window
	Window  time.Duration // window length
	MaxKeys int           // cap on tracked keys (0 = unlimited)
}

// FixedWindowLimiter counts requests per key within the current window.
// The counter resets when the window rolls over.
type FixedWindowLimiter struct {
	cfg   Config
	clock Clock

	mu      sync.Mutex
	windows map[string]*window
	started time.Time
}

type window struct {
	index int64
	count int
}

// NewFixedWindowLimiter creates a limiter with explicit config and an
// injected clock.
func NewFixedWindowLimiter(clock Clock, cfg Config) *FixedWindowLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	if cfg.MaxKeys < 0 {
		cfg.MaxKeys = 0
	}
	return &FixedWindowLimiter{
		cfg:     cfg,
		clock:   clock,
		windows: make(map[string]*window),
		started: clock.Now(),
	}
}

// Allow returns true when key has remaining quota in the current window.
func (l *FixedWindowLimiter) Allow(key string) bool {
	now := l.clock.Now()
	idx := int64(now.Sub(l.started) / l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[key]
	if w == nil {
		if l.cfg.MaxKeys > 0 && len(l.windows) >= l.cfg.MaxKeys {
			l.evictStale(idx)
			if len(l.windows) >= l.cfg.MaxKeys {
				return false
			}
		}
		w = &window{index: idx}
		l.windows[key] = w
	}

	if w.index != idx {
		w.index = idx
		w.count = 0
	}

	if w.count >= l.cfg.Limit {
		return false
	}
	w.count++
	return true
}

// evictStale drops keys whose window has already rolled over. Caller
// holds the mutex.
func (l *FixedWindowLimiter) evictStale(idx int64) {
	for k, w := range l.windows {
		if w.index < idx {
			delete(l.windows, k)
		}
	}
}
