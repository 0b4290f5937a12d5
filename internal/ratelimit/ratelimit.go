package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultWindow  = 60 * time.Second
	DefaultMax     = 10
	DefaultMaxKeys = 100000
)

var ErrRateLimited = errors.New("rate limit exceeded")

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type counter struct {
	start time.Time
	count int
}

// FixedWindow counts requests per key. A key's window starts with its first
// request and restarts once Window has elapsed.
type FixedWindow struct {
	window  time.Duration
	max     int
	maxKeys int
	now     func() time.Time

	mu      sync.Mutex
	windows map[string]*counter
}

func NewFixedWindow(window time.Duration, limit int) *FixedWindow {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultMax
	}
	return &FixedWindow{
		window:  window,
		max:     limit,
		maxKeys: DefaultMaxKeys,
		now:     time.Now,
		windows: make(map[string]*counter),
	}
}

func (l *FixedWindow) Limit() int {
	return l.max
}

// Allow records one request for key and reports whether it is within the
// limit. Rejected requests still count.
func (l *FixedWindow) Allow(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[key]
	if ok && !now.Before(w.start.Add(l.window)) {
		ok = false
	}
	if !ok {
		if _, exists := l.windows[key]; !exists && len(l.windows) >= l.maxKeys {
			l.sweep(now)
			if len(l.windows) >= l.maxKeys {
				slog.Warn("rate limiter is tracking too many clients, rejecting new client", "max_keys", l.maxKeys)
				return Decision{Allowed: false, Limit: l.max, ResetAt: now.Add(l.window)}
			}
		}
		w = &counter{start: now}
		l.windows[key] = w
	}

	// Stops one past the limit.
	if w.count <= l.max {
		w.count++
	}

	return Decision{
		Allowed:   w.count <= l.max,
		Limit:     l.max,
		Remaining: max(0, l.max-w.count),
		ResetAt:   w.start.Add(l.window),
	}
}

func (l *FixedWindow) sweep(now time.Time) int {
	removed := 0
	for key, w := range l.windows {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Sweep drops every expired window and returns how many were removed.
func (l *FixedWindow) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweep(l.now())
}

func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// StartSweeper runs Sweep every interval until ctx is done.
func (l *FixedWindow) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = l.window
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := l.Sweep(); removed > 0 {
					slog.Debug("swept expired rate limit windows", "removed", removed)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
