package messaging

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Number of recent event ids remembered for dropping redeliveries.
const recentEventIDs = 1024

type SessionUsage struct {
	SessionID  string
	Turns      int64
	TokensUsed int64
	Fallbacks  int64
	LastTurnAt time.Time
}

type UsageSummary struct {
	Turns      int64
	TokensUsed int64
	Fallbacks  int64
	Sessions   []SessionUsage
}

// UsageTracker aggregates turn events per session.
type UsageTracker struct {
	mu       sync.RWMutex
	sessions map[string]*SessionUsage
	totals   SessionUsage

	seen     map[uuid.UUID]struct{}
	seenRing []uuid.UUID
	seenNext int
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		sessions: make(map[string]*SessionUsage),
		seen:     make(map[uuid.UUID]struct{}, recentEventIDs),
		seenRing: make([]uuid.UUID, 0, recentEventIDs),
	}
}

// Record adds the event to the counters. It returns false if the event was
// already recorded.
func (t *UsageTracker) Record(event TurnCompleted) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[event.EventID]; ok {
		return false
	}
	t.remember(event.EventID)

	usage, ok := t.sessions[event.SessionID]
	if !ok {
		usage = &SessionUsage{SessionID: event.SessionID}
		t.sessions[event.SessionID] = usage
	}

	for _, u := range []*SessionUsage{usage, &t.totals} {
		u.Turns++
		u.TokensUsed += event.TokensUsed
		if event.Fallback {
			u.Fallbacks++
		}
		if event.CompletedAt.After(u.LastTurnAt) {
			u.LastTurnAt = event.CompletedAt
		}
	}

	return true
}

func (t *UsageTracker) remember(id uuid.UUID) {
	if len(t.seenRing) < recentEventIDs {
		t.seenRing = append(t.seenRing, id)
	} else {
		delete(t.seen, t.seenRing[t.seenNext])
		t.seenRing[t.seenNext] = id
		t.seenNext = (t.seenNext + 1) % recentEventIDs
	}
	t.seen[id] = struct{}{}
}

// Summary returns the totals and the per-session counters, most recently
// active session first.
func (t *UsageTracker) Summary() UsageSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	summary := UsageSummary{
		Turns:      t.totals.Turns,
		TokensUsed: t.totals.TokensUsed,
		Fallbacks:  t.totals.Fallbacks,
		Sessions:   make([]SessionUsage, 0, len(t.sessions)),
	}
	for _, usage := range t.sessions {
		summary.Sessions = append(summary.Sessions, *usage)
	}

	sort.Slice(summary.Sessions, func(i, j int) bool {
		a, b := summary.Sessions[i], summary.Sessions[j]
		if !a.LastTurnAt.Equal(b.LastTurnAt) {
			return a.LastTurnAt.After(b.LastTurnAt)
		}
		return a.SessionID < b.SessionID
	})

	return summary
}

// Run consumes events until the receiver is closed or ctx is done.
func (t *UsageTracker) Run(ctx context.Context, receiver Receiver) {
	slog.Info("usage tracker started")
	for {
		select {
		case event, ok := <-receiver.Turns():
			if !ok {
				slog.Info("turn queue closed, usage tracker stopping")
				return
			}
			if !t.Record(event) {
				slog.Info("dropping duplicate turn event", "event_id", event.EventID)
				continue
			}
			slog.Info("turn completed", "session_id", event.SessionID, "event_id", event.EventID, "tokens_used", event.TokensUsed, "fallback", event.Fallback)
		case <-ctx.Done():
			slog.Info("usage tracker stopping")
			return
		}
	}
}
