package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"golang.org/x/time/rate"
)

const (
	cleanupInterval = time.Hour
	idleTTL         = 24 * time.Hour
)

// Limiter decides whether a chat may start another request.
type Limiter interface {
	Allow(chatID int64) bool
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ChatLimiter is a token bucket per chat: burst requests, refilled evenly over window.
type ChatLimiter struct {
	mu      sync.Mutex
	entries map[int64]*entry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// New returns a limiter allowing requests per window for each chat. A non-positive
// requests value disables limiting.
func New(requests int, window time.Duration) Limiter {
	if requests <= 0 || window <= 0 {
		return NoOpLimiter{}
	}
	return newChatLimiter(requests, window, time.Now)
}

func newChatLimiter(requests int, window time.Duration, now func() time.Time) *ChatLimiter {
	return &ChatLimiter{
		entries: make(map[int64]*entry),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		now:     now,
	}
}

func (l *ChatLimiter) Allow(chatID int64) bool {
	now := l.now()

	l.mu.Lock()
	e, ok := l.entries[chatID]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[chatID] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	if e.limiter.AllowN(now, 1) {
		return true
	}
	logutils.Log.WithField("chat_id", chatID).Debug("Rate limit exceeded")
	return false
}

// Prune drops chats idle for longer than ttl.
func (l *ChatLimiter) Prune(ttl time.Duration) int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for chatID, e := range l.entries {
		if now.Sub(e.lastSeen) > ttl {
			delete(l.entries, chatID)
			removed++
		}
	}
	return removed
}

// RunCleanup prunes idle chats every hour until ctx is done.
func (l *ChatLimiter) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := l.Prune(idleTTL)
			logutils.Log.WithField("removed", removed).Debug("Rate limiter cleanup completed")
		}
	}
}

// NoOpLimiter allows everything.
type NoOpLimiter struct{}

func (NoOpLimiter) Allow(int64) bool { return true }
