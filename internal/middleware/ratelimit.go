package middleware

import (
	"sync"
	"time"

	"ffbot/internal/view"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per user. A bucket idle long enough to
// refill completely is forgotten.
type RateLimiter struct {
	mu        sync.Mutex
	limits    map[int64]*limiterEntry
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing perSecond events with bursts
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	idle := time.Duration(float64(burst) / perSecond * float64(time.Second))
	if idle < time.Second {
		idle = time.Second
	}
	return &RateLimiter{
		limits: make(map[int64]*limiterEntry),
		every:  rate.Limit(perSecond),
		burst:  burst,
		idle:   idle,
		now:    time.Now,
	}
}

// Allow reports whether the user may send one more event now
func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idle {
		rl.sweep(now)
	}

	e, ok := rl.limits[userID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.limits[userID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) sweep(now time.Time) {
	for id, e := range rl.limits {
		if now.Sub(e.lastSeen) >= rl.idle {
			delete(rl.limits, id)
		}
	}
	rl.lastSweep = now
}

// Len returns the number of tracked users
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}

// Limit drops events over the user's rate. Button presses get a short notice
// so the client stops its spinner.
func Limit(rl *RateLimiter, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || rl.Allow(sender.ID) {
				return next(c)
			}

			throttledEvents.Inc()
			logger.Warn("Event throttled", zap.Int64("user_id", sender.ID))
			if c.Callback() != nil {
				return c.Respond(&tele.CallbackResponse{Text: view.Throttled})
			}
			return nil
		}
	}
}
