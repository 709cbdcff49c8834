package server

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter manages per-client request rates and daily code quotas.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	requestsPerHour   int
	maxCodesPerDay    int

	clients map[string]*clientUsage
	now     func() time.Time
}

// clientUsage tracks usage for a specific client IP.
type clientUsage struct {
	minute *rate.Limiter
	hour   *rate.Limiter

	codesToday int
	dayStart   time.Time
	lastSeen   time.Time
}

// Usage is a snapshot of a client's current usage.
type Usage struct {
	CodesToday    int
	MinuteTokens  float64
	HourTokens    float64
	LastRequestAt time.Time
}

// NewRateLimiter creates a rate limiter. A zero limit disables that check.
func NewRateLimiter(requestsPerMinute, requestsPerHour, maxCodesPerDay int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		maxCodesPerDay:    maxCodesPerDay,
		clients:           make(map[string]*clientUsage),
		now:               time.Now,
	}
}

// CheckRateLimit checks if a request from the given client is allowed and
// consumes one token from each window when it is.
func (rl *RateLimiter) CheckRateLimit(clientID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	usage := rl.getOrCreate(clientID, now)
	usage.lastSeen = now

	var minuteRes *rate.Reservation
	if usage.minute != nil {
		minuteRes = usage.minute.ReserveN(now, 1)
		if delay := minuteRes.DelayFrom(now); delay > 0 {
			minuteRes.CancelAt(now)
			return &RateLimitError{Type: "minute", Limit: rl.requestsPerMinute, RetryAfter: delay}
		}
	}

	if usage.hour != nil {
		hourRes := usage.hour.ReserveN(now, 1)
		if delay := hourRes.DelayFrom(now); delay > 0 {
			hourRes.CancelAt(now)
			if minuteRes != nil {
				minuteRes.CancelAt(now)
			}
			return &RateLimitError{Type: "hour", Limit: rl.requestsPerHour, RetryAfter: delay}
		}
	}

	return nil
}

// ReserveCodes charges n decoded codes against the client's daily quota.
func (rl *RateLimiter) ReserveCodes(clientID string, n int) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	usage := rl.getOrCreate(clientID, now)
	usage.lastSeen = now

	if !sameDay(usage.dayStart, now) {
		usage.codesToday = 0
		usage.dayStart = now
	}

	if rl.maxCodesPerDay > 0 && usage.codesToday+n > rl.maxCodesPerDay {
		return &QuotaExceededError{
			Type:   "codes",
			Limit:  int64(rl.maxCodesPerDay),
			Used:   int64(usage.codesToday),
			Resets: time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location()),
		}
	}

	usage.codesToday += n
	return nil
}

// Prune drops clients that have been idle for longer than idle and returns
// how many were removed.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for id, usage := range rl.clients {
		if now.Sub(usage.lastSeen) > idle {
			delete(rl.clients, id)
			removed++
		}
	}
	return removed
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// GetUsage returns current usage statistics for a client.
func (rl *RateLimiter) GetUsage(clientID string) Usage {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	usage, exists := rl.clients[clientID]
	if !exists {
		return Usage{}
	}

	now := rl.now()
	u := Usage{LastRequestAt: usage.lastSeen}
	if sameDay(usage.dayStart, now) {
		u.CodesToday = usage.codesToday
	}
	if usage.minute != nil {
		u.MinuteTokens = usage.minute.TokensAt(now)
	}
	if usage.hour != nil {
		u.HourTokens = usage.hour.TokensAt(now)
	}
	return u
}

func (rl *RateLimiter) getOrCreate(clientID string, now time.Time) *clientUsage {
	usage, exists := rl.clients[clientID]
	if exists {
		return usage
	}

	usage = &clientUsage{dayStart: now, lastSeen: now}
	if rl.requestsPerMinute > 0 {
		usage.minute = newWindowLimiter(rl.requestsPerMinute, time.Minute)
	}
	if rl.requestsPerHour > 0 {
		usage.hour = newWindowLimiter(rl.requestsPerHour, time.Hour)
	}
	rl.clients[clientID] = usage
	return usage
}

// newWindowLimiter allows limit requests at once and refills them evenly over
// the window.
func newWindowLimiter(limit int, window time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string        // "minute", "hour" or "websocket"
	Limit      int           // the limit that was exceeded
	RetryAfter time.Duration // how long to wait before retrying
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}

// QuotaExceededError represents a quota violation.
type QuotaExceededError struct {
	Type   string    // "codes"
	Limit  int64     // the limit that was exceeded
	Used   int64     // current usage
	Resets time.Time // when the quota resets
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
