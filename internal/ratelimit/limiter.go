// Package ratelimit implements a per-user sliding window rate limiter
// backed by Redis sorted sets.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Profile names a limit configuration. Different endpoints use different
// profiles against the same Redis backend.
type Profile struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Result is the outcome of a single rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is when the oldest counted request leaves the window, i.e. the
	// earliest time a denied caller could succeed.
	Reset time.Time
}

// RetryAfter returns the whole seconds until Reset, rounded up, never
// negative.
func (r Result) RetryAfter(now time.Time) int {
	d := r.Reset.Sub(now)
	if d <= 0 {
		return 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return secs
}

// slidingWindow prunes expired entries, counts the window, and records the
// request only when under the limit. Runs atomically so concurrent checks
// cannot both pass on the last slot.
//
// KEYS[1] = window key
// ARGV[1] = window start (ms), ARGV[2] = now (ms), ARGV[3] = limit,
// ARGV[4] = window length (ms), ARGV[5] = unique member
// Returns {allowed, count_after, oldest_ms}.
var slidingWindow = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
local allowed = 0
if count < tonumber(ARGV[3]) then
	redis.call('ZADD', KEYS[1], ARGV[2], ARGV[5])
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
	allowed = 1
	count = count + 1
end
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local oldestMs = tonumber(ARGV[2])
if oldest[2] then
	oldestMs = tonumber(oldest[2])
end
return {allowed, count, oldestMs}
`)

// Limiter checks requests against sliding window profiles.
type Limiter struct {
	client  *redis.Client
	profile Profile

	// now is replaceable in tests.
	now func() time.Time
}

// NewLimiter creates a limiter for one profile.
func NewLimiter(client *redis.Client, profile Profile) *Limiter {
	return &Limiter{
		client:  client,
		profile: profile,
		now:     time.Now,
	}
}

// Allow records a request attempt for the given user and reports whether it
// is within the profile's limit. Denied attempts are not recorded.
func (l *Limiter) Allow(ctx context.Context, userID string, member string) (*Result, error) {
	now := l.now()
	nowMs := now.UnixMilli()
	windowMs := l.profile.Window.Milliseconds()
	key := fmt.Sprintf("ratelimit:%s:%s", l.profile.Name, userID)

	vals, err := slidingWindow.Run(ctx, l.client,
		[]string{key},
		nowMs-windowMs, nowMs, l.profile.Limit, windowMs, member,
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("rate limit check failed: unexpected reply %v", vals)
	}

	allowed := vals[0] == 1
	count := int(vals[1])
	oldestMs := vals[2]

	remaining := l.profile.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   allowed,
		Limit:     l.profile.Limit,
		Remaining: remaining,
		Reset:     time.UnixMilli(oldestMs + windowMs),
	}, nil
}
