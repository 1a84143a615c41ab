package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the window, admits the request when there is room and
// otherwise reports how long until the oldest entry leaves the window.
// Returns {allowed, remaining, retry_after_ms}.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window_ms)

	local count = redis.call('ZCARD', key)
	if count < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		return {1, limit - count - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry = window_ms
	if oldest[2] then
		retry = tonumber(oldest[2]) + window_ms - now
	end
	return {0, 0, retry}
`)

// RateLimiter is a Redis sliding-window limiter shared by every screener
// process: scanner requests across fetch runs, actions per session
// ⭐ SSOT: 레이트 리밋은 여기서만
type RateLimiter struct {
	client *Client
	prefix string
	now    func() time.Time
	seq    atomic.Uint64
}

// RateLimitConfig defines rate limit parameters
type RateLimitConfig struct {
	Key    string        // e.g. "scanner", "session:<id>"
	Limit  int           // requests allowed per window
	Window time.Duration // window length
}

// For scopes a config to one caller, e.g. SessionRateLimit.For(id)
func (c RateLimitConfig) For(id string) RateLimitConfig {
	c.Key = c.Key + ":" + id
	return c
}

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // zero when allowed
}

// NewRateLimiter creates a limiter whose keys live under prefix
func NewRateLimiter(client *Client, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *RateLimiter) key(cfg RateLimitConfig) string {
	return fmt.Sprintf("%s:ratelimit:%s", r.prefix, cfg.Key)
}

// Allow records one request and reports whether it fits the window. A
// disabled client always allows.
func (r *RateLimiter) Allow(ctx context.Context, cfg RateLimitConfig) (Decision, error) {
	if !r.client.Enabled() {
		return Decision{Allowed: true, Remaining: cfg.Limit}, nil
	}

	now := r.now().UnixMilli()
	// members must be unique or two requests in the same millisecond count once
	member := strconv.FormatInt(now, 10) + "-" + strconv.FormatUint(r.seq.Add(1), 10)

	res, err := slidingWindow.Run(ctx, r.client.Redis(), []string{r.key(cfg)},
		now,
		cfg.Window.Milliseconds(),
		cfg.Limit,
		member,
	).Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	return decide(res)
}

// decide reads the script reply
func decide(res []interface{}) (Decision, error) {
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	vals := make([]int64, len(res))
	for i, v := range res {
		n, ok := v.(int64)
		if !ok {
			return Decision{}, fmt.Errorf("rate limit script: unexpected value %T", v)
		}
		vals[i] = n
	}

	d := Decision{Allowed: vals[0] == 1, Remaining: int(vals[1])}
	if !d.Allowed && vals[2] > 0 {
		d.RetryAfter = time.Duration(vals[2]) * time.Millisecond
	}
	return d, nil
}

// Wait blocks until a request is allowed or ctx ends
func (r *RateLimiter) Wait(ctx context.Context, cfg RateLimitConfig) error {
	for {
		d, err := r.Allow(ctx, cfg)
		if err != nil {
			return err
		}
		if d.Allowed {
			return nil
		}

		pause := d.RetryAfter
		if pause < 10*time.Millisecond {
			pause = 10 * time.Millisecond
		}
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Predefined limits
var (
	// TradingView scanner: 초당 10회 제한 (보수적)
	ScannerRateLimit = RateLimitConfig{
		Key:    "scanner",
		Limit:  10,
		Window: time.Second,
	}

	// Session actions, per session: 초당 20회
	SessionRateLimit = RateLimitConfig{
		Key:    "session",
		Limit:  20,
		Window: time.Second,
	}
)
