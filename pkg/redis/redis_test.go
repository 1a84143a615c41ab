package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestNewClient_NilRedisIsDisabled(t *testing.T) {
	client := NewFromRedis(nil)
	assert.False(t, client.Enabled())
	assert.True(t, errors.Is(client.Ping(context.Background()), ErrDisabled))
	assert.NoError(t, client.Close())
}

func TestOptions(t *testing.T) {
	opts, err := Options(&config.Config{Redis: config.RedisConfig{
		Host: "cache.internal", Port: "6380", Password: "secret", DB: 2,
	}})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, dialTimeout, opts.DialTimeout)
	assert.Equal(t, ioTimeout, opts.ReadTimeout)

	// REDIS_URL wins over the individual settings
	opts, err = Options(&config.Config{Redis: config.RedisConfig{
		URL: "redis://:pw@redis.example:6379/3", Host: "ignored", Port: "1",
	}})
	require.NoError(t, err)
	assert.Equal(t, "redis.example:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, ioTimeout, opts.WriteTimeout)

	_, err = Options(&config.Config{Redis: config.RedisConfig{URL: "http://not-redis"}})
	assert.Error(t, err)

	_, err = New(&config.Config{Redis: config.RedisConfig{URL: "http://not-redis"}})
	assert.Error(t, err)
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	d, err := limiter.Allow(context.Background(), ScannerRateLimit)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, ScannerRateLimit.Limit, d.Remaining)
	assert.NoError(t, limiter.Wait(context.Background(), ScannerRateLimit))
}

func fixedLimiter(t *testing.T) (*RateLimiter, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := NewRateLimiter(NewFromRedis(rdb), "screener")
	now := time.UnixMilli(1_771_400_000_000)
	limiter.now = func() time.Time { return now }
	return limiter, mock
}

func TestRateLimiter_Allow(t *testing.T) {
	limiter, mock := fixedLimiter(t)
	cfg := SessionRateLimit.For("abc")
	key := "screener:ratelimit:session:abc"

	mock.ExpectEvalSha(slidingWindow.Hash(), []string{key},
		int64(1_771_400_000_000), int64(1000), 20, "1771400000000-1").
		SetVal([]interface{}{int64(1), int64(19), int64(0)})
	mock.ExpectEvalSha(slidingWindow.Hash(), []string{key},
		int64(1_771_400_000_000), int64(1000), 20, "1771400000000-2").
		SetVal([]interface{}{int64(0), int64(0), int64(250)})

	d, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: true, Remaining: 19}, d)

	// same millisecond, distinct member
	d, err = limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 250*time.Millisecond, d.RetryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_AllowError(t *testing.T) {
	limiter, mock := fixedLimiter(t)

	mock.ExpectEvalSha(slidingWindow.Hash(), []string{"screener:ratelimit:scanner"},
		int64(1_771_400_000_000), int64(1000), 10, "1771400000000-1").
		SetErr(errors.New("connection refused"))

	_, err := limiter.Allow(context.Background(), ScannerRateLimit)
	assert.Error(t, err)
	assert.Error(t, limiter.Wait(context.Background(), ScannerRateLimit))
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		reply   []interface{}
		want    Decision
		wantErr bool
	}{
		{"allowed", []interface{}{int64(1), int64(4), int64(0)}, Decision{Allowed: true, Remaining: 4}, false},
		{"denied", []interface{}{int64(0), int64(0), int64(900)}, Decision{RetryAfter: 900 * time.Millisecond}, false},
		{"short reply", []interface{}{int64(1)}, Decision{}, true},
		{"wrong type", []interface{}{"1", int64(0), int64(0)}, Decision{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decide(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateLimitConfig_For(t *testing.T) {
	cfg := SessionRateLimit.For("s1")
	assert.Equal(t, "session:s1", cfg.Key)
	assert.Equal(t, SessionRateLimit.Limit, cfg.Limit)
	assert.Equal(t, "session", SessionRateLimit.Key, "base config untouched")

	limiter := NewRateLimiter(NewFromRedis(nil), "screener")
	assert.Equal(t, "screener:ratelimit:session:s1", limiter.key(cfg))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	var result string
	found, err := cache.Get(context.Background(), "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Set(context.Background(), "key", "value", TTLShort))
	assert.NoError(t, cache.Delete(context.Background(), "key"))
}

type payload struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func TestCache_GetHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cache := NewCache(NewFromRedis(rdb), "screener")
	mock.ExpectGet("screener:cache:snapshot:latest").SetVal(`{"date":"2026-02-18","count":2}`)

	var got payload
	found, err := cache.Get(context.Background(), LatestSnapshotKey(), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Date: "2026-02-18", Count: 2}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetMissAndError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cache := NewCache(NewFromRedis(rdb), "screener")
	mock.ExpectGet("screener:cache:summary:2026-02-18").RedisNil()
	mock.ExpectGet("screener:cache:summary:2026-02-19").SetErr(errors.New("connection reset"))

	var got payload
	found, err := cache.Get(context.Background(), SummaryKey("2026-02-18"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = cache.Get(context.Background(), SummaryKey("2026-02-19"), &got)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetOrSet(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cache := NewCache(NewFromRedis(rdb), "screener")
	value := payload{Date: "2026-02-18", Count: 3}
	data, err := json.Marshal(value)
	require.NoError(t, err)

	mock.ExpectGet("screener:cache:snapshot:2026-02-18").RedisNil()
	mock.ExpectSet("screener:cache:snapshot:2026-02-18", data, TTLDaily).SetVal("OK")

	calls := 0
	var got payload
	err = cache.GetOrSet(context.Background(), SnapshotKey("2026-02-18"), &got, TTLDaily, func() (interface{}, error) {
		calls++
		return value, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, value, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Delete(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cache := NewCache(NewFromRedis(rdb), "screener")
	mock.ExpectDel("screener:cache:snapshot:latest").SetVal(1)

	require.NoError(t, cache.Delete(context.Background(), LatestSnapshotKey()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{"LatestSnapshotKey", LatestSnapshotKey, "snapshot:latest"},
		{"SnapshotKey", func() string { return SnapshotKey("2026-02-18") }, "snapshot:2026-02-18"},
		{"SummaryKey", func() string { return SummaryKey("2026-02-18") }, "summary:2026-02-18"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fn())
		})
	}
}

func TestRateLimitConfigs(t *testing.T) {
	assert.Equal(t, "scanner", ScannerRateLimit.Key)
	assert.Equal(t, time.Second, ScannerRateLimit.Window)
	assert.Positive(t, SessionRateLimit.Limit)
}
