package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/pkg/logger"
	"github.com/wonny/asx-screener/pkg/redis"
)

const latestKey = "screener:cache:snapshot:latest"

func newMockCache(t *testing.T) (*Cache, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCache(redis.NewCache(redis.NewFromRedis(rdb), "screener"), redis.TTLLong), mock
}

func TestCache_Put(t *testing.T) {
	cache, mock := newMockCache(t)
	snap := &contracts.Snapshot{
		Date:    day("2026-02-18"),
		Records: []contracts.Record{{Symbol: "ASX:BHP", Close: contracts.Float(45.1)}},
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	mock.ExpectSet(latestKey, data, redis.TTLLong).SetVal("OK")
	require.NoError(t, cache.Put(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_CacheHit(t *testing.T) {
	cache, mock := newMockCache(t)
	snap := contracts.Snapshot{
		Date:    day("2026-02-18"),
		Records: []contracts.Record{{Symbol: "ASX:BHP"}, {Symbol: "ASX:CBA"}},
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	mock.ExpectGet(latestKey).SetVal(string(data))

	// empty store: a hit must not touch it
	loader := NewLoader(NewStore(t.TempDir()), logger.NewNop()).WithCache(cache)
	got, err := loader.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count())
	assert.Equal(t, "ASX:CBA", got.Records[1].Symbol)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_CacheMissLoadsStore(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.SaveRaw(day("2026-02-18"), sampleResponse(t))
	require.NoError(t, err)

	fromDisk, err := store.Latest()
	require.NoError(t, err)
	data, err := json.Marshal(fromDisk)
	require.NoError(t, err)

	cache, mock := newMockCache(t)
	mock.ExpectGet(latestKey).RedisNil()
	mock.ExpectSet(latestKey, data, redis.TTLLong).SetVal("OK")

	got, err := NewLoader(store, logger.NewNop()).WithCache(cache).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_CacheErrorFallsBack(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.SaveRaw(day("2026-02-18"), sampleResponse(t))
	require.NoError(t, err)

	cache, mock := newMockCache(t)
	mock.ExpectGet(latestKey).SetErr(errors.New("connection reset"))

	got, err := NewLoader(store, logger.NewNop()).WithCache(cache).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count())
}

func TestLoader_NoSnapshot(t *testing.T) {
	_, err := NewLoader(NewStore(t.TempDir()), logger.NewNop()).Latest(context.Background())
	assert.True(t, errors.Is(err, ErrNoSnapshot))
}

type fakeReader struct {
	snap *contracts.Snapshot
}

func (f *fakeReader) LatestDate(context.Context) (time.Time, error) {
	if f.snap == nil {
		return time.Time{}, ErrNoSnapshot
	}
	return f.snap.Date, nil
}

func (f *fakeReader) GetSnapshot(_ context.Context, date time.Time) (*contracts.Snapshot, error) {
	if f.snap == nil || !f.snap.Date.Equal(date) {
		return nil, ErrNoSnapshot
	}
	return f.snap, nil
}

func TestLoader_FallsBackToRepository(t *testing.T) {
	repo := &fakeReader{snap: &contracts.Snapshot{
		Date:    day("2026-02-17"),
		Records: []contracts.Record{{Symbol: "ASX:BHP"}},
	}}

	loader := NewLoader(NewStore(t.TempDir()), logger.NewNop()).WithRepository(repo)
	got, err := loader.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count())

	got, err = loader.Load(context.Background(), day("2026-02-17"))
	require.NoError(t, err)
	assert.Equal(t, "ASX:BHP", got.Records[0].Symbol)
}

func TestLoader_SummaryWithoutCache(t *testing.T) {
	snap := &contracts.Snapshot{
		Date: day("2026-02-18"),
		Records: []contracts.Record{
			{Symbol: "ASX:A", Change: contracts.Float(1)},
			{Symbol: "ASX:B", Change: contracts.Float(-1)},
		},
	}
	summary := NewLoader(NewStore(t.TempDir()), logger.NewNop()).Summary(context.Background(), snap)
	assert.Equal(t, 1, summary.Gainers)
	assert.Equal(t, 1, summary.Losers)
}
