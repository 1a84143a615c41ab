package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/internal/screener"
)

func snapshot() *contracts.Snapshot {
	return &contracts.Snapshot{Records: []contracts.Record{
		{Symbol: "ASX:AAA", Close: contracts.Float(1)},
		{Symbol: "ASX:BBB", Close: contracts.Float(2)},
	}}
}

// fakeClock returns a store whose clock is advanced by the returned func
func fakeClock(ttl time.Duration) (*Store, func(time.Duration)) {
	store := NewStore(ttl)
	now := time.Date(2026, 2, 18, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return store, func(d time.Duration) { now = now.Add(d) }
}

func TestStore_CreateGetDelete(t *testing.T) {
	store := NewStore(time.Minute)

	sess, view, err := store.Create(snapshot(), screener.Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	assert.True(t, store.Delete(sess.ID))
	assert.False(t, store.Delete(sess.ID))

	_, err = store.Get(sess.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_CreateRejectsBadSnapshot(t *testing.T) {
	store := NewStore(time.Minute)
	_, _, err := store.Create(&contracts.Snapshot{Records: []contracts.Record{{}}}, screener.Options{})
	assert.True(t, errors.Is(err, contracts.ErrMissingSymbol))
	assert.Zero(t, store.Len())
}

func TestStore_Expiry(t *testing.T) {
	store, advance := fakeClock(10 * time.Minute)

	idle, _, err := store.Create(snapshot(), screener.Options{})
	require.NoError(t, err)
	active, _, err := store.Create(snapshot(), screener.Options{})
	require.NoError(t, err)

	advance(6 * time.Minute)
	_, err = store.Get(active.ID)
	require.NoError(t, err)

	advance(6 * time.Minute)
	assert.Equal(t, 1, store.Cleanup())

	_, err = store.Get(idle.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.Get(active.ID)
	assert.NoError(t, err)

	// Get on an expired session removes it without waiting for Cleanup
	advance(11 * time.Minute)
	_, err = store.Get(active.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Zero(t, store.Len())
}

func TestSession_DoSerializes(t *testing.T) {
	store := NewStore(time.Minute)
	sess, _, err := store.Create(snapshot(), screener.Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = sess.Do(func(c *screener.Controller) (screener.View, error) {
				return c.ToggleSort(columns.FieldClose), nil
			})
		}()
	}
	wg.Wait()

	// 20 toggles on the three-step cycle end on descending
	view, err := sess.Do(func(c *screener.Controller) (screener.View, error) { return c.View(), nil })
	require.NoError(t, err)
	assert.Equal(t, screener.Descending, view.Sort.Direction)
	assert.Equal(t, columns.FieldClose, view.Sort.Field)
}
