package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/pkg/config"
	"github.com/wonny/asx-screener/pkg/database"
)

func TestRowArgs(t *testing.T) {
	rec := contracts.Record{
		Symbol:    "ASX:BHP",
		Name:      contracts.String("BHP"),
		Sector:    contracts.String("Non-Energy Minerals"),
		Close:     contracts.Float(45.1),
		MarketCap: contracts.Float(2.2e11),
	}

	args, err := rowArgs(day("2026-02-18"), &rec)
	require.NoError(t, err)
	require.Len(t, args, 14)
	assert.Equal(t, "ASX:BHP", args[1])
	assert.Equal(t, rec.Close, args[7])
	assert.Nil(t, args[8].(*float64), "missing change stays NULL")

	var decoded contracts.Record
	require.NoError(t, json.Unmarshal(args[13].([]byte), &decoded))
	assert.Equal(t, rec, decoded)
}

// TestRepository_Integration needs a disposable PostgreSQL in DATABASE_URL
func TestRepository_Integration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, &config.Config{Database: config.DatabaseConfig{URL: url, MaxConns: 2}})
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db.Pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	date := day("1999-01-04")
	snap := &contracts.Snapshot{
		Date: date,
		Records: []contracts.Record{
			{Symbol: "ASX:ZZ1", MarketCap: contracts.Float(1e6), Change: contracts.Float(2)},
			{Symbol: "ASX:ZZ2", MarketCap: contracts.Float(5e6), Change: contracts.Float(-1)},
			{Symbol: "ASX:ZZ3"},
		},
	}
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM screener.snapshots WHERE snapshot_date = $1`, date)
	})

	n, err := repo.InsertSnapshot(ctx, snap, snap.Summarize())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// re-insert upserts
	_, err = repo.InsertSnapshot(ctx, snap, snap.Summarize())
	require.NoError(t, err)

	got, err := repo.GetSnapshot(ctx, date)
	require.NoError(t, err)
	require.Equal(t, 3, got.Count())
	assert.Equal(t, "ASX:ZZ2", got.Records[0].Symbol, "market cap descending")
	assert.Equal(t, "ASX:ZZ3", got.Records[2].Symbol, "missing market cap last")

	history, err := repo.History(ctx, "ASX:ZZ1", 5)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, 2.0, *history[0].Record.Change)

	dates, err := repo.Dates(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, dates)

	_, err = repo.GetSnapshot(ctx, day("1999-01-01"))
	assert.True(t, errors.Is(err, ErrNoSnapshot))
}
