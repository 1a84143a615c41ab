package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/asx-screener/internal/contracts"
)

// Repository persists daily snapshots in PostgreSQL
// ⭐ SSOT: 스냅샷 DB 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new snapshot repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS screener;

	CREATE TABLE IF NOT EXISTS screener.snapshots (
		snapshot_date    DATE PRIMARY KEY,
		total_stocks     INTEGER NOT NULL,
		market_cap_total DOUBLE PRECISION,
		avg_change       DOUBLE PRECISION,
		gainers          INTEGER NOT NULL DEFAULT 0,
		losers           INTEGER NOT NULL DEFAULT 0,
		unchanged        INTEGER NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS screener.stock_data (
		snapshot_date    DATE NOT NULL REFERENCES screener.snapshots (snapshot_date) ON DELETE CASCADE,
		symbol           TEXT NOT NULL,
		name             TEXT,
		exchange         TEXT,
		type             TEXT,
		sector           TEXT,
		industry         TEXT,
		close            DOUBLE PRECISION,
		change           DOUBLE PRECISION,
		volume           DOUBLE PRECISION,
		market_cap_basic DOUBLE PRECISION,
		rsi              DOUBLE PRECISION,
		recommend_all    DOUBLE PRECISION,
		raw_data         JSONB NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (snapshot_date, symbol)
	);

	CREATE INDEX IF NOT EXISTS idx_stock_data_symbol ON screener.stock_data (symbol);
	CREATE INDEX IF NOT EXISTS idx_stock_data_sector ON screener.stock_data (sector);
`

// EnsureSchema creates the snapshot tables if they do not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

const insertRowSQL = `
	INSERT INTO screener.stock_data (
		snapshot_date, symbol, name, exchange, type, sector, industry,
		close, change, volume, market_cap_basic, rsi, recommend_all, raw_data
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (snapshot_date, symbol) DO UPDATE SET
		name = EXCLUDED.name,
		exchange = EXCLUDED.exchange,
		type = EXCLUDED.type,
		sector = EXCLUDED.sector,
		industry = EXCLUDED.industry,
		close = EXCLUDED.close,
		change = EXCLUDED.change,
		volume = EXCLUDED.volume,
		market_cap_basic = EXCLUDED.market_cap_basic,
		rsi = EXCLUDED.rsi,
		recommend_all = EXCLUDED.recommend_all,
		raw_data = EXCLUDED.raw_data`

// rowArgs maps a record onto insertRowSQL parameters
func rowArgs(date time.Time, rec *contracts.Record) ([]interface{}, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", rec.Symbol, err)
	}
	return []interface{}{
		date, rec.Symbol, rec.Name, rec.Exchange, rec.Type, rec.Sector, rec.Industry,
		rec.Close, rec.Change, rec.Volume, rec.MarketCap, rec.RSI, rec.RecommendAll, raw,
	}, nil
}

// InsertSnapshot upserts the metadata row and every record in one
// transaction. Returns the number of records written.
func (r *Repository) InsertSnapshot(ctx context.Context, snap *contracts.Snapshot, summary contracts.Summary) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO screener.snapshots (
			snapshot_date, total_stocks, market_cap_total, avg_change, gainers, losers, unchanged
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			total_stocks = EXCLUDED.total_stocks,
			market_cap_total = EXCLUDED.market_cap_total,
			avg_change = EXCLUDED.avg_change,
			gainers = EXCLUDED.gainers,
			losers = EXCLUDED.losers,
			unchanged = EXCLUDED.unchanged,
			created_at = NOW()`,
		snap.Date, summary.TotalStocks, summary.MarketCapTotal, summary.AvgChange,
		summary.Gainers, summary.Losers, summary.Unchanged,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert snapshot metadata: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range snap.Records {
		args, err := rowArgs(snap.Date, &snap.Records[i])
		if err != nil {
			return 0, err
		}
		batch.Queue(insertRowSQL, args...)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range snap.Records {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("failed to insert %s: %w", snap.Records[i].Symbol, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return len(snap.Records), nil
}

// GetSnapshot loads every record stored for date, market cap descending
func (r *Repository) GetSnapshot(ctx context.Context, date time.Time) (*contracts.Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT raw_data
		FROM screener.stock_data
		WHERE snapshot_date = $1
		ORDER BY market_cap_basic DESC NULLS LAST, symbol
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	snap := &contracts.Snapshot{Date: date}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var rec contracts.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode row: %w", err)
		}
		snap.Records = append(snap.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(snap.Records) == 0 {
		return nil, fmt.Errorf("snapshot %s: %w", date.Format(dateLayout), ErrNoSnapshot)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// LatestDate returns the most recent snapshot date
func (r *Repository) LatestDate(ctx context.Context) (time.Time, error) {
	var date time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT snapshot_date FROM screener.snapshots
		ORDER BY snapshot_date DESC
		LIMIT 1
	`).Scan(&date)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest date: %w", err)
	}
	return date, nil
}

// Dates lists every stored snapshot date, newest first
func (r *Repository) Dates(ctx context.Context) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT snapshot_date FROM screener.snapshots
		ORDER BY snapshot_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// HistoryPoint is one symbol's record on one date
type HistoryPoint struct {
	Date   time.Time        `json:"date"`
	Record contracts.Record `json:"record"`
}

// History returns the last `days` stored records of symbol, newest first
func (r *Repository) History(ctx context.Context, symbol string, days int) ([]HistoryPoint, error) {
	if days <= 0 {
		days = 30
	}

	rows, err := r.pool.Query(ctx, `
		SELECT snapshot_date, raw_data
		FROM screener.stock_data
		WHERE symbol = $1
		ORDER BY snapshot_date DESC
		LIMIT $2
	`, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var points []HistoryPoint
	for rows.Next() {
		var p HistoryPoint
		var raw []byte
		if err := rows.Scan(&p.Date, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		if err := json.Unmarshal(raw, &p.Record); err != nil {
			return nil, fmt.Errorf("failed to decode history: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Symbols lists every symbol ever stored, sorted
func (r *Repository) Symbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT symbol FROM screener.stock_data
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
