// Package store provides the local SQLite candle cache.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	chrterrors "kline-chart/internal/errors"
	"kline-chart/internal/feed"
	"kline-chart/internal/models"
)

// SQLiteStore caches fetched candles so restarts and symbol switches
// do not always hit the exchange.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the cache database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS candles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		open_time INTEGER NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, interval, open_time)
	);

	CREATE INDEX IF NOT EXISTS idx_candles_lookup
		ON candles(symbol, interval, open_time);

	CREATE TABLE IF NOT EXISTS fetch_times (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		fetched_at DATETIME NOT NULL,
		PRIMARY KEY(symbol, interval)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return chrterrors.Wrap(chrterrors.ErrDatabaseError, err.Error())
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCandles upserts a batch for one symbol and interval and records
// the fetch time.
func (s *SQLiteStore) SaveCandles(ctx context.Context, symbol string, interval models.Interval, batch feed.HistoryBatch) error {
	if len(batch.Candles) == 0 {
		return nil
	}
	if len(batch.Volumes) != len(batch.Candles) {
		return chrterrors.NewValidationError("volumes", fmt.Sprint(len(batch.Volumes)), "volume count must match candle count")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, interval, open_time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, c := range batch.Candles {
		_, err := stmt.ExecContext(ctx, symbol, string(interval), c.Time, c.Open, c.High, c.Low, c.Close, batch.Volumes[i])
		if err != nil {
			return fmt.Errorf("failed to insert candle: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO fetch_times (symbol, interval, fetched_at)
		VALUES (?, ?, ?)
	`, symbol, string(interval), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record fetch time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadCandles returns the cached batch in ascending open time order.
func (s *SQLiteStore) LoadCandles(ctx context.Context, symbol string, interval models.Interval) (feed.HistoryBatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT open_time, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND interval = ?
		ORDER BY open_time ASC
	`, symbol, string(interval))
	if err != nil {
		return feed.HistoryBatch{}, fmt.Errorf("failed to query candles: %w", err)
	}
	defer rows.Close()

	var batch feed.HistoryBatch
	for rows.Next() {
		var c models.Candle
		var volume float64
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &volume); err != nil {
			return feed.HistoryBatch{}, fmt.Errorf("failed to scan candle: %w", err)
		}
		batch.Candles = append(batch.Candles, c)
		batch.Volumes = append(batch.Volumes, volume)
	}
	if err := rows.Err(); err != nil {
		return feed.HistoryBatch{}, fmt.Errorf("failed to read candles: %w", err)
	}
	if len(batch.Candles) == 0 {
		return feed.HistoryBatch{}, chrterrors.ErrNoData
	}
	return batch, nil
}

// Freshness returns when the cache for the symbol and interval was last
// written. Returns ErrNoData when nothing is cached.
func (s *SQLiteStore) Freshness(ctx context.Context, symbol string, interval models.Interval) (time.Time, error) {
	var fetchedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT fetched_at FROM fetch_times WHERE symbol = ? AND interval = ?
	`, symbol, string(interval)).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, chrterrors.ErrNoData
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query fetch time: %w", err)
	}
	return fetchedAt, nil
}

// Prune deletes cached candles older than the cutoff open time.
func (s *SQLiteStore) Prune(ctx context.Context, symbol string, interval models.Interval, before int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM candles WHERE symbol = ? AND interval = ? AND open_time < ?
	`, symbol, string(interval), before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune candles: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
