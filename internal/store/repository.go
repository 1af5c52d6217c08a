package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bondquant/ftdfeed/internal/feed"
	"github.com/bondquant/ftdfeed/pkg/redis"
)

// Repository handles persistence of parsed fail records.
type Repository struct {
	db    *pgxpool.Pool
	cache *redis.Cache
}

// NewRepository creates a new Repository instance. cache may be a
// disabled client; every read degrades to the database.
func NewRepository(db *pgxpool.Pool, cache *redis.Cache) *Repository {
	return &Repository{db: db, cache: cache}
}

// Pool returns the underlying database pool.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.db
}

// EnsureSchema creates the feed schema and tables when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS ftd`,
		`CREATE TABLE IF NOT EXISTS ftd.fail_records (
			symbol          TEXT        NOT NULL,
			settlement_date DATE        NOT NULL,
			quantity        BIGINT      NOT NULL,
			price           NUMERIC(18,4) NOT NULL,
			available_at    TIMESTAMPTZ NOT NULL,
			period_label    TEXT        NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (symbol, settlement_date)
		)`,
		`CREATE INDEX IF NOT EXISTS fail_records_period_idx
			ON ftd.fail_records (period_label)`,
		`CREATE INDEX IF NOT EXISTS fail_records_date_idx
			ON ftd.fail_records (settlement_date)`,
		`CREATE TABLE IF NOT EXISTS ftd.ingested_periods (
			period_label TEXT        PRIMARY KEY,
			row_count    INTEGER     NOT NULL,
			ingested_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ftd.quality_snapshots (
			period_label      TEXT        PRIMARY KEY,
			total_rows        INTEGER     NOT NULL,
			symbols           INTEGER     NOT NULL,
			zero_price_share  DOUBLE PRECISION NOT NULL,
			outlier_share     DOUBLE PRECISION NOT NULL,
			symbol_coverage   DOUBLE PRECISION NOT NULL,
			quality_score     DOUBLE PRECISION NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveRecords upserts a batch of records under a period label.
func (r *Repository) SaveRecords(ctx context.Context, periodLabel string, records []feed.FailRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO ftd.fail_records (symbol, settlement_date, quantity, price, available_at, period_label)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, settlement_date) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price,
			available_at = EXCLUDED.available_at,
			period_label = EXCLUDED.period_label
	`

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(query,
			record.Symbol,
			record.SettlementDate,
			record.Quantity,
			record.Price.String(),
			record.AvailableAt,
			periodLabel,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("save records: %w", err)
		}
	}
	return nil
}

// GetBySymbol retrieves records for a symbol within a date range,
// ordered by settlement date.
func (r *Repository) GetBySymbol(ctx context.Context, symbol string, from, to time.Time) ([]feed.FailRecord, error) {
	query := `
		SELECT symbol, settlement_date, quantity, price, available_at
		FROM ftd.fail_records
		WHERE UPPER(symbol) = UPPER($1) AND settlement_date BETWEEN $2 AND $3
		ORDER BY settlement_date ASC
	`

	rows, err := r.db.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// recordCacheKey builds the cache key for one symbol-day lookup. The SQL
// match is case-insensitive, so the key folds the symbol to upper case.
func recordCacheKey(symbol string, date time.Time) string {
	return redis.RecordsKey(strings.ToUpper(symbol), date.Format("20060102"))
}

// GetBySymbolAndDate retrieves one symbol-day observation, cached.
func (r *Repository) GetBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*feed.FailRecord, error) {
	cacheKey := recordCacheKey(symbol, date)

	var cached cachedRecord
	if found, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		record, err := cached.toRecord()
		if err == nil {
			return &record, nil
		}
	}

	query := `
		SELECT symbol, settlement_date, quantity, price, available_at
		FROM ftd.fail_records
		WHERE UPPER(symbol) = UPPER($1) AND settlement_date = $2
	`

	var record feed.FailRecord
	var price string
	err := r.db.QueryRow(ctx, query, symbol, date).Scan(
		&record.Symbol, &record.SettlementDate, &record.Quantity, &price, &record.AvailableAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		// Absence is not an error, the feed is sparse.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}

	record.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse stored price: %w", err)
	}

	_ = r.cache.Set(ctx, cacheKey, newCachedRecord(record), redis.TTLDaily)
	return &record, nil
}

// PeriodStatus summarizes one ingested period.
type PeriodStatus struct {
	Label      string    `json:"label"`
	RowCount   int       `json:"row_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

// MarkPeriodIngested records that a period archive was loaded.
func (r *Repository) MarkPeriodIngested(ctx context.Context, label string, rowCount int) error {
	query := `
		INSERT INTO ftd.ingested_periods (period_label, row_count, ingested_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (period_label) DO UPDATE SET
			row_count = EXCLUDED.row_count,
			ingested_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, label, rowCount)
	if err != nil {
		return fmt.Errorf("mark period ingested: %w", err)
	}
	return nil
}

// IngestedPeriods lists ingested periods, newest first.
func (r *Repository) IngestedPeriods(ctx context.Context) ([]PeriodStatus, error) {
	query := `
		SELECT period_label, row_count, ingested_at
		FROM ftd.ingested_periods
		ORDER BY period_label DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var periods []PeriodStatus
	for rows.Next() {
		var p PeriodStatus
		if err := rows.Scan(&p.Label, &p.RowCount, &p.IngestedAt); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// cachedRecord is the JSON shape stored in Redis; decimal round-trips as
// a string.
type cachedRecord struct {
	Symbol         string    `json:"symbol"`
	SettlementDate time.Time `json:"settlement_date"`
	Quantity       int64     `json:"quantity"`
	Price          string    `json:"price"`
	AvailableAt    time.Time `json:"available_at"`
}

func newCachedRecord(r feed.FailRecord) cachedRecord {
	return cachedRecord{
		Symbol:         r.Symbol,
		SettlementDate: r.SettlementDate,
		Quantity:       r.Quantity,
		Price:          r.Price.String(),
		AvailableAt:    r.AvailableAt,
	}
}

func (c cachedRecord) toRecord() (feed.FailRecord, error) {
	price, err := decimal.NewFromString(c.Price)
	if err != nil {
		return feed.FailRecord{}, err
	}
	return feed.FailRecord{
		Symbol:         c.Symbol,
		SettlementDate: c.SettlementDate,
		Quantity:       c.Quantity,
		Price:          price,
		AvailableAt:    c.AvailableAt,
	}, nil
}

func scanRecords(rows pgx.Rows) ([]feed.FailRecord, error) {
	var records []feed.FailRecord
	for rows.Next() {
		var record feed.FailRecord
		var price string
		if err := rows.Scan(&record.Symbol, &record.SettlementDate, &record.Quantity, &price, &record.AvailableAt); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse stored price: %w", err)
		}
		record.Price = parsed
		records = append(records, record)
	}
	return records, rows.Err()
}
