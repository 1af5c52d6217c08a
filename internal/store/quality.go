package store

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

// QualityGate validates ingested periods and produces snapshots.
type QualityGate struct {
	repo   *Repository
	config QualityConfig
}

// QualityConfig holds quality thresholds.
type QualityConfig struct {
	MinSymbolCoverage float64 // vs previous period symbol count
	MaxZeroPriceShare float64
	MaxOutlierShare   float64
	MinScore          float64
}

// DefaultQualityConfig returns thresholds tuned for the half-month SEC
// files: symbol churn between periods is normal, extreme quantity
// outliers are not.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		MinSymbolCoverage: 0.70,
		MaxZeroPriceShare: 0.05,
		MaxOutlierShare:   0.02,
		MinScore:          0.70,
	}
}

// NewQualityGate creates a new QualityGate instance.
func NewQualityGate(repo *Repository, config QualityConfig) *QualityGate {
	return &QualityGate{repo: repo, config: config}
}

// QualitySnapshot summarizes one period's data quality.
type QualitySnapshot struct {
	Period         string    `json:"period"`
	TotalRows      int       `json:"total_rows"`
	Symbols        int       `json:"symbols"`
	ZeroPriceShare float64   `json:"zero_price_share"`
	OutlierShare   float64   `json:"outlier_share"`
	SymbolCoverage float64   `json:"symbol_coverage"`
	QualityScore   float64   `json:"quality_score"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsValid reports whether the snapshot clears the configured floor.
func (s QualitySnapshot) IsValid(cfg QualityConfig) bool {
	return s.TotalRows > 0 && s.QualityScore >= cfg.MinScore
}

// Check validates data quality for one ingested period.
func (g *QualityGate) Check(ctx context.Context, period string) (*QualitySnapshot, error) {
	snapshot := &QualitySnapshot{Period: period, CreatedAt: time.Now()}

	// 1. Row and symbol counts
	query := `
		SELECT COUNT(*), COUNT(DISTINCT symbol),
			COALESCE(AVG(CASE WHEN price = 0 THEN 1.0 ELSE 0.0 END), 0)
		FROM ftd.fail_records
		WHERE period_label = $1
	`
	err := g.repo.db.QueryRow(ctx, query, period).Scan(
		&snapshot.TotalRows, &snapshot.Symbols, &snapshot.ZeroPriceShare,
	)
	if err != nil {
		return nil, fmt.Errorf("count period rows: %w", err)
	}

	// 2. Symbol coverage vs the previous period
	coverage, err := g.symbolCoverage(ctx, period, snapshot.Symbols)
	if err != nil {
		return nil, fmt.Errorf("symbol coverage: %w", err)
	}
	snapshot.SymbolCoverage = coverage

	// 3. Quantity outlier scan
	outliers, err := g.outlierShare(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("outlier scan: %w", err)
	}
	snapshot.OutlierShare = outliers

	snapshot.QualityScore = g.calculateScore(snapshot)
	return snapshot, nil
}

// symbolCoverage compares this period's symbol count against the
// previous ingested period. The first period scores full coverage.
func (g *QualityGate) symbolCoverage(ctx context.Context, period string, symbols int) (float64, error) {
	query := `
		SELECT COUNT(DISTINCT symbol)
		FROM ftd.fail_records
		WHERE period_label = (
			SELECT MAX(period_label) FROM ftd.fail_records WHERE period_label < $1
		)
	`

	var previous int
	if err := g.repo.db.QueryRow(ctx, query, period).Scan(&previous); err != nil {
		return 0, err
	}

	if previous == 0 {
		return 1.0, nil
	}

	coverage := float64(symbols) / float64(previous)
	if coverage > 1.0 {
		coverage = 1.0
	}
	return coverage, nil
}

// outlierShare computes the share of quantities beyond the Tukey upper
// fence (Q3 + 3*IQR) for the period.
func (g *QualityGate) outlierShare(ctx context.Context, period string) (float64, error) {
	query := `
		SELECT quantity FROM ftd.fail_records
		WHERE period_label = $1 AND quantity > 0
	`

	rows, err := g.repo.db.Query(ctx, query, period)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var quantities []float64
	for rows.Next() {
		var q int64
		if err := rows.Scan(&q); err != nil {
			return 0, err
		}
		quantities = append(quantities, float64(q))
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return outlierShare(quantities)
}

// outlierShare is the pure computation, split out for testing.
func outlierShare(quantities []float64) (float64, error) {
	if len(quantities) < 4 {
		return 0, nil
	}

	quartiles, err := stats.Quartile(quantities)
	if err != nil {
		return 0, fmt.Errorf("quartiles: %w", err)
	}

	iqr := quartiles.Q3 - quartiles.Q1
	fence := quartiles.Q3 + 3*iqr

	outliers := 0
	for _, q := range quantities {
		if q > fence {
			outliers++
		}
	}
	return float64(outliers) / float64(len(quantities)), nil
}

// calculateScore folds the individual checks into one weighted score.
func (g *QualityGate) calculateScore(s *QualitySnapshot) float64 {
	if s.TotalRows == 0 {
		return 0
	}

	weights := map[string]float64{
		"coverage":   0.50,
		"zero_price": 0.25,
		"outliers":   0.25,
	}

	zeroPriceScore := 1.0
	if g.config.MaxZeroPriceShare > 0 && s.ZeroPriceShare > g.config.MaxZeroPriceShare {
		zeroPriceScore = g.config.MaxZeroPriceShare / s.ZeroPriceShare
	}

	outlierScore := 1.0
	if g.config.MaxOutlierShare > 0 && s.OutlierShare > g.config.MaxOutlierShare {
		outlierScore = g.config.MaxOutlierShare / s.OutlierShare
	}

	return s.SymbolCoverage*weights["coverage"] +
		zeroPriceScore*weights["zero_price"] +
		outlierScore*weights["outliers"]
}

// SaveSnapshot persists a quality snapshot.
func (g *QualityGate) SaveSnapshot(ctx context.Context, s *QualitySnapshot) error {
	query := `
		INSERT INTO ftd.quality_snapshots (
			period_label, total_rows, symbols, zero_price_share,
			outlier_share, symbol_coverage, quality_score, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (period_label) DO UPDATE SET
			total_rows = EXCLUDED.total_rows,
			symbols = EXCLUDED.symbols,
			zero_price_share = EXCLUDED.zero_price_share,
			outlier_share = EXCLUDED.outlier_share,
			symbol_coverage = EXCLUDED.symbol_coverage,
			quality_score = EXCLUDED.quality_score,
			created_at = NOW()
	`

	_, err := g.repo.db.Exec(ctx, query,
		s.Period, s.TotalRows, s.Symbols, s.ZeroPriceShare,
		s.OutlierShare, s.SymbolCoverage, s.QualityScore,
	)
	if err != nil {
		return fmt.Errorf("save quality snapshot: %w", err)
	}
	return nil
}

// LatestSnapshots returns the most recent snapshots, newest first.
func (g *QualityGate) LatestSnapshots(ctx context.Context, limit int) ([]QualitySnapshot, error) {
	query := `
		SELECT period_label, total_rows, symbols, zero_price_share,
			outlier_share, symbol_coverage, quality_score, created_at
		FROM ftd.quality_snapshots
		ORDER BY period_label DESC
		LIMIT $1
	`

	rows, err := g.repo.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []QualitySnapshot
	for rows.Next() {
		var s QualitySnapshot
		if err := rows.Scan(&s.Period, &s.TotalRows, &s.Symbols, &s.ZeroPriceShare,
			&s.OutlierShare, &s.SymbolCoverage, &s.QualityScore, &s.CreatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
