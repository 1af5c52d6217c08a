package jobs

import (
	"context"
	"fmt"

	"github.com/bondquant/ftdfeed/internal/store"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// QualityCheckJob runs the data quality gate over every ingested period
// and persists a snapshot per period.
type QualityCheckJob struct {
	gate   *store.QualityGate
	repo   *store.Repository
	config store.QualityConfig
	logger *logger.Logger
}

// NewQualityCheckJob creates a new quality check job.
func NewQualityCheckJob(gate *store.QualityGate, repo *store.Repository, config store.QualityConfig, log *logger.Logger) *QualityCheckJob {
	return &QualityCheckJob{
		gate:   gate,
		repo:   repo,
		config: config,
		logger: log,
	}
}

// Name returns the job name.
func (j *QualityCheckJob) Name() string {
	return "quality_check"
}

// Schedule runs daily at 07:30 server time, after ingest.
func (j *QualityCheckJob) Schedule() string {
	return "0 30 7 * * *"
}

// Run executes the quality checks.
func (j *QualityCheckJob) Run(ctx context.Context) error {
	periods, err := j.repo.IngestedPeriods(ctx)
	if err != nil {
		return fmt.Errorf("failed to list ingested periods: %w", err)
	}

	var invalid int
	for _, p := range periods {
		snapshot, err := j.gate.Check(ctx, p.Label)
		if err != nil {
			return fmt.Errorf("quality check for period %s failed: %w", p.Label, err)
		}

		if err := j.gate.SaveSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to save snapshot for period %s: %w", p.Label, err)
		}

		if !snapshot.IsValid(j.config) {
			invalid++
			j.logger.WithFields(map[string]interface{}{
				"period":           p.Label,
				"quality_score":    snapshot.QualityScore,
				"symbol_coverage":  snapshot.SymbolCoverage,
				"zero_price_share": snapshot.ZeroPriceShare,
				"outlier_share":    snapshot.OutlierShare,
			}).Warn("Period failed quality gate")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"periods": len(periods),
		"invalid": invalid,
	}).Info("Quality check completed")

	return nil
}
