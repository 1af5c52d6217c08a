package jobs

import (
	"context"
	"fmt"

	"github.com/bondquant/ftdfeed/internal/ingest"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// IngestJob parses the period archives on disk and loads the records into
// the database. Saves are upserts, so rerunning a period is harmless.
type IngestJob struct {
	ingestor *ingest.Ingestor
	config   ingest.Config
	logger   *logger.Logger
}

// NewIngestJob creates a new ingest job.
func NewIngestJob(ingestor *ingest.Ingestor, config ingest.Config, log *logger.Logger) *IngestJob {
	return &IngestJob{
		ingestor: ingestor,
		config:   config,
		logger:   log,
	}
}

// Name returns the job name.
func (j *IngestJob) Name() string {
	return "ingest"
}

// Schedule runs daily at 07:00 server time, after archive_sync.
func (j *IngestJob) Schedule() string {
	return "0 0 7 * * *"
}

// Run executes the ingest.
func (j *IngestJob) Run(ctx context.Context) error {
	results, err := j.ingestor.IngestAll(ctx, j.config)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var rows, failed int
	for _, r := range results {
		rows += r.Rows
		if r.Error != nil {
			failed++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"periods": len(results),
		"rows":    rows,
		"failed":  failed,
	}).Info("Ingest completed")

	if failed > 0 {
		return fmt.Errorf("ingest completed with %d failed periods", failed)
	}

	return nil
}
