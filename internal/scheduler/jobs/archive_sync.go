package jobs

import (
	"context"
	"fmt"

	"github.com/bondquant/ftdfeed/internal/ingest"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// ArchiveSyncJob downloads new fails-to-deliver archives from the SEC and
// rebuilds the per-period archive tree from the raw files.
type ArchiveSyncJob struct {
	sync   *ingest.SyncService
	logger *logger.Logger
}

// NewArchiveSyncJob creates a new archive sync job.
func NewArchiveSyncJob(sync *ingest.SyncService, log *logger.Logger) *ArchiveSyncJob {
	return &ArchiveSyncJob{
		sync:   sync,
		logger: log,
	}
}

// Name returns the job name.
func (j *ArchiveSyncJob) Name() string {
	return "archive_sync"
}

// Schedule runs daily at 06:30 server time. The SEC publishes twice a
// month, so a daily check is cheap and catches late postings.
func (j *ArchiveSyncJob) Schedule() string {
	return "0 30 6 * * *"
}

// Run executes the sync.
func (j *ArchiveSyncJob) Run(ctx context.Context) error {
	summary, err := j.sync.Run(ctx)
	if err != nil {
		return fmt.Errorf("archive sync failed: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"downloaded": summary.Downloaded,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
		"raw_files":  summary.RawFiles,
		"periods":    summary.Periods,
	}).Info("Archive sync completed")

	if summary.Failed > 0 {
		return fmt.Errorf("archive sync completed with %d failed downloads", summary.Failed)
	}

	return nil
}
