package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bondquant/ftdfeed/internal/archive"
	"github.com/bondquant/ftdfeed/internal/external/sec"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// SyncService drives one end-to-end archive sync: discover the SEC zip
// URLs, download what the ledger does not already have, extract the raw
// exports, repair and normalize them, and fold the rows into the
// per-period archives the feed routes to.
type SyncService struct {
	client  *sec.Client
	builder *archive.Builder
	ledger  *sec.Ledger
	logger  *logger.Logger
}

// NewSyncService creates a new SyncService.
func NewSyncService(client *sec.Client, builder *archive.Builder, ledger *sec.Ledger, log *logger.Logger) *SyncService {
	return &SyncService{
		client:  client,
		builder: builder,
		ledger:  ledger,
		logger:  log.WithField("module", "sync"),
	}
}

// SyncSummary reports what one sync run did.
type SyncSummary struct {
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	RawFiles   int `json:"raw_files"`
	Periods    int `json:"periods"`
}

// Run performs a full sync.
func (s *SyncService) Run(ctx context.Context) (SyncSummary, error) {
	var summary SyncSummary

	urls, err := s.client.DiscoverArchiveURLs(ctx)
	if err != nil {
		return summary, fmt.Errorf("discover archives: %w", err)
	}

	result, err := s.client.DownloadArchives(ctx, urls, s.builder.Dir(), s.ledger)
	if err != nil {
		return summary, fmt.Errorf("download archives: %w", err)
	}
	summary.Downloaded = result.Downloaded
	summary.Skipped = result.Skipped
	summary.Failed = result.Failed

	periods, rawFiles, err := s.BuildFromRaw()
	if err != nil {
		return summary, err
	}
	summary.RawFiles = rawFiles
	summary.Periods = periods

	s.logger.WithFields(map[string]interface{}{
		"downloaded": summary.Downloaded,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
		"raw_files":  summary.RawFiles,
		"periods":    summary.Periods,
	}).Info("Sync completed")

	return summary, nil
}

// BuildFromRaw extracts and processes whatever raw exports sit in the
// archive directory. Callable on its own for manually dropped files.
func (s *SyncService) BuildFromRaw() (periods int, rawFiles int, err error) {
	extracted, err := archive.ExtractRaw(s.builder.Dir())
	if err != nil {
		return 0, 0, fmt.Errorf("extract raw archives: %w", err)
	}

	touched := make(map[string]struct{})
	for _, rawPath := range extracted {
		labels, err := s.processRawFile(rawPath)
		if err != nil {
			// A single bad export must not abort the sync
			s.logger.WithError(err).WithField("file", filepath.Base(rawPath)).Error("Raw file skipped")
			continue
		}
		rawFiles++
		for _, label := range labels {
			touched[label] = struct{}{}
		}
	}

	return len(touched), rawFiles, nil
}

// processRawFile repairs and normalizes one raw export, writes its
// period archives, and removes the file.
func (s *SyncService) processRawFile(rawPath string) ([]string, error) {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, fmt.Errorf("read raw file: %w", err)
	}

	rows := archive.Repair(string(data))
	if len(rows) == 0 {
		// Not a fails export after all; drop it like any processed file
		_ = os.Remove(rawPath)
		return nil, nil
	}

	periods := archive.Normalize(rows)
	if err := s.builder.WritePeriods(periods); err != nil {
		return nil, err
	}

	if err := os.Remove(rawPath); err != nil {
		return nil, fmt.Errorf("remove raw file: %w", err)
	}

	labels := make([]string, 0, len(periods))
	for label := range periods {
		labels = append(labels, label)
	}

	s.logger.WithFields(map[string]interface{}{
		"file":    filepath.Base(rawPath),
		"rows":    len(rows),
		"periods": len(labels),
	}).Debug("Raw file processed")

	return labels, nil
}
