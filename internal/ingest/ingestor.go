package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bondquant/ftdfeed/internal/archive"
	"github.com/bondquant/ftdfeed/internal/feed"
	"github.com/bondquant/ftdfeed/internal/store"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// Ingestor loads period archives into the database through the feed
// parser.
type Ingestor struct {
	repo    *store.Repository
	builder *archive.Builder
	parser  *feed.Parser
	logger  *logger.Logger
}

// Config holds ingestor configuration.
type Config struct {
	Workers int // Number of concurrent workers
}

// NewIngestor creates a new Ingestor. The parser should be the lenient
// collection shape; a caller wanting the strict policy passes its own.
func NewIngestor(repo *store.Repository, builder *archive.Builder, parser *feed.Parser, log *logger.Logger) *Ingestor {
	return &Ingestor{
		repo:    repo,
		builder: builder,
		parser:  parser,
		logger:  log.WithField("module", "ingest"),
	}
}

// Result represents the outcome of ingesting one period.
type Result struct {
	Period string
	Rows   int
	Error  error
}

// IngestAll ingests every period archive on disk through a worker pool.
func (i *Ingestor) IngestAll(ctx context.Context, cfg Config) ([]Result, error) {
	labels, err := i.builder.PeriodLabels()
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}

	i.logger.WithFields(map[string]interface{}{
		"periods": len(labels),
		"workers": cfg.Workers,
	}).Info("Starting ingestion")

	results := make([]Result, 0, len(labels))
	resultCh := make(chan Result, len(labels))
	labelCh := make(chan string, len(labels))

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			i.worker(ctx, workerID, labelCh, resultCh)
		}(w)
	}

	for _, label := range labels {
		labelCh <- label
	}
	close(labelCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	successCount := 0
	failCount := 0
	totalRows := 0
	for result := range resultCh {
		results = append(results, result)
		if result.Error != nil {
			failCount++
		} else {
			successCount++
			totalRows += result.Rows
		}
	}

	i.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  failCount,
		"rows":    totalRows,
	}).Info("Ingestion completed")

	return results, nil
}

// worker processes period ingestion.
func (i *Ingestor) worker(ctx context.Context, workerID int, labelCh <-chan string, resultCh chan<- Result) {
	for label := range labelCh {
		select {
		case <-ctx.Done():
			resultCh <- Result{Period: label, Error: ctx.Err()}
			return
		default:
		}

		rows, err := i.IngestPeriod(ctx, label)
		if err != nil {
			i.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"period": label,
			}).Error("Failed to ingest period")
			resultCh <- Result{Period: label, Error: err}
			continue
		}

		i.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"period": label,
			"rows":   rows,
		}).Debug("Ingested period")

		resultCh <- Result{Period: label, Rows: rows}
	}
}

// IngestPeriod folds one period archive through the parser and saves the
// resulting records.
func (i *Ingestor) IngestPeriod(ctx context.Context, label string) (int, error) {
	date, err := time.Parse("20060102", label)
	if err != nil {
		return 0, fmt.Errorf("bad period label %q: %w", label, err)
	}

	zipPath := filepath.Join(i.builder.Dir(), label+".zip")
	lines, err := archive.PeriodLines(zipPath, label)
	if err != nil {
		return 0, fmt.Errorf("read period %s: %w", label, err)
	}

	collection := feed.Fold(date, lines, i.parser)
	records := collection.Records()

	if err := i.repo.SaveRecords(ctx, label, records); err != nil {
		return 0, fmt.Errorf("save period %s: %w", label, err)
	}
	if err := i.repo.MarkPeriodIngested(ctx, label, len(records)); err != nil {
		return 0, err
	}

	return len(records), nil
}
