package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bondquant/ftdfeed/internal/feed"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

const rawDateLayout = "20060102"

// Builder turns repaired raw SEC rows into the per-period archives the
// feed router points at: <dir>/<YYYYMMDD>.zip containing <YYYYMMDD>.csv
// with DATE,SYMBOL,QUANTITY,PRICE lines.
type Builder struct {
	dir    string
	logger *logger.Logger
}

// NewBuilder creates a builder writing under dir, typically
// <data>/alternative/sec/failstodeliver.
func NewBuilder(dir string, log *logger.Logger) *Builder {
	return &Builder{
		dir:    dir,
		logger: log.WithField("module", "archive"),
	}
}

// Dir returns the archive directory.
func (b *Builder) Dir() string {
	return b.dir
}

// Normalize filters repaired rows down to usable equity observations and
// groups their output lines by release period label. Rows drop when the
// CUSIP is not an equity issue, the price is missing or zero, the
// settlement date fails to parse, or it predates the series cutoff.
func Normalize(rows []RawRow) map[string][]string {
	periods := make(map[string][]string)

	for _, row := range rows {
		if !IsEquityCUSIP(row.CUSIP) {
			continue
		}

		price, err := decimal.NewFromString(strings.TrimSpace(row.Price))
		if err != nil || price.IsZero() {
			continue
		}

		settlement, err := time.Parse(rawDateLayout, strings.TrimSpace(row.SettlementDate))
		if err != nil || settlement.Before(EarliestSettlement) {
			continue
		}

		symbol := strings.TrimSpace(row.Symbol)
		if symbol == "" {
			continue
		}

		label := ReleasePeriod(settlement).Format(rawDateLayout)
		line := fmt.Sprintf("%s,%s,%s,%s",
			settlement.Format(rawDateLayout),
			symbol,
			formatQuantity(row.Quantity),
			price.StringFixed(2),
		)
		periods[label] = append(periods[label], line)
	}

	return periods
}

// formatQuantity renders a raw quantity field: integers as-is, fractional
// values to two decimals, anything unparseable as empty (the lenient
// line parser defaults it to zero downstream).
func formatQuantity(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return raw
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ""
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// WritePeriods writes or updates one archive per period. Existing entries
// are merged in and exact duplicate lines dropped, so re-running a build
// over overlapping raw files is idempotent.
func (b *Builder) WritePeriods(periods map[string][]string) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}

	labels := make([]string, 0, len(periods))
	for label := range periods {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		lines := periods[label]
		zipPath := filepath.Join(b.dir, label+".zip")
		entry := label + ".csv"

		existing, err := EntryLines(zipPath, entry)
		if err != nil && !os.IsNotExist(err) {
			b.logger.WithError(err).WithField("archive", zipPath).Warn("Unreadable archive replaced")
		}

		merged := dedupeLines(append(existing, lines...))
		if err := writeArchive(zipPath, entry, merged); err != nil {
			return fmt.Errorf("write archive %s: %w", zipPath, err)
		}

		b.logger.WithFields(map[string]interface{}{
			"archive": filepath.Base(zipPath),
			"rows":    len(merged),
		}).Info("Archive written")
	}

	return nil
}

// dedupeLines removes exact duplicates preserving first occurrence.
func dedupeLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := lines[:0]
	for _, line := range lines {
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}

// writeArchive writes a single-entry zip atomically via a temp file.
func writeArchive(zipPath, entry string, lines []string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(entry)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(strings.Join(lines, "\n") + "\n")); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	tmp := zipPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, zipPath)
}

// PeriodLabels lists the period labels of all archives under the builder
// directory, sorted ascending.
func (b *Builder) PeriodLabels() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read archive dir: %w", err)
	}

	var labels []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".zip") {
			continue
		}
		label := strings.TrimSuffix(name, ".zip")
		if _, err := time.Parse(rawDateLayout, label); err != nil {
			continue
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels, nil
}

// ArchiveDir returns the conventional archive directory under a data
// root, matching the feed router's layout.
func ArchiveDir(dataDir string) string {
	return filepath.Join(dataDir, feed.CategoryDir, feed.ProviderDir, feed.FeedDir)
}
