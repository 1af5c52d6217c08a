package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bondquant/ftdfeed/pkg/config"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func TestReleasePeriod(t *testing.T) {
	tests := []struct {
		name       string
		settlement time.Time
		want       time.Time
	}{
		{
			"first half releases at month end",
			time.Date(2010, 10, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2010, 10, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			"fifteenth still first half",
			time.Date(2010, 10, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2010, 10, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			"second half releases mid next month",
			time.Date(2010, 10, 16, 0, 0, 0, 0, time.UTC),
			time.Date(2010, 11, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"february month end",
			time.Date(2011, 2, 3, 0, 0, 0, 0, time.UTC),
			time.Date(2011, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			"december second half rolls the year",
			time.Date(2010, 12, 20, 0, 0, 0, 0, time.UTC),
			time.Date(2011, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReleasePeriod(tt.settlement))
		})
	}
}

func TestNormalize(t *testing.T) {
	rows := []RawRow{
		{SettlementDate: "20101001", CUSIP: "036410106", Symbol: "ACNB", Quantity: "500", Price: "12.5"},
		{SettlementDate: "20101018", CUSIP: "036410106", Symbol: "ACNB", Quantity: "250", Price: "12.75"},
		{SettlementDate: "20101001", CUSIP: "136410106", Symbol: "BOND", Quantity: "100", Price: "9.00"},  // non-equity CUSIP
		{SettlementDate: "20101001", CUSIP: "036410106", Symbol: "FREE", Quantity: "100", Price: "0"},     // zero price
		{SettlementDate: "20090101", CUSIP: "036410106", Symbol: "OLD", Quantity: "100", Price: "1.00"},   // before cutoff
		{SettlementDate: "bad-date", CUSIP: "036410106", Symbol: "WHEN", Quantity: "100", Price: "1.00"},  // unparseable date
		{SettlementDate: "20101002", CUSIP: "036410106", Symbol: "NOQT", Quantity: "junk", Price: "2.00"}, // quantity unusable, kept empty
	}

	periods := Normalize(rows)
	require.Len(t, periods, 2)

	firstHalf := periods["20101031"]
	require.Len(t, firstHalf, 2)
	assert.Equal(t, "20101001,ACNB,500,12.50", firstHalf[0])
	assert.Equal(t, "20101002,NOQT,,2.00", firstHalf[1])

	secondHalf := periods["20101115"]
	require.Len(t, secondHalf, 1)
	assert.Equal(t, "20101018,ACNB,250,12.75", secondHalf[0])
}

func TestBuilder_WriteAndRead(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(dir, testLogger())

	periods := map[string][]string{
		"20101031": {
			"20101001,ACNB,500,12.50",
			"20101002,GME,1000,5.00",
		},
	}
	require.NoError(t, b.WritePeriods(periods))

	zipPath := filepath.Join(dir, "20101031.zip")
	lines, err := PeriodLines(zipPath, "20101031")
	require.NoError(t, err)
	assert.Equal(t, periods["20101031"], lines)

	labels, err := b.PeriodLabels()
	require.NoError(t, err)
	assert.Equal(t, []string{"20101031"}, labels)
}

func TestBuilder_MergeDedupes(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(dir, testLogger())

	require.NoError(t, b.WritePeriods(map[string][]string{
		"20101031": {"20101001,ACNB,500,12.50"},
	}))

	// Second build overlaps the first: the duplicate collapses, the new
	// row appends.
	require.NoError(t, b.WritePeriods(map[string][]string{
		"20101031": {
			"20101001,ACNB,500,12.50",
			"20101001,GME,1000,5.00",
		},
	}))

	lines, err := PeriodLines(filepath.Join(dir, "20101031.zip"), "20101031")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20101001,ACNB,500,12.50",
		"20101001,GME,1000,5.00",
	}, lines)
}

func TestPeriodLabels_EmptyDir(t *testing.T) {
	b := NewBuilder(filepath.Join(t.TempDir(), "missing"), testLogger())
	labels, err := b.PeriodLabels()
	require.NoError(t, err)
	assert.Empty(t, labels)
}
