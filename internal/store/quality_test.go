package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutlierShare(t *testing.T) {
	tests := []struct {
		name       string
		quantities []float64
		wantMin    float64
		wantMax    float64
	}{
		{
			name:       "too few samples",
			quantities: []float64{1, 2, 3},
			wantMin:    0,
			wantMax:    0,
		},
		{
			name:       "uniform distribution has no outliers",
			quantities: []float64{100, 110, 120, 130, 140, 150, 160, 170},
			wantMin:    0,
			wantMax:    0,
		},
		{
			name: "one extreme value",
			quantities: []float64{
				100, 110, 120, 130, 140, 150, 160, 170, 180, 1000000,
			},
			wantMin: 0.05,
			wantMax: 0.15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			share, err := outlierShare(tt.quantities)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, share, tt.wantMin)
			assert.LessOrEqual(t, share, tt.wantMax)
		})
	}
}

func TestQualityGate_calculateScore(t *testing.T) {
	gate := &QualityGate{config: DefaultQualityConfig()}

	tests := []struct {
		name     string
		snapshot QualitySnapshot
		wantMin  float64
		wantMax  float64
	}{
		{
			name: "clean period",
			snapshot: QualitySnapshot{
				TotalRows:      1000,
				SymbolCoverage: 1.0,
				ZeroPriceShare: 0.0,
				OutlierShare:   0.0,
			},
			wantMin: 0.99,
			wantMax: 1.01,
		},
		{
			name: "heavy symbol churn",
			snapshot: QualitySnapshot{
				TotalRows:      1000,
				SymbolCoverage: 0.5,
				ZeroPriceShare: 0.0,
				OutlierShare:   0.0,
			},
			wantMin: 0.70,
			wantMax: 0.80,
		},
		{
			name: "zero prices past threshold",
			snapshot: QualitySnapshot{
				TotalRows:      1000,
				SymbolCoverage: 1.0,
				ZeroPriceShare: 0.25,
				OutlierShare:   0.0,
			},
			wantMin: 0.75,
			wantMax: 0.85,
		},
		{
			name:     "empty period scores zero",
			snapshot: QualitySnapshot{TotalRows: 0},
			wantMin:  0,
			wantMax:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := gate.calculateScore(&tt.snapshot)
			assert.GreaterOrEqual(t, score, tt.wantMin)
			assert.LessOrEqual(t, score, tt.wantMax)
		})
	}
}

func TestQualitySnapshot_IsValid(t *testing.T) {
	cfg := DefaultQualityConfig()

	valid := QualitySnapshot{TotalRows: 100, QualityScore: 0.9}
	assert.True(t, valid.IsValid(cfg))

	lowScore := QualitySnapshot{TotalRows: 100, QualityScore: 0.5}
	assert.False(t, lowScore.IsValid(cfg))

	empty := QualitySnapshot{TotalRows: 0, QualityScore: 1.0}
	assert.False(t, empty.IsValid(cfg))
}
