package monitor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmora/breathscope/pkg/breath"
)

func TestCalculateStats(t *testing.T) {
	stats := calculateStats([]float64{5, 1, 3, 2, 4})

	assert.Equal(t, 5, stats.Count)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 5.0, stats.Max)
	assert.Equal(t, 3.0, stats.Mean)
	assert.Equal(t, 3.0, stats.Median)
	assert.InDelta(t, math.Sqrt(2.5), stats.StdDev, 1e-12)
}

func TestCalculateStatsEmpty(t *testing.T) {
	stats := calculateStats(nil)

	assert.Equal(t, 0, stats.Count)
	assert.Zero(t, stats.Mean)
	assert.Zero(t, stats.StdDev)
}

func TestCalculateStatsSingleValue(t *testing.T) {
	stats := calculateStats([]float64{17.5})

	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 17.5, stats.Mean)
	assert.Equal(t, 17.5, stats.Median)
	assert.Zero(t, stats.StdDev)
}

func TestSanitizeStatsReplacesNonFinite(t *testing.T) {
	stats := sanitizeStats(&Stats{
		Mean:   math.Inf(1),
		Median: math.NaN(),
		Min:    -1,
		Max:    math.Inf(-1),
		StdDev: math.NaN(),
		Count:  3,
	})

	assert.Zero(t, stats.Mean)
	assert.Zero(t, stats.Median)
	assert.Equal(t, -1.0, stats.Min)
	assert.Zero(t, stats.Max)
	assert.Zero(t, stats.StdDev)
}

func TestSummarize(t *testing.T) {
	result := &SessionResult{
		Telemetry: []breath.Telemetry{
			{Amplitude: 0.2, PowerDB: -20},
			{Amplitude: 0.4, PowerDB: -10},
		},
		Rates: []breath.RateEstimate{
			{Pending: true},
			{BPM: 16, Window: 1},
			{Pending: true},
			{BPM: 20, Window: 2},
		},
		Overruns: 2,
		Duration: 30 * time.Second,
	}

	summary := Summarize(result)

	require.NotNil(t, summary.Rate)
	assert.Equal(t, 2, summary.Rate.Count)
	assert.Equal(t, 18.0, summary.Rate.Mean)
	assert.Equal(t, 16.0, summary.Rate.Min)
	assert.Equal(t, 20.0, summary.Rate.Max)

	assert.Equal(t, 2, summary.PendingRates)
	assert.Equal(t, uint64(2), summary.Overruns)
	assert.Equal(t, 30.0, summary.DurationSec)

	require.NotNil(t, summary.Amplitude)
	assert.InDelta(t, 0.3, summary.Amplitude.Mean, 1e-12)
	require.NotNil(t, summary.PowerDB)
	assert.Equal(t, -10.0, summary.PowerDB.Max)
}
