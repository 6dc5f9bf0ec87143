package monitor

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds statistical measures of one collected series.
type Stats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Count  int     `json:"count" yaml:"count"`
}

// Summary aggregates a session's results for reporting.
type Summary struct {
	Rate      *Stats `json:"rate_bpm" yaml:"rate_bpm"`
	Amplitude *Stats `json:"amplitude" yaml:"amplitude"`
	PowerDB   *Stats `json:"power_db" yaml:"power_db"`

	PendingRates int     `json:"pending_rates" yaml:"pending_rates"`
	Overruns     uint64  `json:"overruns" yaml:"overruns"`
	DurationSec  float64 `json:"duration_seconds" yaml:"duration_seconds"`
}

// Summarize computes summary statistics over a finished session.
func Summarize(result *SessionResult) *Summary {
	var bpm []float64
	pending := 0
	for _, rate := range result.Rates {
		if rate.Pending {
			pending++
			continue
		}
		bpm = append(bpm, rate.BPM)
	}

	amplitudes := make([]float64, 0, len(result.Telemetry))
	powers := make([]float64, 0, len(result.Telemetry))
	for _, t := range result.Telemetry {
		amplitudes = append(amplitudes, t.Amplitude)
		powers = append(powers, t.PowerDB)
	}

	return &Summary{
		Rate:         calculateStats(bpm),
		Amplitude:    calculateStats(amplitudes),
		PowerDB:      calculateStats(powers),
		PendingRates: pending,
		Overruns:     result.Overruns,
		DurationSec:  result.Duration.Seconds(),
	}
}

// calculateStats calculates statistical measures for a dataset
func calculateStats(data []float64) *Stats {
	if len(data) == 0 {
		return &Stats{Count: 0}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	stats := &Stats{
		Count:  len(data),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Mean:   stat.Mean(data, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	if len(data) > 1 {
		stats.StdDev = stat.StdDev(data, nil)
	}

	return sanitizeStats(stats)
}

// sanitizeStats removes infinite and NaN values to prevent JSON serialization errors
func sanitizeStats(stats *Stats) *Stats {
	for _, v := range []*float64{&stats.Mean, &stats.Median, &stats.Min, &stats.Max, &stats.StdDev} {
		if math.IsInf(*v, 0) || math.IsNaN(*v) {
			*v = 0
		}
	}
	return stats
}
