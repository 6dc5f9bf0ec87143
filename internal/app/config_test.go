package app

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmora/breathscope/configs"
	"github.com/calmora/breathscope/internal/monitor"
	"github.com/calmora/breathscope/pkg/breath"
)

func loadDefaults(t *testing.T) *configs.Config {
	t.Helper()

	v := viper.New()
	configs.SetDefaults(v)

	config := &configs.Config{}
	require.NoError(t, v.Unmarshal(config))
	return config
}

func TestEstimatorConfigMapping(t *testing.T) {
	appCfg := loadDefaults(t)

	estCfg := EstimatorConfig(appCfg)

	assert.Equal(t, 24000, estCfg.SampleRate)
	assert.Equal(t, 100.0, estCfg.BandLowHz)
	assert.Equal(t, 2000.0, estCfg.BandHighHz)
	assert.Equal(t, 512, estCfg.FastFrameSize)
	assert.Equal(t, 256, estCfg.FastHopSize)
	assert.Equal(t, 5.0, estCfg.AnalysisWindowSeconds)
	assert.Equal(t, 2.5, estCfg.AnalysisOverlapSeconds)
	assert.Equal(t, 12.0, estCfg.RateMinBPM)
	assert.Equal(t, 25.0, estCfg.RateMaxBPM)

	// The default configuration must produce a runnable estimator.
	require.NoError(t, estCfg.Validate())
}

func TestSummaryTableSections(t *testing.T) {
	summary := &monitor.Summary{
		Rate:        &monitor.Stats{Mean: 17.6, Count: 5},
		DurationSec: 30,
	}

	sections := summaryTable(summary)

	require.Contains(t, sections, "session")
	require.Contains(t, sections, "rate_bpm")
	assert.Equal(t, 17.6, sections["rate_bpm"]["mean"])
	assert.Equal(t, 30.0, sections["session"]["duration_seconds"])

	// Nil stats blocks are omitted entirely.
	assert.NotContains(t, sections, "amplitude")
	assert.NotContains(t, sections, "power_db")
}

func TestLivePrinterSkipsPending(t *testing.T) {
	var buf bytes.Buffer
	sink := newLivePrinter(&buf)

	sink.OnRate(breath.RateEstimate{Pending: true})
	assert.Empty(t, buf.String())

	sink.OnRate(breath.RateEstimate{BPM: 17.6, Window: 3})
	assert.Equal(t, "window 3: 17.6 bpm\n", buf.String())
}
