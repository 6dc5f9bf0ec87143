package monitor

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmora/breathscope/pkg/breath"
	"github.com/calmora/breathscope/pkg/stream"
	"github.com/calmora/breathscope/pkg/stream/common"
)

func testEstimatorConfig() breath.Config {
	return breath.Config{
		SampleRate:            100,
		BandLowHz:             0.1,
		BandHighHz:            2.0,
		FastFrameSize:         64,
		FastHopSize:           32,
		AnalysisWindowSeconds: 10,
		RateMinBPM:            12,
		RateMaxBPM:            25,
		AccumulateFiltered:    true,
	}
}

// toneSource returns a Source delivering a 0.3 Hz tone for the given
// number of seconds, encoded through the s16le wire format.
func toneSource(t *testing.T, seconds int) stream.Source {
	t.Helper()

	const sampleRate = 100
	n := sampleRate * seconds
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*0.3*float64(i)/sampleRate)
	}

	source, err := stream.NewReaderSource(bytes.NewReader(common.EncodeS16LE(samples)), "tone", stream.SourceConfig{
		SampleRate: sampleRate,
		Format:     common.FormatS16LE,
		FrameSize:  256,
	})
	require.NoError(t, err)
	return source
}

func TestSessionRunCollectsRates(t *testing.T) {
	session, err := NewSession(SessionConfig{Estimator: testEstimatorConfig()})
	require.NoError(t, err)

	source := toneSource(t, 30)
	defer source.Close()

	result, err := session.Run(context.Background(), source)
	require.NoError(t, err)

	assert.Equal(t, 3000, result.SamplesRead)
	assert.Equal(t, 12, result.FramesRead) // 3000 samples over 256-sample frames
	assert.Zero(t, result.Overruns)
	assert.GreaterOrEqual(t, result.EndTime.Sub(result.StartTime), result.Duration)

	// 10 s windows with the default 5 s hop over 30 s of input.
	final := result.FinalRates()
	require.Len(t, final, 5)
	for _, rate := range final {
		assert.InDelta(t, 18.0, rate.BPM, 2.0)
	}

	// Telemetry arrives for every fast frame and carries real signal.
	assert.NotEmpty(t, result.Telemetry)
	assert.Greater(t, result.Telemetry[len(result.Telemetry)-1].Amplitude, 0.0)
}

func TestSessionForwardsToLiveSink(t *testing.T) {
	var forwarded int
	cfg := SessionConfig{
		Estimator: testEstimatorConfig(),
		Forward: breath.SinkFuncs{
			Rate: func(breath.RateEstimate) { forwarded++ },
		},
	}

	session, err := NewSession(cfg)
	require.NoError(t, err)

	source := toneSource(t, 15)
	defer source.Close()

	result, err := session.Run(context.Background(), source)
	require.NoError(t, err)

	// The forward sink sees the same rate events the session collected.
	// Run has joined all analysis goroutines, so the counter is settled.
	assert.Equal(t, len(result.Rates), forwarded)
}

func TestSessionRejectsBadEstimatorConfig(t *testing.T) {
	cfg := testEstimatorConfig()
	cfg.BandHighHz = cfg.BandLowHz // invalid band

	_, err := NewSession(SessionConfig{Estimator: cfg})
	require.Error(t, err)
}

func TestSessionCancelledContext(t *testing.T) {
	session, err := NewSession(SessionConfig{Estimator: testEstimatorConfig()})
	require.NoError(t, err)

	source := toneSource(t, 30)
	defer source.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := session.Run(ctx, source)
	require.Error(t, err)
	require.NotNil(t, result)
}

func TestFinalRatesDropsPending(t *testing.T) {
	result := &SessionResult{
		Rates: []breath.RateEstimate{
			{Pending: true},
			{BPM: 18, Window: 1},
			{Pending: true},
			{BPM: 20, Window: 2},
		},
	}

	final := result.FinalRates()
	require.Len(t, final, 2)
	assert.Equal(t, 18.0, final[0].BPM)
	assert.Equal(t, 20.0, final[1].BPM)
}
