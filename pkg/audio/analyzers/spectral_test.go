package analyzers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(frequency float64, sampleRate, length int) []float64 {
	signal := make([]float64, length)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * frequency * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestMagnitudeSpectrumBasics(t *testing.T) {
	sa := NewSpectralAnalyzer(100)

	mags, fftLength, err := sa.MagnitudeSpectrum(sine(5, 100, 1000))
	require.NoError(t, err)
	assert.Equal(t, 1024, fftLength, "zero-padded to next power of two")
	assert.Len(t, mags, 1024/2+1)

	for i, m := range mags {
		assert.GreaterOrEqual(t, m, 0.0, "bin %d", i)
	}
}

func TestMagnitudeSpectrumInsufficientSamples(t *testing.T) {
	sa := NewSpectralAnalyzer(100)

	_, _, err := sa.MagnitudeSpectrum(nil)
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	_, _, err = sa.MagnitudeSpectrum([]float64{1})
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	_, _, err = sa.PowerSpectralDensity([]float64{})
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestPowerSpectralDensityPeakLocation(t *testing.T) {
	const sampleRate = 100
	sa := NewSpectralAnalyzer(sampleRate)

	psd, fftLength, err := sa.PowerSpectralDensity(sine(5, sampleRate, 1000))
	require.NoError(t, err)

	peakBin := 0
	for i, v := range psd {
		if v > psd[peakBin] {
			peakBin = i
		}
	}
	peakFreq := float64(peakBin) * sampleRate / float64(fftLength)
	assert.InDelta(t, 5.0, peakFreq, 0.2)
}

func TestWelchPSDAveragingKeepsPeak(t *testing.T) {
	const sampleRate = 100
	sa := NewSpectralAnalyzer(sampleRate)

	signal := sine(5, sampleRate, 2000)
	psd, fftLength, err := sa.WelchPSD(signal, 4)
	require.NoError(t, err)

	peakBin := 0
	for i, v := range psd {
		if v > psd[peakBin] {
			peakBin = i
		}
	}
	peakFreq := float64(peakBin) * sampleRate / float64(fftLength)
	assert.InDelta(t, 5.0, peakFreq, 0.5)

	// One segment degenerates to the plain periodogram.
	single, singleLen, err := sa.WelchPSD(signal, 1)
	require.NoError(t, err)
	direct, directLen, err := sa.PowerSpectralDensity(signal)
	require.NoError(t, err)
	assert.Equal(t, directLen, singleLen)
	assert.Equal(t, direct, single)
}

func TestDetectPeaks(t *testing.T) {
	peaks := DetectPeaks([]float64{0, 1, 0, 2, 0, 1, 0})
	require.Len(t, peaks, 3)

	indices := []int{peaks[0].Index, peaks[1].Index, peaks[2].Index}
	assert.Equal(t, []int{1, 3, 5}, indices)
	assert.Equal(t, 2.0, peaks[1].Value)

	assert.Equal(t, []int{2, 2}, PeakDistances(peaks))
}

func TestDetectPeaksEdgeCases(t *testing.T) {
	assert.Empty(t, DetectPeaks(nil))
	assert.Empty(t, DetectPeaks([]float64{1}))
	assert.Empty(t, DetectPeaks([]float64{1, 2}))

	// Plateaus are not strict maxima.
	assert.Empty(t, DetectPeaks([]float64{0, 1, 1, 0}))

	// Monotonic sequences have no interior peaks.
	assert.Empty(t, DetectPeaks([]float64{0, 1, 2, 3}))

	assert.Nil(t, PeakDistances(nil))
	assert.Nil(t, PeakDistances([]Peak{{Index: 3}}))
}

func TestEstimateRateFromSpectrumKnownTone(t *testing.T) {
	// A 0.3 Hz tone is 18 breaths per minute.
	const sampleRate = 100
	sa := NewSpectralAnalyzer(sampleRate)

	psd, fftLength, err := sa.PowerSpectralDensity(sine(0.3, sampleRate, 1000))
	require.NoError(t, err)

	rate, err := sa.EstimateRateFromSpectrum(psd, fftLength)
	require.NoError(t, err)
	assert.InDelta(t, 18.0, rate, 2.0)
}

func TestEstimateRateIgnoresDC(t *testing.T) {
	sa := NewSpectralAnalyzer(10)

	// The DC bin dominates this synthetic PSD; the estimate must come
	// from the largest non-DC bin instead.
	psd := []float64{100, 1, 7, 2, 1}
	rate, err := sa.EstimateRateFromSpectrum(psd, 8)
	require.NoError(t, err)

	// Bin 2 of an 8-point transform at 10 Hz is 2.5 Hz = 150 bpm.
	assert.InDelta(t, 150.0, rate, 1e-9)
}

func TestEstimateRateInvalidInput(t *testing.T) {
	sa := NewSpectralAnalyzer(100)

	_, err := sa.EstimateRateFromSpectrum(nil, 1024)
	assert.ErrorIs(t, err, ErrInsufficientSamples)

	_, err = sa.EstimateRateFromSpectrum([]float64{1}, 1024)
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestEnvelopeAndDecimate(t *testing.T) {
	env := Envelope([]float64{-1, 0.5, -0.25, 2})
	assert.Equal(t, []float64{1, 0.5, 0.25, 2}, env)

	dec := Decimate([]float64{0, 1, 2, 3, 4, 5, 6}, 3)
	assert.Equal(t, []float64{0, 3, 6}, dec)

	copied := Decimate([]float64{1, 2, 3}, 1)
	assert.Equal(t, []float64{1, 2, 3}, copied)
	copied[0] = 9 // must not alias the input
}
