// Package breath implements streaming respiratory-rate estimation from a
// mono audio feed. Incoming frames are band-pass filtered and folded into
// two overlap buffers; a fast path emits amplitude/power telemetry per
// frame while multi-second windows are periodically handed to an analysis
// goroutine that derives a breaths-per-minute estimate from the window's
// power spectral density.
package breath

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/calmora/breathscope/logging"
	"github.com/calmora/breathscope/pkg/audio/analyzers"
	"github.com/calmora/breathscope/pkg/audio/buffer"
	"github.com/calmora/breathscope/pkg/audio/filters"
)

// Estimator states
const (
	StateIdle int32 = iota
	StateStreaming
	StateEstimating
)

var (
	// ErrNotStreaming indicates Append was called outside a session
	ErrNotStreaming = errors.New("breath: estimator is not streaming")
	// ErrAlreadyStreaming indicates Start was called twice
	ErrAlreadyStreaming = errors.New("breath: estimator is already streaming")
)

const powerFloorDB = -120.0

// Config contains the estimator's pipeline settings.
type Config struct {
	SampleRate int

	// Band-pass edges for the breathing-relevant band
	BandLowHz  float64
	BandHighHz float64

	// Fast path geometry (overlapped telemetry frames)
	FastFrameSize int
	FastHopSize   int

	// Analysis window cadence; overlap defaults to half the window
	AnalysisWindowSeconds  float64
	AnalysisOverlapSeconds float64

	// Physiological clamp for emitted rates
	RateMinBPM float64
	RateMaxBPM float64

	// Amplitude telemetry ceiling
	AmplitudeCeiling float64

	// Welch segment count for the window PSD (<=1 for a single periodogram)
	WelchSegments int

	// AccumulateFiltered feeds band-passed samples to the analysis window
	// instead of raw ones
	AccumulateFiltered bool

	// EnvelopeDecimation, when >1, rectifies the analysis window and keeps
	// every n-th sample before spectral estimation
	EnvelopeDecimation int

	Logger logging.Logger
}

// Validate checks the configuration at setup time.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("breath: sample rate must be positive, got %d", c.SampleRate)
	}
	nyquist := float64(c.SampleRate) / 2
	if c.BandLowHz <= 0 || c.BandHighHz <= c.BandLowHz || c.BandHighHz >= nyquist {
		return fmt.Errorf("breath: band edges must satisfy 0 < low < high < %.1f, got [%.2f, %.2f]",
			nyquist, c.BandLowHz, c.BandHighHz)
	}
	if c.FastFrameSize <= 0 || c.FastHopSize <= 0 || c.FastHopSize >= c.FastFrameSize {
		return fmt.Errorf("breath: fast path must satisfy 0 < hop < frame, got frame=%d hop=%d",
			c.FastFrameSize, c.FastHopSize)
	}
	if c.AnalysisWindowSeconds <= 0 {
		return fmt.Errorf("breath: analysis window must be positive, got %.2f", c.AnalysisWindowSeconds)
	}
	if c.AnalysisOverlapSeconds < 0 || c.AnalysisOverlapSeconds >= c.AnalysisWindowSeconds {
		return fmt.Errorf("breath: analysis overlap must be in [0, window), got %.2f", c.AnalysisOverlapSeconds)
	}
	if c.RateMinBPM <= 0 || c.RateMaxBPM <= c.RateMinBPM {
		return fmt.Errorf("breath: rate bounds must satisfy 0 < min < max, got [%.1f, %.1f]",
			c.RateMinBPM, c.RateMaxBPM)
	}
	return nil
}

func (c *Config) windowSamples() int {
	return int(float64(c.SampleRate) * c.AnalysisWindowSeconds)
}

// windowHop is the analysis advance in samples: window minus overlap, or 0
// to let the accumulator default to 50%.
func (c *Config) windowHop() int {
	if c.AnalysisOverlapSeconds <= 0 {
		return 0
	}
	return c.windowSamples() - int(float64(c.SampleRate)*c.AnalysisOverlapSeconds)
}

// Estimator is the streaming pipeline orchestrator. A single producer
// calls Append; analysis windows are processed on short-lived goroutines
// with results discarded if the session has since been stopped.
type Estimator struct {
	cfg        Config
	sink       Sink
	logger     logging.Logger
	analyzer   *analyzers.SpectralAnalyzer
	fastWindow *analyzers.WindowGenerator // accessed only from the producer goroutine

	mu     sync.Mutex
	filter *filters.Biquad
	acc    *buffer.Accumulator
	seq    uint64

	state atomic.Int32
	epoch atomic.Uint64

	wg sync.WaitGroup
}

// NewEstimator validates the configuration, designs the band-pass filter
// and returns an idle estimator.
func NewEstimator(cfg Config, sink Sink) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = SinkFuncs{}
	}
	if cfg.AmplitudeCeiling <= 0 {
		cfg.AmplitudeCeiling = 1.0
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	logger = logger.WithFields(logging.Fields{
		"component":   "breath_estimator",
		"sample_rate": cfg.SampleRate,
	})

	coeffs, err := filters.DesignBandPass(cfg.SampleRate, cfg.BandLowHz, cfg.BandHighHz)
	if err != nil {
		return nil, fmt.Errorf("breath: band-pass design failed: %w", err)
	}

	acc, err := buffer.NewAccumulator(cfg.FastFrameSize, cfg.FastHopSize, cfg.windowSamples(), cfg.windowHop())
	if err != nil {
		return nil, fmt.Errorf("breath: %w", err)
	}

	analysisRate := cfg.SampleRate
	if cfg.EnvelopeDecimation > 1 {
		analysisRate = cfg.SampleRate / cfg.EnvelopeDecimation
	}

	return &Estimator{
		cfg:        cfg,
		sink:       sink,
		logger:     logger,
		analyzer:   analyzers.NewSpectralAnalyzer(analysisRate),
		fastWindow: analyzers.NewWindowGenerator(),
		filter:     filters.NewBiquad(coeffs),
		acc:        acc,
	}, nil
}

// State returns the current state (StateIdle, StateStreaming or
// StateEstimating).
func (e *Estimator) State() int32 {
	return e.state.Load()
}

// Overruns returns the number of samples dropped because the analysis
// consumer fell behind the capture feed.
func (e *Estimator) Overruns() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acc.Overruns()
}

// Start transitions Idle -> Streaming, resetting the buffers and the
// filter delay line. The first rate event is a pending sentinel.
func (e *Estimator) Start() error {
	if !e.state.CompareAndSwap(StateIdle, StateStreaming) {
		return ErrAlreadyStreaming
	}

	e.mu.Lock()
	e.acc.Reset()
	e.filter.Reset()
	e.seq = 0
	e.mu.Unlock()

	epoch := e.epoch.Add(1)
	e.logger.Debug("streaming started", logging.Fields{"epoch": epoch})

	e.sink.OnRate(RateEstimate{Pending: true, Epoch: epoch, Timestamp: time.Now()})
	return nil
}

// Stop transitions to Idle and invalidates any in-flight analysis; a task
// completing after Stop discards its result. Safe to call concurrently
// with Append and with running analysis tasks.
func (e *Estimator) Stop() {
	if e.state.Swap(StateIdle) == StateIdle {
		return
	}
	epoch := e.epoch.Add(1)

	e.mu.Lock()
	e.acc.Reset()
	e.filter.Reset()
	e.mu.Unlock()

	e.logger.Debug("streaming stopped", logging.Fields{"epoch": epoch})
}

// Wait blocks until all in-flight analysis tasks have finished. Useful at
// shutdown; results of stale tasks are discarded regardless.
func (e *Estimator) Wait() {
	e.wg.Wait()
}

// Append feeds one capture frame through the pipeline: band-pass filter,
// fast-path telemetry, and window accumulation. Called by the capture
// producer; never blocks on analysis.
func (e *Estimator) Append(samples []float64) error {
	if e.state.Load() == StateIdle {
		return ErrNotStreaming
	}
	if len(samples) == 0 {
		return nil
	}

	epoch := e.epoch.Load()

	e.mu.Lock()
	filtered, err := e.filter.ProcessBuffer(samples)
	if err != nil {
		e.mu.Unlock()
		return err
	}

	// The fast path always sees band-passed samples; only the analysis
	// feed is switchable between raw and filtered.
	e.acc.AppendFast(filtered)
	if e.cfg.AccumulateFiltered {
		e.acc.AppendAnalysis(filtered)
	} else {
		e.acc.AppendAnalysis(samples)
	}
	frames := e.acc.DrainFrames()
	windows := e.acc.DrainWindows()

	var windowSeqs []uint64
	for range windows {
		e.seq++
		windowSeqs = append(windowSeqs, e.seq)
	}
	e.mu.Unlock()

	now := time.Now()
	for _, frame := range frames {
		e.sink.OnTelemetry(e.frameTelemetry(frame, now))
	}

	for i, window := range windows {
		seq := windowSeqs[i]
		e.sink.OnRate(RateEstimate{Pending: true, Window: seq, Epoch: epoch, Timestamp: now})

		e.state.CompareAndSwap(StateStreaming, StateEstimating)
		e.wg.Add(1)
		go func(window []float64, seq uint64) {
			defer e.wg.Done()
			e.analyzeWindow(window, epoch, seq)
		}(window, seq)
		e.state.CompareAndSwap(StateEstimating, StateStreaming)
	}

	return nil
}

// frameTelemetry computes the fast-path measurements of one overlapped
// frame: Hann-weighted max amplitude (clamped to the ceiling) and
// mean-square power in dB.
func (e *Estimator) frameTelemetry(frame []float64, now time.Time) Telemetry {
	windowed := analyzers.ApplyWindow(frame, e.fastWindow.Hann(len(frame)))

	amplitude := 0.0
	sumSquares := 0.0
	for _, v := range windowed {
		if a := math.Abs(v); a > amplitude {
			amplitude = a
		}
		sumSquares += v * v
	}
	if amplitude > e.cfg.AmplitudeCeiling {
		amplitude = e.cfg.AmplitudeCeiling
	}

	meanSquare := sumSquares / float64(len(windowed))
	powerDB := powerFloorDB
	if meanSquare > 0 {
		powerDB = 10 * math.Log10(meanSquare)
		if powerDB < powerFloorDB {
			powerDB = powerFloorDB
		}
	}

	return Telemetry{Amplitude: amplitude, PowerDB: powerDB, Timestamp: now}
}

// analyzeWindow runs spectral estimation over one window snapshot. A
// failure is logged and skipped; the stream continues. Results belonging
// to a superseded epoch are discarded.
func (e *Estimator) analyzeWindow(window []float64, epoch, seq uint64) {
	signal := window
	if e.cfg.EnvelopeDecimation > 1 {
		signal = analyzers.Decimate(analyzers.Envelope(window), e.cfg.EnvelopeDecimation)
	}

	psd, fftLength, err := e.analyzer.WelchPSD(signal, e.cfg.WelchSegments)
	if err != nil {
		e.logger.Warn("window analysis failed", logging.Fields{
			"window": seq,
			"error":  err.Error(),
		})
		return
	}

	rate, err := e.analyzer.EstimateRateFromSpectrum(psd, fftLength)
	if err != nil {
		e.logger.Warn("rate estimation failed", logging.Fields{
			"window": seq,
			"error":  err.Error(),
		})
		return
	}

	clamped := clamp(rate, e.cfg.RateMinBPM, e.cfg.RateMaxBPM)

	if e.epoch.Load() != epoch {
		e.logger.Debug("discarding stale estimate", logging.Fields{
			"window": seq,
			"epoch":  epoch,
		})
		return
	}

	e.logger.Debug("window estimate ready", logging.Fields{
		"window":  seq,
		"raw_bpm": rate,
		"bpm":     clamped,
	})

	e.sink.OnRate(RateEstimate{
		BPM:       clamped,
		Window:    seq,
		Epoch:     epoch,
		Timestamp: time.Now(),
	})
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
