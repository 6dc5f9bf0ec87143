package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/calmora/breathscope/logging"
	"github.com/calmora/breathscope/pkg/breath"
	"github.com/calmora/breathscope/pkg/stream"
)

// SessionConfig configures a monitoring session.
type SessionConfig struct {
	Estimator breath.Config

	// MaxDuration stops the session after this much wall time.
	// Zero means run until the source is exhausted.
	MaxDuration time.Duration

	// Forward receives live results in addition to the session's own
	// collection. May be nil.
	Forward breath.Sink

	Logger logging.Logger
}

// SessionResult summarizes one completed monitoring session.
type SessionResult struct {
	Telemetry []breath.Telemetry    `json:"telemetry" yaml:"telemetry"`
	Rates     []breath.RateEstimate `json:"rates" yaml:"rates"`

	FramesRead  int           `json:"frames_read" yaml:"frames_read"`
	SamplesRead int           `json:"samples_read" yaml:"samples_read"`
	Overruns    uint64        `json:"overruns" yaml:"overruns"`
	StartTime   time.Time     `json:"start_time" yaml:"start_time"`
	EndTime     time.Time     `json:"end_time" yaml:"end_time"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
}

// FinalRates returns the resolved estimates, dropping pending placeholders.
func (r *SessionResult) FinalRates() []breath.RateEstimate {
	var final []breath.RateEstimate
	for _, rate := range r.Rates {
		if !rate.Pending {
			final = append(final, rate)
		}
	}
	return final
}

// Session feeds PCM from a stream source into a rate estimator and
// collects everything the estimator emits.
type Session struct {
	cfg       SessionConfig
	logger    logging.Logger
	estimator *breath.Estimator
	collector *collectorSink
}

// NewSession creates a monitoring session around the given estimator config.
func NewSession(cfg SessionConfig) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	collector := &collectorSink{forward: cfg.Forward}

	cfg.Estimator.Logger = logger
	estimator, err := breath.NewEstimator(cfg.Estimator, collector)
	if err != nil {
		return nil, fmt.Errorf("failed to create estimator: %w", err)
	}

	return &Session{
		cfg:       cfg,
		logger:    logger,
		estimator: estimator,
		collector: collector,
	}, nil
}

// Run streams the source to exhaustion (or MaxDuration / ctx cancellation)
// and returns the collected results. The source is not closed by Run.
func (s *Session) Run(ctx context.Context, source stream.Source) (*SessionResult, error) {
	if s.cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.MaxDuration)
		defer cancel()
	}

	if err := s.estimator.Start(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	framesRead := 0
	samplesRead := 0

	s.logger.Debug("Starting monitoring session", logging.Fields{
		"sample_rate":  s.cfg.Estimator.SampleRate,
		"max_duration": s.cfg.MaxDuration.Seconds(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			frame, err := source.ReadFrame(gctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}

			framesRead++
			samplesRead += len(frame.Samples)

			if err := s.estimator.Append(frame.Samples); err != nil {
				return fmt.Errorf("append frame %d: %w", frame.Sequence, err)
			}
		}
	})

	runErr := g.Wait()

	s.estimator.Stop()
	s.estimator.Wait()

	endTime := time.Now()

	// Hitting the session deadline is a normal way to finish.
	if runErr != nil && s.cfg.MaxDuration > 0 && errors.Is(runErr, context.DeadlineExceeded) {
		runErr = nil
	}

	telemetry, rates := s.collector.snapshot()

	result := &SessionResult{
		Telemetry:   telemetry,
		Rates:       rates,
		FramesRead:  framesRead,
		SamplesRead: samplesRead,
		Overruns:    s.estimator.Overruns(),
		StartTime:   startTime,
		EndTime:     endTime,
		Duration:    endTime.Sub(startTime),
	}

	s.logger.Debug("Monitoring session finished", logging.Fields{
		"frames_read":  framesRead,
		"samples_read": samplesRead,
		"rates":        len(result.FinalRates()),
		"overruns":     result.Overruns,
		"duration_s":   result.Duration.Seconds(),
	})

	if runErr != nil {
		return result, runErr
	}
	return result, nil
}

// collectorSink records everything the estimator emits, optionally
// forwarding to a live sink. The estimator calls it from its producer
// and analysis goroutines; the lock also serializes forward delivery.
type collectorSink struct {
	mu        sync.Mutex
	telemetry []breath.Telemetry
	rates     []breath.RateEstimate
	forward   breath.Sink
}

func (c *collectorSink) OnTelemetry(t breath.Telemetry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.telemetry = append(c.telemetry, t)
	if c.forward != nil {
		c.forward.OnTelemetry(t)
	}
}

func (c *collectorSink) OnRate(r breath.RateEstimate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rates = append(c.rates, r)
	if c.forward != nil {
		c.forward.OnRate(r)
	}
}

func (c *collectorSink) snapshot() ([]breath.Telemetry, []breath.RateEstimate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	telemetry := make([]breath.Telemetry, len(c.telemetry))
	copy(telemetry, c.telemetry)
	rates := make([]breath.RateEstimate, len(c.rates))
	copy(rates, c.rates)
	return telemetry, rates
}
