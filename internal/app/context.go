package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/calmora/breathscope/configs"
	"github.com/calmora/breathscope/internal/monitor"
	"github.com/calmora/breathscope/logging"
	"github.com/calmora/breathscope/pkg/output"
	"github.com/calmora/breathscope/pkg/stream"
	"github.com/calmora/breathscope/pkg/stream/common"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	InputPath    string // raw PCM file, or "-" for stdin
	OutputFile   string
	OutputFormat string
	Duration     time.Duration
	LiveOutput   bool
	Verbose      bool
	Quiet        bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// MonitorApp handles the monitoring application lifecycle
type MonitorApp struct {
	ctx    *Context
	config *configs.Config
	logger logging.Logger
}

// NewMonitorApp creates a new monitoring application
func NewMonitorApp(ctx *Context) (*MonitorApp, error) {
	logger := setupLogging(ctx)
	ctx.Logger = logger

	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	}
	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	ctx.Config = config

	logger.Debug("Monitoring application initialized", logging.Fields{
		"input":         ctx.InputPath,
		"output_format": config.OutputFormat,
		"sample_rate":   config.Capture.SampleRate,
		"duration":      ctx.Duration.Seconds(),
	})

	return &MonitorApp{
		ctx:    ctx,
		config: config,
		logger: logger,
	}, nil
}

// Run executes a monitoring session against the configured input
func (app *MonitorApp) Run(ctx context.Context) error {
	source, err := stream.NewFileSource(app.ctx.InputPath, stream.SourceConfig{
		SampleRate: app.config.Capture.SampleRate,
		Format:     common.ParseSampleFormat(app.config.Capture.Format),
		FrameSize:  app.config.Capture.FrameSize,
		Realtime:   app.config.Capture.Realtime,
	})
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer source.Close()

	sessionCfg := monitor.SessionConfig{
		Estimator:   EstimatorConfig(app.config),
		MaxDuration: app.ctx.Duration,
		Logger:      app.logger,
	}
	if app.ctx.LiveOutput && !app.ctx.Quiet {
		sessionCfg.Forward = newLivePrinter(os.Stderr)
	}

	session, err := monitor.NewSession(sessionCfg)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	result, runErr := session.Run(ctx, source)
	if result == nil {
		return runErr
	}
	// An interrupt cancels the context; the partial session still reports.
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	if err := app.outputResults(result); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	return runErr
}

// outputResults renders the session summary in the configured format
func (app *MonitorApp) outputResults(result *monitor.SessionResult) error {
	summary := monitor.Summarize(result)

	var data any
	if app.config.OutputFormat == "table" {
		data = summaryTable(summary)
	} else {
		payload := map[string]any{
			"summary":      summary,
			"frames_read":  result.FramesRead,
			"samples_read": result.SamplesRead,
			"timestamp":    time.Now(),
		}
		if app.config.Verbose || app.ctx.Verbose {
			payload["rates"] = result.FinalRates()
		}
		data = payload
	}

	formatter := output.NewFormatter(app.config.OutputFormat)
	formatted, err := formatter.Format(data, true)
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formatted)
	}

	_, err = os.Stdout.Write(formatted)
	return err
}

// summaryTable flattens a summary into sections for the table formatter
func summaryTable(summary *monitor.Summary) map[string]map[string]any {
	sections := map[string]map[string]any{
		"session": {
			"duration_seconds": summary.DurationSec,
			"pending_rates":    summary.PendingRates,
			"overruns":         summary.Overruns,
		},
	}
	for name, stats := range map[string]*monitor.Stats{
		"rate_bpm":  summary.Rate,
		"amplitude": summary.Amplitude,
		"power_db":  summary.PowerDB,
	} {
		if stats == nil {
			continue
		}
		sections[name] = map[string]any{
			"mean":    stats.Mean,
			"median":  stats.Median,
			"min":     stats.Min,
			"max":     stats.Max,
			"std_dev": stats.StdDev,
			"count":   stats.Count,
		}
	}
	return sections
}

// writeToFile writes data to the specified output file
func (app *MonitorApp) writeToFile(data []byte) error {
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	switch {
	case ctx.Quiet:
		logging.SetLevel("error")
	case ctx.Verbose:
		logging.SetLevel("debug")
	default:
		logging.SetLevel("info")
	}
	return logging.NewDefaultLogger()
}
