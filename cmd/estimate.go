package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/calmora/breathscope/configs"
	"github.com/calmora/breathscope/internal/app"
	"github.com/calmora/breathscope/internal/monitor"
	"github.com/calmora/breathscope/pkg/stream"
	"github.com/calmora/breathscope/pkg/stream/common"
)

var estimateSampleRate int

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate [flags] <input>",
	Short: "One-shot respiratory-rate estimate from a recording",
	Long: `Estimate respiratory rate from a recorded PCM file and print a single
breaths-per-minute value.

The whole file is processed offline (no realtime pacing) and the median
of the per-window estimates is reported.

Examples:
  breathscope estimate capture.pcm
  breathscope estimate --sample-rate 48000 capture.pcm`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().IntVar(&estimateSampleRate, "sample-rate", 0,
		"input sample rate in Hz (overrides configuration)")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if estimateSampleRate > 0 {
		viper.Set("capture.sample_rate", estimateSampleRate)
	}

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configs.ValidateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	source, err := stream.NewFileSource(args[0], stream.SourceConfig{
		SampleRate: config.Capture.SampleRate,
		Format:     common.ParseSampleFormat(config.Capture.Format),
		FrameSize:  config.Capture.FrameSize,
	})
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer source.Close()

	session, err := monitor.NewSession(monitor.SessionConfig{
		Estimator: app.EstimatorConfig(config),
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	result, err := session.Run(context.Background(), source)
	if err != nil {
		return err
	}

	summary := monitor.Summarize(result)
	if summary.Rate.Count == 0 {
		return fmt.Errorf("input too short: no complete analysis window (need %.1fs)",
			config.Analysis.WindowSeconds)
	}

	fmt.Printf("%.1f bpm (%d windows, %.1fs of audio)\n",
		summary.Rate.Median, summary.Rate.Count,
		float64(result.SamplesRead)/float64(config.Capture.SampleRate))
	return nil
}
