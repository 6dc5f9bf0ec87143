package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/calmora/breathscope/internal/app"
)

var (
	// Monitor command flags
	monitorDuration   time.Duration
	monitorOutputFile string
	monitorLive       bool
	monitorQuiet      bool
	monitorRealtime   bool
	monitorSampleRate int
	monitorFormat     string
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor [flags] <input>",
	Short: "Monitor respiratory rate from a PCM feed",
	Long: `Monitor respiratory rate from a raw PCM audio feed.

The input is a headerless mono PCM file; use "-" to read from stdin,
e.g. piped from a capture tool. Telemetry is produced continuously and
a rate estimate is emitted for every analysis window; the session
summary is printed when the feed ends.

Examples:
  # Monitor a recorded capture
  breathscope monitor capture.pcm

  # Live monitoring from a capture pipe, printing estimates as they resolve
  arecord -f S16_LE -r 24000 -c 1 -t raw | breathscope monitor --live --realtime -

  # Stop after two minutes and write a JSON report
  breathscope monitor --duration 2m --output json --output-file report.json capture.pcm`,
	Args: cobra.ExactArgs(1),
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().DurationVar(&monitorDuration, "duration", 0,
		"maximum session duration (0 runs until the feed ends)")
	monitorCmd.Flags().StringVar(&monitorOutputFile, "output-file", "",
		"write the session report to a file instead of stdout")
	monitorCmd.Flags().BoolVar(&monitorLive, "live", false,
		"print rate estimates to stderr as they resolve")
	monitorCmd.Flags().BoolVarP(&monitorQuiet, "quiet", "q", false,
		"suppress live output and non-error logging")
	monitorCmd.Flags().BoolVar(&monitorRealtime, "realtime", false,
		"pace file input at the nominal sample rate")
	monitorCmd.Flags().IntVar(&monitorSampleRate, "sample-rate", 0,
		"input sample rate in Hz (overrides configuration)")
	monitorCmd.Flags().StringVar(&monitorFormat, "format", "",
		"input sample format: s16le or f32le (overrides configuration)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// Flag overrides land in viper so LoadConfig sees them.
	if monitorSampleRate > 0 {
		viper.Set("capture.sample_rate", monitorSampleRate)
	}
	if monitorFormat != "" {
		viper.Set("capture.format", monitorFormat)
	}
	if monitorRealtime {
		viper.Set("capture.realtime", true)
	}

	appCtx := &app.Context{
		InputPath:    args[0],
		OutputFile:   monitorOutputFile,
		OutputFormat: viper.GetString("output_format"),
		Duration:     monitorDuration,
		LiveOutput:   monitorLive,
		Verbose:      viper.GetBool("verbose"),
		Quiet:        monitorQuiet,
	}

	monitorApp, err := app.NewMonitorApp(appCtx)
	if err != nil {
		return fmt.Errorf("failed to initialize monitor: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return monitorApp.Run(ctx)
}
