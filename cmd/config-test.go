package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/calmora/breathscope/configs"
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration and displays all values in a structured format
to help verify that your YAML configuration is being parsed correctly.

Examples:
  # Test with default config file
  breathscope config-test

  # Test with specific config file
  breathscope --config /path/to/config.yaml config-test`,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	fmt.Println("BREATHSCOPE CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Output Format", config.OutputFormat)

	printSection("CAPTURE CONFIGURATION")
	printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", config.Capture.SampleRate))
	printKeyValue("Format", config.Capture.Format)
	printKeyValue("Frame Size", fmt.Sprintf("%d samples", config.Capture.FrameSize))
	printKeyValue("Realtime", fmt.Sprintf("%t", config.Capture.Realtime))

	printSection("BAND CONFIGURATION")
	printKeyValue("Low Edge", fmt.Sprintf("%.1f Hz", config.Band.LowHz))
	printKeyValue("High Edge", fmt.Sprintf("%.1f Hz", config.Band.HighHz))

	printSection("FAST PATH CONFIGURATION")
	printKeyValue("Frame Size", fmt.Sprintf("%d samples", config.Fast.FrameSize))
	printKeyValue("Hop Size", fmt.Sprintf("%d samples", config.Fast.HopSize))
	printKeyValue("Amplitude Ceiling", fmt.Sprintf("%.2f", config.Fast.AmplitudeCeiling))

	printSection("ANALYSIS CONFIGURATION")
	printKeyValue("Window", fmt.Sprintf("%.1f s", config.Analysis.WindowSeconds))
	printKeyValue("Overlap", fmt.Sprintf("%.1f s", config.Analysis.OverlapSeconds))
	printKeyValue("Welch Segments", fmt.Sprintf("%d", config.Analysis.WelchSegments))
	printKeyValue("Accumulate Filtered", fmt.Sprintf("%t", config.Analysis.AccumulateFiltered))
	printKeyValue("Envelope Decimation", fmt.Sprintf("%d", config.Analysis.EnvelopeDecimation))

	printSection("RATE BOUNDS")
	printKeyValue("Min", fmt.Sprintf("%.1f bpm", config.Rate.MinBPM))
	printKeyValue("Max", fmt.Sprintf("%.1f bpm", config.Rate.MaxBPM))

	fmt.Println()
	if err := configs.ValidateConfig(config); err != nil {
		fmt.Println(strings.Repeat("-", 80))
		fmt.Printf("CONFIGURATION INVALID: %v\n", err)
		fmt.Println(strings.Repeat("=", 80))
		return err
	}

	fmt.Println(strings.Repeat("-", 80))
	fmt.Println("CONFIGURATION TEST COMPLETED SUCCESSFULLY")
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Printf("Config file: %s\n", used)
	}
	fmt.Println(strings.Repeat("=", 80))

	return nil
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printKeyValue(key, value string) {
	fmt.Printf("%-35s %s\n", key+":", value)
}
