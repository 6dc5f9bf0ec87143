package configs

import (
	"github.com/spf13/viper"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("verbose") {
		v.SetDefault("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.SetDefault("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.SetDefault("output_format", "table")
	}

	// Capture defaults; 24 kHz mono s16le matches the common wearable
	// microphone feed.
	if !v.IsSet("capture.sample_rate") {
		v.SetDefault("capture.sample_rate", 24000)
	}
	if !v.IsSet("capture.format") {
		v.SetDefault("capture.format", "s16le")
	}
	if !v.IsSet("capture.frame_size") {
		v.SetDefault("capture.frame_size", 1024)
	}
	if !v.IsSet("capture.realtime") {
		v.SetDefault("capture.realtime", false)
	}

	// Breathing-relevant audio band
	if !v.IsSet("band.low_hz") {
		v.SetDefault("band.low_hz", 100.0)
	}
	if !v.IsSet("band.high_hz") {
		v.SetDefault("band.high_hz", 2000.0)
	}

	// Fast telemetry path
	if !v.IsSet("fast.frame_size") {
		v.SetDefault("fast.frame_size", 512)
	}
	if !v.IsSet("fast.hop_size") {
		v.SetDefault("fast.hop_size", 256)
	}
	if !v.IsSet("fast.amplitude_ceiling") {
		v.SetDefault("fast.amplitude_ceiling", 1.0)
	}

	// Analysis cadence: 5 s windows with 50% overlap
	if !v.IsSet("analysis.window_seconds") {
		v.SetDefault("analysis.window_seconds", 5.0)
	}
	if !v.IsSet("analysis.overlap_seconds") {
		v.SetDefault("analysis.overlap_seconds", 2.5)
	}
	if !v.IsSet("analysis.welch_segments") {
		v.SetDefault("analysis.welch_segments", 1)
	}
	if !v.IsSet("analysis.accumulate_filtered") {
		v.SetDefault("analysis.accumulate_filtered", true)
	}
	if !v.IsSet("analysis.envelope_decimation") {
		v.SetDefault("analysis.envelope_decimation", 24)
	}

	// Physiologically typical resting adult range
	if !v.IsSet("rate.min_bpm") {
		v.SetDefault("rate.min_bpm", 12.0)
	}
	if !v.IsSet("rate.max_bpm") {
		v.SetDefault("rate.max_bpm", 25.0)
	}
}
