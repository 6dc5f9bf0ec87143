package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	// Capture feed configuration
	Capture CaptureConfig `mapstructure:"capture"`

	// Breathing band configuration
	Band BandConfig `mapstructure:"band"`

	// Fast telemetry path configuration
	Fast FastConfig `mapstructure:"fast"`

	// Spectral analysis configuration
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// Physiological rate bounds
	Rate RateConfig `mapstructure:"rate"`
}

// CaptureConfig contains capture feed settings
type CaptureConfig struct {
	SampleRate int    `mapstructure:"sample_rate"`
	Format     string `mapstructure:"format"`
	FrameSize  int    `mapstructure:"frame_size"`
	Realtime   bool   `mapstructure:"realtime"`
}

// BandConfig contains the band-pass edges in Hz
type BandConfig struct {
	LowHz  float64 `mapstructure:"low_hz"`
	HighHz float64 `mapstructure:"high_hz"`
}

// FastConfig contains the low-latency telemetry path settings
type FastConfig struct {
	FrameSize        int     `mapstructure:"frame_size"`
	HopSize          int     `mapstructure:"hop_size"`
	AmplitudeCeiling float64 `mapstructure:"amplitude_ceiling"`
}

// AnalysisConfig contains the periodic spectral-estimation settings
type AnalysisConfig struct {
	WindowSeconds      float64 `mapstructure:"window_seconds"`
	OverlapSeconds     float64 `mapstructure:"overlap_seconds"`
	WelchSegments      int     `mapstructure:"welch_segments"`
	AccumulateFiltered bool    `mapstructure:"accumulate_filtered"`
	EnvelopeDecimation int     `mapstructure:"envelope_decimation"`
}

// RateConfig contains the output clamp in breaths per minute
type RateConfig struct {
	MinBPM float64 `mapstructure:"min_bpm"`
	MaxBPM float64 `mapstructure:"max_bpm"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Capture.SampleRate <= 0 {
		return fmt.Errorf("capture sample rate must be positive")
	}

	if config.Capture.FrameSize <= 0 {
		return fmt.Errorf("capture frame size must be positive")
	}

	nyquist := float64(config.Capture.SampleRate) / 2
	if config.Band.LowHz <= 0 || config.Band.HighHz <= config.Band.LowHz {
		return fmt.Errorf("band edges must satisfy 0 < low < high")
	}
	if config.Band.HighHz >= nyquist {
		return fmt.Errorf("band high edge %.1f Hz must be below nyquist %.1f Hz",
			config.Band.HighHz, nyquist)
	}

	if config.Fast.HopSize <= 0 || config.Fast.HopSize >= config.Fast.FrameSize {
		return fmt.Errorf("fast hop must satisfy 0 < hop < frame size")
	}

	if config.Analysis.WindowSeconds <= 0 {
		return fmt.Errorf("analysis window must be positive")
	}

	if config.Analysis.OverlapSeconds < 0 || config.Analysis.OverlapSeconds >= config.Analysis.WindowSeconds {
		return fmt.Errorf("analysis overlap must be in [0, window)")
	}

	if config.Rate.MinBPM <= 0 || config.Rate.MaxBPM <= config.Rate.MinBPM {
		return fmt.Errorf("rate bounds must satisfy 0 < min < max")
	}

	return nil
}
