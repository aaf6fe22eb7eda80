// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"spectra/pkg/bitint"
)

// Config is the main application configuration, loaded from YAML with
// environment variable overrides applied on top.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Enable debug mode (verbose logging).
	LogLevel  string          `yaml:"log_level"`         // Logging level ("debug", "info", "warn", "error").
	Command   string          `yaml:"command,omitempty"` // One-off command to execute instead of running the analyzer (e.g. "list").
	Audio     AudioConfig     `yaml:"audio"`             // Audio capture settings.
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`          // Spectrum analysis settings.
	Display   DisplayConfig   `yaml:"display"`           // Drawing area the paths are generated for.
	Recording RecordingConfig `yaml:"recording"`         // Input recording settings.
	Transport TransportConfig `yaml:"transport"`         // Path publishing settings.
}

// AudioConfig holds settings for the capture side of the pipeline.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz (e.g. 44100, 48000).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Audio frames per processing callback.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from the device.
}

// AnalyzerConfig holds the FFT and magnitude conversion settings.
type AnalyzerConfig struct {
	FFTSize   int     `yaml:"fft_size"`   // Transform size: 2048, 4096 or 8192.
	FFTWindow string  `yaml:"fft_window"` // Analysis window name (e.g. "BlackmanHarris", "Hann").
	FloorDB   float64 `yaml:"floor_db"`   // Decibel value substituted for silent bins.
}

// DisplayConfig describes the pixel area the render paths target. The
// process does no drawing itself; these dimensions parameterize the path
// generator for the external renderer.
type DisplayConfig struct {
	Width     float64 `yaml:"width"`      // Drawing area width in pixels.
	Height    float64 `yaml:"height"`     // Drawing area height in pixels.
	RefreshHz int     `yaml:"refresh_hz"` // Analysis tick rate (paths per second, at most).
}

// RecordingConfig holds settings for recording the raw input stream.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Record the input stream to a WAV file.
	OutputFile string `yaml:"output_file"` // Target file; empty means a timestamped name.
	BitDepth   int    `yaml:"bit_depth"`   // Bit depth for recorded audio (16, 24 or 32).
}

// TransportConfig holds settings for publishing generated paths to external
// renderers.
type TransportConfig struct {
	WSEnabled        bool          `yaml:"ws_enabled"`         // Serve paths over WebSocket.
	WSPort           string        `yaml:"ws_port"`            // WebSocket listen port.
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Send paths over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target address for UDP packets (e.g. "127.0.0.1:9090").
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between UDP packets.
}

// LoadConfig loads configuration from a YAML file at path. An empty path
// searches the default location ("config.yaml") and falls back to built-in
// defaults if no file exists. Environment overrides are applied after the
// file, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      false,
		},
		Analyzer: AnalyzerConfig{
			FFTSize:   DefaultFFTSize,
			FFTWindow: DefaultFFTWindow,
			FloorDB:   DefaultFloorDB,
		},
		Display: DisplayConfig{
			Width:     600,
			Height:    200,
			RefreshHz: DefaultRefreshHz,
		},
		Recording: RecordingConfig{
			Enabled:    false,
			OutputFile: "",
			BitDepth:   32,
		},
		Transport: TransportConfig{
			WSEnabled:        false,
			WSPort:           "8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
			UDPSendInterval:  33 * time.Millisecond, // ~30Hz
		},
	}

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		} else {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Analyzer.FFTSize {
	case 2048, 4096, 8192:
	default:
		return fmt.Errorf("analyzer.fft_size must be 2048, 4096 or 8192, got %d", c.Analyzer.FFTSize)
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f outside supported range [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer <= 0 || !bitint.IsPowerOfTwo(c.Audio.FramesPerBuffer) {
		return fmt.Errorf("audio.frames_per_buffer must be a positive power of two, got %d", c.Audio.FramesPerBuffer)
	}
	if c.Analyzer.FloorDB >= 0 {
		return fmt.Errorf("analyzer.floor_db must be negative, got %.1f", c.Analyzer.FloorDB)
	}
	if c.Display.RefreshHz < MinRefreshHz || c.Display.RefreshHz > MaxRefreshHz {
		return fmt.Errorf("display.refresh_hz %d outside supported range [%d, %d]",
			c.Display.RefreshHz, MinRefreshHz, MaxRefreshHz)
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display dimensions must be positive, got %.0fx%.0f",
			c.Display.Width, c.Display.Height)
	}
	if c.Transport.UDPEnabled && c.Transport.UDPSendInterval <= 0 {
		return fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled")
	}
	return nil
}

// applyEnvOverrides layers SPECTRA_* environment variables over the values
// loaded from file or defaults.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("SPECTRA_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("SPECTRA_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := os.LookupEnv("SPECTRA_FFT_SIZE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Analyzer.FFTSize = iVal
		}
	}
	if val, ok := os.LookupEnv("SPECTRA_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WSEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("SPECTRA_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
		}
	}
	if val, ok := os.LookupEnv("SPECTRA_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
	}
	if val, ok := os.LookupEnv("SPECTRA_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			cfg.Transport.UDPSendInterval = dur
		}
	}
}
