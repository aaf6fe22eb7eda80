// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"time"

	"spectra/internal/config"
	"spectra/pkg/build"

	"github.com/spf13/cobra"
)

// ParseArgs loads the configuration file and layers command line flags on
// top of it. Flags override file and environment values only when set
// explicitly.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	var (
		cfg        *config.Config
		configPath string

		deviceID        int
		sampleRate      float64
		framesPerBuffer int
		lowLatency      bool

		fftSize   int
		fftWindow string
		floorDB   float64

		width     float64
		height    float64
		refreshHz int

		record     bool
		outputFile string

		wsEnabled bool
		wsPort    string
		udpTarget string

		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time audio spectrum analyzer",
		Version:       buildInfo.Summary(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("device") {
				loaded.Audio.InputDevice = deviceID
			}
			if flags.Changed("sample-rate") {
				loaded.Audio.SampleRate = sampleRate
			}
			if flags.Changed("frames-per-buffer") {
				loaded.Audio.FramesPerBuffer = framesPerBuffer
			}
			if flags.Changed("low-latency") {
				loaded.Audio.LowLatency = lowLatency
			}
			if flags.Changed("fft-size") {
				loaded.Analyzer.FFTSize = fftSize
			}
			if flags.Changed("window") {
				loaded.Analyzer.FFTWindow = fftWindow
			}
			if flags.Changed("floor") {
				loaded.Analyzer.FloorDB = floorDB
			}
			if flags.Changed("width") {
				loaded.Display.Width = width
			}
			if flags.Changed("height") {
				loaded.Display.Height = height
			}
			if flags.Changed("refresh") {
				loaded.Display.RefreshHz = refreshHz
			}
			if flags.Changed("record") {
				loaded.Recording.Enabled = record
			}
			if flags.Changed("output") {
				loaded.Recording.OutputFile = outputFile
			}
			if flags.Changed("websocket") {
				loaded.Transport.WSEnabled = wsEnabled
			}
			if flags.Changed("ws-port") {
				loaded.Transport.WSPort = wsPort
			}
			if flags.Changed("udp-target") {
				loaded.Transport.UDPEnabled = true
				loaded.Transport.UDPTargetAddress = udpTarget
			}
			if flags.Changed("verbose") {
				loaded.Debug = verbose
				loaded.LogLevel = "debug"
			}

			if loaded.Recording.Enabled && loaded.Recording.OutputFile == "" {
				loaded.Recording.OutputFile = "recording-" +
					time.Now().UTC().Format("02-01-2006-150405") + ".wav"
			}

			if err := loaded.Validate(); err != nil {
				return err
			}

			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Browse available audio capture devices",
		Run: func(cmd *cobra.Command, args []string) {
			cfg.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML configuration file. Defaults to ./config.yaml if present.")

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&deviceID, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().Float64VarP(&sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&lowLatency, "low-latency", "l", false,
		"Use low latency mode for real-time processing")

	// Analyzer Configuration
	rootCmd.PersistentFlags().IntVarP(&fftSize, "fft-size", "f", config.DefaultFFTSize,
		"FFT size in samples (2048, 4096 or 8192)")
	rootCmd.PersistentFlags().StringVarP(&fftWindow, "window", "w", config.DefaultFFTWindow,
		"Analysis window function (e.g. BlackmanHarris, Hann, Hamming)")
	rootCmd.PersistentFlags().Float64Var(&floorDB, "floor", config.DefaultFloorDB,
		"Decibel floor for magnitude conversion")

	// Display Configuration
	rootCmd.PersistentFlags().Float64Var(&width, "width", 600,
		"Drawing area width in pixels")
	rootCmd.PersistentFlags().Float64Var(&height, "height", 200,
		"Drawing area height in pixels")
	rootCmd.PersistentFlags().IntVar(&refreshHz, "refresh", config.DefaultRefreshHz,
		"Path generation rate in updates per second")

	// Recording Configuration
	rootCmd.PersistentFlags().BoolVarP(&record, "record", "r", false,
		"Record audio from the specified input device")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "",
		"Output file name. Default is recording-MM-DD-YYYY-HHMMSS.wav")

	// Transport Configuration
	rootCmd.PersistentFlags().BoolVar(&wsEnabled, "websocket", false,
		"Serve generated paths over WebSocket")
	rootCmd.PersistentFlags().StringVar(&wsPort, "ws-port", "8080",
		"WebSocket listen port")
	rootCmd.PersistentFlags().StringVar(&udpTarget, "udp-target", "",
		"Send generated paths to this UDP address (e.g. 127.0.0.1:9090)")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Show verbose output")

	// Execute the CLI
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return cfg, nil
}
