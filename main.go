// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"spectra/cmd"
	"spectra/internal/audio"
	"spectra/internal/config"
	applog "spectra/internal/log"
	"spectra/internal/transport"
	"spectra/internal/transport/udp"
	"spectra/internal/tui"
	"spectra/pkg/build"
)

// main is the entry point for the spectrum analyzer.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Initialize PortAudio
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Start audio capture
//   - Begin recording if enabled
//   - Run the analysis loop, publishing paths over the configured transports
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Stop analysis and recording
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Build information is injected via ldflags; development builds run
	// with placeholder values.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build flags not set: %v", err)
	}

	// Limit OS threads to optimize for real-time audio processing:
	// - One thread dedicated to the audio callback (time-critical)
	// - One thread for the analysis loop and I/O
	runtime.GOMAXPROCS(2)

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if cfg == nil {
		// Help or version output was requested.
		return
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	if err := audio.Initialize(); err != nil {
		applog.Fatalf("Failed to initialize audio subsystem: %v", err)
	}
	defer audio.Terminate()

	if cfg.Command == "list" {
		// The interactive browser needs a terminal; fall back to a plain
		// listing when it cannot start.
		if err := tui.StartDeviceListUI(); err != nil {
			if err := audio.ListDevices(); err != nil {
				applog.Fatalf("Failed to list devices: %v", err)
			}
		}
		return
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	transports := buildTransports(cfg)

	engine, err := audio.NewEngine(cfg, transports...)
	if err != nil {
		applog.Fatalf("Failed to create engine: %v", err)
	}

	// The first call to StartInputStream triggers PortAudio to begin
	// invoking the capture callback, marking the start of the hot path.
	if err := engine.StartInputStream(); err != nil {
		applog.Fatalf("Failed to start input stream: %v", err)
	}

	if cfg.Recording.Enabled {
		if err := engine.StartRecording(cfg.Recording.OutputFile); err != nil {
			applog.Fatalf("Failed to start recording: %v", err)
		}
		applog.Infof("Recording to %s", cfg.Recording.OutputFile)
	}

	engine.StartAnalysis()
	applog.Infof("%s %s analyzing at %.0f Hz, FFT size %d, press Ctrl+C to stop",
		build.GetBuildFlags().Name, build.GetBuildFlags().Version,
		cfg.Audio.SampleRate, cfg.Analyzer.FFTSize)

	<-done

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	engine.StopAnalysis()

	if cfg.Recording.Enabled {
		if err := engine.StopRecording(); err != nil {
			applog.Errorf("Error stopping recording: %v", err)
		} else {
			fmt.Printf("\nRecording saved to: %s\n", cfg.Recording.OutputFile)
		}
	}

	if err := engine.Close(); err != nil {
		applog.Errorf("Error closing engine: %v", err)
	}
}

// buildTransports assembles the path publishers enabled in the
// configuration. A transport that fails to start is skipped rather than
// aborting the run.
func buildTransports(cfg *config.Config) []transport.Transport {
	var transports []transport.Transport

	if cfg.Transport.WSEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WSPort)
		transports = append(transports, ws)
		applog.Infof("WebSocket transport listening on :%s/spectrum", cfg.Transport.WSPort)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			applog.Errorf("UDP transport disabled: %v", err)
		} else {
			pub, err := udp.NewPathPublisher(cfg.Transport.UDPSendInterval, sender)
			if err != nil {
				applog.Errorf("UDP transport disabled: %v", err)
				sender.Close()
			} else {
				transports = append(transports, pub)
				applog.Infof("UDP transport sending to %s", cfg.Transport.UDPTargetAddress)
			}
		}
	}

	if cfg.Debug {
		transports = append(transports, transport.NewLoggingTransport())
	}

	return transports
}
