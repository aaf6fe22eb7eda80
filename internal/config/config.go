// SPDX-License-Identifier: MIT
package config

// Boundaries and defaults for the analyzer pipeline.
const (
	DefaultDeviceID        = MinDeviceID // System default input device
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultFFTSize         = 2048        // Smallest supported transform
	DefaultFFTWindow       = "BlackmanHarris"
	DefaultFloorDB         = -48.0 // Decibel floor for silent bins
	DefaultRefreshHz       = 30    // Analysis/publish tick rate
	DefaultQueueCapacity   = 100   // Slots per pipeline queue

	MinDeviceID   = -1     // -1 represents system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MinRefreshHz  = 1
	MaxRefreshHz  = 120
)
