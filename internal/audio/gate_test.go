// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"testing"
)

func TestGateEnableHotPath(t *testing.T) {
	engine := &Engine{
		gateEnabled:   false,
		gateThreshold: 0.001,
	}

	if engine.gateEnabled {
		t.Error("Gate should be disabled initially")
	}

	engine.EnableGate()
	if !engine.gateEnabled {
		t.Error("Gate should be enabled after EnableGate()")
	}

	engine.DisableGate()
	if engine.gateEnabled {
		t.Error("Gate should be disabled after DisableGate()")
	}

	engine.EnableGate()
	engine.EnableGate() // Multiple calls should be idempotent
	if !engine.gateEnabled {
		t.Error("Gate should remain enabled after multiple EnableGate()")
	}

	engine.DisableGate()
	engine.DisableGate() // Multiple calls should be idempotent
	if engine.gateEnabled {
		t.Error("Gate should remain disabled after multiple DisableGate()")
	}
}

func TestGateThresholdBoundaries(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{-0.1, 0.0}, // Below min
		{0.0, 0.0},  // Minimum
		{0.5, 0.5},  // Middle
		{1.0, 1.0},  // Maximum
		{1.5, 1.0},  // Above max
	}

	engine := &Engine{
		gateEnabled:   true,
		gateThreshold: 0,
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1f", tt.input), func(t *testing.T) {
			engine.SetGateThreshold(tt.input)
			got := engine.GetGateThreshold()

			if math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("Gate threshold conversion: got %.3f, want %.3f", got, tt.expected)
			}
		})
	}
}

func TestGateSuppressesQuietBuffers(t *testing.T) {
	p := newTestProducer(t, 11) // Order2048
	engine := &Engine{
		producer:      p,
		gateEnabled:   true,
		gateThreshold: 0.01,
	}

	quiet := make([]float64, 2048)
	for i := range quiet {
		quiet[i] = 0.001 // below threshold
	}
	engine.processBuffer(quiet)
	if p.Process(testBounds, testSampleRate) {
		t.Error("gated buffer should not reach the analysis pipeline")
	}

	loud := make([]float64, 2048)
	for i := range loud {
		loud[i] = 0.5
	}
	engine.processBuffer(loud)
	if !p.Process(testBounds, testSampleRate) {
		t.Error("buffer above threshold should pass the gate")
	}

	// Disabled gate passes everything.
	engine.DisableGate()
	engine.processBuffer(quiet)
	if !p.Process(testBounds, testSampleRate) {
		t.Error("quiet buffer should pass once the gate is disabled")
	}
}
