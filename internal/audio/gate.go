// SPDX-License-Identifier: MIT
package audio

func (e *Engine) EnableGate() {
	e.gateEnabled = true
}

func (e *Engine) DisableGate() {
	e.gateEnabled = false
}

// SetGateThreshold adjusts the noise gate threshold.
// The value is a peak amplitude in the range 0.0-1.0 where 0=always open,
// 1=always closed.
func (e *Engine) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	e.gateThreshold = threshold
}

// GetGateThreshold returns the current threshold as a 0.0-1.0 amplitude.
func (e *Engine) GetGateThreshold() float64 {
	return e.gateThreshold
}
