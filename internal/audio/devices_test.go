// SPDX-License-Identifier: MIT
package audio

import (
	"testing"
)

func setupPortAudio(t *testing.T) {
	t.Helper()
	if err := Initialize(); err != nil {
		t.Skipf("PortAudio unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := Terminate(); err != nil {
			t.Fatalf("Failed to terminate PortAudio: %v", err)
		}
	})
}

func TestHostDevices(t *testing.T) {
	setupPortAudio(t)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) == 0 {
		t.Skip("No audio devices found on system")
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
		if d.Name == "" {
			t.Errorf("Device %d has empty name", i)
		}
		if d.DefaultSampleRate <= 0 {
			t.Errorf("Device %d has invalid sample rate %f", i, d.DefaultSampleRate)
		}
	}
}

func TestInputDeviceInvalidID(t *testing.T) {
	setupPortAudio(t)

	if _, err := InputDevice(99999); err == nil {
		t.Error("InputDevice with out-of-range ID should fail")
	}
}
