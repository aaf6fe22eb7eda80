// SPDX-License-Identifier: MIT
package audio

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"spectra/internal/config"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return &Engine{
		cfg: &config.Config{
			Audio: config.AudioConfig{
				SampleRate:      testSampleRate,
				FramesPerBuffer: testFrameSize,
			},
			Recording: config.RecordingConfig{
				BitDepth: 32,
			},
		},
	}
}

func TestRecordingStartStop(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test_recording.wav")
	engine := newTestEngine(t)

	if err := engine.StartRecording(filename); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}

	if atomic.LoadInt32(&engine.isRecording) != 1 {
		t.Error("Engine should be in recording state")
	}
	if engine.outputFile == nil {
		t.Error("Output file should be initialized")
	}
	if engine.wavEncoder == nil {
		t.Error("WAV encoder should be initialized")
	}
	if engine.sampleBuf == nil {
		t.Fatal("Sample buffer should be initialized")
	}
	if engine.sampleBuf.Format.NumChannels != 1 {
		t.Errorf("Buffer channels: got %d, want 1", engine.sampleBuf.Format.NumChannels)
	}

	// Double start must fail while a recording is active.
	if err := engine.StartRecording(filename); err == nil {
		t.Error("Second StartRecording should fail while recording")
	}

	// Write a few callback buffers worth of samples.
	in := make([]float32, testFrameSize)
	for i := range in {
		in[i] = float32(i%64) / 64
	}
	for i := 0; i < 4; i++ {
		engine.writeRecording(in)
	}

	if err := engine.StopRecording(); err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}
	if atomic.LoadInt32(&engine.isRecording) != 0 {
		t.Error("Engine should not be in recording state after stop")
	}

	info, err := os.Stat(filename)
	if err != nil {
		t.Fatalf("Recording file missing: %v", err)
	}
	// 44-byte WAV header plus 4 buffers of 32-bit samples.
	if info.Size() <= 44 {
		t.Errorf("Recording file too small: %d bytes", info.Size())
	}
}

func TestStopRecordingWhenIdle(t *testing.T) {
	engine := newTestEngine(t)
	if err := engine.StopRecording(); err != nil {
		t.Errorf("StopRecording on idle engine should be a no-op, got %v", err)
	}
}

func TestStartRecordingRejectsBadBitDepth(t *testing.T) {
	engine := newTestEngine(t)
	engine.cfg.Recording.BitDepth = 12

	err := engine.StartRecording(filepath.Join(t.TempDir(), "bad.wav"))
	if err == nil {
		t.Error("StartRecording should reject unsupported bit depths")
	}
}

func TestWriteRecordingWhenIdleIsNoOp(t *testing.T) {
	engine := newTestEngine(t)
	// Must not panic with no encoder in place.
	engine.writeRecording(make([]float32, testFrameSize))
}
