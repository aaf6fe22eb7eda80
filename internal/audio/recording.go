// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "spectra/internal/log"
)

// StartRecording begins writing the raw input stream to a WAV file at the
// configured bit depth. Only one recording may be active at a time.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	bitDepth := e.cfg.Recording.BitDepth
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported recording bit depth %d", bitDepth)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	e.wavEncoder = wav.NewEncoder(file, int(e.cfg.Audio.SampleRate), bitDepth, 1, 1)
	e.recScale = float64(int64(1)<<(bitDepth-1)) - 1

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(e.cfg.Audio.SampleRate),
		},
		SourceBitDepth: bitDepth,
		Data:           make([]int, e.cfg.Audio.FramesPerBuffer),
	}

	atomic.StoreInt32(&e.isRecording, 1)

	return nil
}

// writeRecording converts one callback's samples and appends them to the
// WAV file. Called from the audio callback; all buffers are pre-allocated.
func (e *Engine) writeRecording(in []float32) {
	if atomic.LoadInt32(&e.isRecording) != 1 || e.wavEncoder == nil {
		return
	}

	e.sampleBuf.Data = e.sampleBuf.Data[:cap(e.sampleBuf.Data)]
	n := len(in)
	if n > len(e.sampleBuf.Data) {
		n = len(e.sampleBuf.Data)
	}
	for i := 0; i < n; i++ {
		e.sampleBuf.Data[i] = int(float64(in[i]) * e.recScale)
	}
	e.sampleBuf.Data = e.sampleBuf.Data[:n]

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		applog.Errorf("Engine: error writing to WAV file: %v", err)
	}
}

// StopRecording finalizes and closes the WAV file. A no-op when not
// recording.
func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}
