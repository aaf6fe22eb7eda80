// SPDX-License-Identifier: MIT
/*
Package audio implements the real-time spectrum analyzer engine:
- Lock-free audio capture using PortAudio
- Windowed FFT analysis at a configurable order
- Log-frequency render path generation for external renderers
- WAV recording with atomic state management

Thread Safety:
- The PortAudio callback touches only pre-allocated buffers and the SPSC
  queue producer side
- The analysis loop is the sole queue consumer
- Reconfiguration stops both sides before touching shared state
*/
package audio

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"spectra/internal/analyzer"
	"spectra/internal/config"
	"spectra/internal/curve"
	applog "spectra/internal/log"
	"spectra/internal/transport"
)

type Engine struct {
	// Core configuration and state.
	cfg    *config.Config
	bounds curve.Bounds

	// Pipeline.
	producer   *PathProducer
	transports []transport.Transport

	// Audio input handling.
	inputBuffer  []float64 // float32 -> float64 conversion scratch
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold float64 // Peak amplitude threshold in [0, 1]

	// Analysis loop lifecycle.
	loopMu   sync.Mutex
	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Latest path, published by the analysis loop, pulled by renderers.
	latestMu sync.RWMutex
	latest   curve.Path

	// Recording state and buffers.
	isRecording int32 // Managed via engine.recording.go
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
	recScale    float64
}

// NewEngine constructs the engine for the configured input device. PortAudio
// must be initialized first. Generated paths are handed to every transport
// once per analysis tick.
func NewEngine(cfg *config.Config, transports ...transport.Transport) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	order, err := analyzer.ParseOrder(cfg.Analyzer.FFTSize)
	if err != nil {
		return nil, err
	}
	windowType, err := analyzer.ParseWindowFunc(cfg.Analyzer.FFTWindow)
	if err != nil {
		return nil, err
	}

	producer, err := NewPathProducer(order, windowType, cfg.Analyzer.FloorDB)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		bounds: curve.Bounds{Top: 0, Width: cfg.Display.Width, Height: cfg.Display.Height},

		producer:   producer,
		transports: transports,

		inputBuffer: make([]float64, cfg.Audio.FramesPerBuffer),
		inputDevice: inputDevice,

		gateEnabled:   false,
		gateThreshold: 0.001, // ~0.1% of full scale
	}

	if cfg.Audio.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	return e, nil
}

// StartInputStream opens the mono capture stream and begins the real-time
// callback. This is the start of the hot path.
func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1, // The pipeline analyzes a single channel
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: e.cfg.Audio.FramesPerBuffer,
		SampleRate:      e.cfg.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return err
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		return err
	}

	return nil
}

// StopInputStream stops and closes the capture stream.
func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
	}

	return nil
}

// processInputStream is the real-time audio callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	n := len(in)
	if n > len(e.inputBuffer) {
		n = len(e.inputBuffer)
	}
	for i := 0; i < n; i++ {
		e.inputBuffer[i] = float64(in[i])
	}

	e.processBuffer(e.inputBuffer[:n])
	e.writeRecording(in)
}

// processBuffer applies the noise gate and feeds the capture stage in-place.
// Performance Critical (Hot Path): no allocations, no locks.
func (e *Engine) processBuffer(buffer []float64) {
	if e.gateEnabled {
		var maxAmplitude float64
		for i := range buffer {
			if a := math.Abs(buffer[i]); a > maxAmplitude {
				maxAmplitude = a
			}
		}
		if maxAmplitude <= e.gateThreshold {
			return // gate closed, block carries no signal worth analyzing
		}
	}

	e.producer.Update(buffer)
}

// StartAnalysis launches the analysis goroutine, ticking at the configured
// refresh rate. Safe to call multiple times; subsequent calls are no-ops
// while running.
func (e *Engine) StartAnalysis() {
	e.loopMu.Lock()
	if e.ticker != nil {
		e.loopMu.Unlock()
		applog.Warnf("Engine: StartAnalysis called but already running.")
		return
	}

	interval := time.Second / time.Duration(e.cfg.Display.RefreshHz)
	e.ticker = time.NewTicker(interval)
	e.doneChan = make(chan struct{})
	e.stopOnce = sync.Once{}

	ticker := e.ticker
	doneChan := e.doneChan

	e.loopMu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		applog.Infof("Engine: Analysis loop started (Interval: %s)", interval)
		for {
			select {
			case <-ticker.C:
				e.analysisTick()
			case <-doneChan:
				applog.Infof("Engine: Analysis loop received stop signal.")
				return
			}
		}
	}()
}

// analysisTick runs the full consumer side once: windows to spectra to
// paths, then publishes the newest path.
func (e *Engine) analysisTick() {
	if !e.producer.Process(e.bounds, e.cfg.Audio.SampleRate) {
		return // nothing new this tick
	}

	path, ok := e.producer.Path()
	if !ok {
		return
	}

	// Snapshot before handing off: the producer reuses its path storage on
	// the next tick, while transports may marshal asynchronously.
	snapshot := make(curve.Path, len(path))
	copy(snapshot, path)

	e.latestMu.Lock()
	e.latest = snapshot
	e.latestMu.Unlock()

	for _, t := range e.transports {
		if err := t.Send(snapshot); err != nil {
			applog.Debugf("Engine: transport send failed: %v", err)
		}
	}
}

// StopAnalysis signals the analysis goroutine to terminate and waits for it.
// Safe to call multiple times.
func (e *Engine) StopAnalysis() {
	e.loopMu.Lock()
	if e.ticker != nil {
		e.stopOnce.Do(func() {
			close(e.doneChan)
			e.ticker.Stop()
			e.ticker = nil
		})
	}
	e.loopMu.Unlock()

	// Wait even when another caller won the stop: every StopAnalysis
	// returns only after the loop goroutine has exited.
	e.wg.Wait()
}

// LatestPath returns a copy of the most recently published render path, or
// false when none has been produced yet. Safe to call from any goroutine.
func (e *Engine) LatestPath() (curve.Path, bool) {
	e.latestMu.RLock()
	defer e.latestMu.RUnlock()

	if e.latest == nil {
		return nil, false
	}
	out := make(curve.Path, len(e.latest))
	copy(out, e.latest)
	return out, true
}

// PendingPaths reports how many generated paths are queued and unconsumed.
func (e *Engine) PendingPaths() int {
	return e.producer.PendingPaths()
}

// DroppedWindows reports how many sample windows were lost to backpressure.
func (e *Engine) DroppedWindows() uint64 {
	return e.producer.DroppedWindows()
}

// SetOrder changes the FFT order, draining the pipeline first. The input
// stream keeps running; windows arriving during the switch are dropped with
// the rest of the in-flight data.
func (e *Engine) SetOrder(order analyzer.Order) error {
	if !order.Valid() {
		return fmt.Errorf("invalid FFT order %d", int(order))
	}
	if order == e.producer.Order() {
		return nil
	}

	wasRunning := e.pauseForReconfigure()
	e.producer.ChangeOrder(order)
	e.cfg.Analyzer.FFTSize = order.Size()
	if wasRunning {
		e.resumeAfterReconfigure()
	}
	applog.Infof("Engine: FFT order changed (Size: %d)", order.Size())
	return nil
}

// SetSampleRate reopens the input stream at a new rate and resets the
// pipeline, since every queued window was captured at the old rate.
func (e *Engine) SetSampleRate(rate float64) error {
	if rate < config.MinSampleRate || rate > config.MaxSampleRate {
		return fmt.Errorf("sample rate %.0f outside supported range [%d, %d]",
			rate, config.MinSampleRate, config.MaxSampleRate)
	}
	if rate == e.cfg.Audio.SampleRate {
		return nil
	}

	wasRunning := e.pauseForReconfigure()
	e.cfg.Audio.SampleRate = rate
	e.producer.ChangeOrder(e.producer.Order()) // flush stale windows
	if wasRunning {
		e.resumeAfterReconfigure()
	}
	applog.Infof("Engine: Sample rate changed (Rate: %.0f Hz)", rate)
	return nil
}

// pauseForReconfigure idles both pipeline sides so buffers can be swapped.
// Returns whether the input stream was running.
func (e *Engine) pauseForReconfigure() bool {
	e.StopAnalysis()
	wasRunning := e.inputStream != nil
	if wasRunning {
		if err := e.StopInputStream(); err != nil {
			applog.Errorf("Engine: error stopping input stream for reconfigure: %v", err)
		}
	}
	return wasRunning
}

func (e *Engine) resumeAfterReconfigure() {
	if err := e.StartInputStream(); err != nil {
		applog.Errorf("Engine: error restarting input stream: %v", err)
		return
	}
	e.StartAnalysis()
}

// Close stops recording, the analysis loop and the input stream, and closes
// all transports.
func (e *Engine) Close() error {
	if err := e.StopRecording(); err != nil {
		return err
	}

	e.StopAnalysis()

	if err := e.StopInputStream(); err != nil {
		return err
	}

	for _, t := range e.transports {
		if err := t.Close(); err != nil {
			applog.Warnf("Engine: error closing transport: %v", err)
		}
	}

	return nil
}
