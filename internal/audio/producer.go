// SPDX-License-Identifier: MIT
package audio

import (
	"spectra/internal/analyzer"
	"spectra/internal/capture"
	"spectra/internal/config"
	"spectra/internal/curve"
)

// PathProducer wires one channel's pipeline together: sample accumulation,
// windowed FFT and path generation, connected by SPSC queues.
//
// Update is the producer side and runs on the audio thread. Process is the
// consumer side and runs on the analysis thread. No other concurrency is
// permitted: reconfiguration via ChangeOrder requires both sides idle.
type PathProducer struct {
	channel  *capture.ChannelBuffer
	spectrum *analyzer.Generator
	paths    *curve.Generator

	window []float64 // scratch for pulled sample windows
	mags   []float64 // scratch for pulled magnitude arrays
	latest curve.Path
	valid  bool
}

// NewPathProducer builds the pipeline for the given FFT order, analysis
// window and decibel floor.
func NewPathProducer(order analyzer.Order, windowType analyzer.WindowFunc, floorDB float64) (*PathProducer, error) {
	spectrum, err := analyzer.NewGenerator(order, windowType, floorDB)
	if err != nil {
		return nil, err
	}
	return &PathProducer{
		channel:  capture.NewChannelBuffer(order.Size(), config.DefaultQueueCapacity),
		spectrum: spectrum,
		paths:    curve.NewGenerator(order.NumBins()),
		window:   make([]float64, 0, order.Size()),
		mags:     make([]float64, 0, order.NumBins()),
	}, nil
}

// Update feeds one audio block into the accumulator. Audio thread only;
// never allocates or blocks.
func (p *PathProducer) Update(block []float64) {
	p.channel.Update(block)
}

// Process drains every stage once: completed sample windows become magnitude
// spectra, spectra become paths, and the newest generated path replaces the
// held one. Returns true when the held path was refreshed this call.
// Analysis thread only.
func (p *PathProducer) Process(bounds curve.Bounds, sampleRate float64) bool {
	for p.channel.Pull(&p.window) {
		p.spectrum.Produce(p.window)
	}

	binWidth := p.spectrum.BinWidth(sampleRate)
	floorDB := p.spectrum.FloorDB()
	for p.spectrum.PullMagnitudes(&p.mags) {
		p.paths.Generate(p.mags, bounds, binWidth, floorDB)
	}

	refreshed := false
	for p.paths.PullPath(&p.latest) {
		refreshed = true
	}
	if refreshed {
		p.valid = true
	}
	return refreshed
}

// Path returns the most recently completed render path. The slice is owned
// by the producer and only valid until the next Process call; callers that
// retain it must copy. Returns false before the first path is produced.
func (p *PathProducer) Path() (curve.Path, bool) {
	return p.latest, p.valid
}

// ChangeOrder reconfigures every stage for a new FFT size and empties all
// three queues. Both the audio and analysis side must be idle.
func (p *PathProducer) ChangeOrder(order analyzer.Order) {
	if !order.Valid() {
		return
	}
	p.channel.Prepare(order.Size(), config.DefaultQueueCapacity)
	p.spectrum.ChangeOrder(order)
	p.paths.Prepare(order.NumBins())
	p.latest = p.latest[:0]
	p.valid = false
}

// Order returns the current FFT order.
func (p *PathProducer) Order() analyzer.Order {
	return p.spectrum.Order()
}

// PendingPaths reports how many generated paths are queued and not yet
// consumed by Process.
func (p *PathProducer) PendingPaths() int {
	return p.paths.NumPathsAvailable()
}

// DroppedWindows reports how many completed sample windows were lost to
// backpressure since the last reconfiguration.
func (p *PathProducer) DroppedWindows() uint64 {
	return p.channel.Dropped()
}
