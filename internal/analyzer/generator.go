// SPDX-License-Identifier: MIT
/*
Package analyzer converts sample windows into decibel magnitude spectra.

The Generator runs on the analysis thread, never on the audio callback. All
working buffers are pre-allocated by ChangeOrder so Produce is allocation-free
in steady state. Finished magnitude arrays are handed downstream through a
fifo.Fifo; consumers pull them at their own pace.
*/
package analyzer

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"spectra/internal/fifo"
	applog "spectra/internal/log"
)

// DefaultFloorDB is the decibel value substituted for magnitudes at or below
// zero, keeping -Inf out of the output.
const DefaultFloorDB = -48.0

// Generator performs the windowed forward FFT and decibel conversion for one
// channel. Reconfigure with ChangeOrder only while no Produce or pull is in
// flight.
type Generator struct {
	order      Order
	windowType WindowFunc
	floorDB    float64

	fft      *fourier.FFT
	coeffs   []float64    // analysis window coefficients
	input    []float64    // windowed input scratch
	spectrum []complex128 // raw FFT output
	mags     []float64    // finished decibel magnitudes

	queue *fifo.Fifo[float64]
}

// NewGenerator creates a Generator for the given order, analysis window and
// decibel floor.
func NewGenerator(order Order, windowType WindowFunc, floorDB float64) (*Generator, error) {
	if !order.Valid() {
		return nil, fmt.Errorf("invalid FFT order %d", int(order))
	}
	g := &Generator{
		windowType: windowType,
		floorDB:    floorDB,
		queue:      &fifo.Fifo[float64]{},
	}
	g.ChangeOrder(order)
	return g, nil
}

// ChangeOrder reconfigures the FFT size, rebuilds the window coefficients and
// all scratch buffers, and resets the outbound queue. Any queued magnitude
// arrays are discarded. Not safe to call concurrently with Produce or
// PullMagnitudes.
func (g *Generator) ChangeOrder(order Order) {
	if !order.Valid() {
		applog.Warnf("Analyzer: ChangeOrder ignored invalid order %d", int(order))
		return
	}
	size := order.Size()
	numBins := order.NumBins()

	g.order = order
	g.fft = fourier.NewFFT(size)
	g.coeffs = make([]float64, size)
	applyWindow(g.coeffs, g.windowType)
	g.input = make([]float64, size)
	g.spectrum = make([]complex128, size/2+1)
	g.mags = make([]float64, numBins)
	g.queue.Prepare(fifo.DefaultCapacity, numBins)

	applog.Debugf("Analyzer: Configured (Size: %d, Window: %s, Floor: %.1f dB)", size, g.windowType, g.floorDB)
}

// Produce consumes one sample window and pushes the resulting magnitude
// array downstream. Windows shorter than the FFT size are zero-padded; extra
// samples are ignored. A full outbound queue drops the result silently.
func (g *Generator) Produce(window []float64) {
	size := g.order.Size()
	numBins := g.order.NumBins()

	for i := 0; i < size; i++ {
		if i < len(window) {
			g.input[i] = window[i] * g.coeffs[i]
		} else {
			g.input[i] = 0
		}
	}

	g.fft.Coefficients(g.spectrum, g.input)

	for i := 0; i < numBins; i++ {
		v := cmplx.Abs(g.spectrum[i])
		if math.IsInf(v, 0) || math.IsNaN(v) {
			v = 0
		} else {
			v /= float64(numBins)
		}
		g.mags[i] = gainToDecibels(v, g.floorDB)
	}

	if !g.queue.Push(g.mags) {
		applog.Debugf("Analyzer: magnitude queue full, dropping block")
	}
}

// PullMagnitudes copies the oldest unconsumed magnitude array into *dst.
// Returns false when none is available.
func (g *Generator) PullMagnitudes(dst *[]float64) bool {
	return g.queue.Pull(dst)
}

// NumAvailableBlocks reports how many magnitude arrays are queued.
func (g *Generator) NumAvailableBlocks() int {
	return g.queue.NumAvailableForReading()
}

// Order returns the current FFT order.
func (g *Generator) Order() Order {
	return g.order
}

// Size returns the current FFT size in samples.
func (g *Generator) Size() int {
	return g.order.Size()
}

// FloorDB returns the configured decibel floor.
func (g *Generator) FloorDB() float64 {
	return g.floorDB
}

// BinWidth returns the frequency span of one bin in Hz for the given sample
// rate.
func (g *Generator) BinWidth(sampleRate float64) float64 {
	return sampleRate / float64(g.order.Size())
}

// gainToDecibels converts a linear magnitude to decibels, substituting
// floorDB for values at or below zero and clamping the result to floorDB.
func gainToDecibels(gain, floorDB float64) float64 {
	if gain <= 0 {
		return floorDB
	}
	return math.Max(floorDB, 20*math.Log10(gain))
}
