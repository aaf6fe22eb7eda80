// SPDX-License-Identifier: MIT
package curve

import (
	"math"

	"spectra/internal/fifo"
	applog "spectra/internal/log"
)

// pathResolution is the bin stride when building the path. Sampling every
// 2nd bin halves the segment count with no visible loss of smoothness.
const pathResolution = 2

// Generator maps magnitude arrays into render paths and queues them for the
// renderer. Reconfigure with Prepare only while no Generate or pull is in
// flight.
type Generator struct {
	path  Path // scratch path reused across Generate calls
	queue *fifo.Fifo[Point]
}

// NewGenerator returns a Generator sized for magnitude arrays of numBins
// values.
func NewGenerator(numBins int) *Generator {
	g := &Generator{queue: &fifo.Fifo[Point]{}}
	g.Prepare(numBins)
	return g
}

// Prepare re-sizes the scratch path and resets the outbound queue,
// discarding any unconsumed paths.
func (g *Generator) Prepare(numBins int) {
	maxPoints := numBins/pathResolution + 1
	g.path = make(Path, 0, maxPoints)
	g.queue.Prepare(fifo.DefaultCapacity, maxPoints)
}

// Generate builds one path from a magnitude array and pushes it to the
// output queue.
//
// Vertical: each decibel value maps linearly from [floorDB, 0] onto the
// drawing area, with non-finite values clamped to the bottom edge. The
// starting point always lands on the left edge since bin 0 (DC) has no
// defined position on a log-frequency axis. Horizontal: bin frequency =
// bin index * binWidth, placed at its log10-normalized position within
// 20 Hz - 20 kHz, clamped to the left edge for bins below MinFrequency.
// Bins after the first are sampled at a fixed stride and skipped entirely
// when their mapped value is non-finite.
func (g *Generator) Generate(mags []float64, bounds Bounds, binWidth, floorDB float64) {
	if len(mags) == 0 {
		return
	}

	g.path = g.path[:0]

	y := mapToY(mags[0], floorDB, bounds)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		y = bounds.Height
	}
	g.path = append(g.path, Point{X: 0, Y: y})

	for bin := 1; bin < len(mags); bin += pathResolution {
		y = mapToY(mags[bin], floorDB, bounds)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		binFreq := float64(bin) * binWidth
		x := math.Floor(normalizedLogX(binFreq) * bounds.Width)
		if x < 0 {
			// At the larger FFT sizes the first strided bins sit below
			// MinFrequency; pin them to the left edge so X never runs
			// backwards from the start point.
			x = 0
		}
		g.path = append(g.path, Point{X: x, Y: y})
	}

	if !g.queue.Push(g.path) {
		applog.Debugf("Curve: path queue full, dropping frame")
	}
}

// PullPath copies the oldest unconsumed path into *dst. Returns false when
// none is available.
func (g *Generator) PullPath(dst *Path) bool {
	return g.queue.Pull((*[]Point)(dst))
}

// NumPathsAvailable reports how many generated paths are queued and
// unconsumed.
func (g *Generator) NumPathsAvailable() int {
	return g.queue.NumAvailableForReading()
}
