// SPDX-License-Identifier: MIT
/*
Package curve turns decibel magnitude spectra into screen-space analyzer
paths: logarithmic in frequency across the audible range, linear (clamped)
in amplitude.
*/
package curve

import "math"

// Audible frequency range for the horizontal log scale, in Hz.
const (
	MinFrequency = 20.0
	MaxFrequency = 20000.0
)

// bottomMargin keeps the floor line slightly below the drawing area so the
// curve's baseline is not glued to the border.
const bottomMargin = 10.0

// Point is one vertex of a render path, in pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is an ordered sequence of straight segments. It is immutable once
// published and replaces the previously rendered path wholesale.
type Path []Point

// Bounds describes the drawing area the path is generated for.
type Bounds struct {
	Top    float64 // y coordinate of the 0 dB line
	Width  float64 // drawing area width in pixels
	Height float64 // drawing area height in pixels
}

// mapToY linearly maps a decibel value from [floorDB, 0] onto
// [bottom+margin, top].
func mapToY(db, floorDB float64, b Bounds) float64 {
	bottom := b.Height + bottomMargin
	return bottom + (db-floorDB)*(b.Top-bottom)/(0-floorDB)
}

// normalizedLogX returns the log10-normalized position of freq within the
// audible range: 0 at MinFrequency, 1 at MaxFrequency.
func normalizedLogX(freq float64) float64 {
	return math.Log10(freq/MinFrequency) / math.Log10(MaxFrequency/MinFrequency)
}
