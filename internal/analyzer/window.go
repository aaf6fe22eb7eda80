// SPDX-License-Identifier: MIT
package analyzer

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"

	applog "spectra/internal/log"
)

// WindowFunc selects the analysis window applied before the FFT.
type WindowFunc int

const (
	BlackmanHarris WindowFunc = iota
	BartlettHann
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc.
// Returns the default (BlackmanHarris) and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "blackmanharris":
		return BlackmanHarris, nil
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return BlackmanHarris, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

func (w WindowFunc) String() string {
	switch w {
	case BlackmanHarris:
		return "BlackmanHarris"
	case BartlettHann:
		return "BartlettHann"
	case Blackman:
		return "Blackman"
	case BlackmanNuttall:
		return "BlackmanNuttall"
	case Hann:
		return "Hann"
	case Hamming:
		return "Hamming"
	case Lanczos:
		return "Lanczos"
	case Nuttall:
		return "Nuttall"
	default:
		return "Unknown"
	}
}

// applyWindow fills coeffs with the selected window function's coefficients.
// The slice is seeded with ones first since the gonum window functions
// multiply in place.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BlackmanHarris:
		window.BlackmanHarris(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		applog.Warnf("Analyzer: Unknown window function type %d, defaulting to BlackmanHarris", windowType)
		window.BlackmanHarris(coeffs)
	}
}
