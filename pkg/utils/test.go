package utils

import (
	"math"
	"sync"
)

// MockTransport implements the transport.Transport interface for testing.
// It records every payload handed to Send.
type MockTransport struct {
	mu   sync.Mutex
	Sent []any
}

// Send stores the payload for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, data)
	m.mu.Unlock()
	return nil
}

// Close implements transport.Transport.
func (m *MockTransport) Close() error { return nil }

// Last returns the most recently sent payload, or nil if nothing was sent.
func (m *MockTransport) Last() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}

// GenerateComplexWave produces a test signal with a 440Hz fundamental plus
// harmonics, in the range [-1, 1].
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
	}
	return buffer
}

// GenerateSineWave produces a pure sine test signal scaled to 0.9 amplitude.
func GenerateSineWave(size int, sampleRate, frequency float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*frequency*t) * 0.9
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude within
// [startBin, endBin], clamping the range to valid indices.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
