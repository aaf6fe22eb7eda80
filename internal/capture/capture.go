// SPDX-License-Identifier: MIT
/*
Package capture accumulates per-block audio samples into fixed-size analysis
windows on the real-time audio thread.

Update is the only method called from the audio callback and is hot-path safe:
no allocations, no locks, no blocking. Completed windows are handed off
through a fifo.Fifo to the analysis thread; when the fifo is full the window
is dropped, which is acceptable loss for a lossy real-time display.
*/
package capture

import (
	"sync/atomic"

	"spectra/internal/fifo"
)

// ChannelBuffer collects one channel's samples into non-overlapping windows
// of a configured size (hop size == window size) and queues each completed
// window for the analysis thread.
type ChannelBuffer struct {
	queue   *fifo.Fifo[float64]
	window  []float64
	filled  int
	dropped atomic.Uint64
}

// NewChannelBuffer returns a buffer producing windows of windowSize samples,
// backed by a queue of numSlots slots.
func NewChannelBuffer(windowSize, numSlots int) *ChannelBuffer {
	b := &ChannelBuffer{}
	b.Prepare(windowSize, numSlots)
	return b
}

// Prepare resizes the rolling window and re-initializes the outbound queue,
// discarding any partially accumulated samples. Must not be called while
// Update or Pull is in flight.
func (b *ChannelBuffer) Prepare(windowSize, numSlots int) {
	b.window = make([]float64, windowSize)
	b.filled = 0
	if b.queue == nil {
		b.queue = fifo.New[float64](numSlots, windowSize)
	} else {
		b.queue.Prepare(numSlots, windowSize)
	}
	b.dropped.Store(0)
}

// Update appends one processing block's samples. Each time the window fills
// it is pushed (by copy) to the queue and accumulation restarts from empty.
// Runs on the audio thread: total over its input, never blocks.
func (b *ChannelBuffer) Update(block []float64) {
	for _, s := range block {
		b.window[b.filled] = s
		b.filled++
		if b.filled == len(b.window) {
			if !b.queue.Push(b.window) {
				b.dropped.Add(1)
			}
			b.filled = 0
		}
	}
}

// Pull copies the oldest completed window into *dst. Returns false when no
// complete window is available.
func (b *ChannelBuffer) Pull(dst *[]float64) bool {
	return b.queue.Pull(dst)
}

// NumCompleteWindows reports how many windows are queued and unconsumed.
func (b *ChannelBuffer) NumCompleteWindows() int {
	return b.queue.NumAvailableForReading()
}

// WindowSize returns the configured window length in samples.
func (b *ChannelBuffer) WindowSize() int {
	return len(b.window)
}

// Dropped returns the number of completed windows discarded because the
// analysis thread was not draining fast enough.
func (b *ChannelBuffer) Dropped() uint64 {
	return b.dropped.Load()
}
