// SPDX-License-Identifier: MIT
/*
Package fifo implements a bounded lock-free single-producer/single-consumer
queue of fixed-size slice payloads.

Exactly one goroutine may push and exactly one goroutine may pull. Under that
discipline no mutex is needed: the producer is the only writer of the write
cursor, the consumer is the only writer of the read cursor, and each side only
ever reads the other's cursor. Slot storage is pre-allocated by Prepare, so
Push and Pull are allocation-free in steady state and safe to call from a
real-time audio callback.
*/
package fifo

import "sync/atomic"

// DefaultCapacity is the slot count used when no explicit hint is given.
const DefaultCapacity = 100

// Fifo is a bounded SPSC ring buffer carrying []T payloads by copy.
// The zero value is unusable; call Prepare (or New) first.
type Fifo[T any] struct {
	slots [][]T

	// Monotonic cursors. read is advanced only by the consumer, write only
	// by the producer. Slot index = cursor % len(slots).
	read  atomic.Uint64
	write atomic.Uint64
}

// New returns a Fifo with numSlots slots, each pre-sized to hold slotLen
// elements.
func New[T any](numSlots, slotLen int) *Fifo[T] {
	f := &Fifo[T]{}
	f.Prepare(numSlots, slotLen)
	return f
}

// Prepare (re)initializes the queue with numSlots pre-allocated slots of
// slotLen elements each, discarding any in-flight data. A numSlots <= 0
// falls back to DefaultCapacity.
//
// Not safe to call concurrently with Push or Pull; reconfiguration is only
// valid while the pipeline is idle.
func (f *Fifo[T]) Prepare(numSlots, slotLen int) {
	if numSlots <= 0 {
		numSlots = DefaultCapacity
	}
	f.slots = make([][]T, numSlots)
	for i := range f.slots {
		f.slots[i] = make([]T, 0, slotLen)
	}
	f.read.Store(0)
	f.write.Store(0)
}

// Push copies src into the next writable slot. It returns false without
// blocking when the queue is full; the caller drops the payload in that case.
func (f *Fifo[T]) Push(src []T) bool {
	w := f.write.Load()
	if w-f.read.Load() >= uint64(len(f.slots)) {
		return false // full, drop
	}

	i := w % uint64(len(f.slots))
	f.slots[i] = append(f.slots[i][:0], src...)

	// The atomic increment publishes the slot contents to the consumer.
	f.write.Add(1)
	return true
}

// Pull copies the oldest readable slot into *dst, reusing dst's backing
// storage when it has capacity. It returns false when the queue is empty,
// which callers treat as "nothing new this tick".
func (f *Fifo[T]) Pull(dst *[]T) bool {
	r := f.read.Load()
	if r == f.write.Load() {
		return false // empty
	}

	i := r % uint64(len(f.slots))
	*dst = append((*dst)[:0], f.slots[i]...)

	f.read.Add(1)
	return true
}

// NumAvailableForReading reports how many pushed payloads are waiting to be
// pulled. The value is instantaneous and may be stale by the time the caller
// acts on it.
func (f *Fifo[T]) NumAvailableForReading() int {
	return int(f.write.Load() - f.read.Load())
}

// NumAvailableForWriting reports how many slots are free for pushing.
func (f *Fifo[T]) NumAvailableForWriting() int {
	return len(f.slots) - f.NumAvailableForReading()
}

// Capacity returns the total slot count.
func (f *Fifo[T]) Capacity() int {
	return len(f.slots)
}
