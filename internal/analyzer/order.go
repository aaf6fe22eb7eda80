// SPDX-License-Identifier: MIT
package analyzer

import "fmt"

// Order is the power-of-two exponent defining the FFT transform size.
// Only the three values below are valid; anything else is rejected by
// ParseOrder and by Generator.ChangeOrder.
type Order int

const (
	Order2048 Order = 11
	Order4096 Order = 12
	Order8192 Order = 13
)

// Size returns the transform size in samples (1 << order).
func (o Order) Size() int {
	return 1 << o
}

// NumBins returns the count of Nyquist-bounded frequency bins (Size/2).
func (o Order) NumBins() int {
	return o.Size() / 2
}

// Valid reports whether o is one of the supported orders.
func (o Order) Valid() bool {
	switch o {
	case Order2048, Order4096, Order8192:
		return true
	}
	return false
}

func (o Order) String() string {
	if o.Valid() {
		return fmt.Sprintf("%d", o.Size())
	}
	return fmt.Sprintf("invalid(%d)", int(o))
}

// ParseOrder converts an FFT size (2048, 4096 or 8192) to its Order.
func ParseOrder(size int) (Order, error) {
	switch size {
	case 2048:
		return Order2048, nil
	case 4096:
		return Order4096, nil
	case 8192:
		return Order8192, nil
	default:
		return Order2048, fmt.Errorf("unsupported FFT size %d (expected 2048, 4096 or 8192)", size)
	}
}
