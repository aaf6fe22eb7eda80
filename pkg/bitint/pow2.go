// SPDX-License-Identifier: MIT
//
// Package bitint provides power-of-two helpers for FFT and buffer
// sizing. All operations are allocation-free and constant time.
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size. Exact powers of 2
// are preserved; zero and negative sizes return 1.
//
// The subtraction (size-1) keeps exact powers of 2 from doubling:
// bits.Len64(7) = 3 so 8 maps to 1<<3 = 8.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. Powers of 2
// have exactly one bit set, so n&(n-1) is 0 only for them.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
