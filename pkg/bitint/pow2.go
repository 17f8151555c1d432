// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-two helpers used to size and validate
analysis windows. An FFT window is only valid when its length is an exact
power of two, so these checks run at configuration time and again when the
analyzer is constructed.

Design Principles:
- Zero Allocations: All operations use stack memory only
- Predictable Performance: O(1) constant time operations
- Real-Time Safe: No locks, syscalls, or blocking operations

Usage:

	// Suggest a valid window size for a rejected configuration value
	size := bitint.NearestPowerOfTwo(6000) // Returns 4096

	// Verify the window size before building the analyzer
	ok := bitint.IsPowerOfTwo(windowSize)

	// Recursion depth of the radix-2 transform
	depth := bitint.Log2(8192) // Returns 13
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
// Subtracting 1 first keeps exact powers of two unchanged:
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// PrevPowerOfTwo returns the largest power of 2 <= size, or 0 when size
// is not positive.
func PrevPowerOfTwo(size int) int {
	if size <= 0 {
		return 0
	}
	return 1 << (bits.Len(uint(size)) - 1)
}

// NearestPowerOfTwo returns the power of 2 closest to size. Ties go to
// the larger one, and sizes below 1 give 1.
//
//	Input  Output
//	5000   4096
//	6      8
//	7000   8192
func NearestPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	lo, hi := PrevPowerOfTwo(size), NextPowerOfTwo(size)
	if size-lo < hi-size {
		return lo
	}
	return hi
}

// IsPowerOfTwo checks if n is a power of 2 using bit manipulation.
// Powers of 2 have exactly one bit set, so n & (n-1) clears it to zero.
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   Not positive
//	-8     false   Not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 returns the base-2 logarithm of a power of two. For other positive
// values it returns the floor of the logarithm; for n <= 0 it returns -1.
func Log2(n int) int {
	if n <= 0 {
		return -1
	}
	return bits.Len(uint(n)) - 1
}
