// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-two helpers used to size FFT windows.

	size := bitint.NextPowerOfTwo(1000) // 1024
	ok := bitint.IsPowerOfTwo(size)     // true

NextPowerOfTwo subtracts one before taking the bit length so exact powers
of two are preserved: for 8, bits.Len64(7) is 3 and 1<<3 is 8, whereas
bits.Len64(8) would give 16.
*/
package bitint

import "math/bits"

// Integer is the set of signed integer types the helpers accept.
type Integer interface {
	~int | ~int32 | ~int64
}

// NextPowerOfTwo returns the smallest power of two >= n. Values <= 0 yield 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo[T Integer](n T) T {
	if n <= 0 {
		return 1
	}
	return T(1) << bits.Len64(uint64(n-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. Powers of two
// have exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo[T Integer](n T) bool {
	return n > 0 && n&(n-1) == 0
}
