// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"haptic/internal/haptic"
)

const (
	// MaxEnergy is the ceiling of a byte-scaled magnitude.
	MaxEnergy = 255.0

	// BassFraction is the share of lowest bins treated as bass.
	BassFraction = 0.1
)

// BassBins returns how many of n bins make up the bass range: floor(n*0.1),
// but never fewer than one so short vectors still produce a value.
func BassBins(n int) int {
	k := int(float64(n) * BassFraction)
	if k < 1 {
		k = 1
	}
	return k
}

// BassEnergy returns the arithmetic mean of the lowest 10% of bins.
func BassEnergy(bins []uint8) (float64, error) {
	if len(bins) == 0 {
		return 0, fmt.Errorf("%w: empty frequency vector", haptic.ErrInvalidInput)
	}

	k := BassBins(len(bins))
	values := make([]float64, k)
	for i, v := range bins[:k] {
		values[i] = float64(v)
	}
	return stat.Mean(values, nil), nil
}
