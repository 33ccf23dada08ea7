// SPDX-License-Identifier: MIT
package source

import "math"

// DefaultGateThreshold is roughly 0.1% of full scale.
const DefaultGateThreshold = 0.001

// Gate is a peak noise gate over raw int32 capture blocks. Blocks whose peak
// amplitude does not exceed the threshold are treated as silence, so room
// noise never reaches the bass series.
type Gate struct {
	threshold int32 // Absolute amplitude threshold (0-2147483647).
}

// NewGate returns a gate with the threshold given as a fraction of full scale
// in [0,1], where 0 is always open and 1 is always closed. Out-of-range
// values are clamped.
func NewGate(threshold float64) Gate {
	var g Gate
	g.SetThreshold(threshold)
	return g
}

// SetThreshold adjusts the threshold, clamped to [0,1].
func (g *Gate) SetThreshold(threshold float64) {
	threshold = math.Max(0, math.Min(1, threshold))
	g.threshold = int32(threshold * float64(math.MaxInt32))
}

// Threshold returns the threshold as a fraction of full scale.
func (g Gate) Threshold() float64 {
	return float64(g.threshold) / float64(math.MaxInt32)
}

// Open reports whether the peak of buffer exceeds the threshold. A zero
// threshold is always open. Runs on every capture block without allocating.
func (g Gate) Open(buffer []int32) bool {
	if g.threshold == 0 {
		return true
	}
	var peak int32
	for _, sample := range buffer {
		// Branchless |sample| and max.
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		diff := amplitude - peak
		peak += (diff & (diff >> 31)) ^ diff
	}
	return peak > g.threshold
}
