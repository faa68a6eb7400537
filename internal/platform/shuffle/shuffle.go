package shuffle

import (
	"math/rand/v2"
	"time"
)

// Source draws a uniform integer in [0, n).
type Source interface {
	IntN(n int) int
}

// NewSource returns a seeded PCG source. A zero seed picks one from the clock.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Slice returns a uniformly permuted copy of items using a backward
// Fisher-Yates pass. items is left unmodified.
func Slice[T any](src Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i >= 1; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
