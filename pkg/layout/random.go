package layout

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// DefaultSeed is the board seed used when none is configured.
const DefaultSeed uint64 = 42

// Source yields uniform random numbers in [0, 1).
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// SourceFunc returns the random stream used to place a card.
type SourceFunc func(cardID string) Source

// NewSource returns a PCG stream derived from a board seed and a key.
// Equal inputs always produce equal streams.
func NewSource(seed uint64, key string) *rand.Rand {
	h := xxhash.Sum64String(key)
	return rand.New(rand.NewPCG(seed^h, seed^0xdeadbeef))
}

// Seeded returns a SourceFunc that gives every card its own stream keyed by
// the card ID. Placing the same cards again replays the same draws, and
// inserting a card does not shift the draws of the others.
func Seeded(seed uint64) SourceFunc {
	return func(cardID string) Source {
		return NewSource(seed, cardID)
	}
}

// Fixed returns a SourceFunc whose streams repeat the given values in
// order. It is meant for tests and examples that need exact positions.
func Fixed(values ...float64) SourceFunc {
	return func(string) Source {
		return &fixedSource{values: values}
	}
}

type fixedSource struct {
	values []float64
	next   int
}

func (f *fixedSource) Float64() float64 {
	if len(f.values) == 0 {
		return 0.5
	}
	v := f.values[f.next%len(f.values)]
	f.next++
	return v
}
