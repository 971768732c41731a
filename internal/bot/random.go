package bot

import "math/rand/v2"

// Random is the source of randomness behind the easy and medium policies.
type Random interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

type globalRandom struct{}

// NewRandom returns a Random backed by the math/rand/v2 global source.
func NewRandom() Random {
	return globalRandom{}
}

func (globalRandom) IntN(n int) int   { return rand.IntN(n) }
func (globalRandom) Float64() float64 { return rand.Float64() }

// FixedRandom replays queued values. Once a queue is drained it returns 0.
type FixedRandom struct {
	Ints   []int
	Floats []float64
}

func (r *FixedRandom) IntN(n int) int {
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[0]
	r.Ints = r.Ints[1:]
	return v % n
}

func (r *FixedRandom) Float64() float64 {
	if len(r.Floats) == 0 {
		return 0
	}
	v := r.Floats[0]
	r.Floats = r.Floats[1:]
	return v
}
