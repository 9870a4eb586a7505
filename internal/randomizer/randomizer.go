package randomizer

import (
	"math/rand"
	"sync"
	"time"
)

type randomizerImpl struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a concurrency-safe Randomizer backed by math/rand, seeded from
// the clock.
func New() Randomizer {
	return &randomizerImpl{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404
	}
}

// NewSeeded returns a Randomizer with a fixed seed, for reproducible runs.
func NewSeeded(seed int64) Randomizer {
	return &randomizerImpl{rnd: rand.New(rand.NewSource(seed))} // #nosec G404
}

func (r *randomizerImpl) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

// Shuffle returns a uniformly permuted copy of in. The input is not modified.
func Shuffle[T any](r Randomizer, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Between returns a uniform value in [min, max). It returns min when the
// range is empty.
func Between(r Randomizer, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min)
}
