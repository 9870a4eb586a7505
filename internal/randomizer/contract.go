package randomizer

// Randomizer is the source of uniform random integers used by the draw and
// the grouping.
type Randomizer interface {
	// Intn returns a uniform value in [0, n). n must be positive.
	Intn(n int) int
}
