package randomizer

// Sequence replays scripted values, reduced modulo n. After the script is
// exhausted it keeps returning 0. Used to make draws and shuffles predictable.
type Sequence struct {
	values []int
	pos    int
}

// NewSequence creates a Sequence over values.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Intn(n int) int {
	if s.pos >= len(s.values) {
		return 0
	}
	v := s.values[s.pos] % n
	s.pos++
	if v < 0 {
		v += n
	}
	return v
}
