package draw

import "time"

// Pacing controls how the spin slows down before it stops.
type Pacing struct {
	// Interval is the delay between the first ticks.
	Interval time.Duration
	// SlowdownAfter is the fraction of steps after which every tick gets slower.
	SlowdownAfter float64
	// SlowdownStep is added to the delay on each slowed tick.
	SlowdownStep time.Duration
	// MinSteps and MaxSteps bound the random step count, [MinSteps, MaxSteps).
	MinSteps int
	MaxSteps int
}

// DefaultPacing returns the slot-machine pacing: 30 to 49 steps, 50ms apart,
// each of the last 30% of steps 20ms slower than the previous one.
func DefaultPacing() Pacing {
	return Pacing{
		Interval:      50 * time.Millisecond,
		SlowdownAfter: 0.7,
		SlowdownStep:  20 * time.Millisecond,
		MinSteps:      30,
		MaxSteps:      50,
	}
}

// next returns the delay before the tick following step.
func (p Pacing) next(current time.Duration, step, steps int) time.Duration {
	if float64(step) > float64(steps)*p.SlowdownAfter {
		return current + p.SlowdownStep
	}
	return current
}
