package draw

import (
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented it from running.
	Stop() bool
}

// Scheduler runs callbacks after a delay without blocking the caller.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

// NewScheduler returns a Scheduler backed by time.AfterFunc.
func NewScheduler() Scheduler {
	return clockScheduler{}
}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler queues callbacks and runs them only when stepped.
// It lets a spin be driven tick by tick without real time passing.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
	delays  []time.Duration
}

type manualTimer struct {
	s       *ManualScheduler
	f       func()
	stopped bool
	fired   bool
}

// NewManualScheduler creates an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, f: f}
	s.pending = append(s.pending, t)
	s.delays = append(s.delays, d)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Step runs the oldest pending callback. It reports false when nothing is pending.
func (s *ManualScheduler) Step() bool {
	s.mu.Lock()
	var next *manualTimer
	for len(s.pending) > 0 && next == nil {
		t := s.pending[0]
		s.pending = s.pending[1:]
		if !t.stopped {
			t.fired = true
			next = t
		}
	}
	s.mu.Unlock()

	if next == nil {
		return false
	}
	next.f()
	return true
}

// RunAll steps until nothing is pending and returns the number of callbacks run.
func (s *ManualScheduler) RunAll() int {
	n := 0
	for s.Step() {
		n++
	}
	return n
}

// Pending returns the number of callbacks waiting to run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Delays returns every delay requested so far, in order.
func (s *ManualScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}
