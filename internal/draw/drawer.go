package draw

import (
	"sync"
	"time"

	"funhub/internal/models"
	"funhub/internal/randomizer"
)

// TickFunc observes each step of a spin. candidate is what the slot shows.
type TickFunc func(candidate models.Participant, step, steps int)

// SettleFunc observes the winner of a finished spin.
type SettleFunc func(winner models.Participant)

// Drawer runs the lucky draw for one session.
//
// A draw spins through the candidate pool on scheduled ticks and settles on
// the candidate shown by the last tick. Only one spin runs at a time.
type Drawer struct {
	mu     sync.Mutex
	rng    randomizer.Randomizer
	sched  Scheduler
	pacing Pacing

	status      models.DrawStatus
	allowRepeat bool
	history     []models.Participant
	winner      *models.Participant

	// spin state, valid while status is DrawSpinning
	pool  []models.Participant
	index int
	step  int
	steps int
	delay time.Duration
	timer Timer
	done  chan models.Participant
	gen   uint64

	onTick   TickFunc
	onSettle SettleFunc
}

// NewDrawer creates an idle Drawer.
func NewDrawer(rng randomizer.Randomizer, sched Scheduler, pacing Pacing) *Drawer {
	if pacing.MinSteps < 1 {
		pacing.MinSteps = 1
	}
	return &Drawer{
		rng:    rng,
		sched:  sched,
		pacing: pacing,
		status: models.DrawIdle,
	}
}

// OnTick registers the tick observer. Observers run outside the drawer lock.
func (d *Drawer) OnTick(f TickFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onTick = f
}

// OnSettled registers the winner observer.
func (d *Drawer) OnSettled(f SettleFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onSettle = f
}

// SetAllowRepeat changes the repeat flag used for the remaining count shown
// between draws. It reports false and changes nothing while a spin runs.
func (d *Drawer) SetAllowRepeat(allow bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == models.DrawSpinning {
		return false
	}
	d.allowRepeat = allow
	return true
}

// Start begins a spin over the candidate pool of participants. It returns
// false without changing anything when a spin is already running or the pool
// is empty. The returned channel receives the winner once and is then closed;
// it is closed without a value if the spin is cancelled.
func (d *Drawer) Start(participants []models.Participant, allowRepeat bool) (<-chan models.Participant, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.status == models.DrawSpinning {
		return nil, false
	}
	pool := Candidates(participants, d.history, allowRepeat)
	if len(pool) == 0 {
		return nil, false
	}

	d.allowRepeat = allowRepeat
	d.status = models.DrawSpinning
	d.winner = nil
	d.pool = pool
	d.index %= len(pool)
	d.step = 0
	d.steps = randomizer.Between(d.rng, d.pacing.MinSteps, d.pacing.MaxSteps)
	d.delay = d.pacing.Interval
	d.done = make(chan models.Participant, 1)
	d.gen++

	gen := d.gen
	d.timer = d.sched.AfterFunc(0, func() { d.tick(gen) })
	return d.done, true
}

func (d *Drawer) tick(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.status != models.DrawSpinning {
		d.mu.Unlock()
		return
	}

	d.index = (d.index + 1) % len(d.pool)
	d.step++
	current := d.pool[d.index]
	step, steps := d.step, d.steps
	onTick := d.onTick

	if step < steps {
		d.delay = d.pacing.next(d.delay, step, steps)
		d.timer = d.sched.AfterFunc(d.delay, func() { d.tick(gen) })
		d.mu.Unlock()
		if onTick != nil {
			onTick(current, step, steps)
		}
		return
	}

	// The winner is whatever the slot shows on the last step.
	winner := current
	d.history = append([]models.Participant{winner}, d.history...)
	d.winner = &winner
	d.status = models.DrawSettled
	d.timer = nil
	d.pool = nil
	done := d.done
	d.done = nil
	onSettle := d.onSettle
	d.mu.Unlock()

	done <- winner
	close(done)
	if onTick != nil {
		onTick(current, step, steps)
	}
	if onSettle != nil {
		onSettle(winner)
	}
}

// Cancel stops a running spin without recording a winner.
func (d *Drawer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status != models.DrawSpinning {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.timer = nil
	d.pool = nil
	d.status = models.DrawIdle
	close(d.done)
	d.done = nil
}

// Reset clears the winners history and the displayed winner. It is ignored
// and returns false while a spin is running.
func (d *Drawer) Reset() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == models.DrawSpinning {
		return false
	}
	d.history = nil
	d.winner = nil
	d.status = models.DrawIdle
	return true
}

// Spinning reports whether a spin is running.
func (d *Drawer) Spinning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status == models.DrawSpinning
}

// History returns the winners, most recent first.
func (d *Drawer) History() []models.Participant {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Participant(nil), d.history...)
}

// State returns a snapshot of the draw relative to participants.
func (d *Drawer) State(participants []models.Participant) models.DrawState {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := models.DrawState{
		Status:      d.status,
		AllowRepeat: d.allowRepeat,
		History:     append([]models.Participant{}, d.history...),
	}
	switch d.status {
	case models.DrawSpinning:
		current := d.pool[d.index]
		st.Current = &current
		st.Remaining = len(d.pool)
	default:
		if d.winner != nil {
			winner := *d.winner
			st.Winner = &winner
		}
		st.Remaining = len(Candidates(participants, d.history, d.allowRepeat))
	}
	return st
}
