package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/logger"
	"golang.org/x/sync/semaphore"

	"funhub/internal/draw"
	"funhub/internal/events"
	"funhub/internal/grouping"
	"funhub/internal/ingest"
	"funhub/internal/metrics"
	"funhub/internal/models"
	"funhub/internal/naming"
	"funhub/internal/randomizer"
)

var (
	// ErrSpinning is returned when the participant list or the winners
	// history is changed while a draw is spinning. The change is ignored.
	ErrSpinning = errors.New("a draw is in progress")
	// ErrPartitionInProgress is returned when grouping is requested while
	// another grouping of the same session is still waiting for names.
	ErrPartitionInProgress = errors.New("grouping is already running")
	// ErrSessionClosed is returned when the session ended while grouping ran.
	ErrSessionClosed = errors.New("session closed")
	// ErrParticipantsChanged is returned when the participant list was replaced
	// while grouping ran; the stale groups are dropped.
	ErrParticipantsChanged = errors.New("participant list changed during grouping")
)

// Options configures a SessionService.
type Options struct {
	Pacing           draw.Pacing
	Scheduler        draw.Scheduler
	Randomizer       randomizer.Randomizer
	Namer            grouping.Namer
	GroupTimeout     time.Duration
	DefaultGroupSize int
	DefaultTheme     string
	EventBuffer      int
}

// Session holds the state of a single user/tenant.
type Session struct {
	mu           sync.RWMutex
	participants []models.Participant
	version      int
	groups       []models.Group
	groupSize    int
	theme        string
	lastActivity time.Time
	closed       bool

	drawer    *draw.Drawer
	partition *semaphore.Weighted
	events    *events.Broadcaster
}

// SessionService manages the sessions of all tenants.
type SessionService struct {
	mu          sync.RWMutex
	sessions    map[string]*Session // Key: tenantID
	opts        Options
	partitioner *grouping.Partitioner
	now         func() time.Time
}

// NewSessionService creates a SessionService. Zero options get defaults.
func NewSessionService(opts Options) *SessionService {
	if opts.Scheduler == nil {
		opts.Scheduler = draw.NewScheduler()
	}
	if opts.Randomizer == nil {
		opts.Randomizer = randomizer.New()
	}
	if opts.Namer == nil {
		opts.Namer = naming.StaticNamer{}
	}
	if opts.Pacing == (draw.Pacing{}) {
		opts.Pacing = draw.DefaultPacing()
	}
	if opts.GroupTimeout <= 0 {
		opts.GroupTimeout = 30 * time.Second
	}
	if opts.DefaultGroupSize < 1 {
		opts.DefaultGroupSize = 3
	}
	opts.DefaultTheme = naming.ResolveTheme(opts.DefaultTheme)
	if opts.EventBuffer < 1 {
		opts.EventBuffer = 64
	}
	return &SessionService{
		sessions:    make(map[string]*Session),
		opts:        opts,
		partitioner: grouping.NewPartitioner(opts.Randomizer, opts.Namer),
		now:         time.Now,
	}
}

// getSession returns the session of a tenant, creating it if needed.
func (s *SessionService) getSession(tenantID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[tenantID]
	if !exists {
		session = s.newSession(tenantID)
		s.sessions[tenantID] = session
		metrics.SetActiveSessions(len(s.sessions))
	}
	session.lastActivity = s.now()
	return session
}

func (s *SessionService) newSession(tenantID string) *Session {
	session := &Session{
		participants: make([]models.Participant, 0),
		groupSize:    s.opts.DefaultGroupSize,
		theme:        s.opts.DefaultTheme,
		drawer:       draw.NewDrawer(s.opts.Randomizer, s.opts.Scheduler, s.opts.Pacing),
		partition:    semaphore.NewWeighted(1),
		events:       events.NewBroadcaster(s.opts.EventBuffer),
	}
	session.drawer.OnTick(func(c models.Participant, step, steps int) {
		session.events.Publish(events.Event{
			Name: events.EventTick,
			Data: models.SpinTick{Candidate: c, Step: step, Steps: steps},
		})
	})
	session.drawer.OnSettled(func(winner models.Participant) {
		metrics.IncDrawSettled()
		logger.Infof("draw: tenant %s settled on %q", tenantID, winner.Name)
		session.events.Publish(events.Event{Name: events.EventSettled, Data: winner})
	})
	return session
}

// Participants returns the participant list of a tenant.
func (s *SessionService) Participants(tenantID string) []models.Participant {
	session := s.getSession(tenantID)
	session.mu.RLock()
	defer session.mu.RUnlock()
	return append([]models.Participant{}, session.participants...)
}

// SetParticipants replaces the participant list with fresh participants for
// names. Existing groups are dropped; the winners history is kept until reset.
func (s *SessionService) SetParticipants(tenantID string, names []string) ([]models.Participant, error) {
	session := s.getSession(tenantID)
	session.mu.Lock()
	if session.drawer.Spinning() {
		session.mu.Unlock()
		return nil, ErrSpinning
	}
	session.participants = ingest.NewParticipants(names)
	session.version++
	session.groups = nil
	participants := append([]models.Participant{}, session.participants...)
	session.mu.Unlock()

	logger.Infof("participants: tenant %s now has %d participants", tenantID, len(participants))
	session.events.Publish(events.Event{Name: events.EventParticipants, Data: participants})
	return participants, nil
}

// ClearParticipants empties the participant list.
func (s *SessionService) ClearParticipants(tenantID string) error {
	_, err := s.SetParticipants(tenantID, nil)
	return err
}

// StartDraw starts a spin. It reports false when the request was ignored
// because a spin is running or nobody is left to draw.
func (s *SessionService) StartDraw(tenantID string, allowRepeat bool) bool {
	session := s.getSession(tenantID)
	session.mu.RLock()
	defer session.mu.RUnlock()

	if _, ok := session.drawer.Start(session.participants, allowRepeat); !ok {
		metrics.IncDrawRejected()
		return false
	}
	metrics.IncDrawStarted(allowRepeat)
	return true
}

// SetAllowRepeat changes the repeat flag without drawing. It is ignored while spinning.
func (s *SessionService) SetAllowRepeat(tenantID string, allowRepeat bool) error {
	if !s.getSession(tenantID).drawer.SetAllowRepeat(allowRepeat) {
		return ErrSpinning
	}
	return nil
}

// ResetDraw clears the winners history. It is ignored while spinning.
func (s *SessionService) ResetDraw(tenantID string) error {
	session := s.getSession(tenantID)
	if !session.drawer.Reset() {
		return ErrSpinning
	}
	session.events.Publish(events.Event{Name: events.EventReset})
	return nil
}

// DrawState returns the draw snapshot of a tenant.
func (s *SessionService) DrawState(tenantID string) models.DrawState {
	session := s.getSession(tenantID)
	session.mu.RLock()
	defer session.mu.RUnlock()
	return session.drawer.State(session.participants)
}

// Winners returns the winners numbered in draw order.
func (s *SessionService) Winners(tenantID string) []models.WinnerRecord {
	return models.WinnerRecords(s.getSession(tenantID).drawer.History())
}

// Partition builds new groups of size members named after theme. Invalid
// sizes and empty lists leave the current groups untouched and return none.
// Only one grouping per session runs at a time.
func (s *SessionService) Partition(ctx context.Context, tenantID string, size int, theme string) ([]models.Group, error) {
	session := s.getSession(tenantID)
	if !session.partition.TryAcquire(1) {
		return nil, ErrPartitionInProgress
	}
	defer session.partition.Release(1)

	session.mu.RLock()
	participants := append([]models.Participant(nil), session.participants...)
	version := session.version
	session.mu.RUnlock()

	if grouping.GroupCount(len(participants), size) == 0 {
		return nil, nil
	}
	theme = naming.ResolveTheme(theme)

	// Name generation outlives the request; its result is dropped below if
	// the session went away meanwhile.
	nameCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.GroupTimeout)
	defer cancel()
	groups := s.partitioner.Partition(nameCtx, participants, size, theme)

	session.mu.Lock()
	switch {
	case session.closed:
		session.mu.Unlock()
		logger.Infof("grouping: tenant %s closed during grouping, result discarded", tenantID)
		return nil, ErrSessionClosed
	case session.version != version:
		session.mu.Unlock()
		return nil, ErrParticipantsChanged
	}
	session.groups = groups
	session.groupSize = size
	session.theme = theme
	session.mu.Unlock()

	metrics.ObservePartition(len(groups))
	logger.Infof("grouping: tenant %s split %d participants into %d groups", tenantID, len(participants), len(groups))
	session.events.Publish(events.Event{Name: events.EventGroups, Data: groups})
	return groups, nil
}

// Groups returns the current groups of a tenant.
func (s *SessionService) Groups(tenantID string) []models.Group {
	session := s.getSession(tenantID)
	session.mu.RLock()
	defer session.mu.RUnlock()
	return append([]models.Group{}, session.groups...)
}

// GroupSettings returns the last used group size and theme.
func (s *SessionService) GroupSettings(tenantID string) (int, string) {
	session := s.getSession(tenantID)
	session.mu.RLock()
	defer session.mu.RUnlock()
	return session.groupSize, session.theme
}

// Subscribe streams the events of a tenant's session.
func (s *SessionService) Subscribe(tenantID string) (<-chan events.Event, func()) {
	return s.getSession(tenantID).events.Subscribe()
}

// CleanUpInactiveSessions removes sessions idle for longer than maxIdle and
// returns how many were removed.
func (s *SessionService) CleanUpInactiveSessions(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for tenantID, session := range s.sessions {
		if s.now().Sub(session.lastActivity) > maxIdle {
			session.close()
			delete(s.sessions, tenantID)
			removed++
		}
	}
	metrics.SetActiveSessions(len(s.sessions))
	return removed
}

// ClearSession removes all data associated with a tenant.
func (s *SessionService) ClearSession(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[tenantID]; ok {
		session.close()
		delete(s.sessions, tenantID)
	}
	metrics.SetActiveSessions(len(s.sessions))
	logger.Infof("Cleared session for tenant: %s", tenantID)
}

// SessionCount returns the number of live sessions.
func (s *SessionService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (sess *Session) close() {
	sess.drawer.Cancel()
	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()
	sess.events.Close()
}
