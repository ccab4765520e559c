package profile

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// ErrNotFound is returned when a user has no stored profile.
var ErrNotFound = errors.New("profile not found")

// Store is the per-user profile and daily-intake interface. The production
// deployment backs this with the externally managed row-level-isolated
// database; the in-memory implementation below covers tests and local runs.
type Store interface {
	Profile(ctx context.Context, userID string) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
	// DailyIntake returns the cumulative intake logged for the user on day.
	DailyIntake(ctx context.Context, userID string, day time.Time) (Macros, error)
	// AddIntake accumulates a meal into the user's daily intake and returns
	// the new cumulative total.
	AddIntake(ctx context.Context, userID string, day time.Time, meal Macros) (Macros, error)
	// IncrPreference bumps the counter for a suggestion kind the user accepted.
	IncrPreference(ctx context.Context, userID string, kind string) error
}

type intakeCounters struct {
	calories atomic.Float64
	protein  atomic.Float64
	carbs    atomic.Float64
	fat      atomic.Float64
}

func (c *intakeCounters) add(m Macros) Macros {
	return Macros{
		Calories: c.calories.Add(m.Calories),
		Protein:  c.protein.Add(m.Protein),
		Carbs:    c.carbs.Add(m.Carbs),
		Fat:      c.fat.Add(m.Fat),
	}
}

func (c *intakeCounters) snapshot() Macros {
	return Macros{
		Calories: c.calories.Load(),
		Protein:  c.protein.Load(),
		Carbs:    c.carbs.Load(),
		Fat:      c.fat.Load(),
	}
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mtx      sync.RWMutex
	profiles map[string]*Profile
	intake   map[string]*intakeCounters
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*Profile),
		intake:   make(map[string]*intakeCounters),
	}
}

func dayKey(userID string, day time.Time) string {
	return userID + "/" + day.Format("2006-01-02")
}

func (s *MemoryStore) Profile(ctx context.Context, userID string) (*Profile, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) SaveProfile(ctx context.Context, p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *MemoryStore) counters(userID string, day time.Time) *intakeCounters {
	key := dayKey(userID, day)
	s.mtx.Lock()
	defer s.mtx.Unlock()
	c, ok := s.intake[key]
	if !ok {
		c = new(intakeCounters)
		s.intake[key] = c
	}
	return c
}

func (s *MemoryStore) DailyIntake(ctx context.Context, userID string, day time.Time) (Macros, error) {
	return s.counters(userID, day).snapshot(), nil
}

func (s *MemoryStore) AddIntake(ctx context.Context, userID string, day time.Time, meal Macros) (Macros, error) {
	return s.counters(userID, day).add(meal), nil
}

func (s *MemoryStore) IncrPreference(ctx context.Context, userID string, kind string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	if p.Preferences == nil {
		p.Preferences = make(map[string]int)
	}
	p.Preferences[kind]++
	return nil
}
