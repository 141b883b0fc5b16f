package db

import (
	"context"
	"sync"
	"time"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
	"github.com/weixin008/dutyroster/pkg/core/model"
)

// MemoryStore is an in-memory Store implementation, used by tests and dry
// runs that have no database available
type MemoryStore struct {
	mu sync.RWMutex

	Persons []*model.Person
	Groups  []*model.Group
	Roles   []*model.Role
	Shifts  []*model.Shift
	Rules   []*model.Rule

	Assignments []*model.Assignment
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) GetPersons(ctx context.Context) ([]*model.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*model.Person(nil), m.Persons...), nil
}

func (m *MemoryStore) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.Persons {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetGroups(ctx context.Context) ([]*model.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*model.Group(nil), m.Groups...), nil
}

func (m *MemoryStore) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.Groups {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetRoles(ctx context.Context) ([]*model.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*model.Role(nil), m.Roles...), nil
}

func (m *MemoryStore) GetRole(ctx context.Context, id string) (*model.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.Roles {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetShifts(ctx context.Context) ([]*model.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*model.Shift(nil), m.Shifts...), nil
}

func (m *MemoryStore) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.Shifts {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetRules(ctx context.Context) ([]*model.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*model.Rule(nil), m.Rules...), nil
}

func (m *MemoryStore) GetRule(ctx context.Context, id string) (*model.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.Rules {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetAssignmentsByRange(ctx context.Context, from, to time.Time) ([]*model.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fromD, toD := calendar.Midnight(from), calendar.Midnight(to)
	var out []*model.Assignment
	for _, a := range m.Assignments {
		d := calendar.Midnight(a.Date)
		if !d.Before(fromD) && !d.After(toD) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryStore) InsertAssignments(ctx context.Context, assignments []*model.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Assignments = append(m.Assignments, assignments...)
	return nil
}

func (m *MemoryStore) DeleteAssignmentsByRange(ctx context.Context, from, to time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fromD, toD := calendar.Midnight(from), calendar.Midnight(to)
	kept := m.Assignments[:0]
	for _, a := range m.Assignments {
		d := calendar.Midnight(a.Date)
		if d.Before(fromD) || d.After(toD) {
			kept = append(kept, a)
		}
	}
	m.Assignments = kept
	return nil
}
