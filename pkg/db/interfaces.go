// Package db defines the pure data-access collaborators the engine consumes:
// master-data lookups and assignment persistence. Implementations carry no
// business logic; the engine is agnostic to the backing store as long as the
// returned shapes match the core model.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/weixin008/dutyroster/pkg/core/model"
)

// ErrNotFound is returned when a referenced record does not exist
var ErrNotFound = errors.New("record not found")

// PersonStore fetches personnel records
type PersonStore interface {
	GetPersons(ctx context.Context) ([]*model.Person, error)
	GetPerson(ctx context.Context, id string) (*model.Person, error)
}

// GroupStore fetches duty-group records
type GroupStore interface {
	GetGroups(ctx context.Context) ([]*model.Group, error)
	GetGroup(ctx context.Context, id string) (*model.Group, error)
}

// RoleStore fetches duty-role records
type RoleStore interface {
	GetRoles(ctx context.Context) ([]*model.Role, error)
	GetRole(ctx context.Context, id string) (*model.Role, error)
}

// ShiftStore fetches shift definitions
type ShiftStore interface {
	GetShifts(ctx context.Context) ([]*model.Shift, error)
	GetShift(ctx context.Context, id string) (*model.Shift, error)
}

// RuleStore fetches generation rules
type RuleStore interface {
	GetRules(ctx context.Context) ([]*model.Rule, error)
	GetRule(ctx context.Context, id string) (*model.Rule, error)
}

// AssignmentStore persists and queries assignment records
type AssignmentStore interface {
	GetAssignmentsByRange(ctx context.Context, from, to time.Time) ([]*model.Assignment, error)
	InsertAssignments(ctx context.Context, assignments []*model.Assignment) error
	DeleteAssignmentsByRange(ctx context.Context, from, to time.Time) error
}

// Store is the full collaborator surface the engine depends on
type Store interface {
	PersonStore
	GroupStore
	RoleStore
	ShiftStore
	RuleStore
	AssignmentStore
}
