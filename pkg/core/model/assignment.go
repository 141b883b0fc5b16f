package model

import "time"

// AssigneeKind tags the Assignee sum type
type AssigneeKind string

const (
	AssigneePerson AssigneeKind = "person"
	AssigneeGroup  AssigneeKind = "group"
)

// Assignee identifies who holds a duty slot: exactly one person or one group.
// The zero value means "nobody" and is only legal on empty assignments.
type Assignee struct {
	Kind AssigneeKind
	ID   string
}

// PersonAssignee builds a person-kind assignee
func PersonAssignee(id string) Assignee {
	return Assignee{Kind: AssigneePerson, ID: id}
}

// GroupAssignee builds a group-kind assignee
func GroupAssignee(id string) Assignee {
	return Assignee{Kind: AssigneeGroup, ID: id}
}

// IsZero reports whether no assignee is set
func (a Assignee) IsZero() bool {
	return a.ID == ""
}

// AssignmentStatus marks the state of a produced assignment record
type AssignmentStatus string

const (
	AssignmentNormal   AssignmentStatus = "normal"
	AssignmentConflict AssignmentStatus = "conflict"
	AssignmentEmpty    AssignmentStatus = "empty"
)

// Assignment is one produced duty record: who covers which role on which
// shift and date. Dates are calendar dates; callers normalize to a single
// time zone before handing them to the engine.
type Assignment struct {
	ID      string
	Date    time.Time
	ShiftID string
	RoleID  string

	Assignee Assignee

	Status AssignmentStatus
	Note   string
}

// Severity ranks the importance of a conflict or rule violation
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// RiskWeight returns the severity's contribution to an aggregate risk score
func (s Severity) RiskWeight() int {
	switch s {
	case SeverityCritical:
		return 30
	case SeverityHigh:
		return 20
	case SeverityMedium:
		return 10
	case SeverityLow:
		return 5
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ConflictKind classifies detected scheduling conflicts
type ConflictKind string

const (
	ConflictTimeOverlap ConflictKind = "time_overlap"
	ConflictStatus      ConflictKind = "status_conflict"
	ConflictEmptyRole   ConflictKind = "empty_role"
	ConflictWorkload    ConflictKind = "workload_violation"
	ConflictRest        ConflictKind = "rest_violation"
)

// ConflictRecord is a structured report of one detected scheduling conflict
type ConflictRecord struct {
	Kind     ConflictKind
	Severity Severity

	// AssignmentIDs are the offending assignment records
	AssignmentIDs []string

	// PersonIDs are the persons affected, when the conflict involves people
	PersonIDs []string

	Description string
	Suggestions []string
}
