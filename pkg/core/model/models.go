package model

import "time"

// AvailabilityStatus describes whether a person can currently be scheduled for duty
type AvailabilityStatus string

const (
	StatusOnDuty       AvailabilityStatus = "on_duty"
	StatusLeave        AvailabilityStatus = "leave"
	StatusBusinessTrip AvailabilityStatus = "business_trip"
	StatusTransfer     AvailabilityStatus = "transfer"
	StatusResigned     AvailabilityStatus = "resigned"
)

// Person represents a member of personnel eligible for duty assignment
type Person struct {
	ID   string
	Name string

	// Level is the seniority level; lower values are more senior
	Level int

	Status AvailabilityStatus

	// StatusStart/StatusEnd bound the window during which Status applies.
	// A nil StatusEnd, or IsLongTerm, extends the window indefinitely.
	StatusStart *time.Time
	StatusEnd   *time.Time
	IsLongTerm  bool

	Tags         []string
	DepartmentID string
	Position     string
}

// IsAvailableOn reports whether the person can take a duty on the given date.
//
// A person whose status is on_duty is available on every date regardless of
// the status window fields. Any other status makes the person unavailable
// inside [StatusStart, StatusEnd), or [StatusStart, forever) when the status
// is long-term or has no end date.
func (p *Person) IsAvailableOn(date time.Time) bool {
	if p.Status == StatusOnDuty {
		return true
	}

	// A non-duty status without a start date applies to all dates
	if p.StatusStart == nil {
		return false
	}

	if date.Before(*p.StatusStart) {
		return true
	}

	if p.IsLongTerm || p.StatusEnd == nil {
		return false
	}

	return !date.Before(*p.StatusEnd)
}

// HasTag reports whether the person holds the given tag
func (p *Person) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// GroupKind distinguishes how a group's availability is judged
type GroupKind string

const (
	// GroupFixedPair requires every member to be available
	GroupFixedPair GroupKind = "fixed_pair"

	// GroupRotation requires at least one available member
	GroupRotation GroupKind = "rotation_group"
)

// Group represents a set of persons that take duties together
type Group struct {
	ID   string
	Name string
	Kind GroupKind

	// MemberIDs is the ordered member list; order matters for rotation
	MemberIDs []string

	// ApplicableRoles names the roles this group may serve
	ApplicableRoles []string

	// RotationOrder optionally overrides MemberIDs for internal rotation
	RotationOrder []string
}

// AppliesToRole reports whether the group can serve the named role
func (g *Group) AppliesToRole(roleName string) bool {
	for _, r := range g.ApplicableRoles {
		if r == roleName {
			return true
		}
	}
	return false
}

// MemberRotation returns the member order used for internal rotation
func (g *Group) MemberRotation() []string {
	if len(g.RotationOrder) > 0 {
		return g.RotationOrder
	}
	return g.MemberIDs
}

// AssignmentKind distinguishes single-person roles from group roles
type AssignmentKind string

const (
	AssignPerson AssignmentKind = "person"
	AssignGroup  AssignmentKind = "group"
)

// RotationMode is the policy for picking the next candidate
type RotationMode string

const (
	ModeSequential RotationMode = "sequential"
	ModeBalanced   RotationMode = "balanced"
	ModeRandom     RotationMode = "random"
)

// Role is a duty-slot template with eligibility criteria and rotation configuration
type Role struct {
	ID   string
	Name string

	// Selection criteria. Each non-empty list is an OR group; all non-empty
	// groups must pass (AND across groups).
	ByPosition   []string
	ByTags       []string
	ByDepartment []string

	Kind     AssignmentKind
	Required bool

	// RotationOrder is the explicit ordered candidate list used by the
	// consecutive-duty pattern
	RotationOrder []string

	RotationMode RotationMode
}

// RotationPeriod controls when rotation state resets between generator passes
type RotationPeriod string

const (
	PeriodDaily      RotationPeriod = "daily"
	PeriodWeekly     RotationPeriod = "weekly"
	PeriodMonthly    RotationPeriod = "monthly"
	PeriodContinuous RotationPeriod = "continuous"
	PeriodShiftBased RotationPeriod = "shift_based"
)

// RuleConstraints are the workload limits a generation rule enforces
type RuleConstraints struct {
	MaxConsecutiveDays int
	MinRestHours       int
	MaxWeeklyHours     int

	// ForbiddenRoleCombos lists sets of role IDs one person must not hold
	// on the same date
	ForbiddenRoleCombos [][]string
}

// Rule is a generation policy: which shifts and roles to fill, on which
// weekdays, and how rotation behaves
type Rule struct {
	ID   string
	Name string

	Period RotationPeriod

	// WorkDays is the weekday mask; empty means every day
	WorkDays []time.Weekday

	ShiftIDs []string
	RoleIDs  []string

	Mode        RotationMode
	CycleLength int

	Constraints RuleConstraints

	// OrgType scopes business rules; rules for "general" apply everywhere
	OrgType string
}

// WorksOn reports whether the rule's work-day mask includes the weekday
func (r *Rule) WorksOn(day time.Weekday) bool {
	if len(r.WorkDays) == 0 {
		return true
	}
	for _, d := range r.WorkDays {
		if d == day {
			return true
		}
	}
	return false
}
