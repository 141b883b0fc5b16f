package rules

import (
	"fmt"
	"time"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
	"github.com/weixin008/dutyroster/pkg/core/model"
)

// meta carries the descriptive fields shared by the built-in rules
type meta struct {
	id       string
	name     string
	category string
	severity model.Severity
	orgTypes []string
}

func (m meta) ID() string               { return m.id }
func (m meta) Name() string             { return m.name }
func (m meta) Category() string         { return m.category }
func (m meta) Severity() model.Severity { return m.severity }
func (m meta) OrgTypes() []string       { return m.orgTypes }

func pass() Result {
	return Result{Passed: true}
}

// MinSupervisorPresence requires at least one same-day assignee at or above
// the configured seniority (lower level = more senior).
type MinSupervisorPresence struct {
	meta
	maxLevel int
}

// NewMinSupervisorPresence builds the rule; assignees with Level <= maxLevel
// count as supervisors
func NewMinSupervisorPresence(maxLevel int, orgTypes ...string) *MinSupervisorPresence {
	if len(orgTypes) == 0 {
		orgTypes = []string{OrgGeneral}
	}
	return &MinSupervisorPresence{
		meta: meta{
			id:       "min_supervisor_presence",
			name:     "Minimum supervisory presence",
			category: "staffing",
			severity: model.SeverityHigh,
			orgTypes: orgTypes,
		},
		maxLevel: maxLevel,
	}
}

func (r *MinSupervisorPresence) Evaluate(ctx *Context) Result {
	for _, a := range ctx.DayAssignments {
		if a.Assignee.Kind != model.AssigneePerson || a.Assignee.IsZero() {
			continue
		}
		p := ctx.Persons[a.Assignee.ID]
		if p != nil && p.Level <= r.maxLevel {
			return pass()
		}
	}
	return Result{
		Message: fmt.Sprintf("no assignee at supervisor level %d or above on %s", r.maxLevel, calendar.DateKey(ctx.Date)),
		Actions: []string{"add a supervisor-level person to one of the day's roles"},
	}
}

// MinStaffCount requires a minimum number of filled assignments among the
// named roles on the day.
type MinStaffCount struct {
	meta
	roleNames []string
	minCount  int
}

// NewMinStaffCount builds the rule over the given role-category names
func NewMinStaffCount(roleNames []string, minCount int, orgTypes ...string) *MinStaffCount {
	if len(orgTypes) == 0 {
		orgTypes = []string{OrgGeneral}
	}
	return &MinStaffCount{
		meta: meta{
			id:       "min_staff_count",
			name:     "Minimum staff per role category",
			category: "staffing",
			severity: model.SeverityHigh,
			orgTypes: orgTypes,
		},
		roleNames: roleNames,
		minCount:  minCount,
	}
}

func (r *MinStaffCount) Evaluate(ctx *Context) Result {
	names := make(map[string]bool, len(r.roleNames))
	for _, n := range r.roleNames {
		names[n] = true
	}

	count := 0
	for _, a := range ctx.DayAssignments {
		if a.Assignee.IsZero() {
			continue
		}
		role := ctx.Roles[a.RoleID]
		if role != nil && names[role.Name] {
			count++
		}
	}

	if count >= r.minCount {
		return pass()
	}
	return Result{
		Message: fmt.Sprintf("only %d of the required %d staff are assigned for roles %v on %s",
			count, r.minCount, r.roleNames, calendar.DateKey(ctx.Date)),
		Actions: []string{"fill the remaining role slots before publishing the roster"},
	}
}

// MaxConsecutiveShiftCount limits how many consecutive duty days the
// evaluated person may accumulate up to and including the context date.
type MaxConsecutiveShiftCount struct {
	meta
	maxDays int
}

// NewMaxConsecutiveShiftCount builds the rule with the given day limit
func NewMaxConsecutiveShiftCount(maxDays int, orgTypes ...string) *MaxConsecutiveShiftCount {
	if len(orgTypes) == 0 {
		orgTypes = []string{OrgGeneral}
	}
	return &MaxConsecutiveShiftCount{
		meta: meta{
			id:       "max_consecutive_shifts",
			name:     "Maximum consecutive duty days",
			category: "workload",
			severity: model.SeverityMedium,
			orgTypes: orgTypes,
		},
		maxDays: maxDays,
	}
}

func (r *MaxConsecutiveShiftCount) Evaluate(ctx *Context) Result {
	if ctx.Person == nil {
		return pass()
	}

	onDuty := make(map[string]bool)
	for _, a := range ctx.Surrounding {
		if a.Assignee == model.PersonAssignee(ctx.Person.ID) {
			onDuty[calendar.DateKey(a.Date)] = true
		}
	}
	onDuty[calendar.DateKey(ctx.Date)] = true

	run := 0
	for d := calendar.Midnight(ctx.Date); onDuty[calendar.DateKey(d)]; d = d.AddDate(0, 0, -1) {
		run++
	}

	if run <= r.maxDays {
		return pass()
	}
	return Result{
		Message: fmt.Sprintf("%s would reach %d consecutive duty days on %s (limit %d)",
			ctx.Person.Name, run, calendar.DateKey(ctx.Date), r.maxDays),
		PersonIDs: []string{ctx.Person.ID},
		Actions:   []string{"rotate in another candidate to break the run"},
	}
}

// MinRestHours requires a minimum gap between the evaluated person's last
// shift end and their first shift start on the context date.
type MinRestHours struct {
	meta
	minHours int
}

// NewMinRestHours builds the rule with the given minimum rest in hours
func NewMinRestHours(minHours int, orgTypes ...string) *MinRestHours {
	if len(orgTypes) == 0 {
		orgTypes = []string{OrgGeneral}
	}
	return &MinRestHours{
		meta: meta{
			id:       "min_rest_hours",
			name:     "Minimum rest between shifts",
			category: "rest",
			severity: model.SeverityHigh,
			orgTypes: orgTypes,
		},
		minHours: minHours,
	}
}

func (r *MinRestHours) Evaluate(ctx *Context) Result {
	if ctx.Person == nil {
		return pass()
	}
	assignee := model.PersonAssignee(ctx.Person.ID)

	todayStart, ok := firstShiftStart(ctx, assignee)
	if !ok {
		return pass()
	}

	var lastEnd time.Time
	found := false
	for _, a := range ctx.Surrounding {
		if a.Assignee != assignee {
			continue
		}
		shift := ctx.Shifts[a.ShiftID]
		if shift == nil {
			continue
		}
		end := calendar.Midnight(a.Date).Add(time.Duration(shift.StartMinute()+shift.DurationMinutes()) * time.Minute)
		if !end.After(todayStart) && (!found || end.After(lastEnd)) {
			lastEnd = end
			found = true
		}
	}
	if !found {
		return pass()
	}

	rest := todayStart.Sub(lastEnd)
	if rest >= time.Duration(r.minHours)*time.Hour {
		return pass()
	}
	return Result{
		Message: fmt.Sprintf("%s has %.1f hours rest before duty on %s (minimum %d)",
			ctx.Person.Name, rest.Hours(), calendar.DateKey(ctx.Date), r.minHours),
		PersonIDs: []string{ctx.Person.ID},
		Actions:   []string{"move this duty to a later shift or another candidate"},
	}
}

func firstShiftStart(ctx *Context, assignee model.Assignee) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, a := range ctx.DayAssignments {
		if a.Assignee != assignee {
			continue
		}
		shift := ctx.Shifts[a.ShiftID]
		if shift == nil {
			continue
		}
		start := calendar.Midnight(a.Date).Add(time.Duration(shift.StartMinute()) * time.Minute)
		if !found || start.Before(earliest) {
			earliest = start
			found = true
		}
	}
	return earliest, found
}

// GroupIntegrity requires every member of the evaluated group to be
// available on the context date. Critical, so never overridable.
type GroupIntegrity struct {
	meta
}

// NewGroupIntegrity builds the rule for groups that disallow partial duty
func NewGroupIntegrity(orgTypes ...string) *GroupIntegrity {
	if len(orgTypes) == 0 {
		orgTypes = []string{OrgGeneral}
	}
	return &GroupIntegrity{
		meta: meta{
			id:       "group_integrity",
			name:     "Group integrity",
			category: "group",
			severity: model.SeverityCritical,
			orgTypes: orgTypes,
		},
	}
}

func (r *GroupIntegrity) Evaluate(ctx *Context) Result {
	if ctx.Group == nil {
		return pass()
	}

	var missing []string
	for _, id := range ctx.Group.MemberIDs {
		p := ctx.Persons[id]
		if p == nil || !p.IsAvailableOn(ctx.Date) {
			missing = append(missing, id)
		}
	}

	if len(missing) == 0 {
		return pass()
	}
	return Result{
		Message: fmt.Sprintf("group %s is missing %d required member(s) on %s",
			ctx.Group.Name, len(missing), calendar.DateKey(ctx.Date)),
		PersonIDs: missing,
		Details:   []string{fmt.Sprintf("unavailable members: %v", missing)},
		Actions:   []string{"postpone the group's duty or substitute a full group"},
	}
}
