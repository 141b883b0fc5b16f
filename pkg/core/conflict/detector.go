// Package conflict inspects batches of duty assignments and reports
// structured conflicts: shift time overlaps (including overnight wrap),
// unavailable assignees, empty required roles, and workload overuse.
package conflict

import (
	"fmt"
	"strings"
	"time"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
	"github.com/weixin008/dutyroster/pkg/core/model"
)

// Limits are the workload thresholds the detector applies
type Limits struct {
	// MaxPerDay is the number of same-date assignments one assignee may hold
	// before a workload conflict is raised
	MaxPerDay int

	// MaxConsecutiveDays bounds the longest run of consecutive duty days;
	// zero disables the check
	MaxConsecutiveDays int

	// MinRestHours is the minimum gap between one shift's end and the next
	// shift's start for the same assignee; zero disables the check
	MinRestHours int

	// MaxWeeklyHours caps one assignee's total shift hours within a
	// Monday-aligned week; zero disables the check
	MaxWeeklyHours int

	// ForbiddenRoleCombos lists sets of role IDs one assignee must not hold
	// on the same date
	ForbiddenRoleCombos [][]string
}

// DefaultLimits mirror the engine defaults: at most two duties per day
var DefaultLimits = Limits{MaxPerDay: 2}

// Detector evaluates assignments against shift, role, and person records
type Detector struct {
	shifts  map[string]*model.Shift
	roles   map[string]*model.Role
	persons map[string]*model.Person
	limits  Limits
}

// NewDetector builds a detector over the given master-data snapshot
func NewDetector(shifts []*model.Shift, roles []*model.Role, persons []*model.Person, limits Limits) *Detector {
	if limits.MaxPerDay <= 0 {
		limits.MaxPerDay = DefaultLimits.MaxPerDay
	}
	d := &Detector{
		shifts:  make(map[string]*model.Shift, len(shifts)),
		roles:   make(map[string]*model.Role, len(roles)),
		persons: make(map[string]*model.Person, len(persons)),
		limits:  limits,
	}
	for _, s := range shifts {
		d.shifts[s.ID] = s
	}
	for _, r := range roles {
		d.roles[r.ID] = r
	}
	for _, p := range persons {
		d.persons[p.ID] = p
	}
	return d
}

// Detect runs every check over the day's assignments. The surrounding
// assignment set feeds the consecutive-day scan; it may be nil when only
// single-day checks matter.
func (d *Detector) Detect(date time.Time, dayAssignments []*model.Assignment, surrounding []*model.Assignment) []model.ConflictRecord {
	var conflicts []model.ConflictRecord
	conflicts = append(conflicts, d.detectTimeOverlaps(dayAssignments)...)
	conflicts = append(conflicts, d.detectStatusConflicts(date, dayAssignments)...)
	conflicts = append(conflicts, d.detectEmptyRoles(dayAssignments)...)
	conflicts = append(conflicts, d.detectWorkload(date, dayAssignments, surrounding)...)
	conflicts = append(conflicts, d.detectForbiddenCombos(date, dayAssignments)...)
	conflicts = append(conflicts, d.detectWeeklyHours(date, dayAssignments, surrounding)...)
	conflicts = append(conflicts, d.detectRestViolations(date, dayAssignments, surrounding)...)
	return conflicts
}

// detectTimeOverlaps compares every shift pair held by the same assignee on
// the day. Shift.Overlaps handles the overnight wrap, so the check is
// symmetric by construction.
func (d *Detector) detectTimeOverlaps(assignments []*model.Assignment) []model.ConflictRecord {
	var conflicts []model.ConflictRecord

	byAssignee := groupByAssignee(assignments)
	for _, same := range byAssignee {
		if len(same) < 2 {
			continue
		}
		for i := 0; i < len(same); i++ {
			for j := i + 1; j < len(same); j++ {
				a, b := same[i], same[j]
				shiftA, shiftB := d.shifts[a.ShiftID], d.shifts[b.ShiftID]
				if shiftA == nil || shiftB == nil || a.ShiftID == b.ShiftID {
					continue
				}
				if !shiftA.Overlaps(shiftB) {
					continue
				}
				conflicts = append(conflicts, model.ConflictRecord{
					Kind:          model.ConflictTimeOverlap,
					Severity:      model.SeverityHigh,
					AssignmentIDs: []string{a.ID, b.ID},
					PersonIDs:     personIDs(a.Assignee),
					Description: fmt.Sprintf("%s is assigned to overlapping shifts %s and %s",
						d.assigneeName(a.Assignee), shiftA.Name, shiftB.Name),
					Suggestions: []string{"reassign one of the overlapping shifts to another candidate"},
				})
			}
		}
	}

	return conflicts
}

func (d *Detector) detectStatusConflicts(date time.Time, assignments []*model.Assignment) []model.ConflictRecord {
	var conflicts []model.ConflictRecord

	for _, a := range assignments {
		if a.Assignee.Kind != model.AssigneePerson || a.Assignee.IsZero() {
			continue
		}
		p := d.persons[a.Assignee.ID]
		if p == nil || p.IsAvailableOn(date) {
			continue
		}
		conflicts = append(conflicts, model.ConflictRecord{
			Kind:          model.ConflictStatus,
			Severity:      model.SeverityHigh,
			AssignmentIDs: []string{a.ID},
			PersonIDs:     []string{p.ID},
			Description:   fmt.Sprintf("%s is %s on %s and cannot take duty", p.Name, p.Status, calendar.DateKey(date)),
			Suggestions:   []string{"select a replacement from the role's remaining candidates"},
		})
	}

	return conflicts
}

func (d *Detector) detectEmptyRoles(assignments []*model.Assignment) []model.ConflictRecord {
	var conflicts []model.ConflictRecord

	for _, a := range assignments {
		if !a.Assignee.IsZero() {
			continue
		}
		role := d.roles[a.RoleID]
		if role == nil || !role.Required {
			continue
		}
		conflicts = append(conflicts, model.ConflictRecord{
			Kind:          model.ConflictEmptyRole,
			Severity:      model.SeverityMedium,
			AssignmentIDs: []string{a.ID},
			Description:   fmt.Sprintf("required role %s has no assignee", role.Name),
			Suggestions:   []string{"widen the role's selection criteria or add personnel"},
		})
	}

	return conflicts
}

// detectWorkload flags assignees with too many duties on one date, and runs
// of consecutive duty days longer than the configured maximum. The scan
// window extends MaxConsecutiveDays either side of the date under test.
func (d *Detector) detectWorkload(date time.Time, dayAssignments []*model.Assignment, surrounding []*model.Assignment) []model.ConflictRecord {
	var conflicts []model.ConflictRecord

	byAssignee := groupByAssignee(dayAssignments)
	for _, same := range byAssignee {
		if len(same) <= d.limits.MaxPerDay {
			continue
		}
		conflicts = append(conflicts, model.ConflictRecord{
			Kind:          model.ConflictWorkload,
			Severity:      model.SeverityMedium,
			AssignmentIDs: assignmentIDs(same),
			PersonIDs:     personIDs(same[0].Assignee),
			Description: fmt.Sprintf("%s holds %d assignments on %s (limit %d)",
				d.assigneeName(same[0].Assignee), len(same), calendar.DateKey(date), d.limits.MaxPerDay),
			Suggestions: []string{"spread the extra duties across other candidates"},
		})
	}

	if d.limits.MaxConsecutiveDays <= 0 {
		return conflicts
	}

	for key, same := range byAssignee {
		run := d.longestConsecutiveRun(key, date, surrounding)
		if run <= d.limits.MaxConsecutiveDays {
			continue
		}
		conflicts = append(conflicts, model.ConflictRecord{
			Kind:          model.ConflictWorkload,
			Severity:      model.SeverityMedium,
			AssignmentIDs: assignmentIDs(same),
			PersonIDs:     personIDs(same[0].Assignee),
			Description: fmt.Sprintf("%s is on duty %d consecutive days around %s (limit %d)",
				d.assigneeName(same[0].Assignee), run, calendar.DateKey(date), d.limits.MaxConsecutiveDays),
			Suggestions: []string{"insert a rest day by rotating another candidate in"},
		})
	}

	return conflicts
}

// longestConsecutiveRun counts the longest run of consecutive duty dates for
// the assignee within ±MaxConsecutiveDays of the date under test
func (d *Detector) longestConsecutiveRun(assignee model.Assignee, date time.Time, surrounding []*model.Assignment) int {
	window := d.limits.MaxConsecutiveDays

	onDuty := make(map[string]bool)
	for _, a := range surrounding {
		if a.Assignee != assignee || a.Assignee.IsZero() {
			continue
		}
		if gap := calendar.DaysApart(date, a.Date); gap < -window || gap > window {
			continue
		}
		onDuty[calendar.DateKey(a.Date)] = true
	}
	onDuty[calendar.DateKey(date)] = true

	longest, current := 0, 0
	for off := -window; off <= window; off++ {
		day := calendar.Midnight(date).AddDate(0, 0, off)
		if onDuty[calendar.DateKey(day)] {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

// detectForbiddenCombos flags assignees holding two or more roles from one
// forbidden combination on the same date
func (d *Detector) detectForbiddenCombos(date time.Time, dayAssignments []*model.Assignment) []model.ConflictRecord {
	if len(d.limits.ForbiddenRoleCombos) == 0 {
		return nil
	}

	var conflicts []model.ConflictRecord

	byAssignee := groupByAssignee(dayAssignments)
	for _, same := range byAssignee {
		for _, combo := range d.limits.ForbiddenRoleCombos {
			comboSet := make(map[string]bool, len(combo))
			for _, roleID := range combo {
				comboSet[roleID] = true
			}

			var held []*model.Assignment
			seenRoles := make(map[string]bool)
			for _, a := range same {
				if comboSet[a.RoleID] && !seenRoles[a.RoleID] {
					held = append(held, a)
					seenRoles[a.RoleID] = true
				}
			}
			if len(held) < 2 {
				continue
			}

			conflicts = append(conflicts, model.ConflictRecord{
				Kind:          model.ConflictWorkload,
				Severity:      model.SeverityHigh,
				AssignmentIDs: assignmentIDs(held),
				PersonIDs:     personIDs(held[0].Assignee),
				Description: fmt.Sprintf("%s holds forbidden role combination %s on %s",
					d.assigneeName(held[0].Assignee), strings.Join(roleNamesOf(d.roles, held), " + "), calendar.DateKey(date)),
				Suggestions: []string{"move one of the combined roles to another candidate"},
			})
		}
	}

	return conflicts
}

// detectWeeklyHours totals each assignee's shift hours over the Monday-aligned
// week containing the date
func (d *Detector) detectWeeklyHours(date time.Time, dayAssignments []*model.Assignment, surrounding []*model.Assignment) []model.ConflictRecord {
	if d.limits.MaxWeeklyHours <= 0 {
		return nil
	}

	var conflicts []model.ConflictRecord

	byAssignee := groupByAssignee(dayAssignments)
	for key, same := range byAssignee {
		minutes := 0
		counted := make(map[string]bool)
		for _, a := range surrounding {
			if a.Assignee != key || !calendar.SameWeek(a.Date, date) || counted[a.ID] {
				continue
			}
			if shift := d.shifts[a.ShiftID]; shift != nil {
				minutes += shift.DurationMinutes()
				counted[a.ID] = true
			}
		}
		for _, a := range same {
			if counted[a.ID] {
				continue
			}
			if shift := d.shifts[a.ShiftID]; shift != nil {
				minutes += shift.DurationMinutes()
				counted[a.ID] = true
			}
		}

		if minutes <= d.limits.MaxWeeklyHours*60 {
			continue
		}
		conflicts = append(conflicts, model.ConflictRecord{
			Kind:          model.ConflictWorkload,
			Severity:      model.SeverityMedium,
			AssignmentIDs: assignmentIDs(same),
			PersonIDs:     personIDs(same[0].Assignee),
			Description: fmt.Sprintf("%s is scheduled %.1f hours in the week of %s (limit %d)",
				d.assigneeName(same[0].Assignee), float64(minutes)/60, calendar.DateKey(calendar.WeekStart(date)), d.limits.MaxWeeklyHours),
			Suggestions: []string{"shift part of this week's load to another candidate"},
		})
	}

	return conflicts
}

// detectRestViolations checks the gap between the previous shift's end and
// each of today's shift starts for the same assignee
func (d *Detector) detectRestViolations(date time.Time, dayAssignments []*model.Assignment, surrounding []*model.Assignment) []model.ConflictRecord {
	if d.limits.MinRestHours <= 0 {
		return nil
	}

	var conflicts []model.ConflictRecord

	for _, a := range dayAssignments {
		if a.Assignee.IsZero() {
			continue
		}
		shift := d.shifts[a.ShiftID]
		if shift == nil {
			continue
		}
		start := calendar.Midnight(a.Date).Add(time.Duration(shift.StartMinute()) * time.Minute)

		prevEnd, ok := d.previousShiftEnd(a, surrounding)
		if !ok {
			continue
		}

		rest := start.Sub(prevEnd)
		if rest >= time.Duration(d.limits.MinRestHours)*time.Hour {
			continue
		}
		conflicts = append(conflicts, model.ConflictRecord{
			Kind:          model.ConflictRest,
			Severity:      model.SeverityMedium,
			AssignmentIDs: []string{a.ID},
			PersonIDs:     personIDs(a.Assignee),
			Description: fmt.Sprintf("%s has only %.1f hours rest before the %s shift on %s (minimum %d)",
				d.assigneeName(a.Assignee), rest.Hours(), shift.Name, calendar.DateKey(date), d.limits.MinRestHours),
			Suggestions: []string{"swap this duty with a candidate who rested longer"},
		})
	}

	return conflicts
}

// previousShiftEnd finds the latest shift end before this assignment's start
// among the assignee's other duties
func (d *Detector) previousShiftEnd(a *model.Assignment, surrounding []*model.Assignment) (time.Time, bool) {
	shift := d.shifts[a.ShiftID]
	start := calendar.Midnight(a.Date).Add(time.Duration(shift.StartMinute()) * time.Minute)

	var latest time.Time
	found := false
	for _, other := range surrounding {
		if other.ID == a.ID || other.Assignee != a.Assignee {
			continue
		}
		otherShift := d.shifts[other.ShiftID]
		if otherShift == nil {
			continue
		}
		end := calendar.Midnight(other.Date).Add(time.Duration(otherShift.StartMinute()+otherShift.DurationMinutes()) * time.Minute)
		if !end.After(start) && (!found || end.After(latest)) {
			latest = end
			found = true
		}
	}
	return latest, found
}

// Resolve is the advisory book-keeping pass: offending assignments get their
// status set to conflict and the description appended to their notes. It
// never reassigns anyone.
func Resolve(conflicts []model.ConflictRecord, assignments []*model.Assignment) {
	byID := make(map[string]*model.Assignment, len(assignments))
	for _, a := range assignments {
		byID[a.ID] = a
	}

	for _, c := range conflicts {
		for _, id := range c.AssignmentIDs {
			a := byID[id]
			if a == nil {
				continue
			}
			if a.Status != model.AssignmentEmpty {
				a.Status = model.AssignmentConflict
			}
			if a.Note != "" {
				a.Note += "; "
			}
			a.Note += c.Description
		}
	}
}

func (d *Detector) assigneeName(a model.Assignee) string {
	if a.Kind == model.AssigneePerson {
		if p := d.persons[a.ID]; p != nil {
			return p.Name
		}
	}
	return a.ID
}

func groupByAssignee(assignments []*model.Assignment) map[model.Assignee][]*model.Assignment {
	grouped := make(map[model.Assignee][]*model.Assignment)
	for _, a := range assignments {
		if a.Assignee.IsZero() {
			continue
		}
		grouped[a.Assignee] = append(grouped[a.Assignee], a)
	}
	return grouped
}

func assignmentIDs(assignments []*model.Assignment) []string {
	ids := make([]string, len(assignments))
	for i, a := range assignments {
		ids[i] = a.ID
	}
	return ids
}

// roleNamesOf renders the role names behind the assignments, falling back to
// the raw role id when the role record is unknown
func roleNamesOf(roles map[string]*model.Role, assignments []*model.Assignment) []string {
	names := make([]string, len(assignments))
	for i, a := range assignments {
		if r := roles[a.RoleID]; r != nil {
			names[i] = r.Name
		} else {
			names[i] = a.RoleID
		}
	}
	return names
}

func personIDs(a model.Assignee) []string {
	if a.Kind == model.AssigneePerson && !a.IsZero() {
		return []string{a.ID}
	}
	return nil
}
