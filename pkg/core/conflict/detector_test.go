package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weixin008/dutyroster/pkg/core/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func testShifts() []*model.Shift {
	return []*model.Shift{
		{ID: "s1", Name: "day", StartTime: "08:00", EndTime: "16:00"},
		{ID: "s2", Name: "evening", StartTime: "15:00", EndTime: "23:00"},
		{ID: "s3", Name: "late", StartTime: "16:00", EndTime: "23:00"},
		{ID: "s4", Name: "overnight", StartTime: "22:00", EndTime: "06:00"},
	}
}

func testRoles() []*model.Role {
	return []*model.Role{
		{ID: "r1", Name: "duty officer", Required: true},
		{ID: "r2", Name: "backup", Required: false},
	}
}

func testPersons() []*model.Person {
	return []*model.Person{
		{ID: "p1", Name: "Ada", Status: model.StatusOnDuty},
		{
			ID: "p2", Name: "Ben", Status: model.StatusLeave,
			StatusStart: ptr(day(2024, time.January, 10)),
			StatusEnd:   ptr(day(2024, time.January, 12)),
		},
	}
}

func newTestDetector(limits Limits) *Detector {
	return NewDetector(testShifts(), testRoles(), testPersons(), limits)
}

func TestDetect_TimeOverlap(t *testing.T) {
	d := newTestDetector(Limits{})
	date := day(2024, time.January, 1)

	// One hour of overlap between day (08:00-16:00) and evening (15:00-23:00)
	assignments := []*model.Assignment{
		{ID: "a1", Date: date, ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1")},
		{ID: "a2", Date: date, ShiftID: "s2", RoleID: "r2", Assignee: model.PersonAssignee("p1")},
	}

	conflicts := d.Detect(date, assignments, nil)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictTimeOverlap, conflicts[0].Kind)
	assert.Equal(t, model.SeverityHigh, conflicts[0].Severity)
	assert.ElementsMatch(t, []string{"a1", "a2"}, conflicts[0].AssignmentIDs)
	assert.Equal(t, []string{"p1"}, conflicts[0].PersonIDs)
	assert.NotEmpty(t, conflicts[0].Suggestions)
}

func TestDetect_AdjacentShiftsAreClean(t *testing.T) {
	d := newTestDetector(Limits{})
	date := day(2024, time.January, 1)

	// day ends 16:00, late starts 16:00: touching, not overlapping
	assignments := []*model.Assignment{
		{ID: "a1", Date: date, ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1")},
		{ID: "a2", Date: date, ShiftID: "s3", RoleID: "r2", Assignee: model.PersonAssignee("p1")},
	}

	assert.Empty(t, d.Detect(date, assignments, nil))
}

func TestDetect_NoOverlapAcrossDifferentAssignees(t *testing.T) {
	d := newTestDetector(Limits{})
	date := day(2024, time.January, 1)

	assignments := []*model.Assignment{
		{ID: "a1", Date: date, ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1")},
		{ID: "a2", Date: date, ShiftID: "s2", RoleID: "r2", Assignee: model.PersonAssignee("p2")},
	}

	// p2 is available on Jan 1, and overlap only applies within one assignee
	assert.Empty(t, d.Detect(date, assignments, nil))
}

func TestDetect_StatusConflict(t *testing.T) {
	d := newTestDetector(Limits{})
	date := day(2024, time.January, 10)

	assignments := []*model.Assignment{
		{ID: "a1", Date: date, ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p2")},
	}

	conflicts := d.Detect(date, assignments, nil)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictStatus, conflicts[0].Kind)
	assert.Equal(t, model.SeverityHigh, conflicts[0].Severity)
	assert.Equal(t, []string{"p2"}, conflicts[0].PersonIDs)
}

func TestDetect_EmptyRequiredRole(t *testing.T) {
	d := newTestDetector(Limits{})
	date := day(2024, time.January, 1)

	assignments := []*model.Assignment{
		{ID: "a1", Date: date, ShiftID: "s1", RoleID: "r1", Status: model.AssignmentEmpty},
		{ID: "a2", Date: date, ShiftID: "s1", RoleID: "r2", Status: model.AssignmentEmpty},
	}

	conflicts := d.Detect(date, assignments, nil)

	// Only the required role r1 raises a conflict; optional r2 stays quiet
	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictEmptyRole, conflicts[0].Kind)
	assert.Equal(t, model.SeverityMedium, conflicts[0].Severity)
	assert.Equal(t, []string{"a1"}, conflicts[0].AssignmentIDs)
}

func TestDetect_WorkloadPerDayLimit(t *testing.T) {
	d := newTestDetector(Limits{MaxPerDay: 2})
	date := day(2024, time.January, 1)

	// Three non-overlapping duties on one day exceed the limit of two
	assignments := []*model.Assignment{
		{ID: "a1", Date: date, ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1")},
		{ID: "a2", Date: date, ShiftID: "s3", RoleID: "r2", Assignee: model.PersonAssignee("p1")},
		{ID: "a3", Date: date, ShiftID: "s1", RoleID: "r2", Assignee: model.PersonAssignee("p1")},
	}

	conflicts := d.Detect(date, assignments, nil)

	var workload []model.ConflictRecord
	for _, c := range conflicts {
		if c.Kind == model.ConflictWorkload {
			workload = append(workload, c)
		}
	}
	require.Len(t, workload, 1)
	assert.Len(t, workload[0].AssignmentIDs, 3)
}

func TestDetect_ConsecutiveDayRun(t *testing.T) {
	d := newTestDetector(Limits{MaxConsecutiveDays: 3})

	// p1 on duty Jan 1 through Jan 4: a four-day run against a limit of three
	var surrounding []*model.Assignment
	for i := 1; i <= 4; i++ {
		surrounding = append(surrounding, &model.Assignment{
			ID: "a" + string(rune('0'+i)), Date: day(2024, time.January, i),
			ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1"),
		})
	}

	date := day(2024, time.January, 4)
	conflicts := d.Detect(date, surrounding[3:], surrounding)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictWorkload, conflicts[0].Kind)
	assert.Contains(t, conflicts[0].Description, "4 consecutive days")
}

func TestDetect_ConsecutiveRunWithinLimitIsClean(t *testing.T) {
	d := newTestDetector(Limits{MaxConsecutiveDays: 3})

	var surrounding []*model.Assignment
	for i := 1; i <= 3; i++ {
		surrounding = append(surrounding, &model.Assignment{
			ID: "a" + string(rune('0'+i)), Date: day(2024, time.January, i),
			ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1"),
		})
	}

	date := day(2024, time.January, 3)
	assert.Empty(t, d.Detect(date, surrounding[2:], surrounding))
}

func TestDetect_ForbiddenRoleCombo(t *testing.T) {
	d := newTestDetector(Limits{ForbiddenRoleCombos: [][]string{{"r1", "r2"}}})
	date := day(2024, time.January, 1)

	assignments := []*model.Assignment{
		{ID: "a1", Date: date, ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1")},
		{ID: "a2", Date: date, ShiftID: "s3", RoleID: "r2", Assignee: model.PersonAssignee("p1")},
	}

	conflicts := d.Detect(date, assignments, nil)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictWorkload, conflicts[0].Kind)
	assert.Equal(t, model.SeverityHigh, conflicts[0].Severity)
	assert.ElementsMatch(t, []string{"a1", "a2"}, conflicts[0].AssignmentIDs)
	assert.Contains(t, conflicts[0].Description, "forbidden role combination")
}

func TestDetect_ForbiddenComboNeedsBothRoles(t *testing.T) {
	d := newTestDetector(Limits{ForbiddenRoleCombos: [][]string{{"r1", "r2"}}})
	date := day(2024, time.January, 1)

	// Holding only one role from the combo is fine, and so is holding
	// both roles split across two people
	assignments := []*model.Assignment{
		{ID: "a1", Date: date, ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1")},
		{ID: "a2", Date: date, ShiftID: "s3", RoleID: "r2", Assignee: model.PersonAssignee("p2")},
	}

	assert.Empty(t, d.Detect(date, assignments, nil))
}

func TestDetect_WeeklyHoursExceeded(t *testing.T) {
	d := newTestDetector(Limits{MaxWeeklyHours: 24})

	// Four 8-hour day shifts Monday through Thursday total 32 hours
	var week []*model.Assignment
	for i := 1; i <= 4; i++ {
		week = append(week, &model.Assignment{
			ID: "a" + string(rune('0'+i)), Date: day(2024, time.January, i),
			ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1"),
		})
	}

	date := day(2024, time.January, 4)
	conflicts := d.Detect(date, week[3:], week)

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictWorkload, conflicts[0].Kind)
	assert.Contains(t, conflicts[0].Description, "32.0 hours")
}

func TestDetect_WeeklyHoursIgnoresOtherWeeks(t *testing.T) {
	d := newTestDetector(Limits{MaxWeeklyHours: 24})

	// 24 hours this week plus 8 hours the previous Friday stays within the
	// limit because weeks are Monday-aligned
	surrounding := []*model.Assignment{
		{ID: "a0", Date: day(2023, time.December, 29), ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1")},
		{ID: "a1", Date: day(2024, time.January, 1), ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1")},
		{ID: "a2", Date: day(2024, time.January, 2), ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1")},
		{ID: "a3", Date: day(2024, time.January, 3), ShiftID: "s1", RoleID: "r1", Assignee: model.PersonAssignee("p1")},
	}

	date := day(2024, time.January, 3)
	assert.Empty(t, d.Detect(date, surrounding[3:], surrounding))
}

func TestDetect_RestViolation(t *testing.T) {
	d := newTestDetector(Limits{MinRestHours: 12})

	// Overnight shift ends 06:00 on Jan 2; the day shift starts 08:00 the
	// same day, leaving only 2 hours of rest
	prev := &model.Assignment{
		ID: "a1", Date: day(2024, time.January, 1), ShiftID: "s4",
		RoleID: "r1", Assignee: model.PersonAssignee("p1"),
	}
	next := &model.Assignment{
		ID: "a2", Date: day(2024, time.January, 2), ShiftID: "s1",
		RoleID: "r1", Assignee: model.PersonAssignee("p1"),
	}

	conflicts := d.Detect(day(2024, time.January, 2), []*model.Assignment{next}, []*model.Assignment{prev, next})

	require.Len(t, conflicts, 1)
	assert.Equal(t, model.ConflictRest, conflicts[0].Kind)
	assert.Contains(t, conflicts[0].Description, "2.0 hours rest")
}

func TestDetect_RestSatisfiedIsClean(t *testing.T) {
	d := newTestDetector(Limits{MinRestHours: 12})

	// Day shift ends 16:00 Jan 1; next day shift starts 08:00 Jan 2, a
	// 16-hour gap
	prev := &model.Assignment{
		ID: "a1", Date: day(2024, time.January, 1), ShiftID: "s1",
		RoleID: "r1", Assignee: model.PersonAssignee("p1"),
	}
	next := &model.Assignment{
		ID: "a2", Date: day(2024, time.January, 2), ShiftID: "s1",
		RoleID: "r1", Assignee: model.PersonAssignee("p1"),
	}

	assert.Empty(t, d.Detect(day(2024, time.January, 2), []*model.Assignment{next}, []*model.Assignment{prev, next}))
}

func TestResolve_MarksAssignmentsAndAppendsNotes(t *testing.T) {
	a1 := &model.Assignment{ID: "a1", Status: model.AssignmentNormal, Note: "existing"}
	a2 := &model.Assignment{ID: "a2", Status: model.AssignmentEmpty}

	conflicts := []model.ConflictRecord{
		{Kind: model.ConflictTimeOverlap, AssignmentIDs: []string{"a1"}, Description: "overlap found"},
		{Kind: model.ConflictEmptyRole, AssignmentIDs: []string{"a2"}, Description: "role unfilled"},
	}

	Resolve(conflicts, []*model.Assignment{a1, a2})

	assert.Equal(t, model.AssignmentConflict, a1.Status)
	assert.Equal(t, "existing; overlap found", a1.Note)

	// Empty assignments keep their empty status but still get the note
	assert.Equal(t, model.AssignmentEmpty, a2.Status)
	assert.Equal(t, "role unfilled", a2.Note)
}

func TestResolve_UnknownAssignmentIDIsIgnored(t *testing.T) {
	a1 := &model.Assignment{ID: "a1", Status: model.AssignmentNormal}
	Resolve([]model.ConflictRecord{
		{AssignmentIDs: []string{"missing"}, Description: "x"},
	}, []*model.Assignment{a1})

	assert.Equal(t, model.AssignmentNormal, a1.Status)
}
