package generator

import (
	"fmt"
	"time"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
	"github.com/weixin008/dutyroster/pkg/core/model"
	"github.com/weixin008/dutyroster/pkg/core/rotation"
)

// GenerateConsecutive produces the consecutive-duty pattern: the same
// assignee covers every selected weekday within one calendar week, and the
// assignee advances one position in the role's rotation order each week.
//
// Selection is weekNumber(date) mod len(rotationOrder), computed per date
// rather than per pass, so the same-week invariant holds even when dates are
// processed out of order.
func (g *Generator) GenerateConsecutive(req *Request, role *model.Role) (*Result, error) {
	warnings, err := ValidateRequest(req)
	if err != nil {
		return nil, err
	}
	if len(role.RotationOrder) == 0 {
		return nil, &ValidationError{Fields: map[string]string{
			"role.rotationOrder": "consecutive duty requires an explicit rotation order",
		}}
	}

	if !req.ForceRegenerate && g.hasExistingInRange(req) {
		return nil, ErrAlreadyScheduled
	}

	result := &Result{Warnings: warnings}

	err = g.store.Update(role.ID, func(state *rotation.State) error {
		for _, date := range calendar.DatesBetween(req.StartDate, req.EndDate) {
			result.Statistics.TotalDays++

			if !req.Rule.WorksOn(date.Weekday()) {
				continue
			}
			if req.SkipDate != nil && req.SkipDate(date) {
				continue
			}

			dayAssignments := g.consecutiveDay(req, state, role, date)
			result.Assignments = append(result.Assignments, dayAssignments...)
			g.accountDay(result, req, date, dayAssignments)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (g *Generator) consecutiveDay(req *Request, state *rotation.State, role *model.Role, date time.Time) []*model.Assignment {
	order := role.RotationOrder
	assigneeID := order[calendar.WeekNumber(date)%len(order)]

	assignee := model.PersonAssignee(assigneeID)
	if role.Kind == model.AssignGroup {
		assignee = model.GroupAssignee(assigneeID)
	}

	var assignments []*model.Assignment
	for _, shift := range req.Shifts {
		state.RecordSelection(date, role.ID, assignee)
		assignments = append(assignments, &model.Assignment{
			ID:       g.newID(),
			Date:     date,
			ShiftID:  shift.ID,
			RoleID:   role.ID,
			Assignee: assignee,
			Status:   model.AssignmentNormal,
			Note:     fmt.Sprintf("consecutive duty, week %d", calendar.WeekNumber(date)),
		})
	}
	return assignments
}
