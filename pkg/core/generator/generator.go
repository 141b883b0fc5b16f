// Package generator orchestrates roster production: it walks the date range,
// applies work-day filters, fills every shift × role slot through the
// availability filter and assignment selector, and runs conflict detection
// per day.
package generator

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/weixin008/dutyroster/pkg/core/availability"
	"github.com/weixin008/dutyroster/pkg/core/calendar"
	"github.com/weixin008/dutyroster/pkg/core/conflict"
	"github.com/weixin008/dutyroster/pkg/core/model"
	"github.com/weixin008/dutyroster/pkg/core/rotation"
	"github.com/weixin008/dutyroster/pkg/core/selector"
)

// ErrAlreadyScheduled is returned when assignments already exist in the
// requested range and regeneration was not forced
var ErrAlreadyScheduled = errors.New("assignments already exist for the requested date range")

// Request describes one generation run
type Request struct {
	Rule   *model.Rule
	Shifts []*model.Shift
	Roles  []*model.Role

	StartDate time.Time
	EndDate   time.Time

	// ForceRegenerate allows generating over existing assignments; without
	// it the run fails fast when any exist in range
	ForceRegenerate bool

	// Existing are the assignments already stored for dates around the
	// range; they guard the regenerate check and feed workload scans
	Existing []*model.Assignment

	// SkipDate is the external holiday predicate; nil skips nothing beyond
	// the rule's work-day mask
	SkipDate func(time.Time) bool
}

// Statistics summarize one run
type Statistics struct {
	TotalDays     int
	ScheduledDays int
	EmptyDays     int
	ConflictDays  int
}

// Result is the full output of a generation run
type Result struct {
	Assignments []*model.Assignment
	Conflicts   []model.ConflictRecord
	Warnings    []string
	Statistics  Statistics
}

// Generator wires the filter, detector, and rotation store together
type Generator struct {
	filter   *availability.Filter
	detector *conflict.Detector
	store    *rotation.Store
	newID    func() string
}

// New builds a generator over the given components
func New(filter *availability.Filter, detector *conflict.Detector, store *rotation.Store) *Generator {
	return &Generator{
		filter:   filter,
		detector: detector,
		store:    store,
		newID:    uuid.NewString,
	}
}

// Generate produces assignments for every work day in the request range.
// Rotation decisions for later days depend on earlier ones, so one run is a
// single sequential computation under the rule's state lock.
func (g *Generator) Generate(req *Request) (*Result, error) {
	warnings, err := ValidateRequest(req)
	if err != nil {
		return nil, err
	}

	if !req.ForceRegenerate && g.hasExistingInRange(req) {
		return nil, ErrAlreadyScheduled
	}

	result := &Result{Warnings: warnings}

	err = g.store.Update(req.Rule.ID, func(state *rotation.State) error {
		for _, date := range calendar.DatesBetween(req.StartDate, req.EndDate) {
			result.Statistics.TotalDays++

			if !req.Rule.WorksOn(date.Weekday()) {
				continue
			}
			if req.SkipDate != nil && req.SkipDate(date) {
				continue
			}

			state.ApplyPeriodReset(req.Rule.Period, req.Rule.Mode, date)

			dayAssignments, dayErr := g.generateDay(req, state, date)
			if dayErr != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: %v", calendar.DateKey(date), dayErr))
				result.Statistics.EmptyDays++
				continue
			}

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

// generateDay fills every shift × role slot for one date. An unexpected
// panic in a single day is recovered and surfaced as that day's error, so
// the remaining range still generates.
func (g *Generator) generateDay(req *Request, state *rotation.State, date time.Time) (assignments []*model.Assignment, err error) {
	defer func() {
		if r := recover(); r != nil {
			assignments = nil
			err = fmt.Errorf("day generation failed: %v", r)
		}
	}()

	for _, shift := range req.Shifts {
		for _, role := range req.Roles {
			candidates := g.filter.Select(role, date, nil)

			if len(candidates) == 0 {
				if role.Required {
					assignments = append(assignments, &model.Assignment{
						ID:      g.newID(),
						Date:    date,
						ShiftID: shift.ID,
						RoleID:  role.ID,
						Status:  model.AssignmentEmpty,
						Note:    "no eligible candidates",
					})
				}
				continue
			}

			chosen, selErr := selector.Next(state, role.ID, candidates, req.Rule.Mode, date)
			if selErr != nil {
				return nil, selErr
			}

			assignments = append(assignments, &model.Assignment{
				ID:       g.newID(),
				Date:     date,
				ShiftID:  shift.ID,
				RoleID:   role.ID,
				Assignee: chosen.Assignee,
				Status:   model.AssignmentNormal,
			})
		}
	}

	return assignments, nil
}

// accountDay runs conflict detection over the day's output and updates the
// run statistics
func (g *Generator) accountDay(result *Result, req *Request, date time.Time, dayAssignments []*model.Assignment) {
	filled := 0
	for _, a := range dayAssignments {
		if !a.Assignee.IsZero() {
			filled++
		}
	}
	if filled > 0 {
		result.Statistics.ScheduledDays++
	} else {
		result.Statistics.EmptyDays++
	}

	surrounding := make([]*model.Assignment, 0, len(req.Existing)+len(result.Assignments))
	surrounding = append(surrounding, req.Existing...)
	surrounding = append(surrounding, result.Assignments...)

	conflicts := g.detector.Detect(date, dayAssignments, surrounding)
	if len(conflicts) > 0 {
		result.Conflicts = append(result.Conflicts, conflicts...)
		result.Statistics.ConflictDays++
	}
}

func (g *Generator) hasExistingInRange(req *Request) bool {
	from, to := calendar.Midnight(req.StartDate), calendar.Midnight(req.EndDate)
	for _, a := range req.Existing {
		d := calendar.Midnight(a.Date)
		if !d.Before(from) && !d.After(to) {
			return true
		}
	}
	return false
}
