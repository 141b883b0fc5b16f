// Package engine is the caller-facing surface of the rostering system. It
// loads master data through the data-access collaborators, drives the
// generator, evaluates business rules, and persists results.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/weixin008/dutyroster/pkg/core/availability"
	"github.com/weixin008/dutyroster/pkg/core/calendar"
	"github.com/weixin008/dutyroster/pkg/core/conflict"
	"github.com/weixin008/dutyroster/pkg/core/generator"
	"github.com/weixin008/dutyroster/pkg/core/groupduty"
	"github.com/weixin008/dutyroster/pkg/core/model"
	"github.com/weixin008/dutyroster/pkg/core/rotation"
	"github.com/weixin008/dutyroster/pkg/core/rules"
	"github.com/weixin008/dutyroster/pkg/db"
)

// ErrNotFound wraps missing master-data references
var ErrNotFound = db.ErrNotFound

// Engine exposes the rostering operations to callers
type Engine struct {
	store    db.Store
	rotation *rotation.Store
	rules    *rules.Engine
	logger   *zap.Logger

	// skipDate is the external holiday predicate; nil skips nothing
	skipDate func(time.Time) bool

	// groupConfig tunes group member selection per group kind
	groupConfig func(g *model.Group) groupduty.Config
}

// Option configures the engine
type Option func(*Engine)

// WithSkipDate installs the holiday predicate
func WithSkipDate(skip func(time.Time) bool) Option {
	return func(e *Engine) { e.skipDate = skip }
}

// WithGroupConfig overrides the per-group member-selection configuration
func WithGroupConfig(fn func(g *model.Group) groupduty.Config) Option {
	return func(e *Engine) { e.groupConfig = fn }
}

// New builds an engine over the given collaborators
func New(store db.Store, rotationStore *rotation.Store, ruleEngine *rules.Engine, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store:       store,
		rotation:    rotationStore,
		rules:       ruleEngine,
		logger:      logger,
		groupConfig: defaultGroupConfig,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func defaultGroupConfig(g *model.Group) groupduty.Config {
	if g.Kind == model.GroupRotation {
		return groupduty.Config{
			Strategy:            groupduty.StrategyRotatingMembers,
			RequiredMemberCount: 1,
			MinMemberCount:      1,
		}
	}
	return groupduty.Config{
		Strategy:       groupduty.StrategyFullGroup,
		MinMemberCount: len(g.MemberIDs),
	}
}

// GenerateRequest asks for roster generation under one rule
type GenerateRequest struct {
	RuleID    string
	StartDate time.Time
	EndDate   time.Time

	ForceRegenerate bool

	// ConsecutiveRoleID switches to the consecutive-duty variant for the
	// named role: the same assignee covers the whole week, rotating weekly
	ConsecutiveRoleID string
}

// GenerateResult is what a generation or preview run returns
type GenerateResult struct {
	Assignments []*model.Assignment
	Conflicts   []model.ConflictRecord
	Warnings    []string
	Statistics  generator.Statistics

	// Compliance holds the business-rule report per date key (YYYY-MM-DD)
	Compliance map[string]*rules.Report

	// GroupSelections holds the serving-member selection per group
	// assignment id
	GroupSelections map[string]*groupduty.Selection
}

// Generate produces and persists a roster for the request range.
// When assignments already exist in range and ForceRegenerate is false, the
// call fails before any mutation.
func (e *Engine) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	result, err := e.run(ctx, req, e.rotation)
	if err != nil {
		return nil, err
	}

	if req.ForceRegenerate {
		if err := e.store.DeleteAssignmentsByRange(ctx, req.StartDate, req.EndDate); err != nil {
			return nil, fmt.Errorf("failed to clear existing assignments: %w", err)
		}
	}
	if err := e.store.InsertAssignments(ctx, result.Assignments); err != nil {
		return nil, fmt.Errorf("failed to persist assignments: %w", err)
	}

	e.logger.Info("roster generated",
		zap.String("rule", req.RuleID),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("conflicts", len(result.Conflicts)))

	return result, nil
}

// Preview runs the same computation as Generate but persists nothing and
// leaves the live rotation state untouched.
func (e *Engine) Preview(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	scratch := rotation.NewStore()
	if live := e.rotation.Get(req.RuleID); live != nil {
		scratch.Update(req.RuleID, func(s *rotation.State) error {
			*s = *live
			return nil
		})
	}
	if req.ConsecutiveRoleID != "" {
		if live := e.rotation.Get(req.ConsecutiveRoleID); live != nil {
			scratch.Update(req.ConsecutiveRoleID, func(s *rotation.State) error {
				*s = *live
				return nil
			})
		}
	}

	return e.run(ctx, req, scratch)
}

// run loads master data, generates, evaluates business rules, and resolves
// conflicts against the produced assignments
func (e *Engine) run(ctx context.Context, req *GenerateRequest, rotationStore *rotation.Store) (*GenerateResult, error) {
	data, err := e.loadMasterData(ctx, req.RuleID)
	if err != nil {
		return nil, err
	}

	// widen the existing-assignment window so workload and rest scans see
	// the days around the range; weekly-hours and rest checks need the whole
	// Monday-aligned week
	margin := data.rule.Constraints.MaxConsecutiveDays + 1
	if (data.rule.Constraints.MaxWeeklyHours > 0 || data.rule.Constraints.MinRestHours > 0) && margin < 7 {
		margin = 7
	}
	existing, err := e.store.GetAssignmentsByRange(ctx,
		req.StartDate.AddDate(0, 0, -margin), req.EndDate.AddDate(0, 0, margin))
	if err != nil {
		return nil, fmt.Errorf("failed to load existing assignments: %w", err)
	}

	// a forced run deletes the in-range rows before persisting, so they
	// must not feed the workload and rest scans
	if req.ForceRegenerate {
		existing = outsideRange(existing, req.StartDate, req.EndDate)
	}

	filter := availability.NewFilter(data.persons, data.groups)
	detector := conflict.NewDetector(data.shifts, data.roles, data.persons, conflict.Limits{
		MaxPerDay:           2,
		MaxConsecutiveDays:  data.rule.Constraints.MaxConsecutiveDays,
		MinRestHours:        data.rule.Constraints.MinRestHours,
		MaxWeeklyHours:      data.rule.Constraints.MaxWeeklyHours,
		ForbiddenRoleCombos: data.rule.Constraints.ForbiddenRoleCombos,
	})
	gen := generator.New(filter, detector, rotationStore)

	genReq := &generator.Request{
		Rule:            data.rule,
		Shifts:          data.shifts,
		Roles:           data.roles,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		ForceRegenerate: req.ForceRegenerate,
		Existing:        existing,
		SkipDate:        e.skipDate,
	}

	var genResult *generator.Result
	if req.ConsecutiveRoleID != "" {
		role := findRole(data.roles, req.ConsecutiveRoleID)
		if role == nil {
			return nil, fmt.Errorf("role %s: %w", req.ConsecutiveRoleID, ErrNotFound)
		}
		genResult, err = gen.GenerateConsecutive(genReq, role)
	} else {
		genResult, err = gen.Generate(genReq)
	}
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Assignments:     genResult.Assignments,
		Conflicts:       genResult.Conflicts,
		Warnings:        genResult.Warnings,
		Statistics:      genResult.Statistics,
		Compliance:      make(map[string]*rules.Report),
		GroupSelections: make(map[string]*groupduty.Selection),
	}

	e.selectGroupMembers(result, data, rotationStore, data.rule.ID, existing)
	e.evaluateRules(result, data, existing)
	conflict.Resolve(result.Conflicts, result.Assignments)

	return result, nil
}

// selectGroupMembers resolves which members serve each group assignment and
// records the selection in the assignment note
func (e *Engine) selectGroupMembers(result *GenerateResult, data *masterData, rotationStore *rotation.Store, stateKey string, existing []*model.Assignment) {
	groupSel := groupduty.NewSelector(data.persons)
	history := append(append([]*model.Assignment(nil), existing...), result.Assignments...)

	for _, a := range result.Assignments {
		if a.Assignee.Kind != model.AssigneeGroup || a.Assignee.IsZero() {
			continue
		}
		g := data.groupByID[a.Assignee.ID]
		if g == nil {
			continue
		}

		rotationStore.Update(stateKey, func(state *rotation.State) error {
			sel, err := groupSel.Select(g, a.Date, e.groupConfig(g), state, history)
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: group %s: %v", calendar.DateKey(a.Date), g.Name, err))
				return nil
			}
			result.GroupSelections[a.ID] = sel
			result.Warnings = append(result.Warnings, sel.Warnings...)
			if len(sel.MemberIDs) > 0 {
				a.Note = appendNote(a.Note, "serving: "+strings.Join(sel.MemberIDs, ", "))
			}
			return nil
		})
	}
}

// evaluateRules runs the business-rule registry once per produced date
func (e *Engine) evaluateRules(result *GenerateResult, data *masterData, existing []*model.Assignment) {
	if e.rules == nil {
		return
	}

	byDate := make(map[string][]*model.Assignment)
	for _, a := range result.Assignments {
		byDate[calendar.DateKey(a.Date)] = append(byDate[calendar.DateKey(a.Date)], a)
	}

	surrounding := append(append([]*model.Assignment(nil), existing...), result.Assignments...)

	for key, dayAssignments := range byDate {
		date, err := calendar.ParseDate(key)
		if err != nil {
			continue
		}
		base := rules.Context{
			Date:           date,
			DayAssignments: dayAssignments,
			Surrounding:    surrounding,
			Shifts:         data.shiftByID,
			Roles:          data.roleByID,
			Persons:        data.personByID,
			Groups:         data.groupByID,
		}

		// one extra context per distinct assignee, so person- and
		// group-scoped rules evaluate against who actually serves
		ctxs := []*rules.Context{&base}
		evaluated := make(map[model.Assignee]bool)
		for _, a := range dayAssignments {
			if a.Assignee.IsZero() || evaluated[a.Assignee] {
				continue
			}
			evaluated[a.Assignee] = true

			scoped := base
			switch a.Assignee.Kind {
			case model.AssigneePerson:
				scoped.Person = data.personByID[a.Assignee.ID]
			case model.AssigneeGroup:
				scoped.Group = data.groupByID[a.Assignee.ID]
			}
			if scoped.Person == nil && scoped.Group == nil {
				continue
			}
			ctxs = append(ctxs, &scoped)
		}

		result.Compliance[key] = e.rules.EvaluateAll(data.rule.OrgType, ctxs)
	}
}

// outsideRange returns the assignments dated strictly outside [from, to]
func outsideRange(assignments []*model.Assignment, from, to time.Time) []*model.Assignment {
	fromDay, toDay := calendar.Midnight(from), calendar.Midnight(to)
	kept := make([]*model.Assignment, 0, len(assignments))
	for _, a := range assignments {
		d := calendar.Midnight(a.Date)
		if !d.Before(fromDay) && !d.After(toDay) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// DetectConflicts runs the conflict detector over caller-provided
// assignments, one pass per distinct date
func (e *Engine) DetectConflicts(ctx context.Context, assignments []*model.Assignment) ([]model.ConflictRecord, error) {
	shifts, err := e.store.GetShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load shifts: %w", err)
	}
	roles, err := e.store.GetRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	persons, err := e.store.GetPersons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load persons: %w", err)
	}

	detector := conflict.NewDetector(shifts, roles, persons, conflict.DefaultLimits)

	byDate := make(map[string][]*model.Assignment)
	for _, a := range assignments {
		byDate[calendar.DateKey(a.Date)] = append(byDate[calendar.DateKey(a.Date)], a)
	}

	var conflicts []model.ConflictRecord
	for key, dayAssignments := range byDate {
		date, err := calendar.ParseDate(key)
		if err != nil {
			continue
		}
		conflicts = append(conflicts, detector.Detect(date, dayAssignments, assignments)...)
	}
	return conflicts, nil
}

// SelectCandidates returns the detailed availability evaluation for a role
// on a date, including the rejection reason for every candidate considered
func (e *Engine) SelectCandidates(ctx context.Context, roleID string, date time.Time) (*availability.Evaluation, error) {
	role, err := e.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("role %s: %w", roleID, err)
	}
	persons, err := e.store.GetPersons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load persons: %w", err)
	}
	groups, err := e.store.GetGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}

	return availability.NewFilter(persons, groups).Evaluate(role, date, nil), nil
}

// RotationStatistics derives statistics from the key's rotation state
func (e *Engine) RotationStatistics(key string) (*rotation.Stats, error) {
	state := e.rotation.Get(key)
	if state == nil {
		return nil, fmt.Errorf("rotation state %s: %w", key, ErrNotFound)
	}
	stats := state.Statistics()
	return &stats, nil
}

// masterData is the snapshot a run operates on
type masterData struct {
	rule    *model.Rule
	persons []*model.Person
	groups  []*model.Group
	roles   []*model.Role
	shifts  []*model.Shift

	personByID map[string]*model.Person
	groupByID  map[string]*model.Group
	roleByID   map[string]*model.Role
	shiftByID  map[string]*model.Shift
}

func (e *Engine) loadMasterData(ctx context.Context, ruleID string) (*masterData, error) {
	rule, err := e.store.GetRule(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", ruleID, err)
	}

	persons, err := e.store.GetPersons(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load persons: %w", err)
	}
	groups, err := e.store.GetGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	allRoles, err := e.store.GetRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	allShifts, err := e.store.GetShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load shifts: %w", err)
	}

	data := &masterData{
		rule:       rule,
		persons:    persons,
		groups:     groups,
		personByID: make(map[string]*model.Person, len(persons)),
		groupByID:  make(map[string]*model.Group, len(groups)),
		roleByID:   make(map[string]*model.Role),
		shiftByID:  make(map[string]*model.Shift),
	}
	for _, p := range persons {
		data.personByID[p.ID] = p
	}
	for _, g := range groups {
		data.groupByID[g.ID] = g
	}

	for _, id := range rule.RoleIDs {
		role := findRole(allRoles, id)
		if role == nil {
			return nil, fmt.Errorf("role %s: %w", id, ErrNotFound)
		}
		data.roles = append(data.roles, role)
		data.roleByID[id] = role
	}
	for _, id := range rule.ShiftIDs {
		shift := findShift(allShifts, id)
		if shift == nil {
			return nil, fmt.Errorf("shift %s: %w", id, ErrNotFound)
		}
		data.shifts = append(data.shifts, shift)
		data.shiftByID[id] = shift
	}

	return data, nil
}

func findRole(roles []*model.Role, id string) *model.Role {
	for _, r := range roles {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func findShift(shifts []*model.Shift, id string) *model.Shift {
	for _, s := range shifts {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func appendNote(note, extra string) string {
	if note == "" {
		return extra
	}
	return note + "; " + extra
}

// IsNotFound reports whether the error stems from a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}
