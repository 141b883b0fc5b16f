// Package availability filters personnel and groups down to the candidates
// eligible for a duty role on a given date, and can explain every rejection.
package availability

import (
	"time"

	"github.com/weixin008/dutyroster/pkg/core/model"
)

// RejectionReason classifies why a candidate was excluded from selection
type RejectionReason string

const (
	RejectedExcluded           RejectionReason = "excluded"
	RejectedUnavailable        RejectionReason = "unavailable"
	RejectedPosition           RejectionReason = "position_mismatch"
	RejectedTags               RejectionReason = "tag_mismatch"
	RejectedDepartment         RejectionReason = "department_mismatch"
	RejectedRoleNotApplicable  RejectionReason = "role_not_applicable"
	RejectedMembersUnavailable RejectionReason = "members_unavailable"
)

// Candidate is one eligible assignee for a role on a date
type Candidate struct {
	Assignee model.Assignee

	// Person is set for person-kind candidates
	Person *model.Person

	// Group is set for group-kind candidates, along with the members
	// available on the date in group order
	Group            *model.Group
	AvailableMembers []string
}

// Rejection records why one considered candidate was not eligible
type Rejection struct {
	Assignee model.Assignee
	Reason   RejectionReason
}

// Evaluation is the detailed filter result: eligible candidates plus the
// specific rejection reason for everyone else considered
type Evaluation struct {
	Candidates []Candidate
	Rejections []Rejection
}

// Filter evaluates role selection criteria against a personnel snapshot
type Filter struct {
	persons  []*model.Person
	groups   []*model.Group
	personID map[string]*model.Person
}

// NewFilter builds a filter over the given personnel snapshot
func NewFilter(persons []*model.Person, groups []*model.Group) *Filter {
	f := &Filter{
		persons:  persons,
		groups:   groups,
		personID: make(map[string]*model.Person, len(persons)),
	}
	for _, p := range persons {
		f.personID[p.ID] = p
	}
	return f
}

// Person returns the person with the given id, or nil
func (f *Filter) Person(id string) *model.Person {
	return f.personID[id]
}

// Select returns the candidates eligible for the role on the date,
// skipping ids present in exclude
func (f *Filter) Select(role *model.Role, date time.Time, exclude map[string]bool) []Candidate {
	return f.Evaluate(role, date, exclude).Candidates
}

// Evaluate runs the full filter and reports a rejection reason for every
// candidate considered but not selected. Operators rely on these reasons to
// understand why a slot stayed empty.
func (f *Filter) Evaluate(role *model.Role, date time.Time, exclude map[string]bool) *Evaluation {
	if role.Kind == model.AssignGroup {
		return f.evaluateGroups(role, date, exclude)
	}
	return f.evaluatePersons(role, date, exclude)
}

func (f *Filter) evaluatePersons(role *model.Role, date time.Time, exclude map[string]bool) *Evaluation {
	eval := &Evaluation{}

	for _, p := range f.persons {
		assignee := model.PersonAssignee(p.ID)

		if exclude[p.ID] {
			eval.reject(assignee, RejectedExcluded)
			continue
		}
		if !p.IsAvailableOn(date) {
			eval.reject(assignee, RejectedUnavailable)
			continue
		}
		if reason, ok := matchCriteria(p, role); !ok {
			eval.reject(assignee, reason)
			continue
		}

		eval.Candidates = append(eval.Candidates, Candidate{
			Assignee: assignee,
			Person:   p,
		})
	}

	return eval
}

func (f *Filter) evaluateGroups(role *model.Role, date time.Time, exclude map[string]bool) *Evaluation {
	eval := &Evaluation{}

	for _, g := range f.groups {
		assignee := model.GroupAssignee(g.ID)

		if exclude[g.ID] {
			eval.reject(assignee, RejectedExcluded)
			continue
		}
		if !g.AppliesToRole(role.Name) {
			eval.reject(assignee, RejectedRoleNotApplicable)
			continue
		}

		available := f.AvailableMembers(g, date)
		if !groupAvailable(g, len(available)) {
			eval.reject(assignee, RejectedMembersUnavailable)
			continue
		}

		eval.Candidates = append(eval.Candidates, Candidate{
			Assignee:         assignee,
			Group:            g,
			AvailableMembers: available,
		})
	}

	return eval
}

// AvailableMembers returns the group members available on the date, in the
// group's member order. Members missing from the personnel snapshot count as
// unavailable.
func (f *Filter) AvailableMembers(g *model.Group, date time.Time) []string {
	var available []string
	for _, id := range g.MemberIDs {
		p := f.personID[id]
		if p != nil && p.IsAvailableOn(date) {
			available = append(available, id)
		}
	}
	return available
}

// groupAvailable applies the group-kind availability rule: fixed pairs need
// every member, rotation groups need at least one
func groupAvailable(g *model.Group, availableCount int) bool {
	if g.Kind == model.GroupFixedPair {
		return availableCount == len(g.MemberIDs) && len(g.MemberIDs) > 0
	}
	return availableCount > 0
}

// matchCriteria applies the role's selection criteria: within each configured
// list any value may match (OR), but every configured list must pass (AND)
func matchCriteria(p *model.Person, role *model.Role) (RejectionReason, bool) {
	if len(role.ByPosition) > 0 && !containsString(role.ByPosition, p.Position) {
		return RejectedPosition, false
	}
	if len(role.ByTags) > 0 && !hasAnyTag(p, role.ByTags) {
		return RejectedTags, false
	}
	if len(role.ByDepartment) > 0 && !containsString(role.ByDepartment, p.DepartmentID) {
		return RejectedDepartment, false
	}
	return "", true
}

func hasAnyTag(p *model.Person, tags []string) bool {
	for _, t := range tags {
		if p.HasTag(t) {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (e *Evaluation) reject(a model.Assignee, reason RejectionReason) {
	e.Rejections = append(e.Rejections, Rejection{Assignee: a, Reason: reason})
}
