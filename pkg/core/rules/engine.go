// Package rules evaluates named, severity-tagged business rules against a
// day's duty assignments and aggregates violations into risk and compliance
// scores.
//
// Each rule is data (id, category, severity, applicable organization types)
// plus a pure evaluation function. The registry is an ordered list built at
// startup; there is no runtime discovery.
package rules

import (
	"time"

	"github.com/weixin008/dutyroster/pkg/core/model"
)

// OrgGeneral marks a rule as applicable to every organization type
const OrgGeneral = "general"

// Context carries everything a rule may inspect for one (date, role) pair
type Context struct {
	Date time.Time
	Role *model.Role

	// Person/Group narrow the evaluation to one assignee when set
	Person *model.Person
	Group  *model.Group

	// DayAssignments are all assignments on the date under evaluation
	DayAssignments []*model.Assignment

	// Surrounding are assignments on nearby dates, for rest and
	// consecutive-shift rules
	Surrounding []*model.Assignment

	Shifts  map[string]*model.Shift
	Roles   map[string]*model.Role
	Persons map[string]*model.Person
	Groups  map[string]*model.Group
}

// Result is one rule's verdict
type Result struct {
	Passed    bool
	Message   string
	Details   []string
	Actions   []string
	PersonIDs []string
}

// Rule is a single business rule in the registry
type Rule interface {
	ID() string
	Name() string
	Category() string
	Severity() model.Severity

	// OrgTypes lists the organization types the rule applies to;
	// OrgGeneral applies everywhere
	OrgTypes() []string

	Evaluate(ctx *Context) Result
}

// Violation records one failed rule evaluation
type Violation struct {
	RuleID   string
	RuleName string
	Category string
	Severity model.Severity

	PersonIDs []string

	Message string
	Details []string
	Actions []string

	// Overridable is false exactly when the severity is critical
	Overridable bool
}

// Report aggregates one evaluation pass
type Report struct {
	Violations []Violation

	// RiskScore sums severity weights over violations, capped at 100
	RiskScore int

	// ComplianceScore is the share of registered rules with no violation,
	// as a percentage
	ComplianceScore float64

	// Compliant is true when no critical violation was recorded
	Compliant bool
}

// Engine holds the ordered rule registry
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine over the given rules, evaluated in order
func NewEngine(ruleList ...Rule) *Engine {
	return &Engine{rules: ruleList}
}

// Register appends a rule to the registry
func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

// Rules returns the registered rules in evaluation order
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Evaluate runs every rule applicable to the organization type against the
// context and aggregates the outcome
func (e *Engine) Evaluate(orgType string, ctx *Context) *Report {
	return e.EvaluateAll(orgType, []*Context{ctx})
}

// EvaluateAll runs the registry against several contexts for the same date
// and merges the verdicts into one report. Callers pass one date-level
// context plus one context per assignee so that Person- and Group-scoped
// rules see who is on duty. A rule that ignores the assignee fields fails
// with the same message in every context; identical messages count once.
func (e *Engine) EvaluateAll(orgType string, ctxs []*Context) *Report {
	report := &Report{Compliant: true}

	violatedRules := make(map[string]bool)
	for _, r := range e.rules {
		if !appliesTo(r, orgType) {
			continue
		}
		seen := make(map[string]bool)
		for _, ctx := range ctxs {
			res := r.Evaluate(ctx)
			if res.Passed || seen[res.Message] {
				continue
			}
			seen[res.Message] = true

			report.Violations = append(report.Violations, Violation{
				RuleID:      r.ID(),
				RuleName:    r.Name(),
				Category:    r.Category(),
				Severity:    r.Severity(),
				PersonIDs:   res.PersonIDs,
				Message:     res.Message,
				Details:     res.Details,
				Actions:     res.Actions,
				Overridable: r.Severity() != model.SeverityCritical,
			})
			violatedRules[r.ID()] = true

			if r.Severity() == model.SeverityCritical {
				report.Compliant = false
			}
		}
	}

	for _, v := range report.Violations {
		report.RiskScore += v.Severity.RiskWeight()
	}
	if report.RiskScore > 100 {
		report.RiskScore = 100
	}

	if len(e.rules) > 0 {
		report.ComplianceScore = 100 * float64(len(e.rules)-len(violatedRules)) / float64(len(e.rules))
	} else {
		report.ComplianceScore = 100
	}

	return report
}

func appliesTo(r Rule, orgType string) bool {
	for _, t := range r.OrgTypes() {
		if t == OrgGeneral || t == orgType {
			return true
		}
	}
	return false
}
