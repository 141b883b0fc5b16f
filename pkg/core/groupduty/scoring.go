// Package groupduty selects which members of a duty group actually serve on
// a given day: full groups, scored partial groups, or rotating member
// subsets with backup substitution.
package groupduty

import (
	"time"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
	"github.com/weixin008/dutyroster/pkg/core/model"
)

// Strategy is the configured member-selection strategy per shift type
type Strategy string

const (
	StrategyFullGroup       Strategy = "full_group"
	StrategyPartialGroup    Strategy = "partial_group"
	StrategyRotatingMembers Strategy = "rotating_members"
)

// Config tunes member selection for a group duty
type Config struct {
	Strategy Strategy

	// AllowPartial lets full_group fall back to a subset when members are
	// missing
	AllowPartial bool

	MinMemberCount      int
	RequiredMemberCount int

	// PriorityLevels lists seniority levels in priority order; members whose
	// level appears earlier score higher
	PriorityLevels []int

	// MaxConsecutiveShifts and MinRestDays feed the fatigue penalties
	MaxConsecutiveShifts int
	MinRestDays          int
}

// MemberHistory summarizes one member's recent duty load
type MemberHistory struct {
	// RecentShiftCount is the member's shifts in the last 30 days
	RecentShiftCount int

	// ConsecutiveShifts is the member's current run of consecutive duty days
	ConsecutiveShifts int

	// DaysSinceLastShift is -1 when the member has never served
	DaysSinceLastShift int
}

// BuildMemberHistory derives a member's history from assignment records up
// to (excluding) the given date
func BuildMemberHistory(personID string, date time.Time, assignments []*model.Assignment) MemberHistory {
	assignee := model.PersonAssignee(personID)
	day := calendar.Midnight(date)

	hist := MemberHistory{DaysSinceLastShift: -1}
	onDuty := make(map[string]bool)
	for _, a := range assignments {
		if a.Assignee != assignee || !a.Date.Before(day) {
			continue
		}
		onDuty[calendar.DateKey(a.Date)] = true

		if gap := calendar.DaysApart(a.Date, day); gap <= 30 {
			hist.RecentShiftCount++
		}
		if gap := calendar.DaysApart(a.Date, day); hist.DaysSinceLastShift == -1 || gap < hist.DaysSinceLastShift {
			hist.DaysSinceLastShift = gap
		}
	}

	for d := day.AddDate(0, 0, -1); onDuty[calendar.DateKey(d)]; d = d.AddDate(0, 0, -1) {
		hist.ConsecutiveShifts++
	}

	return hist
}

// ScoreMember rates a member's fitness for duty on a day. The score starts
// at 100 and is floored at 0:
//
//   - +10 per priority position when the member's level is listed
//   - -5 per shift served in the last 30 days
//   - -50 when the consecutive-shift run has reached the configured max
//   - -30 when the member rested fewer days than the configured minimum,
//     otherwise +2 per rest day up to +20
func ScoreMember(p *model.Person, cfg Config, hist MemberHistory) int {
	score := 100

	for i, level := range cfg.PriorityLevels {
		if p.Level == level {
			score += 10 * (len(cfg.PriorityLevels) - i)
			break
		}
	}

	score -= 5 * hist.RecentShiftCount

	if cfg.MaxConsecutiveShifts > 0 && hist.ConsecutiveShifts >= cfg.MaxConsecutiveShifts {
		score -= 50
	}

	if hist.DaysSinceLastShift >= 0 {
		if cfg.MinRestDays > 0 && hist.DaysSinceLastShift < cfg.MinRestDays {
			score -= 30
		} else {
			bonus := 2 * hist.DaysSinceLastShift
			if bonus > 20 {
				bonus = 20
			}
			score += bonus
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}

// Confidence rates how solid a selection is, in [0.1, 1.0]. The base depends
// on how fully the requirement was met; candidate surplus or scarcity
// adjusts it.
func Confidence(assignedCount, requiredCount, availableCount int) float64 {
	if requiredCount <= 0 {
		requiredCount = 1
	}

	confidence := 0.8
	extra := float64(assignedCount)/float64(requiredCount) - 1
	if extra > 0.2 {
		extra = 0.2
	}
	confidence += extra

	ratio := float64(availableCount) / float64(requiredCount)
	switch {
	case ratio > 2:
		confidence += 0.1
	case ratio < 1.2:
		confidence -= 0.2
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.1 {
		confidence = 0.1
	}
	return confidence
}
