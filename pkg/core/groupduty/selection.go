package groupduty

import (
	"fmt"
	"sort"
	"time"

	"github.com/weixin008/dutyroster/pkg/core/model"
	"github.com/weixin008/dutyroster/pkg/core/rotation"
)

// BackupEntry records a rotation slot whose scheduled member was unavailable
// and who substituted for them
type BackupEntry struct {
	// OriginalID is the member whose rotation slot it was
	OriginalID string

	// SubstituteID is the available member who covered the slot
	SubstituteID string
}

// Selection is the outcome of picking a group's serving members for a day
type Selection struct {
	GroupID  string
	Date     time.Time
	Strategy Strategy

	// MemberIDs are the members who serve, in selection order
	MemberIDs []string

	// Backups records substitutions made by the rotating-members strategy
	Backups []BackupEntry

	// Confidence is the selection confidence in [0.1, 1.0]
	Confidence float64

	// CriticalShortfall is set when fewer members than the configured
	// minimum could be assigned
	CriticalShortfall bool

	Warnings []string
}

// Selector picks serving members for group duties
type Selector struct {
	persons map[string]*model.Person
}

// NewSelector builds a selector over the personnel snapshot
func NewSelector(persons []*model.Person) *Selector {
	s := &Selector{persons: make(map[string]*model.Person, len(persons))}
	for _, p := range persons {
		s.persons[p.ID] = p
	}
	return s
}

// Select determines the group's serving members for the date. The rotation
// state supplies and receives the group's member cursor for the
// rotating-members strategy. History assignments feed member scoring.
func (s *Selector) Select(g *model.Group, date time.Time, cfg Config, state *rotation.State, history []*model.Assignment) (*Selection, error) {
	available := s.availableMembers(g, date)

	sel := &Selection{
		GroupID:  g.ID,
		Date:     date,
		Strategy: cfg.Strategy,
	}

	switch cfg.Strategy {
	case StrategyPartialGroup:
		sel.MemberIDs = s.selectByScore(available, date, cfg, history)
	case StrategyRotatingMembers:
		sel.MemberIDs, sel.Backups = s.selectRotating(g, available, cfg, state)
	default:
		members, err := s.selectFullGroup(g, available, cfg)
		if err != nil {
			return nil, err
		}
		sel.MemberIDs = members
	}

	required := cfg.RequiredMemberCount
	if required <= 0 {
		required = len(g.MemberIDs)
	}
	sel.Confidence = Confidence(len(sel.MemberIDs), required, len(available))

	if cfg.MinMemberCount > 0 && len(sel.MemberIDs) < cfg.MinMemberCount {
		sel.CriticalShortfall = true
		sel.Warnings = append(sel.Warnings, fmt.Sprintf(
			"group %s has %d member(s) assigned, below the minimum of %d",
			g.Name, len(sel.MemberIDs), cfg.MinMemberCount))
	}

	return sel, nil
}

func (s *Selector) availableMembers(g *model.Group, date time.Time) []string {
	var available []string
	for _, id := range g.MemberIDs {
		p := s.persons[id]
		if p != nil && p.IsAvailableOn(date) {
			available = append(available, id)
		}
	}
	return available
}

// selectFullGroup takes every member, or, when partial duty is allowed, up
// to max(MinMemberCount, RequiredMemberCount) available members
func (s *Selector) selectFullGroup(g *model.Group, available []string, cfg Config) ([]string, error) {
	if len(available) == len(g.MemberIDs) {
		return append([]string(nil), g.MemberIDs...), nil
	}

	if !cfg.AllowPartial {
		return nil, fmt.Errorf("group %s requires all %d members but only %d are available",
			g.Name, len(g.MemberIDs), len(available))
	}

	limit := cfg.MinMemberCount
	if cfg.RequiredMemberCount > limit {
		limit = cfg.RequiredMemberCount
	}
	if limit <= 0 || limit > len(available) {
		limit = len(available)
	}
	return append([]string(nil), available[:limit]...), nil
}

// selectByScore scores every available member and takes the top
// RequiredMemberCount, highest score first; member order breaks score ties
func (s *Selector) selectByScore(available []string, date time.Time, cfg Config, history []*model.Assignment) []string {
	type scored struct {
		id    string
		score int
		pos   int
	}

	ranked := make([]scored, 0, len(available))
	for i, id := range available {
		p := s.persons[id]
		if p == nil {
			continue
		}
		hist := BuildMemberHistory(id, date, history)
		ranked = append(ranked, scored{id: id, score: ScoreMember(p, cfg, hist), pos: i})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].pos < ranked[j].pos
	})

	limit := cfg.RequiredMemberCount
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}

	members := make([]string, limit)
	for i := 0; i < limit; i++ {
		members[i] = ranked[i].id
	}
	return members
}

// selectRotating walks RequiredMemberCount consecutive rotation slots over
// all members, available or not. Unavailable members get the nearest-level
// available substitute and a backup entry; the cursor then advances past the
// consumed slots.
func (s *Selector) selectRotating(g *model.Group, available []string, cfg Config, state *rotation.State) ([]string, []BackupEntry) {
	order := g.MemberRotation()
	if len(order) == 0 {
		return nil, nil
	}

	required := cfg.RequiredMemberCount
	if required <= 0 {
		required = 1
	}
	if required > len(order) {
		required = len(order)
	}

	availableSet := make(map[string]bool, len(available))
	for _, id := range available {
		availableSet[id] = true
	}

	cursor := state.GroupMemberIndex[g.ID]
	taken := make(map[string]bool)
	var members []string
	var backups []BackupEntry

	for i := 0; i < required; i++ {
		slotID := order[(cursor+i)%len(order)]

		if availableSet[slotID] && !taken[slotID] {
			members = append(members, slotID)
			taken[slotID] = true
			continue
		}

		substitute := s.nearestLevelSubstitute(slotID, available, taken)
		if substitute == "" {
			continue
		}
		members = append(members, substitute)
		taken[substitute] = true
		backups = append(backups, BackupEntry{OriginalID: slotID, SubstituteID: substitute})
	}

	state.GroupMemberIndex[g.ID] = (cursor + required) % len(order)

	return members, backups
}

// nearestLevelSubstitute picks the not-yet-taken available member whose
// seniority level is closest to the original's
func (s *Selector) nearestLevelSubstitute(originalID string, available []string, taken map[string]bool) string {
	original := s.persons[originalID]

	best := ""
	bestDistance := -1
	for _, id := range available {
		if taken[id] || id == originalID {
			continue
		}
		p := s.persons[id]
		if p == nil {
			continue
		}
		distance := 0
		if original != nil {
			distance = p.Level - original.Level
			if distance < 0 {
				distance = -distance
			}
		}
		if bestDistance == -1 || distance < bestDistance {
			best = id
			bestDistance = distance
		}
	}
	return best
}
