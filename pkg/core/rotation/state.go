// Package rotation tracks the cursor state that makes duty rotation fair
// across repeated generation runs: per-role indices, assignment history, and
// per-group member cursors, keyed by generation rule (or role, for
// single-role generation).
package rotation

import (
	"time"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
	"github.com/weixin008/dutyroster/pkg/core/model"
)

// HistoryEntry records one past selection
type HistoryEntry struct {
	Date     time.Time
	RoleID   string
	Assignee model.Assignee
}

// State is the rotation cursor for one key. It is an explicit value owned by
// the store, never process-global; engine calls read and write it only
// through Store.Update.
type State struct {
	Key string

	// RoleIndex is the cyclic rotation index per role id
	RoleIndex map[string]int

	// LastAssignment is the date of the most recent selection; zero until
	// the first selection under this key
	LastAssignment time.Time

	// History is the append-only log of selections
	History []HistoryEntry

	// GroupMemberIndex rotates members within each group independently of
	// the group-level index
	GroupMemberIndex map[string]int

	// RandSeed feeds random-mode selection; period resets re-seed it
	RandSeed int64
}

// NewState creates an empty state for the key
func NewState(key string) *State {
	return &State{
		Key:              key,
		RoleIndex:        make(map[string]int),
		GroupMemberIndex: make(map[string]int),
	}
}

// RecordSelection appends a history entry and moves the last-assignment date
func (s *State) RecordSelection(date time.Time, roleID string, assignee model.Assignee) {
	s.History = append(s.History, HistoryEntry{
		Date:     date,
		RoleID:   roleID,
		Assignee: assignee,
	})
	s.LastAssignment = date
}

// CountForRole returns how many history entries assign the given assignee to
// the given role
func (s *State) CountForRole(roleID string, assignee model.Assignee) int {
	count := 0
	for _, h := range s.History {
		if h.RoleID == roleID && h.Assignee == assignee {
			count++
		}
	}
	return count
}

// AdvanceGroupMember moves the internal member cursor of a group forward by
// one position over the given member count
func (s *State) AdvanceGroupMember(groupID string, memberCount int) {
	if memberCount <= 0 {
		return
	}
	s.GroupMemberIndex[groupID] = (s.GroupMemberIndex[groupID] + 1) % memberCount
}

// ApplyPeriodReset applies the rule's reset policy before processing a date
// whose period differs from the last assignment's period.
//
//   - daily and continuous never reset
//   - weekly resets when the Monday-aligned week changes
//   - monthly resets when calendar month+year change
//
// On reset, sequential mode zeroes the role indices, balanced mode keeps its
// history counts so balance persists across periods, and random mode only
// re-seeds.
func (s *State) ApplyPeriodReset(period model.RotationPeriod, mode model.RotationMode, date time.Time) {
	if s.LastAssignment.IsZero() {
		return
	}

	crossed := false
	switch period {
	case model.PeriodWeekly:
		crossed = !calendar.SameWeek(s.LastAssignment, date)
	case model.PeriodMonthly:
		crossed = !calendar.SameMonth(s.LastAssignment, date)
	}
	if !crossed {
		return
	}

	switch mode {
	case model.ModeSequential:
		for role := range s.RoleIndex {
			s.RoleIndex[role] = 0
		}
	case model.ModeBalanced:
		// history-based counts deliberately survive the boundary
	case model.ModeRandom:
		s.RandSeed = int64(calendar.WeekNumber(date))
	}
}

// Clone returns a deep copy, so store readers never alias live state
func (s *State) Clone() *State {
	c := &State{
		Key:              s.Key,
		RoleIndex:        make(map[string]int, len(s.RoleIndex)),
		LastAssignment:   s.LastAssignment,
		History:          make([]HistoryEntry, len(s.History)),
		GroupMemberIndex: make(map[string]int, len(s.GroupMemberIndex)),
		RandSeed:         s.RandSeed,
	}
	for k, v := range s.RoleIndex {
		c.RoleIndex[k] = v
	}
	copy(c.History, s.History)
	for k, v := range s.GroupMemberIndex {
		c.GroupMemberIndex[k] = v
	}
	return c
}

// Stats summarizes a state for callers; derived, read-only
type Stats struct {
	Key              string
	RoleIndex        map[string]int
	LastAssignment   time.Time
	HistoryLength    int
	AssignmentCounts map[string]int
}

// Statistics derives per-assignee counts and cursor positions from the state
func (s *State) Statistics() Stats {
	stats := Stats{
		Key:              s.Key,
		RoleIndex:        make(map[string]int, len(s.RoleIndex)),
		LastAssignment:   s.LastAssignment,
		HistoryLength:    len(s.History),
		AssignmentCounts: make(map[string]int),
	}
	for k, v := range s.RoleIndex {
		stats.RoleIndex[k] = v
	}
	for _, h := range s.History {
		stats.AssignmentCounts[h.Assignee.ID]++
	}
	return stats
}
