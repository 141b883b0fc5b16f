package groupduty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weixin008/dutyroster/pkg/core/model"
	"github.com/weixin008/dutyroster/pkg/core/rotation"
)

func ptr(t time.Time) *time.Time {
	return &t
}

func selectorPersons() []*model.Person {
	return []*model.Person{
		{ID: "m1", Name: "Ada", Level: 1, Status: model.StatusOnDuty},
		{ID: "m2", Name: "Ben", Level: 2, Status: model.StatusOnDuty},
		{ID: "m3", Name: "Cal", Level: 3, Status: model.StatusOnDuty},
		{
			ID: "m4", Name: "Dee", Level: 2, Status: model.StatusLeave,
			StatusStart: ptr(day(2024, time.January, 1)),
			IsLongTerm:  true,
		},
	}
}

func testGroup(kind model.GroupKind, members ...string) *model.Group {
	return &model.Group{ID: "g1", Name: "watch", Kind: kind, MemberIDs: members}
}

func TestSelect_FullGroupAllAvailable(t *testing.T) {
	s := NewSelector(selectorPersons())
	g := testGroup(model.GroupFixedPair, "m1", "m2", "m3")

	sel, err := s.Select(g, day(2024, time.January, 8), Config{Strategy: StrategyFullGroup}, rotation.NewState("k"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "m2", "m3"}, sel.MemberIDs)
	assert.False(t, sel.CriticalShortfall)
}

func TestSelect_FullGroupMissingMemberFails(t *testing.T) {
	s := NewSelector(selectorPersons())
	g := testGroup(model.GroupFixedPair, "m1", "m4")

	_, err := s.Select(g, day(2024, time.January, 8), Config{Strategy: StrategyFullGroup}, rotation.NewState("k"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires all 2 members")
}

func TestSelect_FullGroupAllowPartial(t *testing.T) {
	s := NewSelector(selectorPersons())
	g := testGroup(model.GroupFixedPair, "m1", "m2", "m4")

	cfg := Config{Strategy: StrategyFullGroup, AllowPartial: true, MinMemberCount: 2}
	sel, err := s.Select(g, day(2024, time.January, 8), cfg, rotation.NewState("k"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "m2"}, sel.MemberIDs)
	assert.False(t, sel.CriticalShortfall)
}

func TestSelect_PartialGroupTakesTopScores(t *testing.T) {
	s := NewSelector(selectorPersons())
	g := testGroup(model.GroupRotation, "m1", "m2", "m3")

	// m1 carries a heavy recent load; m2 and m3 are fresh
	var history []*model.Assignment
	for i := 1; i <= 6; i++ {
		history = append(history, &model.Assignment{
			Date: day(2024, time.January, i), Assignee: model.PersonAssignee("m1"),
		})
	}

	cfg := Config{Strategy: StrategyPartialGroup, RequiredMemberCount: 2}
	sel, err := s.Select(g, day(2024, time.January, 8), cfg, rotation.NewState("k"), history)
	require.NoError(t, err)

	require.Len(t, sel.MemberIDs, 2)
	assert.NotContains(t, sel.MemberIDs, "m1")
}

func TestSelect_PartialGroupTieBreaksByMemberOrder(t *testing.T) {
	s := NewSelector(selectorPersons())
	g := testGroup(model.GroupRotation, "m3", "m1", "m2")

	cfg := Config{Strategy: StrategyPartialGroup, RequiredMemberCount: 2}
	sel, err := s.Select(g, day(2024, time.January, 8), cfg, rotation.NewState("k"), nil)
	require.NoError(t, err)

	// Identical scores, so group member order decides
	assert.Equal(t, []string{"m3", "m1"}, sel.MemberIDs)
}

func TestSelect_RotatingMembersAdvancesCursor(t *testing.T) {
	s := NewSelector(selectorPersons())
	g := testGroup(model.GroupRotation, "m1", "m2", "m3")
	state := rotation.NewState("k")
	cfg := Config{Strategy: StrategyRotatingMembers, RequiredMemberCount: 1, MinMemberCount: 1}

	var served []string
	for i := 0; i < 4; i++ {
		sel, err := s.Select(g, day(2024, time.January, 8+i), cfg, state, nil)
		require.NoError(t, err)
		require.Len(t, sel.MemberIDs, 1)
		served = append(served, sel.MemberIDs[0])
	}

	assert.Equal(t, []string{"m1", "m2", "m3", "m1"}, served)
}

func TestSelect_RotatingMembersSubstitutesNearestLevel(t *testing.T) {
	s := NewSelector(selectorPersons())
	// m4 (level 2, on long-term leave) holds the first rotation slot
	g := testGroup(model.GroupRotation, "m4", "m1", "m3")
	state := rotation.NewState("k")
	cfg := Config{Strategy: StrategyRotatingMembers, RequiredMemberCount: 1, MinMemberCount: 1}

	sel, err := s.Select(g, day(2024, time.January, 8), cfg, state, nil)
	require.NoError(t, err)

	// m1 (level 1) is one level away from m4; m3 (level 3) also is, but m1
	// comes first in the available list
	require.Len(t, sel.MemberIDs, 1)
	assert.Equal(t, "m1", sel.MemberIDs[0])

	require.Len(t, sel.Backups, 1)
	assert.Equal(t, "m4", sel.Backups[0].OriginalID)
	assert.Equal(t, "m1", sel.Backups[0].SubstituteID)
}

func TestSelect_RotatingMembersMultipleSlots(t *testing.T) {
	s := NewSelector(selectorPersons())
	g := testGroup(model.GroupRotation, "m1", "m2", "m3")
	state := rotation.NewState("k")
	cfg := Config{Strategy: StrategyRotatingMembers, RequiredMemberCount: 2, MinMemberCount: 1}

	sel, err := s.Select(g, day(2024, time.January, 8), cfg, state, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, sel.MemberIDs)

	// The cursor consumed two slots
	sel, err = s.Select(g, day(2024, time.January, 9), cfg, state, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"m3", "m1"}, sel.MemberIDs)
}

func TestSelect_CriticalShortfall(t *testing.T) {
	s := NewSelector(selectorPersons())
	// Only m1 is available but two members are the minimum
	g := testGroup(model.GroupRotation, "m1", "m4")
	cfg := Config{Strategy: StrategyRotatingMembers, RequiredMemberCount: 2, MinMemberCount: 2}

	sel, err := s.Select(g, day(2024, time.January, 8), cfg, rotation.NewState("k"), nil)
	require.NoError(t, err)

	assert.True(t, sel.CriticalShortfall)
	assert.NotEmpty(t, sel.Warnings)
}

func TestSelect_ConfidenceReflectsScarcity(t *testing.T) {
	s := NewSelector(selectorPersons())
	g := testGroup(model.GroupRotation, "m1", "m2", "m3")
	cfg := Config{Strategy: StrategyRotatingMembers, RequiredMemberCount: 1, MinMemberCount: 1}

	sel, err := s.Select(g, day(2024, time.January, 8), cfg, rotation.NewState("k"), nil)
	require.NoError(t, err)

	// 1 of 1 required with 3 available: 0.8 + 0 + 0.1 = 0.9
	assert.InDelta(t, 0.9, sel.Confidence, 1e-9)
}
