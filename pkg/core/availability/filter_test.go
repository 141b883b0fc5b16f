package availability

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

func testPersons() []*model.Person {
	return []*model.Person{
		{ID: "p1", Name: "Ada", Status: model.StatusOnDuty, Position: "officer", Tags: []string{"driver"}, DepartmentID: "ops"},
		{ID: "p2", Name: "Ben", Status: model.StatusOnDuty, Position: "clerk", Tags: []string{"first_aid"}, DepartmentID: "ops"},
		{
			ID: "p3", Name: "Cal", Status: model.StatusLeave, Position: "officer", DepartmentID: "admin",
			StatusStart: ptr(day(2024, time.January, 10)),
			StatusEnd:   ptr(day(2024, time.January, 12)),
		},
	}
}

func TestEvaluate_NoCriteriaSelectsAllAvailable(t *testing.T) {
	f := NewFilter(testPersons(), nil)
	role := &model.Role{ID: "r1", Name: "duty officer"}

	eval := f.Evaluate(role, day(2024, time.January, 10), nil)

	// p3 is on leave on Jan 10; p1 and p2 pass
	require.Len(t, eval.Candidates, 2)
	assert.Equal(t, "p1", eval.Candidates[0].Assignee.ID)
	assert.Equal(t, "p2", eval.Candidates[1].Assignee.ID)

	require.Len(t, eval.Rejections, 1)
	assert.Equal(t, "p3", eval.Rejections[0].Assignee.ID)
	assert.Equal(t, RejectedUnavailable, eval.Rejections[0].Reason)
}

func TestEvaluate_PositionCriterion(t *testing.T) {
	f := NewFilter(testPersons(), nil)
	role := &model.Role{ID: "r1", Name: "duty officer", ByPosition: []string{"officer"}}

	eval := f.Evaluate(role, day(2024, time.January, 15), nil)

	// Cal is back from leave on Jan 15, so both officers qualify
	require.Len(t, eval.Candidates, 2)
	assert.Equal(t, "p1", eval.Candidates[0].Assignee.ID)
	assert.Equal(t, "p3", eval.Candidates[1].Assignee.ID)

	require.Len(t, eval.Rejections, 1)
	assert.Equal(t, RejectedPosition, eval.Rejections[0].Reason)
}

func TestEvaluate_CriteriaAreAndedAcrossGroups(t *testing.T) {
	f := NewFilter(testPersons(), nil)
	role := &model.Role{
		ID:           "r1",
		Name:         "ops driver",
		ByPosition:   []string{"officer", "clerk"},
		ByTags:       []string{"driver"},
		ByDepartment: []string{"ops"},
	}

	eval := f.Evaluate(role, day(2024, time.January, 15), nil)

	// Only p1 matches position AND tag AND department
	require.Len(t, eval.Candidates, 1)
	assert.Equal(t, "p1", eval.Candidates[0].Assignee.ID)

	// p2 fails on tag, p3 fails on tag too (checked before department)
	require.Len(t, eval.Rejections, 2)
	assert.Equal(t, RejectedTags, eval.Rejections[0].Reason)
	assert.Equal(t, RejectedTags, eval.Rejections[1].Reason)
}

func TestEvaluate_TagCriterionIsAnyOf(t *testing.T) {
	f := NewFilter(testPersons(), nil)
	role := &model.Role{ID: "r1", Name: "responder", ByTags: []string{"driver", "first_aid"}}

	eval := f.Evaluate(role, day(2024, time.January, 15), nil)

	// p1 matches driver, p2 matches first_aid; either tag suffices
	require.Len(t, eval.Candidates, 2)
}

func TestEvaluate_ExcludeSet(t *testing.T) {
	f := NewFilter(testPersons(), nil)
	role := &model.Role{ID: "r1", Name: "duty officer"}

	eval := f.Evaluate(role, day(2024, time.January, 15), map[string]bool{"p1": true})

	require.Len(t, eval.Candidates, 2)
	require.Len(t, eval.Rejections, 1)
	assert.Equal(t, "p1", eval.Rejections[0].Assignee.ID)
	assert.Equal(t, RejectedExcluded, eval.Rejections[0].Reason)
}

func TestEvaluate_FixedPairNeedsEveryMember(t *testing.T) {
	groups := []*model.Group{
		{ID: "g1", Name: "pair A", Kind: model.GroupFixedPair, MemberIDs: []string{"p1", "p3"}, ApplicableRoles: []string{"patrol"}},
		{ID: "g2", Name: "pair B", Kind: model.GroupFixedPair, MemberIDs: []string{"p1", "p2"}, ApplicableRoles: []string{"patrol"}},
	}
	f := NewFilter(testPersons(), groups)
	role := &model.Role{ID: "r1", Name: "patrol", Kind: model.AssignGroup}

	// On Jan 10, p3 is on leave, so pair A is out but pair B stands
	eval := f.Evaluate(role, day(2024, time.January, 10), nil)

	require.Len(t, eval.Candidates, 1)
	assert.Equal(t, "g2", eval.Candidates[0].Assignee.ID)
	assert.Equal(t, []string{"p1", "p2"}, eval.Candidates[0].AvailableMembers)

	require.Len(t, eval.Rejections, 1)
	assert.Equal(t, "g1", eval.Rejections[0].Assignee.ID)
	assert.Equal(t, RejectedMembersUnavailable, eval.Rejections[0].Reason)
}

func TestEvaluate_RotationGroupNeedsOneMember(t *testing.T) {
	groups := []*model.Group{
		{ID: "g1", Name: "rota", Kind: model.GroupRotation, MemberIDs: []string{"p1", "p3"}, ApplicableRoles: []string{"patrol"}},
	}
	f := NewFilter(testPersons(), groups)
	role := &model.Role{ID: "r1", Name: "patrol", Kind: model.AssignGroup}

	// p3 on leave leaves p1, which is enough for a rotation group
	eval := f.Evaluate(role, day(2024, time.January, 10), nil)

	require.Len(t, eval.Candidates, 1)
	assert.Equal(t, []string{"p1"}, eval.Candidates[0].AvailableMembers)
}

func TestEvaluate_GroupRoleNotApplicable(t *testing.T) {
	groups := []*model.Group{
		{ID: "g1", Name: "rota", Kind: model.GroupRotation, MemberIDs: []string{"p1"}, ApplicableRoles: []string{"gate"}},
	}
	f := NewFilter(testPersons(), groups)
	role := &model.Role{ID: "r1", Name: "patrol", Kind: model.AssignGroup}

	eval := f.Evaluate(role, day(2024, time.January, 15), nil)

	assert.Empty(t, eval.Candidates)
	require.Len(t, eval.Rejections, 1)
	assert.Equal(t, RejectedRoleNotApplicable, eval.Rejections[0].Reason)
}

func TestAvailableMembers_UnknownMemberCountsUnavailable(t *testing.T) {
	f := NewFilter(testPersons(), nil)
	g := &model.Group{ID: "g1", MemberIDs: []string{"p1", "ghost"}}

	assert.Equal(t, []string{"p1"}, f.AvailableMembers(g, day(2024, time.January, 15)))
}

func TestSelect_ReturnsCandidatesOnly(t *testing.T) {
	f := NewFilter(testPersons(), nil)
	role := &model.Role{ID: "r1", Name: "duty officer"}

	candidates := f.Select(role, day(2024, time.January, 15), nil)
	assert.Len(t, candidates, 3)
}
