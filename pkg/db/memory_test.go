package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weixin008/dutyroster/pkg/core/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryStore_LookupByID(t *testing.T) {
	store := NewMemoryStore()
	store.Persons = []*model.Person{{ID: "p1", Name: "Ada"}}
	store.Roles = []*model.Role{{ID: "r1", Name: "duty officer"}}
	ctx := context.Background()

	p, err := store.GetPerson(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)

	_, err = store.GetPerson(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	r, err := store.GetRole(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "duty officer", r.Name)
}

func TestMemoryStore_AssignmentsByRange(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.InsertAssignments(ctx, []*model.Assignment{
		{ID: "a1", Date: day(2024, time.January, 1)},
		{ID: "a2", Date: day(2024, time.January, 5)},
		{ID: "a3", Date: day(2024, time.January, 10)},
	}))

	// Range bounds are inclusive on both ends
	got, err := store.GetAssignmentsByRange(ctx, day(2024, time.January, 1), day(2024, time.January, 5))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "a2", got[1].ID)
}

func TestMemoryStore_DeleteAssignmentsByRange(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.InsertAssignments(ctx, []*model.Assignment{
		{ID: "a1", Date: day(2024, time.January, 1)},
		{ID: "a2", Date: day(2024, time.January, 5)},
		{ID: "a3", Date: day(2024, time.January, 10)},
	}))

	require.NoError(t, store.DeleteAssignmentsByRange(ctx, day(2024, time.January, 4), day(2024, time.January, 6)))

	remaining, err := store.GetAssignmentsByRange(ctx, day(2024, time.January, 1), day(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "a1", remaining[0].ID)
	assert.Equal(t, "a3", remaining[1].ID)
}

func TestMemoryStore_GetListsCopyTheSlice(t *testing.T) {
	store := NewMemoryStore()
	store.Shifts = []*model.Shift{{ID: "s1"}}

	got, err := store.GetShifts(context.Background())
	require.NoError(t, err)

	got[0] = &model.Shift{ID: "other"}
	assert.Equal(t, "s1", store.Shifts[0].ID)
}
