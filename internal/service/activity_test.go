package service_test

import (
	"testing"
	"time"

	"workspaceflow/internal/model"
	"workspaceflow/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActivities_LimitIsCapped(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	ws, _ := f.board(t, a)

	base := f.clock.Now().Add(time.Hour)
	for i := 0; i < 120; i++ {
		require.NoError(t, f.store.Activities.Create(f.ctx, &model.ActivityLog{
			Action:      model.ActionUpdated,
			EntityType:  model.EntityWorkspace,
			EntityID:    ws.ID,
			MemberID:    &a.ID,
			WorkspaceID: &ws.ID,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	capped, err := f.svc.ListActivities(f.ctx, a.ID, service.ActivityQuery{WorkspaceID: &ws.ID, Limit: 200})
	require.NoError(t, err)
	assert.Len(t, capped, service.MaxActivityLimit)

	def, err := f.svc.ListActivities(f.ctx, a.ID, service.ActivityQuery{WorkspaceID: &ws.ID})
	require.NoError(t, err)
	assert.Len(t, def, service.DefaultActivityLimit)

	few, err := f.svc.ListActivities(f.ctx, a.ID, service.ActivityQuery{WorkspaceID: &ws.ID, Limit: 7})
	require.NoError(t, err)
	assert.Len(t, few, 7)

	for i := 1; i < len(capped); i++ {
		prev, cur := capped[i-1], capped[i]
		assert.False(t, cur.CreatedAt.Before(prev.CreatedAt), "entry %d out of order", i)
		if cur.CreatedAt.Equal(prev.CreatedAt) {
			assert.Greater(t, cur.ID, prev.ID)
		}
	}
}

func TestListActivities_ScopedToActorWorkspaces(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	b := f.register(t, "bob")
	ws, wf := f.board(t, a)
	task := f.task(t, a, wf, "Secret plan")

	_, err := f.svc.ListActivities(f.ctx, b.ID, service.ActivityQuery{WorkspaceID: &ws.ID})
	assert.ErrorIs(t, err, service.ErrAccessDenied)
	_, err = f.svc.ListActivities(f.ctx, b.ID, service.ActivityQuery{TaskID: &task.ID})
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	mine, err := f.svc.ListActivities(f.ctx, b.ID, service.ActivityQuery{})
	require.NoError(t, err)
	for _, e := range mine {
		assert.Nil(t, e.WorkspaceID)
		require.NotNil(t, e.MemberID)
		assert.Equal(t, b.ID, *e.MemberID)
	}

	theirs, err := f.svc.ListActivities(f.ctx, a.ID, service.ActivityQuery{WorkspaceID: &ws.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, theirs)
	for _, e := range theirs {
		require.NotNil(t, e.WorkspaceID)
		assert.Equal(t, ws.ID, *e.WorkspaceID)
	}
}

func TestListActivities_TaskFilter(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	_, wf := f.board(t, a)
	task := f.task(t, a, wf, "One")
	other := f.task(t, a, wf, "Two")
	_, err := f.svc.StartTimer(f.ctx, a.ID, task.ID)
	require.NoError(t, err)

	entries, err := f.svc.ListActivities(f.ctx, a.ID, service.ActivityQuery{TaskID: &task.ID})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionCreated, entries[0].Action)
	assert.Equal(t, model.ActionTimerStart, entries[1].Action)
	for _, e := range entries {
		assert.NotEqual(t, other.ID, *e.TaskID)
	}
}

func TestRecordActivity(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	b := f.register(t, "bob")
	ws, _ := f.board(t, a)

	rec, err := f.svc.RecordActivity(f.ctx, a.ID, service.ActivityInput{
		Action:      model.ActionCommented,
		EntityType:  model.EntityWorkspace,
		EntityID:    ws.ID,
		Description: "  kickoff notes  ",
		WorkspaceID: ws.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "kickoff notes", rec.Description)
	require.NotNil(t, rec.MemberID)
	assert.Equal(t, a.ID, *rec.MemberID)

	_, err = f.svc.RecordActivity(f.ctx, a.ID, service.ActivityInput{
		Action: "exploded", EntityType: model.EntityWorkspace, EntityID: ws.ID, WorkspaceID: ws.ID,
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.svc.RecordActivity(f.ctx, b.ID, service.ActivityInput{
		Action: model.ActionCommented, EntityType: model.EntityWorkspace, EntityID: ws.ID, WorkspaceID: ws.ID,
	})
	assert.ErrorIs(t, err, service.ErrAccessDenied)
}
