package service_test

import (
	"testing"

	"workspaceflow/internal/model"
	"workspaceflow/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWorkspace_CreatorBecomesOwner(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")

	ws, err := f.svc.CreateWorkspace(f.ctx, a.ID, service.WorkspaceInput{Name: "  Team  "})
	require.NoError(t, err)
	assert.Equal(t, "Team", ws.Name)

	ok, err := f.svc.IsMember(f.ctx, ws.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := f.svc.ListWorkspaceMembers(f.ctx, a.ID, ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, model.RoleOwner, members[0].Role)
	assert.Equal(t, "ada@example.com", members[0].Email)

	_, err = f.svc.CreateWorkspace(f.ctx, a.ID, service.WorkspaceInput{Name: ""})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestMembership_AddRemove(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	b := f.register(t, "bob")
	c := f.register(t, "cy")
	ws, wf := f.board(t, a)

	_, err := f.svc.AddMember(f.ctx, b.ID, ws.ID, service.AddMemberInput{MemberID: c.ID})
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	_, err = f.svc.AddMember(f.ctx, a.ID, ws.ID, service.AddMemberInput{MemberID: b.ID})
	require.NoError(t, err)
	_, err = f.svc.AddMember(f.ctx, a.ID, ws.ID, service.AddMemberInput{MemberID: b.ID, Role: model.RoleAdmin})
	assert.ErrorIs(t, err, service.ErrConflict)
	_, err = f.svc.AddMember(f.ctx, a.ID, ws.ID, service.AddMemberInput{MemberID: 9999})
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = f.svc.RemoveMember(f.ctx, b.ID, ws.ID, a.ID)
	assert.ErrorIs(t, err, service.ErrValidation)

	task := f.task(t, a, wf, "Write brief")
	require.NoError(t, f.svc.AssignMember(f.ctx, a.ID, task.ID, b.ID))
	require.NoError(t, f.svc.AddWorkflowMember(f.ctx, a.ID, wf.ID, b.ID))

	require.NoError(t, f.svc.RemoveMember(f.ctx, a.ID, ws.ID, b.ID))

	assignees, err := f.svc.ListAssignees(f.ctx, a.ID, task.ID)
	require.NoError(t, err)
	assert.Empty(t, assignees)
	wfMembers, err := f.svc.ListWorkflowMembers(f.ctx, a.ID, wf.ID)
	require.NoError(t, err)
	require.Len(t, wfMembers, 1)
	assert.Equal(t, a.ID, wfMembers[0].ID)

	_, err = f.svc.GetWorkspace(f.ctx, b.ID, ws.ID)
	assert.ErrorIs(t, err, service.ErrAccessDenied)
	err = f.svc.RemoveMember(f.ctx, a.ID, ws.ID, b.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestWorkflowMember_MustBelongToWorkspace(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	b := f.register(t, "bob")
	ws, wf := f.board(t, a)

	err := f.svc.AddWorkflowMember(f.ctx, a.ID, wf.ID, b.ID)
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	// the creator is linked when the workflow is created
	members, err := f.svc.ListWorkflowMembers(f.ctx, a.ID, wf.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, a.ID, members[0].ID)
	err = f.svc.AddWorkflowMember(f.ctx, a.ID, wf.ID, a.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = f.svc.AddMember(f.ctx, a.ID, ws.ID, service.AddMemberInput{MemberID: b.ID})
	require.NoError(t, err)
	require.NoError(t, f.svc.AddWorkflowMember(f.ctx, a.ID, wf.ID, b.ID))
	members, err = f.svc.ListWorkflowMembers(f.ctx, a.ID, wf.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, f.svc.RemoveWorkflowMember(f.ctx, a.ID, wf.ID, b.ID))
	err = f.svc.RemoveWorkflowMember(f.ctx, a.ID, wf.ID, b.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteWorkspace(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	b := f.register(t, "bob")
	ws, wf := f.board(t, a)
	task := f.task(t, a, wf, "Write brief")
	att, err := f.svc.UploadAttachment(f.ctx, a.ID, task.ID, "plan.txt", []byte("plan"), false)
	require.NoError(t, err)
	_, err = f.svc.AddMember(f.ctx, a.ID, ws.ID, service.AddMemberInput{MemberID: b.ID, Role: model.RoleAdmin})
	require.NoError(t, err)

	_, err = f.svc.DeleteWorkspace(f.ctx, b.ID, ws.ID)
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	res, err := f.svc.DeleteWorkspace(f.ctx, a.ID, ws.ID)
	require.NoError(t, err)
	assert.False(t, res.PartialSuccess())

	_, err = f.svc.GetWorkspace(f.ctx, a.ID, ws.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.store.Workflows.GetByID(f.ctx, wf.ID)
	assert.Error(t, err)
	_, err = f.store.Attachments.GetByID(f.ctx, att.ID)
	assert.Error(t, err)
	ok, err := f.svc.IsMember(f.ctx, ws.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// an owner with no workspaces left may delete their account
	_, err = f.svc.DeleteMember(f.ctx, a.ID, a.ID)
	require.NoError(t, err)
}

func TestWorkflow_TemplateLockedOnceTasksExist(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	_, wf := f.board(t, a)

	templates, err := f.svc.ListTemplates(f.ctx, "Software")
	require.NoError(t, err)
	dev := templates[0].ID

	moved, err := f.svc.UpdateWorkflow(f.ctx, a.ID, wf.ID, service.WorkflowPatch{StatusTemplateID: &dev})
	require.NoError(t, err)
	assert.Equal(t, dev, moved.StatusTemplateID)

	f.task(t, a, wf, "Write brief")
	general, err := f.svc.ListTemplates(f.ctx, "General")
	require.NoError(t, err)
	_, err = f.svc.UpdateWorkflow(f.ctx, a.ID, wf.ID, service.WorkflowPatch{StatusTemplateID: &general[0].ID})
	assert.ErrorIs(t, err, service.ErrConflict)
}
