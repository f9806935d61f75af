package service_test

import (
	"testing"

	"workspaceflow/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDefaultTemplates_Idempotent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.EnsureDefaultTemplates(f.ctx))

	templates, err := f.svc.ListTemplates(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, templates, 3)
	for _, tpl := range templates {
		assert.True(t, tpl.IsSystem, tpl.Name)
		require.Len(t, tpl.Columns, 5, tpl.Name)
		for i, c := range tpl.Columns {
			assert.Equal(t, i+1, c.Position)
		}
	}
}

func TestSystemTemplate_ReadOnly(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	templates, err := f.svc.ListTemplates(f.ctx, "General")
	require.NoError(t, err)
	sys := templates[0]

	_, err = f.svc.UpdateTemplate(f.ctx, a.ID, sys.ID, service.TemplatePatch{Name: ptr("Mine now")})
	assert.ErrorIs(t, err, service.ErrAccessDenied)
	_, err = f.svc.CreateColumn(f.ctx, a.ID, sys.ID, service.ColumnInput{Name: "Extra"})
	assert.ErrorIs(t, err, service.ErrAccessDenied)
	assert.ErrorIs(t, f.svc.DeleteColumn(f.ctx, a.ID, sys.Columns[0].ID), service.ErrAccessDenied)
	assert.ErrorIs(t, f.svc.DeleteTemplate(f.ctx, a.ID, sys.ID), service.ErrAccessDenied)
}

func TestCustomTemplate_Columns(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	b := f.register(t, "bob")

	tpl, err := f.svc.CreateTemplate(f.ctx, a.ID, service.TemplateInput{
		Name:     "Hiring",
		Category: "People",
		Columns:  []string{"Applied", "Interview", "Offer"},
	})
	require.NoError(t, err)
	require.Len(t, tpl.Columns, 3)

	_, err = f.svc.CreateTemplate(f.ctx, a.ID, service.TemplateInput{Name: "Hiring"})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = f.svc.CreateColumn(f.ctx, b.ID, tpl.ID, service.ColumnInput{Name: "Hired"})
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	hired, err := f.svc.CreateColumn(f.ctx, a.ID, tpl.ID, service.ColumnInput{Name: "Hired"})
	require.NoError(t, err)
	assert.Equal(t, 4, hired.Position)

	_, err = f.svc.CreateColumn(f.ctx, a.ID, tpl.ID, service.ColumnInput{Name: "Rejected", Position: 2})
	assert.ErrorIs(t, err, service.ErrConflict)
	_, err = f.svc.CreateColumn(f.ctx, a.ID, tpl.ID, service.ColumnInput{Name: "offer"})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = f.svc.UpdateColumn(f.ctx, a.ID, hired.ID, service.ColumnPatch{Position: ptr(1)})
	assert.ErrorIs(t, err, service.ErrConflict)
	renamed, err := f.svc.UpdateColumn(f.ctx, a.ID, hired.ID, service.ColumnPatch{Name: ptr("Signed")})
	require.NoError(t, err)
	assert.Equal(t, "Signed", renamed.Name)
}

func TestReorderColumns(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	tpl, err := f.svc.CreateTemplate(f.ctx, a.ID, service.TemplateInput{
		Name:    "Triage",
		Columns: []string{"New", "Doing", "Done"},
	})
	require.NoError(t, err)
	c := tpl.Columns

	_, err = f.svc.ReorderColumns(f.ctx, a.ID, tpl.ID, []service.ColumnPosition{
		{ColumnID: c[0].ID, Position: 1},
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.svc.ReorderColumns(f.ctx, a.ID, tpl.ID, []service.ColumnPosition{
		{ColumnID: c[0].ID, Position: 1},
		{ColumnID: c[1].ID, Position: 1},
		{ColumnID: c[2].ID, Position: 2},
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	columns, err := f.svc.ReorderColumns(f.ctx, a.ID, tpl.ID, []service.ColumnPosition{
		{ColumnID: c[0].ID, Position: 3},
		{ColumnID: c[1].ID, Position: 1},
		{ColumnID: c[2].ID, Position: 2},
	})
	require.NoError(t, err)
	require.Len(t, columns, 3)
	assert.Equal(t, []string{"Doing", "Done", "New"}, []string{columns[0].Name, columns[1].Name, columns[2].Name})
}

func TestDeleteColumnAndTemplate_InUse(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	tpl, err := f.svc.CreateTemplate(f.ctx, a.ID, service.TemplateInput{
		Name:    "Triage",
		Columns: []string{"New", "Done"},
	})
	require.NoError(t, err)

	ws, err := f.svc.CreateWorkspace(f.ctx, a.ID, service.WorkspaceInput{Name: "Ops"})
	require.NoError(t, err)
	wf, err := f.svc.CreateWorkflow(f.ctx, a.ID, ws.ID, service.WorkflowInput{Name: "Inbox", StatusTemplateID: &tpl.ID})
	require.NoError(t, err)
	task := f.task(t, a, wf, "Printer on fire")
	assert.Equal(t, tpl.Columns[0].ID, task.ColumnID)

	assert.ErrorIs(t, f.svc.DeleteColumn(f.ctx, a.ID, tpl.Columns[0].ID), service.ErrConflict)
	assert.ErrorIs(t, f.svc.DeleteTemplate(f.ctx, a.ID, tpl.ID), service.ErrConflict)

	require.NoError(t, f.svc.DeleteColumn(f.ctx, a.ID, tpl.Columns[1].ID))
	_, err = f.svc.MoveTask(f.ctx, a.ID, task.ID, tpl.Columns[1].ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.svc.DeleteWorkflow(f.ctx, a.ID, wf.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteTemplate(f.ctx, a.ID, tpl.ID))
	_, err = f.svc.GetTemplate(f.ctx, tpl.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
