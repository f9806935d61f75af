package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"workspaceflow/internal/database"
	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
	"workspaceflow/internal/service"
	"workspaceflow/internal/storage"

	"github.com/stretchr/testify/require"
)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	svc   *service.Service
	store *repository.Store
	blobs *storage.Local
	clock *clock
	ctx   context.Context
}

func newFixture(t *testing.T, wrap ...func(storage.Blob) storage.Blob) *fixture {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	var blob storage.Blob = blobs
	for _, w := range wrap {
		blob = w(blob)
	}

	f := &fixture{
		store: repository.NewStore(db),
		blobs: blobs,
		clock: &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		ctx:   context.Background(),
	}
	f.svc = service.New(f.store, blob, slog.New(slog.NewTextHandler(io.Discard, nil)),
		service.WithClock(f.clock.Now),
		service.WithUploadLimits(1<<20, 0),
	)
	require.NoError(t, f.svc.EnsureDefaultTemplates(f.ctx))
	return f
}

func (f *fixture) register(t *testing.T, first string) *model.Member {
	t.Helper()
	m, err := f.svc.Register(f.ctx, service.RegisterInput{
		FirstName:       first,
		LastName:        "Tester",
		Email:           fmt.Sprintf("%s@example.com", first),
		Password:        "password1",
		ConfirmPassword: "password1",
	})
	require.NoError(t, err)
	return m
}

// board builds a workspace owned by owner with one workflow on the default template.
func (f *fixture) board(t *testing.T, owner *model.Member) (*model.Workspace, *model.Workflow) {
	t.Helper()
	ws, err := f.svc.CreateWorkspace(f.ctx, owner.ID, service.WorkspaceInput{Name: "Team"})
	require.NoError(t, err)
	wf, err := f.svc.CreateWorkflow(f.ctx, owner.ID, ws.ID, service.WorkflowInput{Name: "Launch"})
	require.NoError(t, err)
	return ws, wf
}

func (f *fixture) task(t *testing.T, actor *model.Member, wf *model.Workflow, title string) *model.Task {
	t.Helper()
	task, err := f.svc.CreateTask(f.ctx, actor.ID, wf.ID, service.TaskInput{Title: title})
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T { return &v }
