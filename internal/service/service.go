package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
	"workspaceflow/internal/storage"

	"github.com/go-playground/validator/v10"
)

const (
	defaultMaxAttachmentSize = 50 << 20
	defaultMaxPictureSize    = 5 << 20
	blobWorkers              = 4
)

// Service implements every workspace, workflow, task and identity operation.
// Each mutating call runs in a single store transaction together with its
// activity entry.
type Service struct {
	store    *repository.Store
	blobs    storage.Blob
	log      *slog.Logger
	validate *validator.Validate
	now      func() time.Time

	maxAttachmentSize int64
	maxPictureSize    int64
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithUploadLimits(attachment, picture int64) Option {
	return func(s *Service) {
		if attachment > 0 {
			s.maxAttachmentSize = attachment
		}
		if picture > 0 {
			s.maxPictureSize = picture
		}
	}
}

func New(store *repository.Store, blobs storage.Blob, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:             store,
		blobs:             blobs,
		log:               log,
		validate:          validator.New(validator.WithRequiredStructEnabled()),
		now:               time.Now,
		maxAttachmentSize: defaultMaxAttachmentSize,
		maxPictureSize:    defaultMaxPictureSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return storeErr(s.store.Ping(ctx), ErrNotFound)
}

func (s *Service) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func (s *Service) tx(ctx context.Context, fn func(tx *repository.Store) error) error {
	return storeErr(s.store.Transaction(ctx, fn), ErrNotFound)
}

// read runs fn against the store with the request deadline applied.
func (s *Service) read(ctx context.Context, fn func(ctx context.Context, st *repository.Store) error) error {
	ctx, cancel := s.store.WithDeadline(ctx)
	defer cancel()
	return storeErr(fn(ctx, s.store), ErrNotFound)
}

// entry describes one activity record written alongside a mutation.
type entry struct {
	action      model.Action
	entity      model.EntityType
	entityID    uint
	workspaceID uint
	taskID      uint
	description string
}

func (s *Service) record(actor uint, e entry) *model.ActivityLog {
	return &model.ActivityLog{
		Action:      e.action,
		EntityType:  e.entity,
		EntityID:    e.entityID,
		Description: e.description,
		MemberID:    optional(actor),
		WorkspaceID: optional(e.workspaceID),
		TaskID:      optional(e.taskID),
		CreatedAt:   s.now(),
	}
}

func (s *Service) audit(ctx context.Context, tx *repository.Store, actor uint, e entry) error {
	return storeErr(tx.Activities.Create(ctx, s.record(actor, e)), ErrNotFound)
}

func optional(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

// requireMember fails with ErrNotWorkspaceMember unless memberID belongs to the workspace.
func requireMember(ctx context.Context, st *repository.Store, workspaceID, memberID uint) error {
	ok, err := st.Memberships.IsMember(ctx, workspaceID, memberID)
	if err != nil {
		return storeErr(err, ErrWorkspaceNotFound)
	}
	if !ok {
		return ErrNotWorkspaceMember
	}
	return nil
}

// workspaceAccess loads a workspace and checks the actor belongs to it.
func workspaceAccess(ctx context.Context, st *repository.Store, workspaceID, actor uint) (*model.Workspace, error) {
	ws, err := st.Workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, storeErr(err, ErrWorkspaceNotFound)
	}
	if err := requireMember(ctx, st, ws.ID, actor); err != nil {
		return nil, err
	}
	return ws, nil
}

// workflowAccess loads a workflow and checks the actor belongs to its workspace.
func workflowAccess(ctx context.Context, st *repository.Store, workflowID, actor uint, lock bool) (*model.Workflow, error) {
	get := st.Workflows.GetByID
	if lock {
		get = st.Workflows.GetForUpdate
	}
	wf, err := get(ctx, workflowID)
	if err != nil {
		return nil, storeErr(err, ErrWorkflowNotFound)
	}
	if err := requireMember(ctx, st, wf.WorkspaceID, actor); err != nil {
		return nil, err
	}
	return wf, nil
}

// taskAccess resolves a task to its workspace in one join and checks the actor
// belongs to it. It returns the workspace id.
func taskAccess(ctx context.Context, st *repository.Store, taskID, actor uint) (uint, error) {
	workspaceID, err := st.Tasks.WorkspaceID(ctx, taskID)
	if err != nil {
		return 0, storeErr(err, ErrTaskNotFound)
	}
	if err := requireMember(ctx, st, workspaceID, actor); err != nil {
		return 0, err
	}
	return workspaceID, nil
}
