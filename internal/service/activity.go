package service

import (
	"context"
	"errors"
	"strings"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
)

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 100
)

type ActivityQuery struct {
	WorkspaceID *uint `form:"workspace_id"`
	MemberID    *uint `form:"member_id"`
	TaskID      *uint `form:"task_id"`
	Limit       int   `form:"limit"`
}

type ActivityInput struct {
	Action      model.Action     `json:"action" binding:"required" validate:"required"`
	EntityType  model.EntityType `json:"entity_type" binding:"required" validate:"required"`
	EntityID    uint             `json:"entity_id" validate:"required"`
	Description string           `json:"description" validate:"max=1000"`
	WorkspaceID uint             `json:"workspace_id" binding:"required" validate:"required"`
	TaskID      *uint            `json:"task_id"`
}

// clampLimit applies the default and the hard cap whatever the caller asked for.
func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultActivityLimit
	case n > MaxActivityLimit:
		return MaxActivityLimit
	}
	return n
}

// ListActivities returns activity entries oldest first. Results are limited to
// the actor's workspaces and the actor's own entries.
func (s *Service) ListActivities(ctx context.Context, actor uint, q ActivityQuery) ([]model.ActivityLog, error) {
	filter := model.ActivityFilter{
		WorkspaceID: q.WorkspaceID,
		MemberID:    q.MemberID,
		TaskID:      q.TaskID,
		Limit:       clampLimit(q.Limit),
	}

	var entries []model.ActivityLog
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		scoped := false
		if q.WorkspaceID != nil {
			if err := requireMember(ctx, st, *q.WorkspaceID, actor); err != nil {
				return err
			}
			scoped = true
		}
		if q.TaskID != nil {
			// Entries may outlive their task; those stay visible through the actor's workspaces.
			_, err := taskAccess(ctx, st, *q.TaskID, actor)
			switch {
			case err == nil:
				scoped = true
			case !errors.Is(err, ErrTaskNotFound):
				return err
			}
		}
		if !scoped {
			filter.VisibleTo = &actor
		}
		var err error
		entries, err = st.Activities.List(ctx, filter)
		return err
	})
	return entries, err
}

// RecordActivity appends a client supplied entry to a workspace the actor belongs to.
func (s *Service) RecordActivity(ctx context.Context, actor uint, in ActivityInput) (*model.ActivityLog, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := s.check(in); err != nil {
		return nil, err
	}
	if !in.Action.Valid() {
		return nil, invalid("unknown action %q", in.Action)
	}
	if !in.EntityType.Valid() {
		return nil, invalid("unknown entity type %q", in.EntityType)
	}

	var rec *model.ActivityLog
	err := s.tx(ctx, func(tx *repository.Store) error {
		if err := requireMember(ctx, tx, in.WorkspaceID, actor); err != nil {
			return err
		}
		e := entry{
			action:      in.Action,
			entity:      in.EntityType,
			entityID:    in.EntityID,
			workspaceID: in.WorkspaceID,
			description: in.Description,
		}
		if in.TaskID != nil {
			workspaceID, err := taskAccess(ctx, tx, *in.TaskID, actor)
			if err != nil {
				return err
			}
			if workspaceID != in.WorkspaceID {
				return invalid("task %d is not in workspace %d", *in.TaskID, in.WorkspaceID)
			}
			e.taskID = *in.TaskID
		}
		rec = s.record(actor, e)
		return tx.Activities.Create(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
