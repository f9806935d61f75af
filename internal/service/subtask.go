package service

import (
	"context"
	"fmt"
	"strings"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
)

type SubtaskInput struct {
	Text string `json:"text" binding:"required" validate:"required,max=500"`
}

type SubtaskPatch struct {
	Text      *string `json:"text" validate:"omitempty,min=1,max=500"`
	Completed *bool   `json:"completed"`
}

func (s *Service) ListSubtasks(ctx context.Context, actor, taskID uint) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		if _, err := taskAccess(ctx, st, taskID, actor); err != nil {
			return err
		}
		var err error
		subtasks, err = st.Subtasks.ListByTask(ctx, taskID)
		return err
	})
	return subtasks, err
}

func (s *Service) CreateSubtask(ctx context.Context, actor, taskID uint, in SubtaskInput) (*model.Subtask, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := s.check(in); err != nil {
		return nil, err
	}

	subtask := &model.Subtask{Text: in.Text, TaskID: taskID, CreatedBy: &actor}
	err := s.tx(ctx, func(tx *repository.Store) error {
		workspaceID, err := taskAccess(ctx, tx, taskID, actor)
		if err != nil {
			return err
		}
		if err := tx.Subtasks.Create(ctx, subtask); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionCreated,
			entity:      model.EntitySubtask,
			entityID:    subtask.ID,
			workspaceID: workspaceID,
			taskID:      taskID,
			description: fmt.Sprintf("Subtask %q added", subtask.Text),
		})
	})
	if err != nil {
		return nil, err
	}
	return subtask, nil
}

// UpdateSubtask edits the text or completion flag. completed_at follows the flag.
func (s *Service) UpdateSubtask(ctx context.Context, actor, id uint, in SubtaskPatch) (*model.Subtask, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var subtask *model.Subtask
	err := s.tx(ctx, func(tx *repository.Store) error {
		var err error
		subtask, err = tx.Subtasks.GetByID(ctx, id)
		if err != nil {
			return storeErr(err, ErrSubtaskNotFound)
		}
		workspaceID, err := taskAccess(ctx, tx, subtask.TaskID, actor)
		if err != nil {
			return err
		}
		action := model.ActionUpdated
		if in.Text != nil {
			subtask.Text = strings.TrimSpace(*in.Text)
		}
		if in.Completed != nil && *in.Completed != subtask.Completed {
			subtask.Completed = *in.Completed
			if subtask.Completed {
				now := s.now()
				subtask.CompletedAt = &now
				action = model.ActionCompleted
			} else {
				subtask.CompletedAt = nil
			}
		}
		if err := tx.Subtasks.Update(ctx, subtask); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      action,
			entity:      model.EntitySubtask,
			entityID:    subtask.ID,
			workspaceID: workspaceID,
			taskID:      subtask.TaskID,
			description: fmt.Sprintf("Subtask %q %s", subtask.Text, action),
		})
	})
	return subtask, err
}

func (s *Service) DeleteSubtask(ctx context.Context, actor, id uint) error {
	return s.tx(ctx, func(tx *repository.Store) error {
		subtask, err := tx.Subtasks.GetByID(ctx, id)
		if err != nil {
			return storeErr(err, ErrSubtaskNotFound)
		}
		workspaceID, err := taskAccess(ctx, tx, subtask.TaskID, actor)
		if err != nil {
			return err
		}
		if err := tx.Subtasks.Delete(ctx, id); err != nil {
			return storeErr(err, ErrSubtaskNotFound)
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionDeleted,
			entity:      model.EntitySubtask,
			entityID:    id,
			workspaceID: workspaceID,
			taskID:      subtask.TaskID,
			description: fmt.Sprintf("Subtask %q deleted", subtask.Text),
		})
	})
}
