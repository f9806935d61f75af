package service

import (
	"context"
	"fmt"
	"strings"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
)

type MessageInput struct {
	Content string `json:"content" binding:"required" validate:"required,max=5000"`
}

// ListMessages returns a task's chat oldest first.
func (s *Service) ListMessages(ctx context.Context, actor, taskID uint) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		if _, err := taskAccess(ctx, st, taskID, actor); err != nil {
			return err
		}
		var err error
		msgs, err = st.Messages.ListByTask(ctx, taskID)
		return err
	})
	return msgs, err
}

func (s *Service) PostMessage(ctx context.Context, actor, taskID uint, in MessageInput) (*model.ChatMessage, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.check(in); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{Content: in.Content, TaskID: taskID, AuthorID: actor}
	err := s.tx(ctx, func(tx *repository.Store) error {
		workspaceID, err := taskAccess(ctx, tx, taskID, actor)
		if err != nil {
			return err
		}
		if err := tx.Messages.Create(ctx, msg); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionCommented,
			entity:      model.EntityMessage,
			entityID:    msg.ID,
			workspaceID: workspaceID,
			taskID:      taskID,
			description: "Message posted",
		})
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// authoredMessage loads a message the actor wrote and may still see.
func authoredMessage(ctx context.Context, tx *repository.Store, id, actor uint) (*model.ChatMessage, uint, error) {
	msg, err := tx.Messages.GetByID(ctx, id)
	if err != nil {
		return nil, 0, storeErr(err, ErrMessageNotFound)
	}
	workspaceID, err := taskAccess(ctx, tx, msg.TaskID, actor)
	if err != nil {
		return nil, 0, err
	}
	if msg.AuthorID != actor {
		return nil, 0, fmt.Errorf("%w: only the author may change a message", ErrAccessDenied)
	}
	return msg, workspaceID, nil
}

func (s *Service) UpdateMessage(ctx context.Context, actor, id uint, in MessageInput) (*model.ChatMessage, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.check(in); err != nil {
		return nil, err
	}

	var msg *model.ChatMessage
	err := s.tx(ctx, func(tx *repository.Store) error {
		var (
			workspaceID uint
			err         error
		)
		msg, workspaceID, err = authoredMessage(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		msg.Content = in.Content
		if err := tx.Messages.Update(ctx, msg); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUpdated,
			entity:      model.EntityMessage,
			entityID:    msg.ID,
			workspaceID: workspaceID,
			taskID:      msg.TaskID,
			description: "Message edited",
		})
	})
	return msg, err
}

func (s *Service) DeleteMessage(ctx context.Context, actor, id uint) error {
	return s.tx(ctx, func(tx *repository.Store) error {
		msg, workspaceID, err := authoredMessage(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		if err := tx.Messages.Delete(ctx, msg.ID); err != nil {
			return storeErr(err, ErrMessageNotFound)
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionDeleted,
			entity:      model.EntityMessage,
			entityID:    msg.ID,
			workspaceID: workspaceID,
			taskID:      msg.TaskID,
			description: "Message deleted",
		})
	})
}
