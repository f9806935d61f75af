package service

import (
	"context"
	"fmt"
	"strings"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
)

type WorkspaceInput struct {
	Name string `json:"name" binding:"required" validate:"required,max=255"`
}

// CreateWorkspace creates a workspace with the actor as its owner.
func (s *Service) CreateWorkspace(ctx context.Context, actor uint, in WorkspaceInput) (*model.Workspace, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}

	ws := &model.Workspace{Name: in.Name, CreatedBy: &actor}
	err := s.tx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Members.GetByID(ctx, actor); err != nil {
			return storeErr(err, ErrMemberNotFound)
		}
		if err := tx.Workspaces.Create(ctx, ws); err != nil {
			return err
		}
		if err := tx.Memberships.Add(ctx, &model.WorkspaceMember{
			WorkspaceID: ws.ID,
			MemberID:    actor,
			Role:        model.RoleOwner,
			JoinedAt:    s.now(),
		}); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionCreated,
			entity:      model.EntityWorkspace,
			entityID:    ws.ID,
			workspaceID: ws.ID,
			description: fmt.Sprintf("Workspace %q created", ws.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *Service) GetWorkspace(ctx context.Context, actor, id uint) (*model.Workspace, error) {
	var ws *model.Workspace
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		var err error
		ws, err = workspaceAccess(ctx, st, id, actor)
		return err
	})
	return ws, err
}

// ListWorkspaces returns the workspaces the actor belongs to.
func (s *Service) ListWorkspaces(ctx context.Context, actor uint) ([]model.Workspace, error) {
	var list []model.Workspace
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		var err error
		list, err = st.Workspaces.ListForMember(ctx, actor)
		return err
	})
	return list, err
}

func (s *Service) UpdateWorkspace(ctx context.Context, actor, id uint, in WorkspaceInput) (*model.Workspace, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}

	var ws *model.Workspace
	err := s.tx(ctx, func(tx *repository.Store) error {
		var err error
		ws, err = workspaceAccess(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		ws.Name = in.Name
		if err := tx.Workspaces.Update(ctx, ws); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUpdated,
			entity:      model.EntityWorkspace,
			entityID:    ws.ID,
			workspaceID: ws.ID,
			description: fmt.Sprintf("Workspace renamed to %q", ws.Name),
		})
	})
	return ws, err
}

// DeleteWorkspace removes a workspace and every workflow in it. Only the owner may do this.
func (s *Service) DeleteWorkspace(ctx context.Context, actor, id uint) (CascadeResult, error) {
	var paths []string
	err := s.tx(ctx, func(tx *repository.Store) error {
		ws, err := tx.Workspaces.GetByID(ctx, id)
		if err != nil {
			return storeErr(err, ErrWorkspaceNotFound)
		}
		link, err := tx.Memberships.Get(ctx, ws.ID, actor)
		if err != nil {
			return storeErr(err, ErrNotWorkspaceMember)
		}
		if link.Role != model.RoleOwner {
			return ErrNotOwner
		}

		workflowIDs, err := tx.Workflows.ListIDsByWorkspace(ctx, ws.ID)
		if err != nil {
			return err
		}
		for _, wfID := range workflowIDs {
			blobs, err := deleteWorkflow(ctx, tx, wfID)
			if err != nil {
				return err
			}
			paths = append(paths, blobs...)
		}
		if err := tx.Memberships.DeleteByWorkspace(ctx, ws.ID); err != nil {
			return err
		}
		if err := tx.Workspaces.Delete(ctx, ws.ID); err != nil {
			return storeErr(err, ErrWorkspaceNotFound)
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionDeleted,
			entity:      model.EntityWorkspace,
			entityID:    ws.ID,
			workspaceID: ws.ID,
			description: fmt.Sprintf("Workspace %q deleted with %d workflow(s)", ws.Name, len(workflowIDs)),
		})
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return s.removeBlobs(ctx, paths), nil
}
