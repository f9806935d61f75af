package service

import (
	"context"
	"fmt"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
)

type AddMemberInput struct {
	MemberID uint       `json:"member_id" binding:"required" validate:"required"`
	Role     model.Role `json:"role" validate:"omitempty,oneof=admin member"`
}

// IsMember reports whether a link between the workspace and the member exists.
func (s *Service) IsMember(ctx context.Context, workspaceID, memberID uint) (bool, error) {
	var ok bool
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		var err error
		ok, err = st.Memberships.IsMember(ctx, workspaceID, memberID)
		return err
	})
	return ok, err
}

// AddMember links a member to a workspace. A second add for the same pair is a conflict.
func (s *Service) AddMember(ctx context.Context, actor, workspaceID uint, in AddMemberInput) (*model.WorkspaceMember, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = model.RoleMember
	}

	link := &model.WorkspaceMember{WorkspaceID: workspaceID, MemberID: in.MemberID, Role: in.Role}
	err := s.tx(ctx, func(tx *repository.Store) error {
		if _, err := workspaceAccess(ctx, tx, workspaceID, actor); err != nil {
			return err
		}
		target, err := tx.Members.GetByID(ctx, in.MemberID)
		if err != nil {
			return storeErr(err, ErrMemberNotFound)
		}
		exists, err := tx.Memberships.IsMember(ctx, workspaceID, in.MemberID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyMember
		}
		link.JoinedAt = s.now()
		if err := tx.Memberships.Add(ctx, link); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionJoined,
			entity:      model.EntityMember,
			entityID:    target.ID,
			workspaceID: workspaceID,
			description: fmt.Sprintf("%s joined as %s", target.FullName(), in.Role),
		})
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// RemoveMember unlinks a member from a workspace together with their workflow
// links and task assignments there. Members may remove themselves; removing
// someone else takes an owner or admin.
func (s *Service) RemoveMember(ctx context.Context, actor, workspaceID, memberID uint) error {
	return s.tx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Workspaces.GetByID(ctx, workspaceID); err != nil {
			return storeErr(err, ErrWorkspaceNotFound)
		}
		actorLink, err := tx.Memberships.Get(ctx, workspaceID, actor)
		if err != nil {
			return storeErr(err, ErrNotWorkspaceMember)
		}
		link, err := tx.Memberships.Get(ctx, workspaceID, memberID)
		if err != nil {
			return storeErr(err, ErrMembershipNotFound)
		}
		if link.Role == model.RoleOwner {
			return ErrRemoveOwner
		}
		if actor != memberID && actorLink.Role == model.RoleMember {
			return fmt.Errorf("%w: only owners and admins may remove members", ErrAccessDenied)
		}

		if err := tx.Memberships.Remove(ctx, workspaceID, memberID); err != nil {
			return storeErr(err, ErrMembershipNotFound)
		}
		if err := tx.Memberships.RemoveFromWorkspaceItems(ctx, workspaceID, memberID); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionRemoved,
			entity:      model.EntityMember,
			entityID:    memberID,
			workspaceID: workspaceID,
			description: "Member removed from workspace",
		})
	})
}

func (s *Service) ListWorkspaceMembers(ctx context.Context, actor, workspaceID uint) ([]model.WorkspaceMemberView, error) {
	var out []model.WorkspaceMemberView
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		if _, err := workspaceAccess(ctx, st, workspaceID, actor); err != nil {
			return err
		}
		var err error
		out, err = st.Memberships.ListByWorkspace(ctx, workspaceID)
		return err
	})
	return out, err
}

// AddWorkflowMember links a workspace member to one of its workflows.
func (s *Service) AddWorkflowMember(ctx context.Context, actor, workflowID, memberID uint) error {
	return s.tx(ctx, func(tx *repository.Store) error {
		wf, err := workflowAccess(ctx, tx, workflowID, actor, false)
		if err != nil {
			return err
		}
		if _, err := tx.Members.GetByID(ctx, memberID); err != nil {
			return storeErr(err, ErrMemberNotFound)
		}
		if err := requireMember(ctx, tx, wf.WorkspaceID, memberID); err != nil {
			return err
		}
		exists, err := tx.Memberships.IsWorkflowMember(ctx, workflowID, memberID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyMember
		}
		if err := tx.Memberships.AddWorkflowMember(ctx, &model.WorkflowMember{
			WorkflowID: workflowID,
			MemberID:   memberID,
			AssignedAt: s.now(),
		}); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionAssigned,
			entity:      model.EntityWorkflow,
			entityID:    workflowID,
			workspaceID: wf.WorkspaceID,
			description: fmt.Sprintf("Member %d added to workflow %q", memberID, wf.Name),
		})
	})
}

func (s *Service) RemoveWorkflowMember(ctx context.Context, actor, workflowID, memberID uint) error {
	return s.tx(ctx, func(tx *repository.Store) error {
		wf, err := workflowAccess(ctx, tx, workflowID, actor, false)
		if err != nil {
			return err
		}
		if err := tx.Memberships.RemoveWorkflowMember(ctx, workflowID, memberID); err != nil {
			return storeErr(err, ErrMembershipNotFound)
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUnassigned,
			entity:      model.EntityWorkflow,
			entityID:    workflowID,
			workspaceID: wf.WorkspaceID,
			description: fmt.Sprintf("Member %d removed from workflow %q", memberID, wf.Name),
		})
	})
}

func (s *Service) ListWorkflowMembers(ctx context.Context, actor, workflowID uint) ([]model.Member, error) {
	var out []model.Member
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		if _, err := workflowAccess(ctx, st, workflowID, actor, false); err != nil {
			return err
		}
		var err error
		out, err = st.Members.ListByWorkflow(ctx, workflowID)
		return err
	})
	return out, err
}
