package repository

import (
	"context"

	"workspaceflow/internal/model"

	"gorm.io/gorm"
)

// MembershipRepository stores workspace and workflow link rows.
type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Add inserts a workspace link. A second insert for the same pair fails with ErrDuplicate.
func (r *MembershipRepository) Add(ctx context.Context, link *model.WorkspaceMember) error {
	return translate(r.db.WithContext(ctx).Create(link).Error)
}

func (r *MembershipRepository) Get(ctx context.Context, workspaceID, memberID uint) (*model.WorkspaceMember, error) {
	var link model.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND member_id = ?", workspaceID, memberID).
		First(&link).Error
	if err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r *MembershipRepository) IsMember(ctx context.Context, workspaceID, memberID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WorkspaceMember{}).
		Where("workspace_id = ? AND member_id = ?", workspaceID, memberID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *MembershipRepository) Remove(ctx context.Context, workspaceID, memberID uint) error {
	res := r.db.WithContext(ctx).
		Where("workspace_id = ? AND member_id = ?", workspaceID, memberID).
		Delete(&model.WorkspaceMember{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MembershipRepository) ListByWorkspace(ctx context.Context, workspaceID uint) ([]model.WorkspaceMemberView, error) {
	var out []model.WorkspaceMemberView
	err := r.db.WithContext(ctx).Model(&model.WorkspaceMember{}).
		Select("workspace_members.member_id, members.first_name, members.last_name, members.email, " +
			"members.avatar_color, workspace_members.role, workspace_members.joined_at").
		Joins("JOIN members ON members.id = workspace_members.member_id").
		Where("workspace_members.workspace_id = ?", workspaceID).
		Order("workspace_members.joined_at, workspace_members.member_id").
		Scan(&out).Error
	return out, translate(err)
}

func (r *MembershipRepository) DeleteByWorkspace(ctx context.Context, workspaceID uint) error {
	return translate(r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Delete(&model.WorkspaceMember{}).Error)
}

// RemoveFromWorkspaceItems drops a member's workflow links and task
// assignments inside one workspace.
func (r *MembershipRepository) RemoveFromWorkspaceItems(ctx context.Context, workspaceID, memberID uint) error {
	db := r.db.WithContext(ctx)
	workflows := db.Model(&model.Workflow{}).Select("id").Where("workspace_id = ?", workspaceID)
	if err := db.Where("member_id = ? AND workflow_id IN (?)", memberID, workflows).
		Delete(&model.WorkflowMember{}).Error; err != nil {
		return translate(err)
	}
	tasks := db.Model(&model.Task{}).Select("id").Where("workflow_id IN (?)", workflows)
	return translate(db.Where("member_id = ? AND task_id IN (?)", memberID, tasks).
		Delete(&model.TaskAssignee{}).Error)
}

// Workflow links

func (r *MembershipRepository) AddWorkflowMember(ctx context.Context, link *model.WorkflowMember) error {
	return translate(r.db.WithContext(ctx).Create(link).Error)
}

func (r *MembershipRepository) IsWorkflowMember(ctx context.Context, workflowID, memberID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WorkflowMember{}).
		Where("workflow_id = ? AND member_id = ?", workflowID, memberID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *MembershipRepository) RemoveWorkflowMember(ctx context.Context, workflowID, memberID uint) error {
	res := r.db.WithContext(ctx).
		Where("workflow_id = ? AND member_id = ?", workflowID, memberID).
		Delete(&model.WorkflowMember{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MembershipRepository) DeleteByWorkflow(ctx context.Context, workflowID uint) error {
	return translate(r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Delete(&model.WorkflowMember{}).Error)
}
