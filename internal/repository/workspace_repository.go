package repository

import (
	"context"

	"workspaceflow/internal/model"

	"gorm.io/gorm"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func (r *WorkspaceRepository) Create(ctx context.Context, workspace *model.Workspace) error {
	return translate(r.db.WithContext(ctx).Create(workspace).Error)
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id uint) (*model.Workspace, error) {
	var workspace model.Workspace
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&workspace).Error; err != nil {
		return nil, translate(err)
	}
	return &workspace, nil
}

// ListForMember returns the workspaces a member belongs to.
func (r *WorkspaceRepository) ListForMember(ctx context.Context, memberID uint) ([]model.Workspace, error) {
	var workspaces []model.Workspace
	err := r.db.WithContext(ctx).
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.member_id = ?", memberID).
		Order("workspaces.id").
		Find(&workspaces).Error
	return workspaces, translate(err)
}

// CountOwned counts workspaces in which the member holds the owner role.
func (r *WorkspaceRepository) CountOwned(ctx context.Context, memberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WorkspaceMember{}).
		Where("member_id = ? AND role = ?", memberID, model.RoleOwner).
		Count(&count).Error
	return count, translate(err)
}

func (r *WorkspaceRepository) Update(ctx context.Context, workspace *model.Workspace) error {
	return translate(r.db.WithContext(ctx).Save(workspace).Error)
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Workspace{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
