package repository

import (
	"context"

	"workspaceflow/internal/model"

	"gorm.io/gorm"
)

// ActivityRepository is append-only: there is no update or delete.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

// List returns entries matching the filter, oldest first. The caller is
// responsible for bounding filter.Limit.
func (r *ActivityRepository) List(ctx context.Context, filter model.ActivityFilter) ([]model.ActivityLog, error) {
	db := r.db.WithContext(ctx)
	q := db.Model(&model.ActivityLog{})
	if filter.WorkspaceID != nil {
		q = q.Where("workspace_id = ?", *filter.WorkspaceID)
	}
	if filter.MemberID != nil {
		q = q.Where("member_id = ?", *filter.MemberID)
	}
	if filter.TaskID != nil {
		q = q.Where("task_id = ?", *filter.TaskID)
	}
	if filter.VisibleTo != nil {
		workspaces := db.Model(&model.WorkspaceMember{}).
			Select("workspace_id").
			Where("member_id = ?", *filter.VisibleTo)
		q = q.Where("(workspace_id IN (?) OR member_id = ?)", workspaces, *filter.VisibleTo)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var entries []model.ActivityLog
	err := q.Order("created_at, id").Find(&entries).Error
	return entries, translate(err)
}
