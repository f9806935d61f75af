package repository

import (
	"context"

	"workspaceflow/internal/model"

	"gorm.io/gorm"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *model.Attachment) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id uint) (*model.Attachment, error) {
	var a model.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// AttachmentRow is an attachment joined with its uploader's name.
type AttachmentRow struct {
	model.Attachment
	FirstName string
	LastName  string
}

func (r *AttachmentRepository) ListByTask(ctx context.Context, taskID uint) ([]AttachmentRow, error) {
	var rows []AttachmentRow
	err := r.db.WithContext(ctx).Model(&model.Attachment{}).
		Select("attachments.*, members.first_name, members.last_name").
		Joins("LEFT JOIN members ON members.id = attachments.uploaded_by").
		Where("attachments.task_id = ?", taskID).
		Order("attachments.uploaded_at, attachments.id").
		Scan(&rows).Error
	return rows, translate(err)
}

// PathsByTasks returns the stored blob paths of every attachment on the given tasks.
func (r *AttachmentRepository) PathsByTasks(ctx context.Context, taskIDs []uint) ([]string, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var paths []string
	err := r.db.WithContext(ctx).Model(&model.Attachment{}).
		Where("task_id IN ?", taskIDs).
		Order("id").
		Pluck("file_path", &paths).Error
	return paths, translate(err)
}

func (r *AttachmentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Attachment{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
