package repository

import (
	"context"

	"workspaceflow/internal/model"

	"gorm.io/gorm"
)

type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *model.Subtask) error {
	return translate(r.db.WithContext(ctx).Create(subtask).Error)
}

func (r *SubtaskRepository) GetByID(ctx context.Context, id uint) (*model.Subtask, error) {
	var subtask model.Subtask
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&subtask).Error; err != nil {
		return nil, translate(err)
	}
	return &subtask, nil
}

func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID uint) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id").Find(&subtasks).Error
	return subtasks, translate(err)
}

func (r *SubtaskRepository) Update(ctx context.Context, subtask *model.Subtask) error {
	return translate(r.db.WithContext(ctx).Save(subtask).Error)
}

func (r *SubtaskRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Subtask{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
