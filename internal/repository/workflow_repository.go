package repository

import (
	"context"

	"workspaceflow/internal/model"

	"gorm.io/gorm"
)

type WorkflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (r *WorkflowRepository) Create(ctx context.Context, workflow *model.Workflow) error {
	return translate(r.db.WithContext(ctx).Create(workflow).Error)
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id uint) (*model.Workflow, error) {
	var workflow model.Workflow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&workflow).Error; err != nil {
		return nil, translate(err)
	}
	return &workflow, nil
}

// GetForUpdate loads and row-locks a workflow for the rest of the transaction.
func (r *WorkflowRepository) GetForUpdate(ctx context.Context, id uint) (*model.Workflow, error) {
	var workflow model.Workflow
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&workflow).Error; err != nil {
		return nil, translate(err)
	}
	return &workflow, nil
}

func (r *WorkflowRepository) ListByWorkspace(ctx context.Context, workspaceID uint) ([]model.Workflow, error) {
	var workflows []model.Workflow
	err := r.db.WithContext(ctx).Where("workspace_id = ?", workspaceID).Order("id").Find(&workflows).Error
	return workflows, translate(err)
}

func (r *WorkflowRepository) ListIDsByWorkspace(ctx context.Context, workspaceID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Workflow{}).
		Where("workspace_id = ?", workspaceID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, translate(err)
}

func (r *WorkflowRepository) CountByTemplate(ctx context.Context, templateID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Workflow{}).
		Where("status_template_id = ?", templateID).
		Count(&count).Error
	return count, translate(err)
}

func (r *WorkflowRepository) Update(ctx context.Context, workflow *model.Workflow) error {
	return translate(r.db.WithContext(ctx).Save(workflow).Error)
}

// RefreshProgress sets a workflow's progress to the mean progress of its tasks.
func (r *WorkflowRepository) RefreshProgress(ctx context.Context, workflowID uint) (float64, error) {
	var avg struct {
		Avg float64
	}
	db := r.db.WithContext(ctx)
	err := db.Model(&model.Task{}).
		Select("COALESCE(AVG(progress_percentage), 0) AS avg").
		Where("workflow_id = ?", workflowID).
		Scan(&avg).Error
	if err != nil {
		return 0, translate(err)
	}
	err = db.Model(&model.Workflow{}).Where("id = ?", workflowID).
		Update("progress_percentage", avg.Avg).Error
	return avg.Avg, translate(err)
}

func (r *WorkflowRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Workflow{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
