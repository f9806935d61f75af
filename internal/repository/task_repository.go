package repository

import (
	"context"

	"workspaceflow/internal/model"

	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return translate(r.db.WithContext(ctx).Create(task).Error)
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// GetForUpdate loads and row-locks a task for the rest of the transaction.
func (r *TaskRepository) GetForUpdate(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := forUpdate(r.db.WithContext(ctx)).First(&task, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// ListByWorkflow returns a workflow's tasks, optionally narrowed to one column.
func (r *TaskRepository) ListByWorkflow(ctx context.Context, workflowID uint, columnID *uint) ([]model.Task, error) {
	var tasks []model.Task
	q := r.db.WithContext(ctx).Where("workflow_id = ?", workflowID)
	if columnID != nil {
		q = q.Where("column_id = ?", *columnID)
	}
	err := q.Order("id").Find(&tasks).Error
	return tasks, translate(err)
}

// ListAssignedTo returns tasks the member is assigned to.
func (r *TaskRepository) ListAssignedTo(ctx context.Context, memberID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
		Where("task_assignees.member_id = ?", memberID).
		Order("tasks.id").
		Find(&tasks).Error
	return tasks, translate(err)
}

func (r *TaskRepository) IDsByWorkflow(ctx context.Context, workflowID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("workflow_id = ?", workflowID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, translate(err)
}

func (r *TaskRepository) CountByColumn(ctx context.Context, columnID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).Where("column_id = ?", columnID).Count(&count).Error
	return count, translate(err)
}

func (r *TaskRepository) CountByWorkflow(ctx context.Context, workflowID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).Where("workflow_id = ?", workflowID).Count(&count).Error
	return count, translate(err)
}

// WorkspaceID resolves the workspace that owns a task through its workflow.
func (r *TaskRepository) WorkspaceID(ctx context.Context, taskID uint) (uint, error) {
	var row struct {
		WorkspaceID uint
	}
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("workflows.workspace_id").
		Joins("JOIN workflows ON workflows.id = tasks.workflow_id").
		Where("tasks.id = ?", taskID).
		Scan(&row)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return row.WorkspaceID, nil
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	return translate(r.db.WithContext(ctx).Save(task).Error)
}

// Assignees

func (r *TaskRepository) AddAssignee(ctx context.Context, link *model.TaskAssignee) error {
	return translate(r.db.WithContext(ctx).Create(link).Error)
}

func (r *TaskRepository) IsAssigned(ctx context.Context, taskID, memberID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TaskAssignee{}).
		Where("task_id = ? AND member_id = ?", taskID, memberID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *TaskRepository) RemoveAssignee(ctx context.Context, taskID, memberID uint) error {
	res := r.db.WithContext(ctx).
		Where("task_id = ? AND member_id = ?", taskID, memberID).
		Delete(&model.TaskAssignee{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteChildren removes subtasks, chat messages, attachment rows and
// assignee links of the given tasks. Attachment blobs are left to the caller.
func (r *TaskRepository) DeleteChildren(ctx context.Context, taskIDs []uint) error {
	if len(taskIDs) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	for _, child := range []any{&model.Subtask{}, &model.ChatMessage{}, &model.Attachment{}, &model.TaskAssignee{}} {
		if err := db.Where("task_id IN ?", taskIDs).Delete(child).Error; err != nil {
			return translate(err)
		}
	}
	return nil
}

// DeleteByIDs removes task rows in bulk.
func (r *TaskRepository) DeleteByIDs(ctx context.Context, taskIDs []uint) error {
	if len(taskIDs) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Where("id IN ?", taskIDs).Delete(&model.Task{}).Error)
}
