package repository

import (
	"context"
	"strings"

	"workspaceflow/internal/model"

	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(ctx context.Context, member *model.Member) error {
	return translate(r.db.WithContext(ctx).Create(member).Error)
}

func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id uint) (*model.Member, error) {
	var member model.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *MemberRepository) List(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).Order("last_name, first_name, id").Find(&members).Error
	return members, translate(err)
}

// ListByTask returns the members assigned to a task.
func (r *MemberRepository) ListByTask(ctx context.Context, taskID uint) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).
		Joins("JOIN task_assignees ON task_assignees.member_id = members.id").
		Where("task_assignees.task_id = ?", taskID).
		Order("task_assignees.assigned_at, members.id").
		Find(&members).Error
	return members, translate(err)
}

// ListByWorkflow returns the members linked to a workflow.
func (r *MemberRepository) ListByWorkflow(ctx context.Context, workflowID uint) ([]model.Member, error) {
	var members []model.Member
	err := r.db.WithContext(ctx).
		Joins("JOIN workflow_members ON workflow_members.member_id = members.id").
		Where("workflow_members.workflow_id = ?", workflowID).
		Order("members.id").
		Find(&members).Error
	return members, translate(err)
}

func (r *MemberRepository) Update(ctx context.Context, member *model.Member) error {
	return translate(r.db.WithContext(ctx).Save(member).Error)
}

// Delete removes the member row, its link rows, and clears created_by
// references that point at it.
func (r *MemberRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	for _, table := range []string{"workflows", "tasks", "subtasks", "status_templates", "workspaces"} {
		if err := db.Table(table).Where("created_by = ?", id).Update("created_by", nil).Error; err != nil {
			return translate(err)
		}
	}
	for _, link := range []any{&model.WorkspaceMember{}, &model.WorkflowMember{}, &model.TaskAssignee{}} {
		if err := db.Where("member_id = ?", id).Delete(link).Error; err != nil {
			return translate(err)
		}
	}
	res := db.Delete(&model.Member{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
