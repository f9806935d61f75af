package repository

import (
	"context"

	"workspaceflow/internal/model"

	"gorm.io/gorm"
)

// ChatRepository stores task chat messages.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, msg *model.ChatMessage) error {
	return translate(r.db.WithContext(ctx).Create(msg).Error)
}

func (r *ChatRepository) GetByID(ctx context.Context, id uint) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error; err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

// ListByTask returns a task's messages oldest first.
func (r *ChatRepository) ListByTask(ctx context.Context, taskID uint) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at, id").Find(&msgs).Error
	return msgs, translate(err)
}

func (r *ChatRepository) Update(ctx context.Context, msg *model.ChatMessage) error {
	return translate(r.db.WithContext(ctx).Save(msg).Error)
}

func (r *ChatRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.ChatMessage{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearAttachment detaches messages from a deleted attachment.
func (r *ChatRepository) ClearAttachment(ctx context.Context, attachmentID uint) error {
	return translate(r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Where("attachment_id = ?", attachmentID).
		Update("attachment_id", nil).Error)
}
