package model

import "time"

type ChatMessage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Content      string    `gorm:"size:5000;not null" json:"content"`
	IsAttachment bool      `gorm:"not null;default:false" json:"is_attachment"`
	AttachmentID *uint     `json:"attachment_id,omitempty"`
	TaskID       uint      `gorm:"not null;index" json:"task_id"`
	AuthorID     uint      `gorm:"not null;index" json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Attachment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UniqueFilename   string    `gorm:"size:255;not null" json:"unique_filename"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	FileExtension    string    `gorm:"size:255" json:"file_extension"`
	FilePath         string    `gorm:"size:500;not null" json:"-"`
	FileSize         int64     `gorm:"not null" json:"file_size"`
	MimeType         string    `gorm:"size:100" json:"mime_type"`
	TaskID           uint      `gorm:"not null;index" json:"task_id"`
	UploadedBy       uint      `gorm:"not null;index" json:"uploaded_by"`
	UploadedAt       time.Time `gorm:"not null" json:"uploaded_at"`
}

// AttachmentView is the listing shape: attachment metadata plus the uploader's name.
type AttachmentView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Extension  string `json:"extension"`
	Size       string `json:"size"`
	MimeType   string `json:"mime_type"`
	MemberName string `json:"member_name"`
}
