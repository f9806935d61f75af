package model

import "time"

type Workflow struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"size:255;not null;index" json:"name"`
	WorkspaceID        uint       `gorm:"not null;index" json:"workspace_id"`
	StatusTemplateID   uint       `gorm:"not null;index" json:"status_template_id"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	ProgressPercentage float64    `gorm:"not null;default:0" json:"progress_percentage"`
	CreatedBy          *uint      `gorm:"index" json:"created_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type WorkflowMember struct {
	WorkflowID uint      `gorm:"primaryKey;autoIncrement:false" json:"workflow_id"`
	MemberID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"member_id"`
	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`
}

func (WorkflowMember) TableName() string {
	return "workflow_members"
}
