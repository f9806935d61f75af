package model

import (
	"encoding/json"
	"time"
)

type Task struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Title              string     `gorm:"size:500;not null;index" json:"title"`
	Description        string     `gorm:"size:5000" json:"description"`
	WorkflowID         uint       `gorm:"not null;index" json:"workflow_id"`
	ColumnID           uint       `gorm:"not null;index" json:"column_id"`
	ProgressPercentage float64    `gorm:"not null;default:0" json:"progress_percentage"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	EstimatedHours     *float64   `json:"estimated_hours,omitempty"`
	ActualHours        float64    `gorm:"not null;default:0" json:"actual_hours"`
	TimeSpentSeconds   int64      `gorm:"not null;default:0" json:"time_spent_seconds"`
	TimerStartTime     *time.Time `json:"timer_start_time,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CreatedBy          *uint      `gorm:"index" json:"created_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (t Task) State() TaskState {
	switch {
	case t.ProgressPercentage >= 100:
		return TaskComplete
	case t.ProgressPercentage > 0:
		return TaskInProgress
	default:
		return TaskNotStarted
	}
}

func (t Task) TimerRunning() bool {
	return t.TimerStartTime != nil
}

// MarshalJSON adds the derived state to the stored fields.
func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	return json.Marshal(struct {
		plain
		State TaskState `json:"state"`
	}{plain(t), t.State()})
}

// TaskState is derived from progress and never stored.
type TaskState int

const (
	TaskNotStarted TaskState = iota
	TaskInProgress
	TaskComplete
)

func (s TaskState) String() string {
	switch s {
	case TaskInProgress:
		return "in_progress"
	case TaskComplete:
		return "complete"
	default:
		return "not_started"
	}
}

func (s TaskState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type TaskAssignee struct {
	TaskID     uint      `gorm:"primaryKey;autoIncrement:false" json:"task_id"`
	MemberID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"member_id"`
	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`
}

func (TaskAssignee) TableName() string {
	return "task_assignees"
}

type Subtask struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Text        string     `gorm:"size:500;not null" json:"text"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	TaskID      uint       `gorm:"not null;index" json:"task_id"`
	CreatedBy   *uint      `gorm:"index" json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
