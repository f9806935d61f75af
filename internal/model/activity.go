package model

import "time"

// ActivityLog is an append-only record. Its entity, member, workspace and task
// ids are weak references and may outlive what they point at.
type ActivityLog struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Action      Action     `gorm:"size:100;not null;index" json:"action"`
	EntityType  EntityType `gorm:"size:50;not null;index" json:"entity_type"`
	EntityID    uint       `gorm:"not null;index" json:"entity_id"`
	Description string     `gorm:"size:1000" json:"description"`
	MemberID    *uint      `gorm:"index" json:"member_id,omitempty"`
	WorkspaceID *uint      `gorm:"index" json:"workspace_id,omitempty"`
	TaskID      *uint      `gorm:"index" json:"task_id,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
}

type Action string

const (
	ActionCreated    Action = "created"
	ActionUpdated    Action = "updated"
	ActionDeleted    Action = "deleted"
	ActionMoved      Action = "moved"
	ActionAssigned   Action = "assigned"
	ActionUnassigned Action = "unassigned"
	ActionJoined     Action = "joined"
	ActionRemoved    Action = "removed"
	ActionTimerStart Action = "timer_started"
	ActionTimerStop  Action = "timer_stopped"
	ActionCompleted  Action = "completed"
	ActionCommented  Action = "commented"
	ActionUploaded   Action = "uploaded"
)

func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeleted, ActionMoved, ActionAssigned,
		ActionUnassigned, ActionJoined, ActionRemoved, ActionTimerStart, ActionTimerStop,
		ActionCompleted, ActionCommented, ActionUploaded:
		return true
	}
	return false
}

type EntityType string

const (
	EntityMember     EntityType = "member"
	EntityWorkspace  EntityType = "workspace"
	EntityWorkflow   EntityType = "workflow"
	EntityTask       EntityType = "task"
	EntitySubtask    EntityType = "subtask"
	EntityMessage    EntityType = "chat_message"
	EntityAttachment EntityType = "attachment"
	EntityTemplate   EntityType = "status_template"
	EntityColumn     EntityType = "status_column"
)

func (e EntityType) Valid() bool {
	switch e {
	case EntityMember, EntityWorkspace, EntityWorkflow, EntityTask, EntitySubtask,
		EntityMessage, EntityAttachment, EntityTemplate, EntityColumn:
		return true
	}
	return false
}

// ActivityFilter narrows an activity query. Zero values mean "any".
type ActivityFilter struct {
	WorkspaceID *uint
	MemberID    *uint
	TaskID      *uint
	// VisibleTo restricts results to the given member's workspaces and own entries.
	VisibleTo *uint
	Limit     int
}

// All lists every persisted model, in dependency order.
func All() []any {
	return []any{
		&Member{}, &Workspace{}, &WorkspaceMember{}, &StatusTemplate{}, &StatusColumn{},
		&Workflow{}, &WorkflowMember{}, &Task{}, &TaskAssignee{}, &Subtask{},
		&ChatMessage{}, &Attachment{}, &ActivityLog{},
	}
}
