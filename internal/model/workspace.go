package model

import "time"

type Workspace struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	CreatedBy *uint     `gorm:"index" json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role is the level a member holds inside a workspace.
type Role string

const (
	RoleOwner  Role = "owner"  // creator, cannot be removed
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// WorkspaceMember links a member to a workspace.
type WorkspaceMember struct {
	WorkspaceID uint      `gorm:"primaryKey;autoIncrement:false" json:"workspace_id"`
	MemberID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"member_id"`
	Role        Role      `gorm:"size:20;not null" json:"role"`
	JoinedAt    time.Time `gorm:"not null" json:"joined_at"`
}

func (WorkspaceMember) TableName() string {
	return "workspace_members"
}

// WorkspaceMemberView is a workspace link joined with the member profile.
type WorkspaceMemberView struct {
	MemberID    uint      `json:"member_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	AvatarColor string    `json:"avatar_color"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}
