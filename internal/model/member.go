package model

import "time"

const DefaultAvatarColor = "#4a6fa5"

// Member is an account that can join workspaces and be assigned to tasks.
type Member struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	FirstName      string  `gorm:"size:255;not null;index" json:"first_name"`
	LastName       string  `gorm:"size:255;not null;index" json:"last_name"`
	Email          string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PhoneNumber    *string `gorm:"size:255;uniqueIndex" json:"phone_number,omitempty"`
	AvatarColor    string  `gorm:"size:7;not null" json:"avatar_color"`
	HashedPassword string  `gorm:"size:255;not null" json:"-"`

	ProfilePicturePath     *string `gorm:"size:500" json:"-"`
	ProfilePictureSize     *int64  `json:"profile_picture_size,omitempty"`
	ProfilePictureMimeType *string `gorm:"size:100" json:"profile_picture_mime_type,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

func (m Member) HasProfilePicture() bool {
	return m.ProfilePicturePath != nil && *m.ProfilePicturePath != ""
}
