package model

import (
	"time"

	"gorm.io/datatypes"
)

// StatusTemplate is a named, ordered set of stages a workflow's tasks move through.
type StatusTemplate struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Category      string         `gorm:"size:100;index" json:"category"`
	Description   string         `gorm:"size:1000" json:"description"`
	SpecialStates datatypes.JSON `json:"special_states"`
	IsDefault     bool           `gorm:"not null;default:false" json:"is_default"`
	IsSystem      bool           `gorm:"not null;default:false" json:"is_system"`
	CreatedBy     *uint          `gorm:"index" json:"created_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Columns []StatusColumn `gorm:"-" json:"columns,omitempty"`
}

// StatusColumn is one stage of a template. Position is unique within the template.
type StatusColumn struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	TemplateID uint   `gorm:"not null;uniqueIndex:idx_status_columns_template_position;uniqueIndex:idx_status_columns_template_name" json:"template_id"`
	Name       string `gorm:"size:255;not null;uniqueIndex:idx_status_columns_template_name" json:"name"`
	Position   int    `gorm:"not null;uniqueIndex:idx_status_columns_template_position" json:"position"`
}
