package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"

	"gorm.io/datatypes"
)

type TemplateInput struct {
	Name          string   `json:"name" binding:"required" validate:"required,max=255"`
	Category      string   `json:"category" validate:"max=100"`
	Description   string   `json:"description" validate:"max=1000"`
	SpecialStates []string `json:"special_states" validate:"dive,required,max=100"`
	// Columns are created in order at positions 1..n.
	Columns []string `json:"columns" validate:"unique,dive,required,max=255"`
}

type TemplatePatch struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Category      *string  `json:"category" validate:"omitempty,max=100"`
	Description   *string  `json:"description" validate:"omitempty,max=1000"`
	SpecialStates []string `json:"special_states" validate:"omitempty,dive,required,max=100"`
}

type ColumnInput struct {
	Name string `json:"name" binding:"required" validate:"required,max=255"`
	// Position 0 appends after the last column.
	Position int `json:"position" validate:"gte=0"`
}

type ColumnPatch struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Position *int    `json:"position" validate:"omitempty,gte=1"`
}

type ColumnPosition struct {
	ColumnID uint `json:"column_id" validate:"required"`
	Position int  `json:"position" validate:"gte=1"`
}

type defaultTemplate struct {
	name, category, description string
	specialStates               []string
	isDefault                   bool
	columns                     []string
}

var defaultTemplates = []defaultTemplate{
	{
		name:          "Default Business",
		category:      "General",
		description:   "General purpose workflow for business tasks",
		specialStates: []string{"completed", "cancelled"},
		isDefault:     true,
		columns:       []string{"Not Started", "In Progress", "Under Review", "Completed", "On Hold"},
	},
	{
		name:          "Development",
		category:      "Software",
		description:   "Software development lifecycle",
		specialStates: []string{"deployed", "cancelled"},
		columns:       []string{"Backlog", "In Development", "Code Review", "Testing", "Deployed"},
	},
	{
		name:          "Marketing",
		category:      "Marketing",
		description:   "Content and campaign production",
		specialStates: []string{"published", "cancelled"},
		columns:       []string{"Ideation", "Creation", "Review", "Approval", "Published"},
	},
}

// EnsureDefaultTemplates seeds the system templates that are missing. Running it again is a no-op.
func (s *Service) EnsureDefaultTemplates(ctx context.Context) error {
	created := 0
	err := s.tx(ctx, func(tx *repository.Store) error {
		for _, d := range defaultTemplates {
			_, err := tx.Statuses.FindTemplateByName(ctx, d.name)
			if err == nil {
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			states, err := specialStates(d.specialStates)
			if err != nil {
				return err
			}
			t := &model.StatusTemplate{
				Name:          d.name,
				Category:      d.category,
				Description:   d.description,
				SpecialStates: states,
				IsDefault:     d.isDefault,
				IsSystem:      true,
			}
			if err := tx.Statuses.CreateTemplate(ctx, t); err != nil {
				return err
			}
			for i, name := range d.columns {
				if err := tx.Statuses.CreateColumn(ctx, &model.StatusColumn{TemplateID: t.ID, Name: name, Position: i + 1}); err != nil {
					return err
				}
			}
			created++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if created > 0 {
		s.log.Info("seeded default status templates", "count", created)
	}
	return nil
}

func specialStates(states []string) (datatypes.JSON, error) {
	if states == nil {
		states = []string{}
	}
	raw, err := json.Marshal(states)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// ListTemplates returns templates with their columns, optionally narrowed to a category.
func (s *Service) ListTemplates(ctx context.Context, category string) ([]model.StatusTemplate, error) {
	var templates []model.StatusTemplate
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		var err error
		templates, err = st.Statuses.ListTemplates(ctx, category)
		if err != nil {
			return err
		}
		ids := make([]uint, len(templates))
		for i, t := range templates {
			ids[i] = t.ID
		}
		columns, err := st.Statuses.ListColumnsByTemplates(ctx, ids)
		if err != nil {
			return err
		}
		for i := range templates {
			templates[i].Columns = columns[templates[i].ID]
		}
		return nil
	})
	return templates, err
}

func (s *Service) GetTemplate(ctx context.Context, id uint) (*model.StatusTemplate, error) {
	var t *model.StatusTemplate
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		var err error
		t, err = st.Statuses.GetTemplate(ctx, id)
		if err != nil {
			return storeErr(err, ErrTemplateNotFound)
		}
		t.Columns, err = st.Statuses.ListColumns(ctx, id)
		return err
	})
	return t, err
}

func (s *Service) CreateTemplate(ctx context.Context, actor uint, in TemplateInput) (*model.StatusTemplate, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}
	states, err := specialStates(in.SpecialStates)
	if err != nil {
		return nil, invalid("special_states: %v", err)
	}

	t := &model.StatusTemplate{
		Name:          in.Name,
		Category:      in.Category,
		Description:   in.Description,
		SpecialStates: states,
		CreatedBy:     &actor,
	}
	err = s.tx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Statuses.FindTemplateByName(ctx, in.Name); err == nil {
			return fmt.Errorf("%w: template %q already exists", ErrConflict, in.Name)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := tx.Statuses.CreateTemplate(ctx, t); err != nil {
			return err
		}
		for i, name := range in.Columns {
			c := model.StatusColumn{TemplateID: t.ID, Name: strings.TrimSpace(name), Position: i + 1}
			if err := tx.Statuses.CreateColumn(ctx, &c); err != nil {
				return err
			}
			t.Columns = append(t.Columns, c)
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionCreated,
			entity:      model.EntityTemplate,
			entityID:    t.ID,
			description: fmt.Sprintf("Status template %q created", t.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// editableTemplate locks a template and checks the actor may change it.
func editableTemplate(ctx context.Context, tx *repository.Store, id, actor uint) (*model.StatusTemplate, error) {
	t, err := tx.Statuses.GetTemplateForUpdate(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrTemplateNotFound)
	}
	if t.IsSystem {
		return nil, ErrSystemTemplate
	}
	if t.CreatedBy == nil || *t.CreatedBy != actor {
		return nil, fmt.Errorf("%w: only the creator may modify this template", ErrAccessDenied)
	}
	return t, nil
}

func (s *Service) UpdateTemplate(ctx context.Context, actor, id uint, in TemplatePatch) (*model.StatusTemplate, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var t *model.StatusTemplate
	err := s.tx(ctx, func(tx *repository.Store) error {
		var err error
		t, err = editableTemplate(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name != t.Name {
				if _, err := tx.Statuses.FindTemplateByName(ctx, name); err == nil {
					return fmt.Errorf("%w: template %q already exists", ErrConflict, name)
				} else if !errors.Is(err, repository.ErrNotFound) {
					return err
				}
			}
			t.Name = name
		}
		if in.Category != nil {
			t.Category = *in.Category
		}
		if in.Description != nil {
			t.Description = *in.Description
		}
		if in.SpecialStates != nil {
			if t.SpecialStates, err = specialStates(in.SpecialStates); err != nil {
				return invalid("special_states: %v", err)
			}
		}
		if err := tx.Statuses.UpdateTemplate(ctx, t); err != nil {
			return err
		}
		if t.Columns, err = tx.Statuses.ListColumns(ctx, t.ID); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUpdated,
			entity:      model.EntityTemplate,
			entityID:    t.ID,
			description: fmt.Sprintf("Status template %q updated", t.Name),
		})
	})
	return t, err
}

// DeleteTemplate removes an unused template and its columns.
func (s *Service) DeleteTemplate(ctx context.Context, actor, id uint) error {
	return s.tx(ctx, func(tx *repository.Store) error {
		t, err := editableTemplate(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		used, err := tx.Workflows.CountByTemplate(ctx, t.ID)
		if err != nil {
			return err
		}
		if used > 0 {
			return ErrTemplateInUse
		}
		if err := tx.Statuses.DeleteTemplate(ctx, t.ID); err != nil {
			return storeErr(err, ErrTemplateNotFound)
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionDeleted,
			entity:      model.EntityTemplate,
			entityID:    t.ID,
			description: fmt.Sprintf("Status template %q deleted", t.Name),
		})
	})
}

// Columns

func (s *Service) ListColumns(ctx context.Context, templateID uint) ([]model.StatusColumn, error) {
	var columns []model.StatusColumn
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		if _, err := st.Statuses.GetTemplate(ctx, templateID); err != nil {
			return storeErr(err, ErrTemplateNotFound)
		}
		var err error
		columns, err = st.Statuses.ListColumns(ctx, templateID)
		return err
	})
	return columns, err
}

// columnClash reports a conflict if another column of the template already
// uses name or position.
func columnClash(columns []model.StatusColumn, skipID uint, name string, position int) error {
	for _, c := range columns {
		if c.ID == skipID {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return fmt.Errorf("%w: column %q already exists", ErrConflict, name)
		}
		if c.Position == position {
			return fmt.Errorf("%w: position %d is taken by %q", ErrConflict, position, c.Name)
		}
	}
	return nil
}

// CreateColumn adds a column at an explicit position. Existing columns are
// never renumbered; a taken position is a conflict.
func (s *Service) CreateColumn(ctx context.Context, actor, templateID uint, in ColumnInput) (*model.StatusColumn, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}

	column := &model.StatusColumn{TemplateID: templateID, Name: in.Name, Position: in.Position}
	err := s.tx(ctx, func(tx *repository.Store) error {
		if _, err := editableTemplate(ctx, tx, templateID, actor); err != nil {
			return err
		}
		if column.Position == 0 {
			last, err := tx.Statuses.GetMaxPosition(ctx, templateID)
			if err != nil {
				return err
			}
			column.Position = last + 1
		}
		existing, err := tx.Statuses.ListColumns(ctx, templateID)
		if err != nil {
			return err
		}
		if err := columnClash(existing, 0, column.Name, column.Position); err != nil {
			return err
		}
		if err := tx.Statuses.CreateColumn(ctx, column); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionCreated,
			entity:      model.EntityColumn,
			entityID:    column.ID,
			description: fmt.Sprintf("Column %q added at position %d", column.Name, column.Position),
		})
	})
	if err != nil {
		return nil, err
	}
	return column, nil
}

func (s *Service) UpdateColumn(ctx context.Context, actor, columnID uint, in ColumnPatch) (*model.StatusColumn, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var column *model.StatusColumn
	err := s.tx(ctx, func(tx *repository.Store) error {
		var err error
		column, err = tx.Statuses.GetColumn(ctx, columnID)
		if err != nil {
			return storeErr(err, ErrColumnNotFound)
		}
		if _, err := editableTemplate(ctx, tx, column.TemplateID, actor); err != nil {
			return err
		}
		if in.Name != nil {
			column.Name = strings.TrimSpace(*in.Name)
		}
		if in.Position != nil {
			column.Position = *in.Position
		}
		existing, err := tx.Statuses.ListColumns(ctx, column.TemplateID)
		if err != nil {
			return err
		}
		if err := columnClash(existing, column.ID, column.Name, column.Position); err != nil {
			return err
		}
		if err := tx.Statuses.UpdateColumn(ctx, column); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUpdated,
			entity:      model.EntityColumn,
			entityID:    column.ID,
			description: fmt.Sprintf("Column %q updated", column.Name),
		})
	})
	return column, err
}

// ReorderColumns applies a complete new ordering of a template's columns atomically.
func (s *Service) ReorderColumns(ctx context.Context, actor, templateID uint, order []ColumnPosition) ([]model.StatusColumn, error) {
	for _, o := range order {
		if err := s.check(o); err != nil {
			return nil, err
		}
	}

	var columns []model.StatusColumn
	err := s.tx(ctx, func(tx *repository.Store) error {
		if _, err := editableTemplate(ctx, tx, templateID, actor); err != nil {
			return err
		}
		existing, err := tx.Statuses.ListColumns(ctx, templateID)
		if err != nil {
			return err
		}
		if len(order) != len(existing) {
			return invalid("reorder must list all %d columns", len(existing))
		}
		known := make(map[uint]bool, len(existing))
		for _, c := range existing {
			known[c.ID] = true
		}
		seenID := make(map[uint]bool, len(order))
		seenPos := make(map[int]bool, len(order))
		updates := make([]model.StatusColumn, 0, len(order))
		for _, o := range order {
			if !known[o.ColumnID] {
				return invalid("column %d does not belong to template %d", o.ColumnID, templateID)
			}
			if seenID[o.ColumnID] || seenPos[o.Position] {
				return invalid("duplicate column or position in reorder")
			}
			seenID[o.ColumnID], seenPos[o.Position] = true, true
			updates = append(updates, model.StatusColumn{ID: o.ColumnID, TemplateID: templateID, Position: o.Position})
		}
		if err := tx.Statuses.ReorderColumns(ctx, templateID, updates); err != nil {
			return err
		}
		if columns, err = tx.Statuses.ListColumns(ctx, templateID); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUpdated,
			entity:      model.EntityTemplate,
			entityID:    templateID,
			description: "Columns reordered",
		})
	})
	return columns, err
}

// DeleteColumn removes an empty column. Columns that still hold tasks are kept.
func (s *Service) DeleteColumn(ctx context.Context, actor, columnID uint) error {
	return s.tx(ctx, func(tx *repository.Store) error {
		column, err := tx.Statuses.GetColumn(ctx, columnID)
		if err != nil {
			return storeErr(err, ErrColumnNotFound)
		}
		if _, err := editableTemplate(ctx, tx, column.TemplateID, actor); err != nil {
			return err
		}
		n, err := tx.Tasks.CountByColumn(ctx, columnID)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrColumnInUse
		}
		if err := tx.Statuses.DeleteColumn(ctx, columnID); err != nil {
			return storeErr(err, ErrColumnNotFound)
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionDeleted,
			entity:      model.EntityColumn,
			entityID:    columnID,
			description: fmt.Sprintf("Column %q deleted", column.Name),
		})
	})
}
