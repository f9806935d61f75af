package repository

import (
	"context"

	"workspaceflow/internal/model"

	"gorm.io/gorm"
)

// StatusRepository stores status templates and their columns.
type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) CreateTemplate(ctx context.Context, template *model.StatusTemplate) error {
	return translate(r.db.WithContext(ctx).Create(template).Error)
}

func (r *StatusRepository) GetTemplate(ctx context.Context, id uint) (*model.StatusTemplate, error) {
	var template model.StatusTemplate
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&template).Error; err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

// GetTemplateForUpdate loads and row-locks a template for the rest of the transaction.
func (r *StatusRepository) GetTemplateForUpdate(ctx context.Context, id uint) (*model.StatusTemplate, error) {
	var template model.StatusTemplate
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&template).Error; err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

func (r *StatusRepository) FindTemplateByName(ctx context.Context, name string) (*model.StatusTemplate, error) {
	var template model.StatusTemplate
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&template).Error; err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

// GetDefaultTemplate returns the template flagged is_default.
func (r *StatusRepository) GetDefaultTemplate(ctx context.Context) (*model.StatusTemplate, error) {
	var template model.StatusTemplate
	err := r.db.WithContext(ctx).Where("is_default = ?", true).Order("id").First(&template).Error
	if err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

func (r *StatusRepository) ListTemplates(ctx context.Context, category string) ([]model.StatusTemplate, error) {
	var templates []model.StatusTemplate
	q := r.db.WithContext(ctx).Order("is_system DESC, name")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	return templates, translate(q.Find(&templates).Error)
}

func (r *StatusRepository) UpdateTemplate(ctx context.Context, template *model.StatusTemplate) error {
	return translate(r.db.WithContext(ctx).Save(template).Error)
}

// DeleteTemplate removes a template together with its columns.
func (r *StatusRepository) DeleteTemplate(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("template_id = ?", id).Delete(&model.StatusColumn{}).Error; err != nil {
		return translate(err)
	}
	res := db.Delete(&model.StatusTemplate{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Columns

func (r *StatusRepository) CreateColumn(ctx context.Context, column *model.StatusColumn) error {
	return translate(r.db.WithContext(ctx).Create(column).Error)
}

func (r *StatusRepository) GetColumn(ctx context.Context, id uint) (*model.StatusColumn, error) {
	var column model.StatusColumn
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&column).Error; err != nil {
		return nil, translate(err)
	}
	return &column, nil
}

func (r *StatusRepository) ListColumns(ctx context.Context, templateID uint) ([]model.StatusColumn, error) {
	var columns []model.StatusColumn
	err := r.db.WithContext(ctx).Where("template_id = ?", templateID).Order("position").Find(&columns).Error
	return columns, translate(err)
}

// ListColumnsByTemplates returns columns of several templates keyed by template id.
func (r *StatusRepository) ListColumnsByTemplates(ctx context.Context, templateIDs []uint) (map[uint][]model.StatusColumn, error) {
	out := make(map[uint][]model.StatusColumn, len(templateIDs))
	if len(templateIDs) == 0 {
		return out, nil
	}
	var columns []model.StatusColumn
	err := r.db.WithContext(ctx).
		Where("template_id IN ?", templateIDs).
		Order("template_id, position").
		Find(&columns).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, c := range columns {
		out[c.TemplateID] = append(out[c.TemplateID], c)
	}
	return out, nil
}

// FirstColumn returns the lowest-positioned column of a template.
func (r *StatusRepository) FirstColumn(ctx context.Context, templateID uint) (*model.StatusColumn, error) {
	var column model.StatusColumn
	err := r.db.WithContext(ctx).Where("template_id = ?", templateID).Order("position").First(&column).Error
	if err != nil {
		return nil, translate(err)
	}
	return &column, nil
}

func (r *StatusRepository) GetMaxPosition(ctx context.Context, templateID uint) (int, error) {
	var maxPosition struct {
		Max int
	}
	err := r.db.WithContext(ctx).Model(&model.StatusColumn{}).
		Select("COALESCE(MAX(position), 0) as max").
		Where("template_id = ?", templateID).
		Scan(&maxPosition).Error
	return maxPosition.Max, translate(err)
}

func (r *StatusRepository) UpdateColumn(ctx context.Context, column *model.StatusColumn) error {
	return translate(r.db.WithContext(ctx).Save(column).Error)
}

func (r *StatusRepository) DeleteColumn(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.StatusColumn{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderColumns writes new positions for a template's columns. Positions are
// first parked at negative values so the unique (template, position) index
// holds at every step.
func (r *StatusRepository) ReorderColumns(ctx context.Context, templateID uint, columns []model.StatusColumn) error {
	db := r.db.WithContext(ctx)
	for i, column := range columns {
		if err := db.Model(&model.StatusColumn{}).
			Where("id = ? AND template_id = ?", column.ID, templateID).
			Update("position", -(i + 1)).Error; err != nil {
			return translate(err)
		}
	}
	for _, column := range columns {
		if err := db.Model(&model.StatusColumn{}).
			Where("id = ? AND template_id = ?", column.ID, templateID).
			Update("position", column.Position).Error; err != nil {
			return translate(err)
		}
	}
	return nil
}
