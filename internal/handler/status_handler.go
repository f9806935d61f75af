package handler

import (
	"context"
	"net/http"

	"workspaceflow/internal/model"
	"workspaceflow/internal/service"

	"github.com/gin-gonic/gin"
)

type StatusService interface {
	ListTemplates(ctx context.Context, category string) ([]model.StatusTemplate, error)
	GetTemplate(ctx context.Context, id uint) (*model.StatusTemplate, error)
	CreateTemplate(ctx context.Context, actor uint, in service.TemplateInput) (*model.StatusTemplate, error)
	UpdateTemplate(ctx context.Context, actor, id uint, in service.TemplatePatch) (*model.StatusTemplate, error)
	DeleteTemplate(ctx context.Context, actor, id uint) error

	ListColumns(ctx context.Context, templateID uint) ([]model.StatusColumn, error)
	CreateColumn(ctx context.Context, actor, templateID uint, in service.ColumnInput) (*model.StatusColumn, error)
	UpdateColumn(ctx context.Context, actor, columnID uint, in service.ColumnPatch) (*model.StatusColumn, error)
	ReorderColumns(ctx context.Context, actor, templateID uint, order []service.ColumnPosition) ([]model.StatusColumn, error)
	DeleteColumn(ctx context.Context, actor, columnID uint) error
}

type StatusHandler struct {
	svc StatusService
}

func NewStatusHandler(svc StatusService) *StatusHandler {
	return &StatusHandler{svc: svc}
}

type ReorderRequest struct {
	Columns []service.ColumnPosition `json:"columns" binding:"required,min=1,dive"`
}

// @Summary      List status templates
// @Tags         Status templates
// @Produce      json
// @Security     BearerAuth
// @Param        category query string false "Category filter"
// @Success      200 {array} model.StatusTemplate
// @Router       /templates [get]
func (h *StatusHandler) GetTemplates(c *gin.Context) {
	list, err := h.svc.ListTemplates(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Get a status template with its columns
// @Tags         Status templates
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Template ID"
// @Success      200 {object} model.StatusTemplate
// @Router       /templates/{id} [get]
func (h *StatusHandler) GetTemplate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.GetTemplate(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary      Create a status template
// @Tags         Status templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body service.TemplateInput true "Template and initial columns"
// @Success      201 {object} model.StatusTemplate
// @Router       /templates [post]
func (h *StatusHandler) CreateTemplate(c *gin.Context) {
	actor, ok := currentMemberID(c)
	if !ok {
		return
	}
	var req service.TemplateInput
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.CreateTemplate(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary      Update a status template
// @Tags         Status templates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Template ID"
// @Param        request body service.TemplatePatch true "Fields to change"
// @Success      200 {object} model.StatusTemplate
// @Failure      403 {object} ErrorResponse
// @Router       /templates/{id} [put]
func (h *StatusHandler) UpdateTemplate(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.TemplatePatch
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.UpdateTemplate(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary      Delete an unused status template
// @Tags         Status templates
// @Security     BearerAuth
// @Param        id path int true "Template ID"
// @Success      200 {object} map[string]string
// @Failure      409 {object} ErrorResponse
// @Router       /templates/{id} [delete]
func (h *StatusHandler) DeleteTemplate(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTemplate(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

// @Summary      List the columns of a template
// @Tags         Status columns
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Template ID"
// @Success      200 {array} model.StatusColumn
// @Router       /templates/{id}/columns [get]
func (h *StatusHandler) GetColumns(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	columns, err := h.svc.ListColumns(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, columns)
}

// @Summary      Add a column to a template
// @Tags         Status columns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Template ID"
// @Param        request body service.ColumnInput true "Column"
// @Success      201 {object} model.StatusColumn
// @Failure      409 {object} ErrorResponse
// @Router       /templates/{id}/columns [post]
func (h *StatusHandler) CreateColumn(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.ColumnInput
	if !bindJSON(c, &req) {
		return
	}
	column, err := h.svc.CreateColumn(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, column)
}

// @Summary      Rename or reposition a column
// @Tags         Status columns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Column ID"
// @Param        request body service.ColumnPatch true "Fields to change"
// @Success      200 {object} model.StatusColumn
// @Router       /columns/{id} [put]
func (h *StatusHandler) UpdateColumn(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.ColumnPatch
	if !bindJSON(c, &req) {
		return
	}
	column, err := h.svc.UpdateColumn(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, column)
}

// @Summary      Reorder all columns of a template
// @Tags         Status columns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Template ID"
// @Param        request body ReorderRequest true "New positions for every column"
// @Success      200 {array} model.StatusColumn
// @Router       /templates/{id}/columns/reorder [post]
func (h *StatusHandler) ReorderColumns(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req ReorderRequest
	if !bindJSON(c, &req) {
		return
	}
	columns, err := h.svc.ReorderColumns(c.Request.Context(), actor, id, req.Columns)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, columns)
}

// @Summary      Delete an empty column
// @Tags         Status columns
// @Security     BearerAuth
// @Param        id path int true "Column ID"
// @Success      200 {object} map[string]string
// @Failure      409 {object} ErrorResponse
// @Router       /columns/{id} [delete]
func (h *StatusHandler) DeleteColumn(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteColumn(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Column deleted"})
}
