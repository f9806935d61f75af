package handler

import (
	"context"
	"net/http"

	"workspaceflow/internal/model"
	"workspaceflow/internal/service"

	"github.com/gin-gonic/gin"
)

type ActivityService interface {
	ListActivities(ctx context.Context, actor uint, q service.ActivityQuery) ([]model.ActivityLog, error)
	RecordActivity(ctx context.Context, actor uint, in service.ActivityInput) (*model.ActivityLog, error)
}

type ActivityHandler struct {
	svc ActivityService
}

func NewActivityHandler(svc ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// @Summary      Read the activity log, oldest first
// @Description  At most 100 entries are returned whatever limit is asked for.
// @Tags         Activity
// @Produce      json
// @Security     BearerAuth
// @Param        workspace_id query int false "Workspace filter"
// @Param        member_id query int false "Member filter"
// @Param        task_id query int false "Task filter"
// @Param        limit query int false "Maximum entries (default 50, capped at 100)"
// @Success      200 {array} model.ActivityLog
// @Router       /activities [get]
func (h *ActivityHandler) GetAll(c *gin.Context) {
	actor, ok := currentMemberID(c)
	if !ok {
		return
	}
	var q service.ActivityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	entries, err := h.svc.ListActivities(c.Request.Context(), actor, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// @Summary      Append a custom activity entry
// @Tags         Activity
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body service.ActivityInput true "Entry"
// @Success      201 {object} model.ActivityLog
// @Router       /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	actor, ok := currentMemberID(c)
	if !ok {
		return
	}
	var req service.ActivityInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.svc.RecordActivity(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}
