package handler

import (
	"context"
	"net/http"

	"workspaceflow/internal/model"
	"workspaceflow/internal/service"

	"github.com/gin-gonic/gin"
)

type WorkspaceService interface {
	CreateWorkspace(ctx context.Context, actor uint, in service.WorkspaceInput) (*model.Workspace, error)
	GetWorkspace(ctx context.Context, actor, id uint) (*model.Workspace, error)
	ListWorkspaces(ctx context.Context, actor uint) ([]model.Workspace, error)
	UpdateWorkspace(ctx context.Context, actor, id uint, in service.WorkspaceInput) (*model.Workspace, error)
	DeleteWorkspace(ctx context.Context, actor, id uint) (service.CascadeResult, error)

	AddMember(ctx context.Context, actor, workspaceID uint, in service.AddMemberInput) (*model.WorkspaceMember, error)
	RemoveMember(ctx context.Context, actor, workspaceID, memberID uint) error
	ListWorkspaceMembers(ctx context.Context, actor, workspaceID uint) ([]model.WorkspaceMemberView, error)
}

type WorkspaceHandler struct {
	svc WorkspaceService
}

func NewWorkspaceHandler(svc WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc}
}

// @Summary      Create a workspace
// @Tags         Workspaces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body service.WorkspaceInput true "Workspace"
// @Success      201 {object} model.Workspace
// @Router       /workspaces [post]
func (h *WorkspaceHandler) Create(c *gin.Context) {
	actor, ok := currentMemberID(c)
	if !ok {
		return
	}
	var req service.WorkspaceInput
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.svc.CreateWorkspace(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

// @Summary      List the current member's workspaces
// @Tags         Workspaces
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.Workspace
// @Router       /workspaces [get]
func (h *WorkspaceHandler) GetAll(c *gin.Context) {
	actor, ok := currentMemberID(c)
	if !ok {
		return
	}
	list, err := h.svc.ListWorkspaces(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Get a workspace
// @Tags         Workspaces
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workspace ID"
// @Success      200 {object} model.Workspace
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /workspaces/{id} [get]
func (h *WorkspaceHandler) GetByID(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	ws, err := h.svc.GetWorkspace(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

// @Summary      Rename a workspace
// @Tags         Workspaces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workspace ID"
// @Param        request body service.WorkspaceInput true "Workspace"
// @Success      200 {object} model.Workspace
// @Router       /workspaces/{id} [put]
func (h *WorkspaceHandler) Update(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.WorkspaceInput
	if !bindJSON(c, &req) {
		return
	}
	ws, err := h.svc.UpdateWorkspace(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

// @Summary      Delete a workspace with all its workflows
// @Tags         Workspaces
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workspace ID"
// @Success      200 {object} DeleteResponse
// @Router       /workspaces/{id} [delete]
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	res, err := h.svc.DeleteWorkspace(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeDeleted(c, "Workspace deleted", res)
}

// @Summary      Add a member to a workspace
// @Tags         Workspaces
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workspace ID"
// @Param        request body service.AddMemberInput true "Member and role"
// @Success      201 {object} model.WorkspaceMember
// @Failure      409 {object} ErrorResponse
// @Router       /workspaces/{id}/members [post]
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.AddMemberInput
	if !bindJSON(c, &req) {
		return
	}
	link, err := h.svc.AddMember(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// @Summary      Remove a member from a workspace
// @Tags         Workspaces
// @Security     BearerAuth
// @Param        id path int true "Workspace ID"
// @Param        member_id path int true "Member ID"
// @Success      200 {object} map[string]string
// @Router       /workspaces/{id}/members/{member_id} [delete]
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "member_id")
	if !ok {
		return
	}
	if err := h.svc.RemoveMember(c.Request.Context(), actor, id, memberID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// @Summary      List workspace members
// @Tags         Workspaces
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workspace ID"
// @Success      200 {array} model.WorkspaceMemberView
// @Router       /workspaces/{id}/members [get]
func (h *WorkspaceHandler) GetMembers(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	members, err := h.svc.ListWorkspaceMembers(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}
