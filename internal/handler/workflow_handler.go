package handler

import (
	"context"
	"net/http"

	"workspaceflow/internal/model"
	"workspaceflow/internal/service"

	"github.com/gin-gonic/gin"
)

type WorkflowService interface {
	CreateWorkflow(ctx context.Context, actor, workspaceID uint, in service.WorkflowInput) (*model.Workflow, error)
	GetWorkflow(ctx context.Context, actor, id uint) (*model.Workflow, error)
	ListWorkflows(ctx context.Context, actor, workspaceID uint) ([]model.Workflow, error)
	UpdateWorkflow(ctx context.Context, actor, id uint, in service.WorkflowPatch) (*model.Workflow, error)
	DeleteWorkflow(ctx context.Context, actor, id uint) (service.CascadeResult, error)

	AddWorkflowMember(ctx context.Context, actor, workflowID, memberID uint) error
	RemoveWorkflowMember(ctx context.Context, actor, workflowID, memberID uint) error
	ListWorkflowMembers(ctx context.Context, actor, workflowID uint) ([]model.Member, error)
}

type WorkflowHandler struct {
	svc WorkflowService
}

func NewWorkflowHandler(svc WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

type WorkflowMemberRequest struct {
	MemberID uint `json:"member_id" binding:"required"`
}

// @Summary      Create a workflow in a workspace
// @Tags         Workflows
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workspace ID"
// @Param        request body service.WorkflowInput true "Workflow"
// @Success      201 {object} model.Workflow
// @Router       /workspaces/{id}/workflows [post]
func (h *WorkflowHandler) Create(c *gin.Context) {
	actor, workspaceID, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.WorkflowInput
	if !bindJSON(c, &req) {
		return
	}
	wf, err := h.svc.CreateWorkflow(c.Request.Context(), actor, workspaceID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wf)
}

// @Summary      List the workflows of a workspace
// @Tags         Workflows
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workspace ID"
// @Success      200 {array} model.Workflow
// @Router       /workspaces/{id}/workflows [get]
func (h *WorkflowHandler) GetByWorkspace(c *gin.Context) {
	actor, workspaceID, ok := actorAndID(c)
	if !ok {
		return
	}
	list, err := h.svc.ListWorkflows(c.Request.Context(), actor, workspaceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Get a workflow
// @Tags         Workflows
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workflow ID"
// @Success      200 {object} model.Workflow
// @Router       /workflows/{id} [get]
func (h *WorkflowHandler) GetByID(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	wf, err := h.svc.GetWorkflow(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

// @Summary      Update a workflow
// @Tags         Workflows
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workflow ID"
// @Param        request body service.WorkflowPatch true "Fields to change"
// @Success      200 {object} model.Workflow
// @Failure      409 {object} ErrorResponse
// @Router       /workflows/{id} [put]
func (h *WorkflowHandler) Update(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.WorkflowPatch
	if !bindJSON(c, &req) {
		return
	}
	wf, err := h.svc.UpdateWorkflow(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

// @Summary      Delete a workflow with all its tasks
// @Tags         Workflows
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workflow ID"
// @Success      200 {object} DeleteResponse
// @Router       /workflows/{id} [delete]
func (h *WorkflowHandler) Delete(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	res, err := h.svc.DeleteWorkflow(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeDeleted(c, "Workflow deleted", res)
}

// @Summary      Link a workspace member to a workflow
// @Tags         Workflows
// @Accept       json
// @Security     BearerAuth
// @Param        id path int true "Workflow ID"
// @Param        request body WorkflowMemberRequest true "Member"
// @Success      201 {object} map[string]string
// @Router       /workflows/{id}/members [post]
func (h *WorkflowHandler) AddMember(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req WorkflowMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.AddWorkflowMember(c.Request.Context(), actor, id, req.MemberID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Member added to workflow"})
}

// @Summary      Unlink a member from a workflow
// @Tags         Workflows
// @Security     BearerAuth
// @Param        id path int true "Workflow ID"
// @Param        member_id path int true "Member ID"
// @Success      200 {object} map[string]string
// @Router       /workflows/{id}/members/{member_id} [delete]
func (h *WorkflowHandler) RemoveMember(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "member_id")
	if !ok {
		return
	}
	if err := h.svc.RemoveWorkflowMember(c.Request.Context(), actor, id, memberID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed from workflow"})
}

// @Summary      List workflow members
// @Tags         Workflows
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workflow ID"
// @Success      200 {array} model.Member
// @Router       /workflows/{id}/members [get]
func (h *WorkflowHandler) GetMembers(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	members, err := h.svc.ListWorkflowMembers(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}
