package handler

import (
	"context"
	"net/http"
	"strconv"

	"workspaceflow/internal/model"
	"workspaceflow/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskService interface {
	CreateTask(ctx context.Context, actor, workflowID uint, in service.TaskInput) (*model.Task, error)
	GetTask(ctx context.Context, actor, id uint) (*model.Task, error)
	ListTasks(ctx context.Context, actor, workflowID uint, columnID *uint) ([]model.Task, error)
	UpdateTask(ctx context.Context, actor, id uint, in service.TaskPatch) (*model.Task, error)
	MoveTask(ctx context.Context, actor, taskID, columnID uint) (*model.Task, error)
	DeleteTask(ctx context.Context, actor, id uint) (service.CascadeResult, error)

	StartTimer(ctx context.Context, actor, taskID uint) (*model.Task, error)
	StopTimer(ctx context.Context, actor, taskID uint) (*model.Task, error)

	AssignMember(ctx context.Context, actor, taskID, memberID uint) error
	UnassignMember(ctx context.Context, actor, taskID, memberID uint) error
	ListAssignees(ctx context.Context, actor, taskID uint) ([]model.Member, error)

	ListSubtasks(ctx context.Context, actor, taskID uint) ([]model.Subtask, error)
	CreateSubtask(ctx context.Context, actor, taskID uint, in service.SubtaskInput) (*model.Subtask, error)
	UpdateSubtask(ctx context.Context, actor, id uint, in service.SubtaskPatch) (*model.Subtask, error)
	DeleteSubtask(ctx context.Context, actor, id uint) error
}

type TaskHandler struct {
	svc TaskService
}

func NewTaskHandler(svc TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// TaskMoveRequest places a task in another column of its workflow's template.
type TaskMoveRequest struct {
	ColumnID uint `json:"column_id" binding:"required"`
}

// TaskAssignRequest names the member to assign.
type TaskAssignRequest struct {
	MemberID uint `json:"member_id" binding:"required"`
}

// @Summary      Create a task in a workflow
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workflow ID"
// @Param        request body service.TaskInput true "Task"
// @Success      201 {object} model.Task
// @Failure      400 {object} ErrorResponse
// @Router       /workflows/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	actor, workflowID, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.TaskInput
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.svc.CreateTask(c.Request.Context(), actor, workflowID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// @Summary      List the tasks of a workflow
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Workflow ID"
// @Param        column_id query int false "Only tasks in this column"
// @Success      200 {array} model.Task
// @Router       /workflows/{id}/tasks [get]
func (h *TaskHandler) GetByWorkflow(c *gin.Context) {
	actor, workflowID, ok := actorAndID(c)
	if !ok {
		return
	}
	var columnID *uint
	if raw := c.Query("column_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid column ID format"})
			return
		}
		id := uint(v)
		columnID = &id
	}
	tasks, err := h.svc.ListTasks(c.Request.Context(), actor, workflowID, columnID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Success      200 {object} model.Task
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	task, err := h.svc.GetTask(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Update a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Param        request body service.TaskPatch true "Fields to change"
// @Success      200 {object} model.Task
// @Failure      400 {object} ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.TaskPatch
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.svc.UpdateTask(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Move a task to another column
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Param        request body TaskMoveRequest true "Target column"
// @Success      200 {object} model.Task
// @Failure      400 {object} ErrorResponse
// @Router       /tasks/{id}/move [post]
func (h *TaskHandler) Move(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req TaskMoveRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.svc.MoveTask(c.Request.Context(), actor, id, req.ColumnID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Delete a task with its subtasks, chat and attachments
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Success      200 {object} DeleteResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	res, err := h.svc.DeleteTask(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeDeleted(c, "Task deleted", res)
}

// @Summary      Start the task timer
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Success      200 {object} model.Task
// @Failure      409 {object} ErrorResponse
// @Router       /tasks/{id}/timer/start [post]
func (h *TaskHandler) StartTimer(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	task, err := h.svc.StartTimer(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Stop the task timer
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Success      200 {object} model.Task
// @Failure      409 {object} ErrorResponse
// @Router       /tasks/{id}/timer/stop [post]
func (h *TaskHandler) StopTimer(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	task, err := h.svc.StopTimer(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Assign a workspace member to a task
// @Tags         Tasks
// @Accept       json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Param        request body TaskAssignRequest true "Member"
// @Success      201 {object} map[string]string
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /tasks/{id}/assignees [post]
func (h *TaskHandler) Assign(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req TaskAssignRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.AssignMember(c.Request.Context(), actor, id, req.MemberID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Member assigned"})
}

// @Summary      Unassign a member from a task
// @Tags         Tasks
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Param        member_id path int true "Member ID"
// @Success      200 {object} map[string]string
// @Router       /tasks/{id}/assignees/{member_id} [delete]
func (h *TaskHandler) Unassign(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "member_id")
	if !ok {
		return
	}
	if err := h.svc.UnassignMember(c.Request.Context(), actor, id, memberID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member unassigned"})
}

// @Summary      List task assignees
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Success      200 {array} model.Member
// @Router       /tasks/{id}/assignees [get]
func (h *TaskHandler) GetAssignees(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	members, err := h.svc.ListAssignees(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// Subtasks

// @Summary      List subtasks
// @Tags         Subtasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Success      200 {array} model.Subtask
// @Router       /tasks/{id}/subtasks [get]
func (h *TaskHandler) GetSubtasks(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	subtasks, err := h.svc.ListSubtasks(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtasks)
}

// @Summary      Add a subtask
// @Tags         Subtasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Param        request body service.SubtaskInput true "Subtask"
// @Success      201 {object} model.Subtask
// @Router       /tasks/{id}/subtasks [post]
func (h *TaskHandler) CreateSubtask(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.SubtaskInput
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.svc.CreateSubtask(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// @Summary      Edit or toggle a subtask
// @Tags         Subtasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Subtask ID"
// @Param        request body service.SubtaskPatch true "Fields to change"
// @Success      200 {object} model.Subtask
// @Router       /subtasks/{id} [put]
func (h *TaskHandler) UpdateSubtask(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.SubtaskPatch
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.svc.UpdateSubtask(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// @Summary      Delete a subtask
// @Tags         Subtasks
// @Security     BearerAuth
// @Param        id path int true "Subtask ID"
// @Success      200 {object} map[string]string
// @Router       /subtasks/{id} [delete]
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteSubtask(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted"})
}
