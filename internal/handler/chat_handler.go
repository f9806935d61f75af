package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"workspaceflow/internal/model"
	"workspaceflow/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatService interface {
	ListMessages(ctx context.Context, actor, taskID uint) ([]model.ChatMessage, error)
	PostMessage(ctx context.Context, actor, taskID uint, in service.MessageInput) (*model.ChatMessage, error)
	UpdateMessage(ctx context.Context, actor, id uint, in service.MessageInput) (*model.ChatMessage, error)
	DeleteMessage(ctx context.Context, actor, id uint) error

	UploadAttachment(ctx context.Context, actor, taskID uint, filename string, data []byte, postMessage bool) (*model.Attachment, error)
	ListAttachments(ctx context.Context, actor, taskID uint) ([]model.AttachmentView, error)
	DownloadAttachment(ctx context.Context, actor, id uint) (*model.Attachment, []byte, error)
	DeleteAttachment(ctx context.Context, actor, id uint) (service.CascadeResult, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// @Summary      List a task's chat, oldest first
// @Tags         Chat
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Success      200 {array} model.ChatMessage
// @Router       /tasks/{id}/messages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	msgs, err := h.svc.ListMessages(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// @Summary      Post a chat message
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Param        request body service.MessageInput true "Message"
// @Success      201 {object} model.ChatMessage
// @Router       /tasks/{id}/messages [post]
func (h *ChatHandler) PostMessage(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.MessageInput
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.svc.PostMessage(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// @Summary      Edit own chat message
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Message ID"
// @Param        request body service.MessageInput true "Message"
// @Success      200 {object} model.ChatMessage
// @Failure      403 {object} ErrorResponse
// @Router       /messages/{id} [put]
func (h *ChatHandler) UpdateMessage(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.MessageInput
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.svc.UpdateMessage(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// @Summary      Delete own chat message
// @Tags         Chat
// @Security     BearerAuth
// @Param        id path int true "Message ID"
// @Success      200 {object} map[string]string
// @Failure      403 {object} ErrorResponse
// @Router       /messages/{id} [delete]
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteMessage(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}

// @Summary      Upload an attachment to a task
// @Tags         Attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Param        file formData file true "File"
// @Param        post_message formData bool false "Also post a chat message pointing at the file"
// @Success      201 {object} model.Attachment
// @Router       /tasks/{id}/attachments [post]
func (h *ChatHandler) Upload(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	name, data, ok := readUpload(c)
	if !ok {
		return
	}
	postMessage, _ := strconv.ParseBool(c.PostForm("post_message"))

	a, err := h.svc.UploadAttachment(c.Request.Context(), actor, id, name, data, postMessage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// @Summary      List a task's attachments
// @Tags         Attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Task ID"
// @Success      200 {array} model.AttachmentView
// @Router       /tasks/{id}/attachments [get]
func (h *ChatHandler) GetAttachments(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	views, err := h.svc.ListAttachments(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// @Summary      Download an attachment
// @Tags         Attachments
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id path int true "Attachment ID"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Router       /attachments/{id} [get]
func (h *ChatHandler) Download(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	a, data, err := h.svc.DownloadAttachment(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.OriginalFilename+a.FileExtension))
	c.Data(http.StatusOK, a.MimeType, data)
}

// @Summary      Delete an attachment
// @Tags         Attachments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Attachment ID"
// @Success      200 {object} DeleteResponse
// @Router       /attachments/{id} [delete]
func (h *ChatHandler) DeleteAttachment(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	res, err := h.svc.DeleteAttachment(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeDeleted(c, "Attachment deleted", res)
}
