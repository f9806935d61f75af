package handler

import (
	"context"
	"io"
	"net/http"

	"workspaceflow/internal/model"
	"workspaceflow/internal/service"

	"github.com/gin-gonic/gin"
)

type MemberService interface {
	GetMember(ctx context.Context, id uint) (*model.Member, error)
	ListMembers(ctx context.Context) ([]model.Member, error)
	UpdateProfile(ctx context.Context, actor, memberID uint, in service.ProfileInput) (*model.Member, error)
	ChangePassword(ctx context.Context, actor, memberID uint, in service.PasswordInput) error
	DeleteMember(ctx context.Context, actor, memberID uint) (service.CascadeResult, error)
	UploadProfilePicture(ctx context.Context, actor uint, filename string, data []byte) (*model.Member, service.CascadeResult, error)
	GetProfilePicture(ctx context.Context, memberID uint) ([]byte, string, error)
	DeleteProfilePicture(ctx context.Context, actor uint) (service.CascadeResult, error)
	ListMyTasks(ctx context.Context, actor uint) ([]model.Task, error)
}

// PictureResponse is the updated member plus any cleanup of the replaced
// picture that failed.
type PictureResponse struct {
	*model.Member
	PartialSuccess bool     `json:"partial_success"`
	Warnings       []string `json:"warnings,omitempty"`
}

type MemberHandler struct {
	svc MemberService
}

func NewMemberHandler(svc MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// readUpload reads the multipart "file" field into memory.
func readUpload(c *gin.Context) (string, []byte, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return "", nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return "", nil, false
	}
	return fh.Filename, data, true
}

// Me godoc
// @Summary      Current member profile
// @Tags         Members
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.Member
// @Router       /me [get]
func (h *MemberHandler) Me(c *gin.Context) {
	actor, ok := currentMemberID(c)
	if !ok {
		return
	}
	member, err := h.svc.GetMember(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// @Summary      List members
// @Tags         Members
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.Member
// @Router       /members [get]
func (h *MemberHandler) GetAll(c *gin.Context) {
	members, err := h.svc.ListMembers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// @Summary      Get a member
// @Tags         Members
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Member ID"
// @Success      200 {object} model.Member
// @Failure      404 {object} ErrorResponse
// @Router       /members/{id} [get]
func (h *MemberHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	member, err := h.svc.GetMember(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// @Summary      Update own profile
// @Tags         Members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Member ID"
// @Param        request body service.ProfileInput true "Profile fields"
// @Success      200 {object} model.Member
// @Router       /members/{id} [put]
func (h *MemberHandler) Update(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.svc.UpdateProfile(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// @Summary      Change own password
// @Tags         Members
// @Accept       json
// @Security     BearerAuth
// @Param        id path int true "Member ID"
// @Param        request body service.PasswordInput true "Old and new password"
// @Success      200 {object} map[string]string
// @Router       /members/{id}/password [put]
func (h *MemberHandler) ChangePassword(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req service.PasswordInput
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), actor, id, req); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// @Summary      Delete own account
// @Tags         Members
// @Security     BearerAuth
// @Param        id path int true "Member ID"
// @Success      200 {object} DeleteResponse
// @Failure      409 {object} ErrorResponse
// @Router       /members/{id} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	res, err := h.svc.DeleteMember(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeDeleted(c, "Member deleted", res)
}

// @Summary      Upload own profile picture
// @Tags         Members
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "Image (jpg, jpeg, png, gif, webp; max 5 MiB)"
// @Success      200 {object} PictureResponse
// @Failure      400 {object} ErrorResponse
// @Router       /me/picture [post]
func (h *MemberHandler) UploadPicture(c *gin.Context) {
	actor, ok := currentMemberID(c)
	if !ok {
		return
	}
	name, data, ok := readUpload(c)
	if !ok {
		return
	}
	member, res, err := h.svc.UploadProfilePicture(c.Request.Context(), actor, name, data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PictureResponse{
		Member:         member,
		PartialSuccess: res.PartialSuccess(),
		Warnings:       res.Warnings,
	})
}

// @Summary      Download a member's profile picture
// @Tags         Members
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id path int true "Member ID"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Router       /members/{id}/picture [get]
func (h *MemberHandler) GetPicture(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	data, mime, err := h.svc.GetProfilePicture(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, mime, data)
}

// @Summary      Remove own profile picture
// @Tags         Members
// @Security     BearerAuth
// @Success      200 {object} DeleteResponse
// @Router       /me/picture [delete]
func (h *MemberHandler) DeletePicture(c *gin.Context) {
	actor, ok := currentMemberID(c)
	if !ok {
		return
	}
	res, err := h.svc.DeleteProfilePicture(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	writeDeleted(c, "Profile picture deleted", res)
}

// @Summary      Tasks assigned to the current member
// @Tags         Members
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} model.Task
// @Router       /me/tasks [get]
func (h *MemberHandler) MyTasks(c *gin.Context) {
	actor, ok := currentMemberID(c)
	if !ok {
		return
	}
	tasks, err := h.svc.ListMyTasks(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}
