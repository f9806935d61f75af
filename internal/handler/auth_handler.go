package handler

import (
	"context"
	"net/http"

	"workspaceflow/internal/model"
	"workspaceflow/internal/service"

	"github.com/gin-gonic/gin"
)

type IdentityService interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.Member, error)
	Authenticate(ctx context.Context, email, password string) (*model.Member, error)
}

type TokenIssuer interface {
	GenerateToken(memberID uint) (string, error)
}

type AuthHandler struct {
	svc    IdentityService
	tokens TokenIssuer
}

func NewAuthHandler(svc IdentityService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token  string        `json:"token"`
	Member *model.Member `json:"member"`
}

// Register godoc
// @Summary      Register a member
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body service.RegisterInput true "Registration data"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, member)
}

// Login godoc
// @Summary      Log in and receive a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AuthResponse
// @Failure      403 {object} ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, member)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, member *model.Member) {
	token, err := h.tokens.GenerateToken(member.ID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(status, AuthResponse{Token: token, Member: member})
}
