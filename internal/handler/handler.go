package handler

import (
	"errors"
	"net/http"
	"strconv"

	"workspaceflow/internal/middleware"
	"workspaceflow/internal/service"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// DeleteResponse reports a committed deletion and any cleanup that failed after it.
type DeleteResponse struct {
	Message        string   `json:"message"`
	PartialSuccess bool     `json:"partial_success"`
	Warnings       []string `json:"warnings,omitempty"`
}

// currentMemberID reads the member id put into the context by the auth middleware.
func currentMemberID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return 0, false
	}
	id, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return 0, false
	}
	return id, true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}

// actorAndID is the common prologue of handlers addressing one entity by :id.
func actorAndID(c *gin.Context) (actor, id uint, ok bool) {
	if actor, ok = currentMemberID(c); !ok {
		return 0, 0, false
	}
	if id, ok = parseIDParam(c, "id"); !ok {
		return 0, 0, false
	}
	return actor, id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return false
	}
	return true
}

// errorStatus maps a service error onto an HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDependency):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := errorStatus(err)
	_ = c.Error(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		msg = "Internal server error"
	case http.StatusServiceUnavailable:
		msg = "Service temporarily unavailable, retry later"
	}
	c.JSON(status, ErrorResponse{Error: msg})
}

func writeDeleted(c *gin.Context, message string, res service.CascadeResult) {
	c.JSON(http.StatusOK, DeleteResponse{
		Message:        message,
		PartialSuccess: res.PartialSuccess(),
		Warnings:       res.Warnings,
	})
}
