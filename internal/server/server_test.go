package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"workspaceflow/internal/auth"
	"workspaceflow/internal/database"
	"workspaceflow/internal/repository"
	"workspaceflow/internal/server"
	"workspaceflow/internal/service"
	"workspaceflow/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "api.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(repository.NewStore(db), blobs, log)
	require.NoError(t, svc.EnsureDefaultTemplates(context.Background()))

	return &client{t: t, router: server.NewRouter(svc, auth.NewTokenIssuer("test-secret", time.Hour), log)}
}

func (c *client) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp := httptest.NewRecorder()
	c.router.ServeHTTP(resp, req)

	var out map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	return resp, out
}

func (c *client) signup(first string) uint {
	c.t.Helper()
	resp, out := c.do(http.MethodPost, "/register", map[string]string{
		"first_name":       first,
		"last_name":        "Tester",
		"email":            first + "@example.com",
		"password":         "password1",
		"confirm_password": "password1",
	})
	require.Equal(c.t, http.StatusCreated, resp.Code, resp.Body.String())
	c.token = out["token"].(string)
	return uint(out["member"].(map[string]any)["id"].(float64))
}

func TestHealth(t *testing.T) {
	c := newClient(t)
	resp, out := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newClient(t)
	resp, out := c.do(http.MethodGet, "/workspaces", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Authorization header is required", out["error"])

	c.token = "garbage"
	resp, _ = c.do(http.MethodGet, "/workspaces", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestBoardFlow(t *testing.T) {
	c := newClient(t)
	c.signup("ada")

	resp, ws := c.do(http.MethodPost, "/workspaces", map[string]string{"name": "Team"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	wsID := uint(ws["id"].(float64))

	resp, wf := c.do(http.MethodPost, fmt.Sprintf("/workspaces/%d/workflows", wsID), map[string]string{"name": "Launch"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	wfID := uint(wf["id"].(float64))

	resp, task := c.do(http.MethodPost, fmt.Sprintf("/workflows/%d/tasks", wfID), map[string]string{"title": "Write brief"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	taskID := uint(task["id"].(float64))
	assert.Equal(t, "not_started", task["state"])

	resp, task = c.do(http.MethodPut, fmt.Sprintf("/tasks/%d", taskID), map[string]any{"progress_percentage": 100})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "complete", task["state"])
	assert.NotNil(t, task["completed_at"])

	resp, _ = c.do(http.MethodPut, fmt.Sprintf("/tasks/%d", taskID), map[string]any{"progress_percentage": 140})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, _ = c.do(http.MethodPost, fmt.Sprintf("/tasks/%d/timer/stop", taskID), nil)
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp, wf = c.do(http.MethodGet, fmt.Sprintf("/workflows/%d", wfID), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 100.0, wf["progress_percentage"])

	// a second member outside the workspace cannot see the task
	owner := c.token
	c.signup("bob")
	resp, _ = c.do(http.MethodGet, fmt.Sprintf("/tasks/%d", taskID), nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp, _ = c.do(http.MethodGet, "/tasks/99999", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	c.token = owner
	resp, out := c.do(http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, false, out["partial_success"])
}

func TestAttachmentUpload(t *testing.T) {
	c := newClient(t)
	c.signup("ada")

	_, ws := c.do(http.MethodPost, "/workspaces", map[string]string{"name": "Team"})
	_, wf := c.do(http.MethodPost, fmt.Sprintf("/workspaces/%.0f/workflows", ws["id"]), map[string]string{"name": "Launch"})
	_, task := c.do(http.MethodPost, fmt.Sprintf("/workflows/%.0f/tasks", wf["id"]), map[string]string{"title": "Write brief"})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("meeting notes"))
	require.NoError(t, w.WriteField("post_message", "true"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/tasks/%.0f/attachments", task["id"]), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp := httptest.NewRecorder()
	c.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var att map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &att))
	assert.Equal(t, "notes", att["original_filename"])

	dl, _ := c.do(http.MethodGet, fmt.Sprintf("/attachments/%.0f", att["id"]), nil)
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "meeting notes", dl.Body.String())
	assert.Contains(t, dl.Header().Get("Content-Disposition"), "notes.txt")

	msgs, _ := c.do(http.MethodGet, fmt.Sprintf("/tasks/%.0f/messages", task["id"]), nil)
	require.Equal(t, http.StatusOK, msgs.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(msgs.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, true, list[0]["is_attachment"])
}
