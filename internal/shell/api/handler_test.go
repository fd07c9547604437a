package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidplan/assistant/internal/core/domain"
	"github.com/vidplan/assistant/internal/shell/store"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	return NewHandler(s, nil, "").Routes()
}

// doRequest performs a request against the handler and returns the recorder.
// headers come as alternating key/value pairs.
func doRequest(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func errorDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeJSON[ErrorResponse](t, rec).Detail
}

func createWorkspace(t *testing.T, h http.Handler, name string) WorkspaceResponse {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/workspaces", CreateWorkspaceRequest{Name: name})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeJSON[WorkspaceResponse](t, rec)
}

func createProject(t *testing.T, h http.Handler, name string, workspaceID int64) ProjectResponse {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/projects", CreateProjectRequest{
		Name:        name,
		WorkspaceID: &workspaceID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeJSON[ProjectResponse](t, rec)
}

func createTemplate(t *testing.T, h http.Handler, typ, name, content string, workspaceID int64) TemplateResponse {
	t.Helper()
	rec := doRequest(t, h, http.MethodPost, "/api/templates", CreateTemplateRequest{
		Type:        typ,
		Name:        name,
		Content:     content,
		WorkspaceID: &workspaceID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeJSON[TemplateResponse](t, rec)
}

// =============================================================================
// Info Endpoint Tests
// =============================================================================

func TestRoot(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[RootResponse](t, rec)
	assert.Equal(t, "YouTube Assistant API", resp.Message)
	assert.Equal(t, "running", resp.Status)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeJSON[HealthResponse](t, rec).Status)
}

// =============================================================================
// Workspace Endpoint Tests
// =============================================================================

func TestCreateWorkspace(t *testing.T) {
	h := newTestHandler(t)

	desc := "My channel"
	rec := doRequest(t, h, http.MethodPost, "/api/workspaces", CreateWorkspaceRequest{
		Name:        "  Channel A  ",
		Description: &desc,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeJSON[WorkspaceResponse](t, rec)
	assert.Equal(t, "Channel A", resp.Name)
	assert.Equal(t, "My channel", *resp.Description)
	assert.Zero(t, resp.ProjectCount)
}

func TestCreateWorkspace_EmptyName(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/workspaces", CreateWorkspaceRequest{Name: "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateWorkspace_DuplicateName(t *testing.T) {
	h := newTestHandler(t)

	createWorkspace(t, h, "Channel A")
	rec := doRequest(t, h, http.MethodPost, "/api/workspaces", CreateWorkspaceRequest{Name: "channel a"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorDetail(t, rec), "already exists")
}

func TestCreateWorkspace_EmptyDescriptionStoredAsNull(t *testing.T) {
	h := newTestHandler(t)

	desc := "   "
	rec := doRequest(t, h, http.MethodPost, "/api/workspaces", CreateWorkspaceRequest{
		Name:        "Channel A",
		Description: &desc,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, decodeJSON[WorkspaceResponse](t, rec).Description)
}

func TestListWorkspaces_DefaultSeeded(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/workspaces", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[[]WorkspaceResponse](t, rec)
	require.Len(t, resp, 1)
	assert.Equal(t, "Default Workspace", resp[0].Name)
	assert.Equal(t, domain.DefaultWorkspaceID, resp[0].ID)
}

func TestListWorkspaces_ProjectCounts(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")
	createProject(t, h, "Video 1", w.ID)
	createProject(t, h, "Video 2", w.ID)

	rec := doRequest(t, h, http.MethodGet, "/api/workspaces", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[[]WorkspaceResponse](t, rec)
	require.Len(t, resp, 2)
	// Newest first
	assert.Equal(t, w.ID, resp[0].ID)
	assert.Equal(t, int64(2), resp[0].ProjectCount)
}

func TestGetWorkspace_NotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/workspaces/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Workspace with id 999 not found", errorDetail(t, rec))
}

func TestUpdateWorkspace_RenameDefaultForbidden(t *testing.T) {
	h := newTestHandler(t)

	name := "New Name"
	rec := doRequest(t, h, http.MethodPut, "/api/workspaces/1", UpdateWorkspaceRequest{Name: &name})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, errorDetail(t, rec), "default workspace")
}

func TestUpdateWorkspace_DefaultDescriptionAllowed(t *testing.T) {
	h := newTestHandler(t)

	desc := "Updated description"
	rec := doRequest(t, h, http.MethodPut, "/api/workspaces/1", UpdateWorkspaceRequest{Description: &desc})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[WorkspaceResponse](t, rec)
	assert.Equal(t, "Default Workspace", resp.Name)
	assert.Equal(t, "Updated description", *resp.Description)
}

func TestUpdateWorkspace_DuplicateName(t *testing.T) {
	h := newTestHandler(t)

	createWorkspace(t, h, "Channel A")
	w := createWorkspace(t, h, "Channel B")

	name := "CHANNEL A"
	rec := doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/workspaces/%d", w.ID), UpdateWorkspaceRequest{Name: &name})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorDetail(t, rec), "already exists")
}

func TestDeleteWorkspace_DefaultForbidden(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodDelete, "/api/workspaces/1", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, errorDetail(t, rec), "default workspace")
}

func TestDeleteWorkspace_WithProjectsRejected(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")
	createProject(t, h, "Video 1", w.ID)

	rec := doRequest(t, h, http.MethodDelete, fmt.Sprintf("/api/workspaces/%d", w.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorDetail(t, rec), "project")
}

func TestDeleteWorkspace_Success(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")

	rec := doRequest(t, h, http.MethodDelete, fmt.Sprintf("/api/workspaces/%d", w.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/workspaces/%d", w.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// Project Endpoint Tests
// =============================================================================

func TestCreateProject_Defaults(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/projects", CreateProjectRequest{Name: "My Video"})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeJSON[ProjectResponse](t, rec)
	assert.Equal(t, "planned", resp.Status)
	assert.Equal(t, domain.DefaultWorkspaceID, resp.WorkspaceID)
}

func TestCreateProject_WorkspaceFromHeader(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")

	rec := doRequest(t, h, http.MethodPost, "/api/projects",
		CreateProjectRequest{Name: "My Video"},
		WorkspaceHeader, fmt.Sprintf("%d", w.ID))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, w.ID, decodeJSON[ProjectResponse](t, rec).WorkspaceID)
}

func TestCreateProject_UnknownWorkspace(t *testing.T) {
	h := newTestHandler(t)

	wid := int64(999)
	rec := doRequest(t, h, http.MethodPost, "/api/projects", CreateProjectRequest{
		Name:        "My Video",
		WorkspaceID: &wid,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Workspace with id 999 not found", errorDetail(t, rec))
}

func TestCreateProject_InvalidStatus(t *testing.T) {
	h := newTestHandler(t)

	status := "done"
	rec := doRequest(t, h, http.MethodPost, "/api/projects", CreateProjectRequest{
		Name:   "My Video",
		Status: &status,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateProject_DuplicateNameScopedToWorkspace(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")
	createProject(t, h, "My Video", domain.DefaultWorkspaceID)

	// Same name in same workspace rejected, case-insensitively
	rec := doRequest(t, h, http.MethodPost, "/api/projects", CreateProjectRequest{Name: "MY VIDEO"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "A project named 'MY VIDEO' already exists", errorDetail(t, rec))

	// Same name in another workspace allowed
	createProject(t, h, "My Video", w.ID)
}

func TestListProjects_ScopedByHeader(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")
	createProject(t, h, "Video A", w.ID)
	createProject(t, h, "Video B", domain.DefaultWorkspaceID)

	rec := doRequest(t, h, http.MethodGet, "/api/projects", nil, WorkspaceHeader, fmt.Sprintf("%d", w.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[[]ProjectResponse](t, rec)
	require.Len(t, resp, 1)
	assert.Equal(t, "Video A", resp[0].Name)

	// No header defaults to workspace 1
	rec = doRequest(t, h, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeJSON[[]ProjectResponse](t, rec)
	require.Len(t, resp, 1)
	assert.Equal(t, "Video B", resp[0].Name)
}

func TestGetProject_NotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/projects/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project with id 42 not found", errorDetail(t, rec))
}

func TestGetProject_OutsideHeaderWorkspace(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")
	p := createProject(t, h, "My Video", w.ID)

	// Visible without a header
	rec := doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/projects/%d", p.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Hidden when scoped to another workspace
	rec = doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/projects/%d", p.ID), nil, WorkspaceHeader, "1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProject_Fields(t *testing.T) {
	h := newTestHandler(t)

	p := createProject(t, h, "My Video", domain.DefaultWorkspaceID)

	status := "completed"
	title := "Final Title"
	rec := doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/projects/%d", p.ID), UpdateProjectRequest{
		Status:     &status,
		VideoTitle: &title,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[ProjectResponse](t, rec)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "Final Title", *resp.VideoTitle)
}

func TestUpdateProject_DuplicateNameExcludesSelf(t *testing.T) {
	h := newTestHandler(t)

	createProject(t, h, "Other Video", domain.DefaultWorkspaceID)
	p := createProject(t, h, "My Video", domain.DefaultWorkspaceID)

	// Renaming to its own name is fine
	name := "my video"
	rec := doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/projects/%d", p.ID), UpdateProjectRequest{Name: &name})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Renaming onto another project is rejected
	name = "other video"
	rec = doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/projects/%d", p.ID), UpdateProjectRequest{Name: &name})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProject_HonorsHeaderScope(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")
	p := createProject(t, h, "My Video", w.ID)

	rec := doRequest(t, h, http.MethodDelete, fmt.Sprintf("/api/projects/%d", p.ID), nil, WorkspaceHeader, "1")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, fmt.Sprintf("/api/projects/%d", p.ID), nil, WorkspaceHeader, fmt.Sprintf("%d", w.ID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// =============================================================================
// Template Endpoint Tests
// =============================================================================

func TestCreateTemplate_Success(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/templates", CreateTemplateRequest{
		Type:    "TITLE",
		Name:    "How-to",
		Content: "How to {{topic}} in {{year}}",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeJSON[TemplateResponse](t, rec)
	assert.Equal(t, "title", resp.Type)
	assert.Equal(t, domain.DefaultWorkspaceID, resp.WorkspaceID)
}

func TestCreateTemplate_InvalidType(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/templates", CreateTemplateRequest{
		Type:    "thumbnail",
		Name:    "How-to",
		Content: "How to {{topic}}",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Template type must be either 'title' or 'description'", errorDetail(t, rec))
}

func TestCreateTemplate_EmptyPlaceholderBeatsMissing(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/templates", CreateTemplateRequest{
		Type:    "title",
		Name:    "How-to",
		Content: "How to {{topic}} with {{}}",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorDetail(t, rec), "{{}}")
}

func TestCreateTemplate_NoPlaceholder(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/templates", CreateTemplateRequest{
		Type:    "title",
		Name:    "How-to",
		Content: "How to do things",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateTemplate_DuplicateContent(t *testing.T) {
	h := newTestHandler(t)

	tpl := createTemplate(t, h, "title", "How-to", "How to {{topic}}", domain.DefaultWorkspaceID)

	rec := doRequest(t, h, http.MethodPost, "/api/templates", CreateTemplateRequest{
		Type:    "title",
		Name:    "Another Name",
		Content: "HOW TO {{topic}}",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, fmt.Sprintf("Template with this content already exists (ID: %d)", tpl.ID), errorDetail(t, rec))
}

func TestCreateTemplate_SameContentDifferentWorkspace(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")
	createTemplate(t, h, "title", "How-to", "How to {{topic}}", domain.DefaultWorkspaceID)
	createTemplate(t, h, "title", "How-to", "How to {{topic}}", w.ID)
}

func TestCreateTemplate_UnknownWorkspace(t *testing.T) {
	h := newTestHandler(t)

	wid := int64(999)
	rec := doRequest(t, h, http.MethodPost, "/api/templates", CreateTemplateRequest{
		Type:        "title",
		Name:        "How-to",
		Content:     "How to {{topic}}",
		WorkspaceID: &wid,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTemplates_TypeFilter(t *testing.T) {
	h := newTestHandler(t)

	createTemplate(t, h, "title", "How-to", "How to {{topic}}", domain.DefaultWorkspaceID)
	createTemplate(t, h, "description", "About", "All about {{topic}}", domain.DefaultWorkspaceID)

	rec := doRequest(t, h, http.MethodGet, "/api/templates?type=title", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[[]TemplateResponse](t, rec)
	require.Len(t, resp, 1)
	assert.Equal(t, "title", resp[0].Type)
}

func TestListTemplates_InvalidTypeFilter(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/templates?type=thumbnail", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetTemplate_ScopedByHeader(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")
	tpl := createTemplate(t, h, "title", "How-to", "How to {{topic}}", w.ID)

	rec := doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/templates/%d", tpl.ID), nil, WorkspaceHeader, fmt.Sprintf("%d", w.ID))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Default scope does not see it
	rec = doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/templates/%d", tpl.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Template not found", errorDetail(t, rec))
}

func TestUpdateTemplate_RevalidatesPlaceholders(t *testing.T) {
	h := newTestHandler(t)

	tpl := createTemplate(t, h, "title", "How-to", "How to {{topic}}", domain.DefaultWorkspaceID)

	content := "No placeholders here"
	rec := doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/templates/%d", tpl.ID), UpdateTemplateRequest{Content: &content})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateTemplate_DuplicateContentExcludesSelf(t *testing.T) {
	h := newTestHandler(t)

	createTemplate(t, h, "title", "Other", "Why {{topic}} matters", domain.DefaultWorkspaceID)
	tpl := createTemplate(t, h, "title", "How-to", "How to {{topic}}", domain.DefaultWorkspaceID)

	// Updating with its own content is fine
	content := "How to {{topic}}"
	rec := doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/templates/%d", tpl.ID), UpdateTemplateRequest{Content: &content})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Updating onto another template's content conflicts
	content = "why {{topic}} matters"
	rec = doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/templates/%d", tpl.ID), UpdateTemplateRequest{Content: &content})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateTemplate_ChangeType(t *testing.T) {
	h := newTestHandler(t)

	tpl := createTemplate(t, h, "title", "How-to", "How to {{topic}}", domain.DefaultWorkspaceID)

	typ := "Description"
	rec := doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/templates/%d", tpl.ID), UpdateTemplateRequest{Type: &typ})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "description", decodeJSON[TemplateResponse](t, rec).Type)
}

func TestDeleteTemplate_ScopedByHeader(t *testing.T) {
	h := newTestHandler(t)

	w := createWorkspace(t, h, "Channel A")
	tpl := createTemplate(t, h, "title", "How-to", "How to {{topic}}", w.ID)

	rec := doRequest(t, h, http.MethodDelete, fmt.Sprintf("/api/templates/%d", tpl.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, fmt.Sprintf("/api/templates/%d", tpl.ID), nil, WorkspaceHeader, fmt.Sprintf("%d", w.ID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
