// Package client provides a typed HTTP client for the assistant API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/vidplan/assistant/internal/shell/api"
)

// DefaultTimeout bounds every request the client makes.
const DefaultTimeout = 30 * time.Second

// =============================================================================
// Client
// =============================================================================

// Client handles communication with the assistant API server.
type Client struct {
	// Base URL of the API server
	BaseURL string

	// HTTP client with a timeout
	client *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
}

// do performs a request. workspaceID > 0 adds the X-Workspace-Id header; out,
// when non-nil, receives the decoded response body.
func (c *Client) do(ctx context.Context, method, path string, workspaceID int64, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if workspaceID > 0 {
		req.Header.Set(api.WorkspaceHeader, strconv.FormatInt(workspaceID, 10))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			errResp.Detail = "unexpected response"
		}
		return &APIError{StatusCode: resp.StatusCode, Detail: errResp.Detail}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// =============================================================================
// Workspace Operations
// =============================================================================

func (c *Client) CreateWorkspace(ctx context.Context, req api.CreateWorkspaceRequest) (*api.WorkspaceResponse, error) {
	var resp api.WorkspaceResponse
	if err := c.do(ctx, http.MethodPost, "/api/workspaces", 0, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetWorkspace(ctx context.Context, id int64) (*api.WorkspaceResponse, error) {
	var resp api.WorkspaceResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/workspaces/%d", id), 0, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]api.WorkspaceResponse, error) {
	var resp []api.WorkspaceResponse
	if err := c.do(ctx, http.MethodGet, "/api/workspaces", 0, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) UpdateWorkspace(ctx context.Context, id int64, req api.UpdateWorkspaceRequest) (*api.WorkspaceResponse, error) {
	var resp api.WorkspaceResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/workspaces/%d", id), 0, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteWorkspace(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/workspaces/%d", id), 0, nil, nil)
}

// =============================================================================
// Project Operations
// =============================================================================

func (c *Client) CreateProject(ctx context.Context, req api.CreateProjectRequest) (*api.ProjectResponse, error) {
	var resp api.ProjectResponse
	if err := c.do(ctx, http.MethodPost, "/api/projects", 0, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetProject(ctx context.Context, id, workspaceID int64) (*api.ProjectResponse, error) {
	var resp api.ProjectResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d", id), workspaceID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListProjects lists projects in the given workspace. workspaceID 0 omits the
// scope header, which the server reads as the default workspace.
func (c *Client) ListProjects(ctx context.Context, workspaceID int64) ([]api.ProjectResponse, error) {
	var resp []api.ProjectResponse
	if err := c.do(ctx, http.MethodGet, "/api/projects", workspaceID, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) UpdateProject(ctx context.Context, id, workspaceID int64, req api.UpdateProjectRequest) (*api.ProjectResponse, error) {
	var resp api.ProjectResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/projects/%d", id), workspaceID, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteProject(ctx context.Context, id, workspaceID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/projects/%d", id), workspaceID, nil, nil)
}

// =============================================================================
// Template Operations
// =============================================================================

func (c *Client) CreateTemplate(ctx context.Context, req api.CreateTemplateRequest) (*api.TemplateResponse, error) {
	var resp api.TemplateResponse
	if err := c.do(ctx, http.MethodPost, "/api/templates", 0, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetTemplate(ctx context.Context, id, workspaceID int64) (*api.TemplateResponse, error) {
	var resp api.TemplateResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/templates/%d", id), workspaceID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTemplates lists templates in the given workspace, optionally filtered by
// type ("title" or "description").
func (c *Client) ListTemplates(ctx context.Context, workspaceID int64, templateType string) ([]api.TemplateResponse, error) {
	path := "/api/templates"
	if templateType != "" {
		path += "?type=" + templateType
	}
	var resp []api.TemplateResponse
	if err := c.do(ctx, http.MethodGet, path, workspaceID, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) UpdateTemplate(ctx context.Context, id, workspaceID int64, req api.UpdateTemplateRequest) (*api.TemplateResponse, error) {
	var resp api.TemplateResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/templates/%d", id), workspaceID, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, id, workspaceID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/templates/%d", id), workspaceID, nil, nil)
}
