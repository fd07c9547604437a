package api

import "time"

// =============================================================================
// Request Types
// =============================================================================

// CreateWorkspaceRequest is the request body for creating a workspace.
type CreateWorkspaceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// UpdateWorkspaceRequest is the request body for updating a workspace.
// All fields are optional; absent fields are left unchanged.
type UpdateWorkspaceRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	VideoTitle  *string `json:"video_title,omitempty"`
	Status      *string `json:"status,omitempty"`
	WorkspaceID *int64  `json:"workspace_id,omitempty"`
}

// UpdateProjectRequest is the request body for updating a project.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	VideoTitle  *string `json:"video_title,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// CreateTemplateRequest is the request body for creating a template.
type CreateTemplateRequest struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Content     string `json:"content"`
	WorkspaceID *int64 `json:"workspace_id,omitempty"`
}

// UpdateTemplateRequest is the request body for updating a template.
type UpdateTemplateRequest struct {
	Type    *string `json:"type,omitempty"`
	Name    *string `json:"name,omitempty"`
	Content *string `json:"content,omitempty"`
}

// =============================================================================
// Response Types
// =============================================================================

// WorkspaceResponse is the API representation of a workspace.
type WorkspaceResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	ProjectCount int64     `json:"project_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectResponse is the API representation of a project.
type ProjectResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	VideoTitle  *string   `json:"video_title"`
	Status      string    `json:"status"`
	WorkspaceID int64     `json:"workspace_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TemplateResponse is the API representation of a template.
type TemplateResponse struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	WorkspaceID int64     `json:"workspace_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RootResponse is returned by the root endpoint.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the error body for all endpoints.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
