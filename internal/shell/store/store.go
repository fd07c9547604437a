package store

import (
	"context"

	"github.com/vidplan/assistant/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// TemplateFilter narrows template listings.
type TemplateFilter struct {
	// Type filters by canonical template type when non-empty.
	Type domain.TemplateType
}

// Store defines the persistence interface for assistant entities.
type Store interface {
	// Workspace operations
	CreateWorkspace(ctx context.Context, w *domain.Workspace) error
	GetWorkspace(ctx context.Context, id int64) (*domain.Workspace, error)
	GetWorkspaceByName(ctx context.Context, name string) (*domain.Workspace, error)
	UpdateWorkspace(ctx context.Context, w *domain.Workspace) error
	DeleteWorkspace(ctx context.Context, id int64) error
	ListWorkspaces(ctx context.Context) ([]domain.Workspace, error)
	CountProjects(ctx context.Context, workspaceID int64) (int64, error)

	// Project operations
	CreateProject(ctx context.Context, p *domain.Project) error
	GetProject(ctx context.Context, id int64) (*domain.Project, error)
	GetProjectByName(ctx context.Context, workspaceID int64, name string) (*domain.Project, error)
	UpdateProject(ctx context.Context, p *domain.Project) error
	DeleteProject(ctx context.Context, id int64) error
	ListProjects(ctx context.Context, workspaceID int64) ([]domain.Project, error)

	// Template operations
	CreateTemplate(ctx context.Context, t *domain.Template) error
	GetTemplate(ctx context.Context, id, workspaceID int64) (*domain.Template, error)
	FindTemplateByContent(ctx context.Context, workspaceID int64, typ domain.TemplateType, content string, excludeID int64) (*domain.Template, error)
	UpdateTemplate(ctx context.Context, t *domain.Template) error
	DeleteTemplate(ctx context.Context, id, workspaceID int64) error
	ListTemplates(ctx context.Context, workspaceID int64, filter TemplateFilter) ([]domain.Template, error)

	Close() error
}
