// Package e2e provides end-to-end testing utilities for the assistant API.
package e2e

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vidplan/assistant/internal/shell/api"
	"github.com/vidplan/assistant/internal/shell/client"
)

// ErrNoActiveWorkspace indicates a scoped operation was called before
// SetupWorkspace (or after teardown). This is a harness usage bug.
var ErrNoActiveWorkspace = errors.New("no active workspace; call SetupWorkspace first")

// =============================================================================
// Harness
// =============================================================================

// Harness drives the API through an isolated, disposable workspace so E2E
// tests never touch each other's data or the default workspace.
//
// A harness owns at most one active workspace at a time. All scoped
// operations fail fast with ErrNoActiveWorkspace until SetupWorkspace has
// run. TeardownWorkspace cleans up on a best-effort basis and never fails
// the test.
type Harness struct {
	client      *client.Client
	logger      *slog.Logger
	workspaceID int64
}

// NewHarness creates a harness for the server at baseURL.
func NewHarness(baseURL string, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{
		client: client.NewClient(baseURL),
		logger: logger,
	}
}

// WorkspaceID returns the active workspace ID, or zero when none is active.
func (h *Harness) WorkspaceID() int64 {
	return h.workspaceID
}

// SetupWorkspace creates a uniquely named workspace and makes it the active
// scope for all subsequent operations. Failures propagate so the test fails
// before touching shared data.
func (h *Harness) SetupWorkspace(ctx context.Context) error {
	name := "E2E Workspace " + uuid.NewString()[:8]

	w, err := h.client.CreateWorkspace(ctx, api.CreateWorkspaceRequest{Name: name})
	if err != nil {
		return fmt.Errorf("setup workspace: %w", err)
	}

	h.workspaceID = w.ID
	h.logger.Info("e2e workspace created", "id", w.ID, "name", name)
	return nil
}

// TeardownWorkspace deletes every project in the active workspace and then
// the workspace itself. It is a no-op without an active workspace. The
// active ID is always cleared, and failures are logged rather than
// returned: cleanup problems must not mask the test's own result.
func (h *Harness) TeardownWorkspace(ctx context.Context) {
	if h.workspaceID == 0 {
		return
	}
	id := h.workspaceID
	defer func() {
		h.workspaceID = 0
	}()

	projects, err := h.client.ListProjects(ctx, id)
	if err != nil {
		h.logger.Warn("teardown: failed to list projects", "workspace", id, "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range projects {
		p := p
		g.Go(func() error {
			if err := h.client.DeleteProject(gctx, p.ID, id); err != nil {
				h.logger.Warn("teardown: failed to delete project",
					"project", p.ID, "workspace", id, "error", err)
			}
			return nil
		})
	}
	g.Wait()

	if err := h.client.DeleteWorkspace(ctx, id); err != nil {
		h.logger.Warn("teardown: failed to delete workspace", "workspace", id, "error", err)
		return
	}
	h.logger.Info("e2e workspace removed", "id", id)
}

// =============================================================================
// Scoped Operations
// =============================================================================

func (h *Harness) CreateProject(ctx context.Context, name string) (*api.ProjectResponse, error) {
	if h.workspaceID == 0 {
		return nil, ErrNoActiveWorkspace
	}
	wid := h.workspaceID
	return h.client.CreateProject(ctx, api.CreateProjectRequest{
		Name:        name,
		WorkspaceID: &wid,
	})
}

func (h *Harness) GetProject(ctx context.Context, id int64) (*api.ProjectResponse, error) {
	if h.workspaceID == 0 {
		return nil, ErrNoActiveWorkspace
	}
	return h.client.GetProject(ctx, id, h.workspaceID)
}

func (h *Harness) ListProjects(ctx context.Context) ([]api.ProjectResponse, error) {
	if h.workspaceID == 0 {
		return nil, ErrNoActiveWorkspace
	}
	return h.client.ListProjects(ctx, h.workspaceID)
}

func (h *Harness) DeleteProject(ctx context.Context, id int64) error {
	if h.workspaceID == 0 {
		return ErrNoActiveWorkspace
	}
	return h.client.DeleteProject(ctx, id, h.workspaceID)
}

func (h *Harness) CreateTemplate(ctx context.Context, templateType, name, content string) (*api.TemplateResponse, error) {
	if h.workspaceID == 0 {
		return nil, ErrNoActiveWorkspace
	}
	wid := h.workspaceID
	return h.client.CreateTemplate(ctx, api.CreateTemplateRequest{
		Type:        templateType,
		Name:        name,
		Content:     content,
		WorkspaceID: &wid,
	})
}

func (h *Harness) ListTemplates(ctx context.Context, templateType string) ([]api.TemplateResponse, error) {
	if h.workspaceID == 0 {
		return nil, ErrNoActiveWorkspace
	}
	return h.client.ListTemplates(ctx, h.workspaceID, templateType)
}

func (h *Harness) DeleteTemplate(ctx context.Context, id int64) error {
	if h.workspaceID == 0 {
		return ErrNoActiveWorkspace
	}
	return h.client.DeleteTemplate(ctx, id, h.workspaceID)
}

// ListAllProjects reads projects without workspace scoping, which the server
// resolves to the default workspace. Useful for asserting isolation.
func (h *Harness) ListAllProjects(ctx context.Context) ([]api.ProjectResponse, error) {
	return h.client.ListProjects(ctx, 0)
}
