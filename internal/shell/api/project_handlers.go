package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vidplan/assistant/internal/core/domain"
)

// =============================================================================
// Project Handlers
// =============================================================================

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	// Workspace from body, else header, else default.
	workspaceID := domain.DefaultWorkspaceID
	if req.WorkspaceID != nil {
		workspaceID = *req.WorkspaceID
	} else if id, ok, err := headerWorkspace(r); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "X-Workspace-Id header must be an integer")
		return
	} else if ok {
		workspaceID = id
	}

	if _, err := h.store.GetWorkspace(r.Context(), workspaceID); err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("Workspace with id %d not found", workspaceID))
			return
		}
		h.logger.Error("failed to get workspace", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	name := strings.TrimSpace(req.Name)
	if err := domain.ValidateProjectName(name); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var description *string
	if req.Description != nil {
		if err := domain.ValidateProjectDescription(*req.Description); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		description = domain.NormalizeDescription(*req.Description)
	}

	var videoTitle *string
	if req.VideoTitle != nil {
		if err := domain.ValidateVideoTitle(*req.VideoTitle); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		videoTitle = domain.NormalizeDescription(*req.VideoTitle)
	}

	status := domain.StatusPlanned
	if req.Status != nil {
		if err := domain.ValidateProjectStatus(*req.Status); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		status = domain.ProjectStatus(*req.Status)
	}

	if existing, err := h.store.GetProjectByName(r.Context(), workspaceID, name); err == nil && existing != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("A project named '%s' already exists", name))
		return
	}

	project := &domain.Project{
		Name:        name,
		Description: description,
		VideoTitle:  videoTitle,
		Status:      status,
		WorkspaceID: workspaceID,
	}

	if err := h.store.CreateProject(r.Context(), project); err != nil {
		if isDuplicate(err) {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("A project named '%s' already exists", name))
			return
		}
		h.logger.Error("failed to create project", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	h.writeJSON(w, http.StatusCreated, projectToResponse(project))
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "X-Workspace-Id header must be an integer")
		return
	}

	projects, err := h.store.ListProjects(r.Context(), workspaceID)
	if err != nil {
		h.logger.Error("failed to list projects", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}

	resp := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		resp = append(resp, projectToResponse(&projects[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "project id must be an integer")
		return
	}

	project, ok := h.fetchScopedProject(w, r, id)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, projectToResponse(project))
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "project id must be an integer")
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	project, ok := h.fetchScopedProject(w, r, id)
	if !ok {
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := domain.ValidateProjectName(name); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if existing, err := h.store.GetProjectByName(r.Context(), project.WorkspaceID, name); err == nil && existing.ID != id {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("A project named '%s' already exists", name))
			return
		}
		project.Name = name
	}

	if req.Description != nil {
		if err := domain.ValidateProjectDescription(*req.Description); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		project.Description = domain.NormalizeDescription(*req.Description)
	}

	if req.VideoTitle != nil {
		if err := domain.ValidateVideoTitle(*req.VideoTitle); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		project.VideoTitle = domain.NormalizeDescription(*req.VideoTitle)
	}

	if req.Status != nil {
		if err := domain.ValidateProjectStatus(*req.Status); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		project.Status = domain.ProjectStatus(*req.Status)
	}

	if err := h.store.UpdateProject(r.Context(), project); err != nil {
		if isDuplicate(err) {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("A project named '%s' already exists", project.Name))
			return
		}
		h.logger.Error("failed to update project", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	h.writeJSON(w, http.StatusOK, projectToResponse(project))
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "project id must be an integer")
		return
	}

	if _, ok := h.fetchScopedProject(w, r, id); !ok {
		return
	}

	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("Project with id %d not found", id))
			return
		}
		h.logger.Error("failed to delete project", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fetchScopedProject loads a project by ID and enforces the X-Workspace-Id
// scope when the header is present: a project outside that workspace is
// reported as not found. Writes the error response itself on failure.
func (h *Handler) fetchScopedProject(w http.ResponseWriter, r *http.Request, id int64) (*domain.Project, bool) {
	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("Project with id %d not found", id))
			return nil, false
		}
		h.logger.Error("failed to get project", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get project")
		return nil, false
	}

	workspaceID, ok, err := headerWorkspace(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "X-Workspace-Id header must be an integer")
		return nil, false
	}
	if ok && project.WorkspaceID != workspaceID {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("Project with id %d not found", id))
		return nil, false
	}

	return project, true
}

func projectToResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		VideoTitle:  p.VideoTitle,
		Status:      string(p.Status),
		WorkspaceID: p.WorkspaceID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
