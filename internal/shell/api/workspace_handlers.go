package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vidplan/assistant/internal/core/domain"
)

// =============================================================================
// Workspace Handlers
// =============================================================================

func (h *Handler) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if err := domain.ValidateWorkspaceName(name); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var description *string
	if req.Description != nil {
		if err := domain.ValidateWorkspaceDescription(*req.Description); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		description = domain.NormalizeDescription(*req.Description)
	}

	workspace := &domain.Workspace{
		Name:        name,
		Description: description,
	}

	if err := h.store.CreateWorkspace(r.Context(), workspace); err != nil {
		if isDuplicate(err) {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("A workspace named '%s' already exists", name))
			return
		}
		h.logger.Error("failed to create workspace", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create workspace")
		return
	}

	h.writeJSON(w, http.StatusCreated, workspaceToResponse(workspace))
}

func (h *Handler) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := h.store.ListWorkspaces(r.Context())
	if err != nil {
		h.logger.Error("failed to list workspaces", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list workspaces")
		return
	}

	resp := make([]WorkspaceResponse, 0, len(workspaces))
	for i := range workspaces {
		resp = append(resp, workspaceToResponse(&workspaces[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "workspace id must be an integer")
		return
	}

	workspace, err := h.store.GetWorkspace(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("Workspace with id %d not found", id))
			return
		}
		h.logger.Error("failed to get workspace", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get workspace")
		return
	}

	h.writeJSON(w, http.StatusOK, workspaceToResponse(workspace))
}

func (h *Handler) handleUpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "workspace id must be an integer")
		return
	}

	var req UpdateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	workspace, err := h.store.GetWorkspace(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("Workspace with id %d not found", id))
			return
		}
		h.logger.Error("failed to get workspace", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get workspace")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if workspace.IsDefault() && name != workspace.Name {
			h.writeError(w, http.StatusForbidden, "Cannot rename the default workspace")
			return
		}
		if err := domain.ValidateWorkspaceName(name); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if existing, err := h.store.GetWorkspaceByName(r.Context(), name); err == nil && existing.ID != id {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("A workspace named '%s' already exists", name))
			return
		}
		workspace.Name = name
	}

	if req.Description != nil {
		if err := domain.ValidateWorkspaceDescription(*req.Description); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		workspace.Description = domain.NormalizeDescription(*req.Description)
	}

	if err := h.store.UpdateWorkspace(r.Context(), workspace); err != nil {
		if isDuplicate(err) {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("A workspace named '%s' already exists", workspace.Name))
			return
		}
		h.logger.Error("failed to update workspace", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to update workspace")
		return
	}

	h.writeJSON(w, http.StatusOK, workspaceToResponse(workspace))
}

func (h *Handler) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "workspace id must be an integer")
		return
	}

	if id == domain.DefaultWorkspaceID {
		h.writeError(w, http.StatusForbidden, "Cannot delete the default workspace")
		return
	}

	if _, err := h.store.GetWorkspace(r.Context(), id); err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("Workspace with id %d not found", id))
			return
		}
		h.logger.Error("failed to get workspace", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get workspace")
		return
	}

	count, err := h.store.CountProjects(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to count projects", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to delete workspace")
		return
	}
	if count > 0 {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Cannot delete workspace with %d project(s); move or delete them first", count))
		return
	}

	if err := h.store.DeleteWorkspace(r.Context(), id); err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("Workspace with id %d not found", id))
			return
		}
		h.logger.Error("failed to delete workspace", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to delete workspace")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func workspaceToResponse(w *domain.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:           w.ID,
		Name:         w.Name,
		Description:  w.Description,
		ProjectCount: w.ProjectCount,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}
