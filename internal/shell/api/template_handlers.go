package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vidplan/assistant/internal/core/domain"
	"github.com/vidplan/assistant/internal/shell/store"
)

// =============================================================================
// Template Handlers
// =============================================================================

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

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
		h.writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	if fieldErrs := domain.ValidateTemplateForm(req.Name, req.Content, req.Type); !fieldErrs.Valid() {
		h.writeError(w, http.StatusUnprocessableEntity, fieldErrs.First().Error())
		return
	}

	template := &domain.Template{
		Type:        domain.NormalizeType(req.Type),
		Name:        strings.TrimSpace(req.Name),
		Content:     strings.TrimSpace(req.Content),
		WorkspaceID: workspaceID,
	}

	if existing, err := h.store.FindTemplateByContent(r.Context(), workspaceID, template.Type, template.Content, 0); err == nil {
		h.writeError(w, http.StatusConflict,
			fmt.Sprintf("Template with this content already exists (ID: %d)", existing.ID))
		return
	}

	if err := h.store.CreateTemplate(r.Context(), template); err != nil {
		if isDuplicate(err) {
			h.writeError(w, http.StatusConflict, "Template with this content already exists")
			return
		}
		h.logger.Error("failed to create template", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	h.writeJSON(w, http.StatusCreated, templateToResponse(template))
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "X-Workspace-Id header must be an integer")
		return
	}

	var filter store.TemplateFilter
	if raw := r.URL.Query().Get("type"); raw != "" {
		if err := domain.ValidateTemplateType(raw); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		filter.Type = domain.NormalizeType(raw)
	}

	templates, err := h.store.ListTemplates(r.Context(), workspaceID, filter)
	if err != nil {
		h.logger.Error("failed to list templates", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}

	resp := make([]TemplateResponse, 0, len(templates))
	for i := range templates {
		resp = append(resp, templateToResponse(&templates[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "template id must be an integer")
		return
	}

	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "X-Workspace-Id header must be an integer")
		return
	}

	template, err := h.store.GetTemplate(r.Context(), id, workspaceID)
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		h.logger.Error("failed to get template", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}

	h.writeJSON(w, http.StatusOK, templateToResponse(template))
}

func (h *Handler) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "template id must be an integer")
		return
	}

	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "X-Workspace-Id header must be an integer")
		return
	}

	var req UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	template, err := h.store.GetTemplate(r.Context(), id, workspaceID)
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		h.logger.Error("failed to get template", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}

	dupCheckNeeded := false

	if req.Type != nil {
		if err := domain.ValidateTemplateType(*req.Type); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		newType := domain.NormalizeType(*req.Type)
		if newType != template.Type {
			template.Type = newType
			dupCheckNeeded = true
		}
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := domain.ValidateTemplateName(name); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		template.Name = name
	}

	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if err := domain.ValidateTemplateContent(content); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := domain.ValidatePlaceholders(content); err != nil {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if !strings.EqualFold(content, template.Content) {
			dupCheckNeeded = true
		}
		template.Content = content
	}

	if dupCheckNeeded {
		if _, err := h.store.FindTemplateByContent(r.Context(), workspaceID, template.Type, template.Content, id); err == nil {
			h.writeError(w, http.StatusConflict, "Template with this content already exists")
			return
		}
	}

	if err := h.store.UpdateTemplate(r.Context(), template); err != nil {
		if isDuplicate(err) {
			h.writeError(w, http.StatusConflict, "Template with this content already exists")
			return
		}
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		h.logger.Error("failed to update template", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to update template")
		return
	}

	h.writeJSON(w, http.StatusOK, templateToResponse(template))
}

func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "template id must be an integer")
		return
	}

	workspaceID, err := scopedWorkspace(r)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "X-Workspace-Id header must be an integer")
		return
	}

	if err := h.store.DeleteTemplate(r.Context(), id, workspaceID); err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		h.logger.Error("failed to delete template", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func templateToResponse(t *domain.Template) TemplateResponse {
	return TemplateResponse{
		ID:          t.ID,
		Type:        string(t.Type),
		Name:        t.Name,
		Content:     t.Content,
		WorkspaceID: t.WorkspaceID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
