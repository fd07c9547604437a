package domain

import (
	"errors"
	"strings"
	"time"
)

// =============================================================================
// Errors
// =============================================================================

var (
	ErrWorkspaceNameRequired       = errors.New("workspace name is required")
	ErrWorkspaceNameTooLong        = errors.New("workspace name must be at most 100 characters")
	ErrWorkspaceDescriptionTooLong = errors.New("workspace description must be at most 500 characters")
)

// DefaultWorkspaceID is the seeded workspace every installation starts with.
// It cannot be renamed or deleted; existing data without an explicit
// workspace belongs to it.
const DefaultWorkspaceID int64 = 1

// =============================================================================
// Workspace
// =============================================================================

// Workspace is a tenant-like grouping scope that isolates projects and
// templates from other workspaces.
type Workspace struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	ProjectCount int64     `json:"project_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsDefault reports whether this is the protected default workspace.
func (w *Workspace) IsDefault() bool {
	return w.ID == DefaultWorkspaceID
}

// =============================================================================
// Validation (Pure)
// =============================================================================

// ValidateWorkspaceName validates a workspace name after trimming whitespace.
func ValidateWorkspaceName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrWorkspaceNameRequired
	}
	if len(name) > 100 {
		return ErrWorkspaceNameTooLong
	}
	return nil
}

// ValidateWorkspaceDescription validates an optional description.
func ValidateWorkspaceDescription(description string) error {
	if len(description) > 500 {
		return ErrWorkspaceDescriptionTooLong
	}
	return nil
}

// NormalizeDescription converts an empty or whitespace-only description to
// nil so it is stored as NULL rather than an empty string.
func NormalizeDescription(description string) *string {
	if strings.TrimSpace(description) == "" {
		return nil
	}
	return &description
}
