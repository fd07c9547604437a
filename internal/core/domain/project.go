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
	ErrProjectNameRequired       = errors.New("project name is required")
	ErrProjectNameTooLong        = errors.New("project name must be at most 255 characters")
	ErrProjectDescriptionTooLong = errors.New("project description must be at most 2000 characters")
	ErrProjectVideoTitleTooLong  = errors.New("video title must be at most 255 characters")
	ErrProjectStatusInvalid      = errors.New("project status must be one of: planned, in_progress, completed, archived")
)

// =============================================================================
// Project Status
// =============================================================================

type ProjectStatus string

const (
	StatusPlanned    ProjectStatus = "planned"
	StatusInProgress ProjectStatus = "in_progress"
	StatusCompleted  ProjectStatus = "completed"
	StatusArchived   ProjectStatus = "archived"
)

// IsValid checks if the status is one of the closed set.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	default:
		return false
	}
}

// =============================================================================
// Project
// =============================================================================

// Project represents a planned YouTube video.
type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	VideoTitle  *string       `json:"video_title"`
	Status      ProjectStatus `json:"status"`
	WorkspaceID int64         `json:"workspace_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// =============================================================================
// Validation (Pure)
// =============================================================================

// ValidateProjectName validates a project name after trimming whitespace.
func ValidateProjectName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrProjectNameRequired
	}
	if len(name) > 255 {
		return ErrProjectNameTooLong
	}
	return nil
}

// ValidateProjectDescription validates an optional description.
func ValidateProjectDescription(description string) error {
	if len(description) > 2000 {
		return ErrProjectDescriptionTooLong
	}
	return nil
}

// ValidateVideoTitle validates an optional working video title.
func ValidateVideoTitle(title string) error {
	if len(title) > 255 {
		return ErrProjectVideoTitleTooLong
	}
	return nil
}

// ValidateProjectStatus validates a status string against the closed set.
func ValidateProjectStatus(status string) error {
	if !ProjectStatus(status).IsValid() {
		return ErrProjectStatusInvalid
	}
	return nil
}
