// Package domain contains the core domain types and validation logic.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// Template field validation errors
	ErrTemplateNameRequired    = errors.New("template name is required")
	ErrTemplateNameTooLong     = errors.New("template name must be at most 100 characters")
	ErrTemplateContentRequired = errors.New("template content is required")
	ErrTemplateContentTooLong  = errors.New("template content must be at most 256 characters")
	ErrTemplateTypeRequired    = errors.New("template type is required")

	// ErrTemplateTypeInvalid carries the exact message rendered in API
	// responses and in the template form.
	ErrTemplateTypeInvalid = errors.New("Template type must be either 'title' or 'description'")

	// Placeholder validation errors. These are distinct conditions: an empty
	// pair {{}} is malformed input, a missing placeholder is an omission.
	ErrPlaceholderEmpty   = errors.New("template content must contain at least one non-empty placeholder; {{}} is not allowed")
	ErrPlaceholderMissing = errors.New("template content must contain at least one placeholder like {{topic}}")
)

// =============================================================================
// Template Type
// =============================================================================

type TemplateType string

const (
	TemplateTypeTitle       TemplateType = "title"
	TemplateTypeDescription TemplateType = "description"
)

// IsValid checks if the template type is one of the closed set.
func (t TemplateType) IsValid() bool {
	switch t {
	case TemplateTypeTitle, TemplateTypeDescription:
		return true
	default:
		return false
	}
}

// NormalizeType canonicalizes a raw type string: trimmed and lowercased.
// "Title" and "TITLE" both normalize to "title"; the stored form is always
// the canonical one.
func NormalizeType(raw string) TemplateType {
	return TemplateType(strings.ToLower(strings.TrimSpace(raw)))
}

// =============================================================================
// Template
// =============================================================================

// Template represents a reusable title or description with placeholders
// that are filled in when planning a video.
type Template struct {
	ID          int64        `json:"id"`
	Type        TemplateType `json:"type"`
	Name        string       `json:"name"`
	Content     string       `json:"content"`
	WorkspaceID int64        `json:"workspace_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// =============================================================================
// Placeholder Extraction
// =============================================================================

// A placeholder is {{ followed by one or more alphanumerics followed by }}.
// {{}} deliberately does not match; it is detected separately as malformed.
var placeholderRegex = regexp.MustCompile(`\{\{[a-zA-Z0-9]+\}\}`)

const emptyPlaceholderToken = "{{}}"

// ExtractPlaceholders returns the unique placeholder tokens in content,
// delimiters included, in order of first appearance. No placeholders yields
// an empty result; classifying that as an error happens in validation.
func ExtractPlaceholders(content string) []string {
	matches := placeholderRegex.FindAllString(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		tokens = append(tokens, m)
	}
	return tokens
}

// =============================================================================
// Field Validators (Pure)
// =============================================================================

// ValidateTemplateName validates a template name after trimming whitespace.
func ValidateTemplateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrTemplateNameRequired
	}
	if len(name) > 100 {
		return ErrTemplateNameTooLong
	}
	return nil
}

// ValidateTemplateContent validates template content length; placeholder
// rules are checked separately by ValidatePlaceholders.
func ValidateTemplateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrTemplateContentRequired
	}
	if len(content) > 256 {
		return ErrTemplateContentTooLong
	}
	return nil
}

// ValidateTemplateType validates a raw type string case-insensitively against
// the closed set {title, description}. An empty or whitespace-only type is a
// distinct error from an unknown type.
func ValidateTemplateType(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrTemplateTypeRequired
	}
	if !NormalizeType(raw).IsValid() {
		return ErrTemplateTypeInvalid
	}
	return nil
}

// ValidatePlaceholders checks template content for placeholder problems.
// The malformed-token check runs first and short-circuits: content holding
// both {{valid}} and {{}} reports ErrPlaceholderEmpty, never success. Only
// when no {{}} is present does the absence of any well-formed placeholder
// become ErrPlaceholderMissing.
func ValidatePlaceholders(content string) error {
	if strings.Contains(content, emptyPlaceholderToken) {
		return ErrPlaceholderEmpty
	}
	if len(ExtractPlaceholders(content)) == 0 {
		return ErrPlaceholderMissing
	}
	return nil
}

// =============================================================================
// Form Validation
// =============================================================================

// FieldErrors maps a form field name to its validation error. A field with
// no entry is valid.
type FieldErrors map[string]error

// Valid reports whether no field failed validation.
func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

// Messages returns the error message per failed field.
func (fe FieldErrors) Messages() map[string]string {
	if len(fe) == 0 {
		return nil
	}
	out := make(map[string]string, len(fe))
	for field, err := range fe {
		out[field] = err.Error()
	}
	return out
}

// First returns the first failed field's error in a stable field order,
// or nil when the form is valid.
func (fe FieldErrors) First() error {
	for _, field := range []string{"name", "content", "placeholders", "type"} {
		if err, ok := fe[field]; ok {
			return err
		}
	}
	return nil
}

// ValidateTemplateForm runs every field validator independently and returns
// the combined result. Fields do not short-circuit each other: an empty name
// does not suppress the content or type errors.
func ValidateTemplateForm(name, content, rawType string) FieldErrors {
	fe := make(FieldErrors)
	if err := ValidateTemplateName(name); err != nil {
		fe["name"] = err
	}
	if err := ValidateTemplateContent(content); err != nil {
		fe["content"] = err
	}
	if err := ValidatePlaceholders(content); err != nil {
		fe["placeholders"] = err
	}
	if err := ValidateTemplateType(rawType); err != nil {
		fe["type"] = err
	}
	return fe
}

// IsTemplateFormValid reports whether all four field validators pass.
func IsTemplateFormValid(name, content, rawType string) bool {
	return ValidateTemplateForm(name, content, rawType).Valid()
}
