package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vidplan/assistant/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	// Open database connection
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", 0, "failed to open database", ErrConnectionFailed)
	}

	// SQLite serializes writes; a single pooled connection also keeps
	// :memory: databases from splitting across connections.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", 0, "failed to ping database", ErrConnectionFailed)
	}

	// Run migrations
	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", 0, err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// classifyConstraint maps SQLite constraint failures to store sentinels.
func classifyConstraint(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return ErrForeignKey
	}
	return err
}

// =============================================================================
// Workspace Operations
// =============================================================================

// workspaceRow represents a workspace row in the database.
type workspaceRow struct {
	ID           int64   `db:"id"`
	Name         string  `db:"name"`
	Description  *string `db:"description"`
	ProjectCount int64   `db:"project_count"`
	CreatedAt    string  `db:"created_at"`
	UpdatedAt    string  `db:"updated_at"`
}

const workspaceColumns = `
	w.id, w.name, w.description, w.created_at, w.updated_at,
	(SELECT COUNT(*) FROM projects p WHERE p.workspace_id = w.id) AS project_count`

func (s *SQLiteStore) CreateWorkspace(ctx context.Context, w *domain.Workspace) error {
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now

	query := `
		INSERT INTO workspaces (name, description, created_at, updated_at)
		VALUES (:name, :description, :created_at, :updated_at)`

	row := map[string]any{
		"name":        w.Name,
		"description": w.Description,
		"created_at":  now.Format(time.RFC3339),
		"updated_at":  now.Format(time.RFC3339),
	}

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("CreateWorkspace", "workspace", 0, err.Error(), classifyConstraint(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return NewStoreError("CreateWorkspace", "workspace", 0, err.Error(), err)
	}
	w.ID = id

	return nil
}

func (s *SQLiteStore) GetWorkspace(ctx context.Context, id int64) (*domain.Workspace, error) {
	query := `SELECT` + workspaceColumns + ` FROM workspaces w WHERE w.id = ?`

	var row workspaceRow
	err := s.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetWorkspace", "workspace", id, "workspace not found", ErrNotFound)
		}
		return nil, NewStoreError("GetWorkspace", "workspace", id, err.Error(), err)
	}

	return rowToWorkspace(&row), nil
}

func (s *SQLiteStore) GetWorkspaceByName(ctx context.Context, name string) (*domain.Workspace, error) {
	query := `SELECT` + workspaceColumns + ` FROM workspaces w WHERE lower(w.name) = lower(?)`

	var row workspaceRow
	err := s.db.GetContext(ctx, &row, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetWorkspaceByName", "workspace", 0, "workspace not found", ErrNotFound)
		}
		return nil, NewStoreError("GetWorkspaceByName", "workspace", 0, err.Error(), err)
	}

	return rowToWorkspace(&row), nil
}

func (s *SQLiteStore) UpdateWorkspace(ctx context.Context, w *domain.Workspace) error {
	w.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE workspaces SET
			name = :name,
			description = :description,
			updated_at = :updated_at
		WHERE id = :id`

	row := map[string]any{
		"id":          w.ID,
		"name":        w.Name,
		"description": w.Description,
		"updated_at":  w.UpdatedAt.Format(time.RFC3339),
	}

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("UpdateWorkspace", "workspace", w.ID, err.Error(), classifyConstraint(err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("UpdateWorkspace", "workspace", w.ID, "workspace not found", ErrNotFound)
	}

	return nil
}

func (s *SQLiteStore) DeleteWorkspace(ctx context.Context, id int64) error {
	query := `DELETE FROM workspaces WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return NewStoreError("DeleteWorkspace", "workspace", id, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("DeleteWorkspace", "workspace", id, "workspace not found", ErrNotFound)
	}

	return nil
}

func (s *SQLiteStore) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	query := `SELECT` + workspaceColumns + ` FROM workspaces w ORDER BY w.created_at DESC, w.id DESC`

	var rows []workspaceRow
	err := s.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, NewStoreError("ListWorkspaces", "workspace", 0, err.Error(), err)
	}

	workspaces := make([]domain.Workspace, 0, len(rows))
	for i := range rows {
		workspaces = append(workspaces, *rowToWorkspace(&rows[i]))
	}

	return workspaces, nil
}

func (s *SQLiteStore) CountProjects(ctx context.Context, workspaceID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM projects WHERE workspace_id = ?`

	var count int64
	err := s.db.GetContext(ctx, &count, query, workspaceID)
	if err != nil {
		return 0, NewStoreError("CountProjects", "workspace", workspaceID, err.Error(), err)
	}

	return count, nil
}

// =============================================================================
// Project Operations
// =============================================================================

// projectRow represents a project row in the database.
type projectRow struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
	Status      string  `db:"status"`
	WorkspaceID int64   `db:"workspace_id"`
	VideoTitle  *string `db:"video_title"`
	CreatedAt   string  `db:"created_at"`
	UpdatedAt   string  `db:"updated_at"`
}

func (s *SQLiteStore) CreateProject(ctx context.Context, p *domain.Project) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO projects (name, description, video_title, status, workspace_id, created_at, updated_at)
		VALUES (:name, :description, :video_title, :status, :workspace_id, :created_at, :updated_at)`

	row := map[string]any{
		"name":         p.Name,
		"description":  p.Description,
		"video_title":  p.VideoTitle,
		"status":       string(p.Status),
		"workspace_id": p.WorkspaceID,
		"created_at":   now.Format(time.RFC3339),
		"updated_at":   now.Format(time.RFC3339),
	}

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("CreateProject", "project", 0, err.Error(), classifyConstraint(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return NewStoreError("CreateProject", "project", 0, err.Error(), err)
	}
	p.ID = id

	return nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	query := `SELECT * FROM projects WHERE id = ?`

	var row projectRow
	err := s.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetProject", "project", id, "project not found", ErrNotFound)
		}
		return nil, NewStoreError("GetProject", "project", id, err.Error(), err)
	}

	return rowToProject(&row), nil
}

func (s *SQLiteStore) GetProjectByName(ctx context.Context, workspaceID int64, name string) (*domain.Project, error) {
	query := `SELECT * FROM projects WHERE workspace_id = ? AND lower(name) = lower(?)`

	var row projectRow
	err := s.db.GetContext(ctx, &row, query, workspaceID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetProjectByName", "project", 0, "project not found", ErrNotFound)
		}
		return nil, NewStoreError("GetProjectByName", "project", 0, err.Error(), err)
	}

	return rowToProject(&row), nil
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, p *domain.Project) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE projects SET
			name = :name,
			description = :description,
			video_title = :video_title,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id`

	row := map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"video_title": p.VideoTitle,
		"status":      string(p.Status),
		"updated_at":  p.UpdatedAt.Format(time.RFC3339),
	}

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("UpdateProject", "project", p.ID, err.Error(), classifyConstraint(err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("UpdateProject", "project", p.ID, "project not found", ErrNotFound)
	}

	return nil
}

func (s *SQLiteStore) DeleteProject(ctx context.Context, id int64) error {
	query := `DELETE FROM projects WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return NewStoreError("DeleteProject", "project", id, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("DeleteProject", "project", id, "project not found", ErrNotFound)
	}

	return nil
}

func (s *SQLiteStore) ListProjects(ctx context.Context, workspaceID int64) ([]domain.Project, error) {
	query := `SELECT * FROM projects WHERE workspace_id = ? ORDER BY created_at DESC, id DESC`

	var rows []projectRow
	err := s.db.SelectContext(ctx, &rows, query, workspaceID)
	if err != nil {
		return nil, NewStoreError("ListProjects", "project", 0, err.Error(), err)
	}

	projects := make([]domain.Project, 0, len(rows))
	for i := range rows {
		projects = append(projects, *rowToProject(&rows[i]))
	}

	return projects, nil
}

// =============================================================================
// Template Operations
// =============================================================================

// templateRow represents a template row in the database.
type templateRow struct {
	ID          int64  `db:"id"`
	Type        string `db:"type"`
	Name        string `db:"name"`
	Content     string `db:"content"`
	WorkspaceID int64  `db:"workspace_id"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (s *SQLiteStore) CreateTemplate(ctx context.Context, t *domain.Template) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `
		INSERT INTO templates (type, name, content, workspace_id, created_at, updated_at)
		VALUES (:type, :name, :content, :workspace_id, :created_at, :updated_at)`

	row := map[string]any{
		"type":         string(t.Type),
		"name":         t.Name,
		"content":      t.Content,
		"workspace_id": t.WorkspaceID,
		"created_at":   now.Format(time.RFC3339),
		"updated_at":   now.Format(time.RFC3339),
	}

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("CreateTemplate", "template", 0, err.Error(), classifyConstraint(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return NewStoreError("CreateTemplate", "template", 0, err.Error(), err)
	}
	t.ID = id

	return nil
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, id, workspaceID int64) (*domain.Template, error) {
	query := `SELECT * FROM templates WHERE id = ? AND workspace_id = ?`

	var row templateRow
	err := s.db.GetContext(ctx, &row, query, id, workspaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetTemplate", "template", id, "template not found", ErrNotFound)
		}
		return nil, NewStoreError("GetTemplate", "template", id, err.Error(), err)
	}

	return rowToTemplate(&row), nil
}

func (s *SQLiteStore) FindTemplateByContent(ctx context.Context, workspaceID int64, typ domain.TemplateType, content string, excludeID int64) (*domain.Template, error) {
	query := `
		SELECT * FROM templates
		WHERE workspace_id = ? AND type = ? AND lower(content) = lower(?) AND id <> ?`

	var row templateRow
	err := s.db.GetContext(ctx, &row, query, workspaceID, string(typ), content, excludeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("FindTemplateByContent", "template", 0, "template not found", ErrNotFound)
		}
		return nil, NewStoreError("FindTemplateByContent", "template", 0, err.Error(), err)
	}

	return rowToTemplate(&row), nil
}

func (s *SQLiteStore) UpdateTemplate(ctx context.Context, t *domain.Template) error {
	t.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE templates SET
			type = :type,
			name = :name,
			content = :content,
			updated_at = :updated_at
		WHERE id = :id AND workspace_id = :workspace_id`

	row := map[string]any{
		"id":           t.ID,
		"workspace_id": t.WorkspaceID,
		"type":         string(t.Type),
		"name":         t.Name,
		"content":      t.Content,
		"updated_at":   t.UpdatedAt.Format(time.RFC3339),
	}

	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("UpdateTemplate", "template", t.ID, err.Error(), classifyConstraint(err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("UpdateTemplate", "template", t.ID, "template not found", ErrNotFound)
	}

	return nil
}

func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id, workspaceID int64) error {
	query := `DELETE FROM templates WHERE id = ? AND workspace_id = ?`

	result, err := s.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return NewStoreError("DeleteTemplate", "template", id, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("DeleteTemplate", "template", id, "template not found", ErrNotFound)
	}

	return nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context, workspaceID int64, filter TemplateFilter) ([]domain.Template, error) {
	query := `SELECT * FROM templates WHERE workspace_id = ?`
	args := []any{workspaceID}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var rows []templateRow
	err := s.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, NewStoreError("ListTemplates", "template", 0, err.Error(), err)
	}

	templates := make([]domain.Template, 0, len(rows))
	for i := range rows {
		templates = append(templates, *rowToTemplate(&rows[i]))
	}

	return templates, nil
}

// =============================================================================
// Row Conversion Functions
// =============================================================================

func rowToWorkspace(row *workspaceRow) *domain.Workspace {
	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, row.UpdatedAt)

	return &domain.Workspace{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		ProjectCount: row.ProjectCount,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

func rowToProject(row *projectRow) *domain.Project {
	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, row.UpdatedAt)

	return &domain.Project{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		VideoTitle:  row.VideoTitle,
		Status:      domain.ProjectStatus(row.Status),
		WorkspaceID: row.WorkspaceID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

func rowToTemplate(row *templateRow) *domain.Template {
	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, row.UpdatedAt)

	return &domain.Template{
		ID:          row.ID,
		Type:        domain.TemplateType(row.Type),
		Name:        row.Name,
		Content:     row.Content,
		WorkspaceID: row.WorkspaceID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}
