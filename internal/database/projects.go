package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"system-builder-backend/internal/access"
	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/models"
)

func (s *Store) CreateProject(ctx context.Context, ownerID uuid.UUID, req *models.CreateProjectRequest) (*models.Project, error) {
	project := models.Project{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Goal:        strings.TrimSpace(req.Goal),
		Description: req.Description,
		Audience:    req.Audience,
		UIStyle:     req.UIStyle,
		Constraints: req.Constraints,
		Status:      models.StatusDraft,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (id, owner_id, name, goal, description, audience, ui_style, constraints, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, project.ID, project.OwnerID, project.Name, project.Goal, project.Description,
		project.Audience, project.UIStyle, project.Constraints, project.Status,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, storageErr("project", err)
	}
	return &project, nil
}

func (s *Store) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, goal, description, audience, ui_style, constraints, status, created_at, updated_at
		FROM projects
		WHERE id = $1
	`, projectID).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Goal, &p.Description, &p.Audience,
		&p.UIStyle, &p.Constraints, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, storageErr("project", err)
	}
	return &p, nil
}

func (s *Store) UpdateProject(ctx context.Context, projectID uuid.UUID, name, description string) (*models.Project, error) {
	var p models.Project
	err := s.db.QueryRowContext(ctx, `
		UPDATE projects
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, owner_id, name, goal, description, audience, ui_style, constraints, status, created_at, updated_at
	`, strings.TrimSpace(name), description, projectID).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Goal, &p.Description, &p.Audience,
		&p.UIStyle, &p.Constraints, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, storageErr("project", err)
	}
	return &p, nil
}

// ArchiveProject is terminal. Archiving an already archived project is a
// conflict rather than a silent no-op.
func (s *Store) ArchiveProject(ctx context.Context, projectID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status <> $1
	`, models.StatusArchived, projectID)
	if err != nil {
		return storageErr("project", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return storageErr("project", err)
	}
	if n == 0 {
		status, statusErr := s.ProjectStatus(ctx, projectID)
		if statusErr != nil {
			return statusErr
		}
		if status == models.StatusArchived {
			return apperr.New(apperr.KindConflict, "project is already archived")
		}
		return apperr.New(apperr.KindNotFound, "project not found")
	}
	return nil
}

// DeleteProject removes the project row; iterations, files and
// collaborator rows go with it through the schema cascades.
func (s *Store) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return storageErr("project", err)
	}
	return rowsAffected(result, "project")
}

func (s *Store) ProjectStatus(ctx context.Context, projectID uuid.UUID) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM projects WHERE id = $1`, projectID).Scan(&status)
	if err != nil {
		return "", storageErr("project", err)
	}
	return status, nil
}

// ListProjects returns the page of projects the user owns or collaborates
// on, most recently updated first, plus the unpaged total.
func (s *Store) ListProjects(ctx context.Context, userID uuid.UUID, search, status string, page, perPage int) ([]models.Project, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	where := []string{`(p.owner_id = $1 OR EXISTS (
		SELECT 1 FROM project_collaborators c
		WHERE c.project_id = p.id AND c.user_id = $1
	))`}
	args := []interface{}{userID}

	if status != "" {
		args = append(args, status)
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects p WHERE "+clause, args...,
	).Scan(&total); err != nil {
		return nil, 0, storageErr("projects", err)
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`
		SELECT p.id, p.owner_id, p.name, p.goal, p.description, p.audience, p.ui_style, p.constraints, p.status, p.created_at, p.updated_at
		FROM projects p
		WHERE %s
		ORDER BY p.updated_at DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, storageErr("projects", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0, perPage)
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.Name, &p.Goal, &p.Description, &p.Audience,
			&p.UIStyle, &p.Constraints, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, storageErr("projects", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr("projects", err)
	}
	return projects, total, nil
}

// ResolveRole answers the access question in one query. Ownership wins
// over any collaborator row; a missing project and an unrelated user are
// indistinguishable (both RoleNone).
func (s *Store) ResolveRole(ctx context.Context, projectID, userID uuid.UUID) (access.Role, error) {
	var stored string
	err := s.db.QueryRowContext(ctx, `
		SELECT CASE WHEN p.owner_id = $2 THEN 'owner' ELSE COALESCE(c.role, '') END
		FROM projects p
		LEFT JOIN project_collaborators c ON c.project_id = p.id AND c.user_id = $2
		WHERE p.id = $1
	`, projectID, userID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return access.RoleNone, nil
	}
	if err != nil {
		return access.RoleNone, storageErr("project role", err)
	}
	if stored == "owner" {
		return access.RoleOwner, nil
	}
	return access.ParseRole(stored), nil
}
