package database

import (
	"context"

	"github.com/google/uuid"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/models"
)

// AddCollaborator grants a viewer or editor role by email. The owner
// already outranks both roles and cannot be added.
func (s *Store) AddCollaborator(ctx context.Context, projectID uuid.UUID, email, role string) (*models.Collaborator, error) {
	if role == "" {
		role = models.RoleViewer
	}
	if role != models.RoleViewer && role != models.RoleEditor {
		return nil, apperr.Newf(apperr.KindValidation, "invalid role %q, must be viewer or editor", role)
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var ownerID uuid.UUID
	if err := s.db.QueryRowContext(ctx,
		`SELECT owner_id FROM projects WHERE id = $1`, projectID,
	).Scan(&ownerID); err != nil {
		return nil, storageErr("project", err)
	}
	if ownerID == user.ID {
		return nil, apperr.New(apperr.KindValidation, "project owner cannot be added as a collaborator")
	}

	collaborator := models.Collaborator{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      role,
		Email:     user.Email,
		FullName:  user.FullName,
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO project_collaborators (project_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING added_at
	`, projectID, user.ID, role).Scan(&collaborator.AddedAt)
	if err != nil {
		return nil, storageErr("collaborator", err)
	}
	return &collaborator, nil
}

func (s *Store) ListCollaborators(ctx context.Context, projectID uuid.UUID) ([]models.Collaborator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.project_id, c.user_id, c.role, u.email, u.full_name, c.added_at
		FROM project_collaborators c
		JOIN users u ON u.id = c.user_id
		WHERE c.project_id = $1
		ORDER BY c.added_at
	`, projectID)
	if err != nil {
		return nil, storageErr("collaborators", err)
	}
	defer rows.Close()

	collaborators := make([]models.Collaborator, 0)
	for rows.Next() {
		var c models.Collaborator
		if err := rows.Scan(&c.ProjectID, &c.UserID, &c.Role, &c.Email, &c.FullName, &c.AddedAt); err != nil {
			return nil, storageErr("collaborators", err)
		}
		collaborators = append(collaborators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("collaborators", err)
	}
	return collaborators, nil
}

func (s *Store) RemoveCollaborator(ctx context.Context, projectID, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM project_collaborators
		WHERE project_id = $1 AND user_id = $2
	`, projectID, userID)
	if err != nil {
		return storageErr("collaborator", err)
	}
	return rowsAffected(result, "collaborator")
}
