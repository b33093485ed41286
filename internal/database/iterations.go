package database

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/uuid"

	"system-builder-backend/internal/models"
)

// RecordIteration persists one completed generation batch atomically: the
// project row is locked, the next iteration number is max+1, the current
// file view is replaced and the project becomes generated. Any failure
// rolls the whole batch back.
func (s *Store) RecordIteration(ctx context.Context, projectID uuid.UUID, refined, plan, notes json.RawMessage, files models.FileSet) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storageErr("iteration", err)
	}
	defer tx.Rollback()

	// FOR UPDATE serializes concurrent batches on the same project so two
	// of them cannot both read the same max iteration number.
	var status string
	if err := tx.QueryRowContext(ctx, `
		SELECT status FROM projects WHERE id = $1 FOR UPDATE
	`, projectID).Scan(&status); err != nil {
		return 0, storageErr("project", err)
	}

	var iterationNumber int
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(iteration_number), 0) + 1
		FROM project_iterations
		WHERE project_id = $1
	`, projectID).Scan(&iterationNumber); err != nil {
		return 0, storageErr("iteration", err)
	}

	iterationID := uuid.New()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO project_iterations (id, project_id, iteration_number, refined_prompt, plan, review_notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, iterationID, projectID, iterationNumber, []byte(refined), nullableJSON(plan), nullableJSON(notes)); err != nil {
		return 0, storageErr("iteration", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM generated_files WHERE project_id = $1
	`, projectID); err != nil {
		return 0, storageErr("generated files", err)
	}

	for _, filename := range sortedFilenames(files) {
		content := files[filename]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO generated_files (id, project_id, iteration_id, filename, content, file_type, size_bytes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New(), projectID, iterationID, filename, content,
			models.FileTypeOf(filename), int64(len(content))); err != nil {
			return 0, storageErr("generated file", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2
	`, models.StatusGenerated, projectID); err != nil {
		return 0, storageErr("project", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr("iteration", err)
	}
	return iterationNumber, nil
}

func (s *Store) ListIterations(ctx context.Context, projectID uuid.UUID) ([]models.Iteration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, iteration_number, refined_prompt, COALESCE(plan, 'null'), COALESCE(review_notes, 'null'), created_at
		FROM project_iterations
		WHERE project_id = $1
		ORDER BY iteration_number DESC
	`, projectID)
	if err != nil {
		return nil, storageErr("iterations", err)
	}
	defer rows.Close()

	var iterations []models.Iteration
	for rows.Next() {
		var it models.Iteration
		if err := rows.Scan(
			&it.ID, &it.ProjectID, &it.IterationNumber,
			&it.RefinedPrompt, &it.Plan, &it.ReviewNotes, &it.CreatedAt,
		); err != nil {
			return nil, storageErr("iterations", err)
		}
		iterations = append(iterations, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterations", err)
	}
	return iterations, nil
}

// ListFiles returns the current file view without content, for listings.
func (s *Store) ListFiles(ctx context.Context, projectID uuid.UUID) ([]models.GeneratedFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, iteration_id, filename, file_type, size_bytes, created_at
		FROM generated_files
		WHERE project_id = $1
		ORDER BY filename
	`, projectID)
	if err != nil {
		return nil, storageErr("generated files", err)
	}
	defer rows.Close()

	var files []models.GeneratedFile
	for rows.Next() {
		var f models.GeneratedFile
		if err := rows.Scan(
			&f.ID, &f.ProjectID, &f.IterationID, &f.Filename,
			&f.FileType, &f.SizeBytes, &f.CreatedAt,
		); err != nil {
			return nil, storageErr("generated files", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("generated files", err)
	}
	return files, nil
}

func (s *Store) GetFile(ctx context.Context, projectID uuid.UUID, filename string) (*models.GeneratedFile, error) {
	var f models.GeneratedFile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, iteration_id, filename, content, file_type, size_bytes, created_at
		FROM generated_files
		WHERE project_id = $1 AND filename = $2
	`, projectID, filename).Scan(
		&f.ID, &f.ProjectID, &f.IterationID, &f.Filename,
		&f.Content, &f.FileType, &f.SizeBytes, &f.CreatedAt,
	)
	if err != nil {
		return nil, storageErr("file", err)
	}
	return &f, nil
}

// CurrentFileSet loads the full current file view with content, for
// exports.
func (s *Store) CurrentFileSet(ctx context.Context, projectID uuid.UUID) (models.FileSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, content FROM generated_files WHERE project_id = $1
	`, projectID)
	if err != nil {
		return nil, storageErr("generated files", err)
	}
	defer rows.Close()

	files := models.FileSet{}
	for rows.Next() {
		var filename, content string
		if err := rows.Scan(&filename, &content); err != nil {
			return nil, storageErr("generated files", err)
		}
		files[filename] = content
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("generated files", err)
	}
	return files, nil
}

func sortedFilenames(files models.FileSet) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return []byte(raw)
}
