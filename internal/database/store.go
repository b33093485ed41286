// Package database is the SQL project store: users, projects, iterations,
// generated files and collaborators, with cascade ownership expressed in
// the schema rather than application code.
package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/models"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func NewStore(connectionString string) (*Store, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "failed to ping database", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperr.Wrap(apperr.KindStorage, "database unreachable", err)
	}
	return nil
}

// storageErr maps driver errors to the application taxonomy: missing rows
// to not_found, unique violations to conflict, everything else to storage.
func storageErr(message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Wrap(apperr.KindNotFound, message+" not found", err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return apperr.Wrap(apperr.KindConflict, message+" already exists", err)
	}
	return apperr.Wrap(apperr.KindStorage, "failed to access "+message, err)
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, fullName string) (*models.User, error) {
	user := models.User{
		ID:       uuid.New(),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		FullName: fullName,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, user.ID, user.Email, passwordHash, fullName).Scan(&user.CreatedAt)
	if err != nil {
		return nil, storageErr("user", err)
	}
	user.PasswordHash = passwordHash
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, created_at, last_login
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, strings.TrimSpace(email)).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CreatedAt, &user.LastLogin,
	)
	if err != nil {
		return nil, storageErr("user", err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, created_at, last_login
		FROM users
		WHERE id = $1
	`, userID).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.CreatedAt, &user.LastLogin,
	)
	if err != nil {
		return nil, storageErr("user", err)
	}
	return &user, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET last_login = NOW() WHERE id = $1
	`, userID)
	return storageErr("user", err)
}

func (s *Store) UpdateUserFullName(ctx context.Context, userID uuid.UUID, fullName string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET full_name = $1 WHERE id = $2
	`, fullName, userID)
	if err != nil {
		return storageErr("user", err)
	}
	return rowsAffected(result, "user")
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1 WHERE id = $2
	`, passwordHash, userID)
	if err != nil {
		return storageErr("user", err)
	}
	return rowsAffected(result, "user")
}

func rowsAffected(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return storageErr(entity, err)
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, entity+" not found")
	}
	return nil
}
