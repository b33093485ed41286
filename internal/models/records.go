package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Project status values. A project only ever moves draft -> generated (on a
// successful generation batch) and draft|generated -> archived (explicit).
const (
	StatusDraft     = "draft"
	StatusGenerated = "generated"
	StatusArchived  = "archived"
)

// Collaborator roles stored in the database. Ownership is derived from
// projects.owner_id and is never a collaborator row.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

type User struct {
	ID           uuid.UUID    `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	FullName     string       `json:"full_name"`
	CreatedAt    time.Time    `json:"created_at"`
	LastLogin    sql.NullTime `json:"-"`
}

type Project struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Goal        string    `json:"goal"`
	Description string    `json:"description"`
	Audience    string    `json:"audience"`
	UIStyle     string    `json:"ui_style"`
	Constraints string    `json:"constraints"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Iteration is one immutable, numbered record of a completed generation
// batch. Rows are append-only and iteration numbers are never reused.
type Iteration struct {
	ID              uuid.UUID       `json:"id"`
	ProjectID       uuid.UUID       `json:"project_id"`
	IterationNumber int             `json:"iteration_number"`
	RefinedPrompt   json.RawMessage `json:"refined_prompt"`
	Plan            json.RawMessage `json:"plan"`
	ReviewNotes     json.RawMessage `json:"review_notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

type GeneratedFile struct {
	ID          uuid.UUID     `json:"id"`
	ProjectID   uuid.UUID     `json:"project_id"`
	IterationID uuid.NullUUID `json:"-"`
	Filename    string        `json:"filename"`
	Content     string        `json:"content"`
	FileType    string        `json:"file_type"`
	SizeBytes   int64         `json:"size_bytes"`
	CreatedAt   time.Time     `json:"created_at"`
}

type Collaborator struct {
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AddedAt   time.Time `json:"added_at"`
}
