package models

import "encoding/json"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Goal        string `json:"goal" binding:"required"`
	Description string `json:"description"`
	Audience    string `json:"audience"`
	UIStyle     string `json:"ui_style"`
	Constraints string `json:"constraints"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type AddCollaboratorRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role"`
}

type RefinePromptRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Prompt    string `json:"prompt" binding:"required"`
	Context   string `json:"context"`
}

type GeneratePlanRequest struct {
	ProjectID   string          `json:"project_id" binding:"required"`
	RefinedSpec json.RawMessage `json:"refined_spec" binding:"required"`
}

type GenerateSystemRequest struct {
	ProjectID   string          `json:"project_id" binding:"required"`
	Plan        json.RawMessage `json:"plan" binding:"required"`
	RefinedSpec json.RawMessage `json:"refined_spec" binding:"required"`
}
