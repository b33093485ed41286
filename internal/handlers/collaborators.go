package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"system-builder-backend/internal/access"
	"system-builder-backend/internal/database"
	"system-builder-backend/internal/models"
)

type CollaboratorsHandler struct {
	store  *database.Store
	access *access.Controller
	log    *zap.Logger
}

func NewCollaboratorsHandler(store *database.Store, accessCtl *access.Controller, log *zap.Logger) *CollaboratorsHandler {
	return &CollaboratorsHandler{store: store, access: accessCtl, log: log}
}

func (h *CollaboratorsHandler) ListCollaborators(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	if _, err := h.access.RequireRole(c.Request.Context(), projectID, userID, access.RoleViewer); err != nil {
		respondError(c, err)
		return
	}

	collaborators, err := h.store.ListCollaborators(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CollaboratorListResponse{Collaborators: collaborators})
}

func (h *CollaboratorsHandler) AddCollaborator(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	var req models.AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email is required")
		return
	}

	if _, err := h.access.RequireRole(c.Request.Context(), projectID, userID, access.RoleOwner); err != nil {
		respondError(c, err)
		return
	}

	collaborator, err := h.store.AddCollaborator(c.Request.Context(), projectID, req.Email, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("collaborator added",
		zap.String("project_id", projectID.String()),
		zap.String("collaborator_id", collaborator.UserID.String()),
		zap.String("role", collaborator.Role))
	c.JSON(http.StatusCreated, collaborator)
}

func (h *CollaboratorsHandler) RemoveCollaborator(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	collaboratorID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		respondBadRequest(c, "invalid user id")
		return
	}

	if _, err := h.access.RequireRole(c.Request.Context(), projectID, userID, access.RoleOwner); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.RemoveCollaborator(c.Request.Context(), projectID, collaboratorID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "collaborator removed"})
}
