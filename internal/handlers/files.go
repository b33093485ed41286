package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"system-builder-backend/internal/access"
	"system-builder-backend/internal/database"
	"system-builder-backend/internal/models"
)

type FilesHandler struct {
	store  *database.Store
	access *access.Controller
}

func NewFilesHandler(store *database.Store, accessCtl *access.Controller) *FilesHandler {
	return &FilesHandler{store: store, access: accessCtl}
}

func (h *FilesHandler) ListFiles(c *gin.Context) {
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

	files, err := h.store.ListFiles(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	if files == nil {
		files = []models.GeneratedFile{}
	}

	c.JSON(http.StatusOK, models.FileListResponse{Files: files})
}

func (h *FilesHandler) GetFile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	filename := strings.TrimPrefix(c.Param("filename"), "/")
	if !models.ValidFilename(filename) {
		respondBadRequest(c, "invalid filename")
		return
	}

	if _, err := h.access.RequireRole(c.Request.Context(), projectID, userID, access.RoleViewer); err != nil {
		respondError(c, err)
		return
	}

	file, err := h.store.GetFile(c.Request.Context(), projectID, filename)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}
