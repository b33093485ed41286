package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"system-builder-backend/internal/access"
	"system-builder-backend/internal/database"
	"system-builder-backend/internal/services"
)

type ExportHandler struct {
	store    *database.Store
	access   *access.Controller
	exporter *services.Exporter
	log      *zap.Logger
}

func NewExportHandler(store *database.Store, accessCtl *access.Controller, exporter *services.Exporter, log *zap.Logger) *ExportHandler {
	return &ExportHandler{store: store, access: accessCtl, exporter: exporter, log: log}
}

// ExportProject streams the current file view as a zip. Any participant
// may export; the archive is keyed under the owner in storage.
func (h *ExportHandler) ExportProject(c *gin.Context) {
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

	project, err := h.store.GetProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	files, err := h.store.CurrentFileSet(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	data, filename, publicURL, err := h.exporter.Export(project.OwnerID, projectID, project.Name, files)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("project exported",
		zap.String("project_id", projectID.String()),
		zap.Int("archive_bytes", len(data)))

	if publicURL != "" {
		c.Header("X-Export-URL", publicURL)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zip", data)
}
