package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"system-builder-backend/internal/access"
	"system-builder-backend/internal/database"
	"system-builder-backend/internal/models"
)

type ProjectsHandler struct {
	store  *database.Store
	access *access.Controller
	log    *zap.Logger
}

func NewProjectsHandler(store *database.Store, accessCtl *access.Controller, log *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{store: store, access: accessCtl, log: log}
}

func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name and goal are required")
		return
	}

	project, err := h.store.CreateProject(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", userID.String()))
	c.JSON(http.StatusCreated, project)
}

func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	search := c.Query("search")
	status := c.Query("status")

	projects, total, err := h.store.ListProjects(c.Request.Context(), userID, search, status, page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	pages := (total + perPage - 1) / perPage

	c.JSON(http.StatusOK, models.ProjectListResponse{
		Projects: projects,
		Pagination: models.Pagination{
			Page:    page,
			PerPage: perPage,
			Total:   total,
			Pages:   pages,
		},
	})
}

func (h *ProjectsHandler) GetProject(c *gin.Context) {
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

	iterations, err := h.store.ListIterations(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	files, err := h.store.ListFiles(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProjectDetailResponse{
		Project:    *project,
		Iterations: iterations,
		Files:      files,
	})
}

func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	if _, err := h.access.RequireRole(c.Request.Context(), projectID, userID, access.RoleEditor); err != nil {
		respondError(c, err)
		return
	}

	project, err := h.store.UpdateProject(c.Request.Context(), projectID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *ProjectsHandler) ArchiveProject(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	if _, err := h.access.RequireRole(c.Request.Context(), projectID, userID, access.RoleOwner); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.ArchiveProject(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("project archived", zap.String("project_id", projectID.String()))
	c.JSON(http.StatusOK, gin.H{"message": "project archived", "status": models.StatusArchived})
}

func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	if _, err := h.access.RequireRole(c.Request.Context(), projectID, userID, access.RoleOwner); err != nil {
		respondError(c, err)
		return
	}

	if err := h.store.DeleteProject(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("project deleted", zap.String("project_id", projectID.String()))
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}
