package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"system-builder-backend/internal/access"
	"system-builder-backend/internal/agents"
	"system-builder-backend/internal/models"
)

// GenerationHandler fronts the three pipeline operations. Refine and plan
// are stateless transformations; only generate-system persists anything.
type GenerationHandler struct {
	refiner  *agents.Refiner
	planner  *agents.Planner
	pipeline *agents.Pipeline
	access   *access.Controller
	log      *zap.Logger
}

func NewGenerationHandler(
	refiner *agents.Refiner,
	planner *agents.Planner,
	pipeline *agents.Pipeline,
	accessCtl *access.Controller,
	log *zap.Logger,
) *GenerationHandler {
	return &GenerationHandler{
		refiner:  refiner,
		planner:  planner,
		pipeline: pipeline,
		access:   accessCtl,
		log:      log,
	}
}

func (h *GenerationHandler) RefinePrompt(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.RefinePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "project_id and prompt are required")
		return
	}

	projectID, ok := h.checkEditor(c, req.ProjectID, userID)
	if !ok {
		return
	}

	spec, err := h.refiner.Refine(c.Request.Context(), req.Prompt, req.Context)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("prompt refined", zap.String("project_id", projectID.String()))
	c.JSON(http.StatusOK, models.RefineResponse{Refined: *spec, Original: req.Prompt})
}

func (h *GenerationHandler) GeneratePlan(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "project_id and refined_spec are required")
		return
	}

	projectID, ok := h.checkEditor(c, req.ProjectID, userID)
	if !ok {
		return
	}

	var spec models.RefinedSpec
	if err := json.Unmarshal(req.RefinedSpec, &spec); err != nil {
		respondBadRequest(c, "refined_spec is not a valid refined specification")
		return
	}

	plan, err := h.planner.GeneratePlan(c.Request.Context(), &spec)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("plan generated", zap.String("project_id", projectID.String()))
	c.JSON(http.StatusOK, models.PlanResponse{Plan: *plan})
}

func (h *GenerationHandler) GenerateSystem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.GenerateSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "project_id, plan and refined_spec are required")
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		respondBadRequest(c, "invalid project id")
		return
	}

	var spec models.RefinedSpec
	if err := json.Unmarshal(req.RefinedSpec, &spec); err != nil {
		respondBadRequest(c, "refined_spec is not a valid refined specification")
		return
	}
	var plan models.Plan
	if err := json.Unmarshal(req.Plan, &plan); err != nil {
		respondBadRequest(c, "plan is not a valid plan")
		return
	}

	result, err := h.pipeline.RunGenerationBatch(c.Request.Context(), projectID, userID, &plan, &spec)
	if err != nil {
		respondError(c, err)
		return
	}

	sizes := make(map[string]int, len(result.Files))
	for filename, content := range result.Files {
		sizes[filename] = len(content)
	}

	c.JSON(http.StatusOK, models.GenerateSystemResponse{
		Files:           sizes,
		TotalFiles:      len(result.Files),
		Review:          result.Review,
		RefactorMessage: result.RefactorMessage,
		IterationNumber: result.IterationNumber,
	})
}

// checkEditor parses the body-supplied project id and gates on editor
// role. The pipeline re-checks for generate-system; refine and plan gate
// here only.
func (h *GenerationHandler) checkEditor(c *gin.Context, rawProjectID string, userID uuid.UUID) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(rawProjectID)
	if err != nil {
		respondBadRequest(c, "invalid project id")
		return uuid.Nil, false
	}
	if _, err := h.access.RequireRole(c.Request.Context(), projectID, userID, access.RoleEditor); err != nil {
		respondError(c, err)
		return uuid.Nil, false
	}
	return projectID, true
}
