package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"system-builder-backend/internal/config"
	"system-builder-backend/internal/database"
)

type HealthHandler struct {
	store *database.Store
	cfg   *config.Config
}

func NewHealthHandler(store *database.Store, cfg *config.Config) *HealthHandler {
	return &HealthHandler{store: store, cfg: cfg}
}

// Health reports database connectivity and which optional components are
// configured. Degraded still answers 200 so load balancers keep routing.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"
	if err := h.store.Ping(c.Request.Context()); err != nil {
		status = "degraded"
		dbStatus = "unreachable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"components": gin.H{
			"database": dbStatus,
			"gemini":   configured(h.cfg.GeminiAPIKey != ""),
			"supabase": configured(h.cfg.SupabaseConfigured()),
		},
	})
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not_configured"
}
