// Package handlers is the thin HTTP layer. Handlers bind input, call into
// the store and pipeline, and translate taxonomy errors to status codes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/middleware"
	"system-builder-backend/internal/models"
)

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), models.ErrorResponse{
		Error:   string(apperr.KindOf(err)),
		Message: apperr.Message(err),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   string(apperr.KindValidation),
		Message: message,
	})
}

// requireUser reads the authenticated user id; AuthMiddleware guarantees
// it on protected routes.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error: string(apperr.KindUnauthorized), Message: "authentication required",
		})
		return uuid.Nil, false
	}
	return userID, true
}

func parseProjectID(c *gin.Context) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		respondBadRequest(c, "invalid project id")
		return uuid.Nil, false
	}
	return projectID, true
}
