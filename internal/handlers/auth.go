package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/database"
	"system-builder-backend/internal/middleware"
	"system-builder-backend/internal/models"
)

type AuthHandler struct {
	store     *database.Store
	jwtSecret string
	log       *zap.Logger
}

func NewAuthHandler(store *database.Store, jwtSecret string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and a password of at least 8 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindInternal, "failed to hash password", err))
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), req.Email, string(hash), req.FullName)
	if err != nil {
		respondError(c, err)
		return
	}

	token, _, err := middleware.IssueToken(h.jwtSecret, user.ID, user.Email)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindInternal, "failed to issue token", err))
		return
	}

	h.log.Info("user registered", zap.String("user_id", user.ID.String()))
	c.JSON(http.StatusCreated, models.TokenResponse{Token: token, User: *user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		respondError(c, apperr.New(apperr.KindUnauthorized, "invalid email or password"))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(c, apperr.New(apperr.KindUnauthorized, "invalid email or password"))
		return
	}

	if err := h.store.TouchLastLogin(c.Request.Context(), user.ID); err != nil {
		h.log.Warn("failed to record login time", zap.Error(err))
	}

	token, _, err := middleware.IssueToken(h.jwtSecret, user.ID, user.Email)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindInternal, "failed to issue token", err))
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{Token: token, User: *user})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "full_name is required")
		return
	}

	if err := h.store.UpdateUserFullName(c.Request.Context(), userID, req.FullName); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "current_password and a new_password of at least 8 characters are required")
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		respondError(c, apperr.New(apperr.KindUnauthorized, "current password is incorrect"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindInternal, "failed to hash password", err))
		return
	}

	if err := h.store.UpdateUserPassword(c.Request.Context(), userID, string(hash)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
