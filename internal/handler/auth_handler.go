package handler

import (
	"errors"
	"net/http"

	"github.com/examgate/examgate-backend/internal/middleware"
	"github.com/examgate/examgate-backend/internal/model"
	"github.com/examgate/examgate-backend/internal/response"
	"github.com/examgate/examgate-backend/internal/service"
	"github.com/examgate/examgate-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService     *service.AuthService
	examineeService *service.ExamineeService
	progressService *service.ProgressService
	behaviorService *service.BehaviorService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	examineeService *service.ExamineeService,
	progressService *service.ProgressService,
	behaviorService *service.BehaviorService,
) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		examineeService: examineeService,
		progressService: progressService,
		behaviorService: behaviorService,
	}
}

// Login godoc
// POST /api/v1/exam/auth/login
// Validates username (email or enroll number) + password, checks for an
// existing session (rejects if active), returns JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	examinee, err := h.examineeService.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(examinee.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateExamineeToken(c.Request.Context(), examinee.ID)
	if err != nil {
		if errors.Is(err, service.ErrSessionAlreadyActive) {
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.behaviorService.RecordAsync(examinee.ID, c.ClientIP(), "login")

	payload := gin.H{
		"token":    token,
		"examinee": examinee,
	}

	// Resolve the examinee's pending exam so the client lands straight in
	// it; no assignment is not an error at login time.
	result, err := h.progressService.Enter(c.Request.Context(), examinee.ID)
	switch {
	case err == nil:
		payload["exam"] = result
	case errors.Is(err, service.ErrExamNotFound):
		payload["exam"] = nil
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, payload)
}

// Me godoc
// GET /api/v1/exam/auth/me
// Returns the profile of the currently authenticated examinee.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examinee, err := h.examineeService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"examinee": examinee})
}

// Logout godoc
// POST /api/v1/exam/auth/logout
// Releases the single-device session so a new login is possible.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.ResetExamineeSession(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	h.behaviorService.RecordAsync(claims.UserID, c.ClientIP(), "logout")

	response.Success(c, http.StatusOK, gin.H{})
}
