package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gulfassure/quoting-api/internal/auth"
	"github.com/gulfassure/quoting-api/internal/domain"
	"github.com/gulfassure/quoting-api/internal/service"
	"go.uber.org/zap"
)

// AuthHandler handles login and session introspection
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Log in
// @Description Verifies credentials and issues a session token. The session runs as the user's highest-precedence role for its whole lifetime; there is no mid-session role switch.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse "Token and session role"
// @Failure 400 {object} domain.ErrorResponse "Invalid request body"
// @Failure 401 {object} domain.ErrorResponse "Invalid credentials"
// @Failure 403 {object} domain.ErrorResponse "Account deactivated"
// @Failure 500 {object} domain.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Me godoc
// @Summary Current session
// @Description Returns the authenticated user's identity and session role.
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Session info"
// @Failure 401 {object} domain.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"userId":      userCtx.UserID,
		"username":    userCtx.Username,
		"displayName": userCtx.DisplayName,
		"initials":    userCtx.GetDisplayNameInitials(),
		"roles":       userCtx.RolesAsStrings(),
		"activeRole":  userCtx.ActiveRole,
	})
}
