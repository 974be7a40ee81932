package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	"github.com/ledgerly/securecore/internal/auth/http/dto"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	apperrors "github.com/ledgerly/securecore/internal/errors"
	"github.com/ledgerly/securecore/internal/httputil"
	customValidation "github.com/ledgerly/securecore/internal/validation"
)

// resetNeutralMessage is returned whether or not the account exists.
const resetNeutralMessage = "If the email exists, a reset link has been sent."

// AuthHandler handles HTTP requests for the credential lifecycle: register,
// login, token rotation, logout, and the password change/reset flows. Every
// operation records an audit event after its outcome is known.
type AuthHandler struct {
	credentialUseCase authUseCase.CredentialUseCase
	auditUseCase      authUseCase.AuditUseCase
	logger            *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(
	credentialUseCase authUseCase.CredentialUseCase,
	auditUseCase authUseCase.AuditUseCase,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		credentialUseCase: credentialUseCase,
		auditUseCase:      auditUseCase,
		logger:            logger,
	}
}

// audit records an event with the request's client metadata attached.
func (h *AuthHandler) audit(
	c *gin.Context,
	action authDomain.Action,
	actor string,
	success bool,
	details string,
) {
	if actor == "" {
		actor = authDomain.AnonymousActor
	}
	h.auditUseCase.LogEvent(&authUseCase.Entry{
		Actor:     actor,
		Action:    action,
		Resource:  c.Request.URL.Path,
		Details:   details,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		SessionID: sessionFromContext(c),
		Success:   success,
	})
}

// RegisterHandler creates a local account and issues the first token pair.
// POST /v1/auth/register
// Returns 201 Created with the user and tokens.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, pair, err := h.credentialUseCase.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.audit(c, authDomain.ActionRegister, "", false, "registration failed")
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.ActionRegister, user.ID.String(), true, "")

	c.JSON(http.StatusCreated, dto.AuthResponse{
		User:   dto.MapUserToResponse(user),
		Tokens: dto.MapTokenPairToResponse(pair),
	})
}

// LoginHandler verifies credentials and issues a token pair.
// POST /v1/auth/login
// Returns 200 OK with the user and tokens; failures are uniform 401s.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, pair, err := h.credentialUseCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// The audit trail keeps the attempted email; the response stays
		// generic.
		h.audit(c, authDomain.ActionLoginFailed, "", false, "failed login for "+req.Email)
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.ActionLogin, user.ID.String(), true, "")

	c.JSON(http.StatusOK, dto.AuthResponse{
		User:   dto.MapUserToResponse(user),
		Tokens: dto.MapTokenPairToResponse(pair),
	})
}

// RefreshHandler rotates a refresh token.
// POST /v1/auth/refresh
// Returns 200 OK with a fresh token pair. A replayed rotated token fails 401.
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pair, err := h.credentialUseCase.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.audit(c, authDomain.ActionTokenRefresh, "", false, "refresh token rejected")
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.ActionTokenRefresh, "", true, "")

	c.JSON(http.StatusOK, dto.MapTokenPairToResponse(pair))
}

// LogoutHandler revokes the presented refresh token.
// POST /v1/auth/logout - Requires authentication.
// Returns 204 No Content.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.credentialUseCase.Logout(c.Request.Context(), user.ID, req.RefreshToken); err != nil {
		h.audit(c, authDomain.ActionLogout, user.ID.String(), false, "logout failed")
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.ActionLogout, user.ID.String(), true, "")

	c.Data(http.StatusNoContent, "application/json", nil)
}

// MeHandler returns the authenticated user.
// GET /v1/auth/me - Requires authentication.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// ChangePasswordHandler changes the authenticated user's password. All other
// sessions are revoked; the session presenting the refresh token survives.
// POST /v1/auth/change-password - Requires authentication.
// Returns 204 No Content.
func (h *AuthHandler) ChangePasswordHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	err := h.credentialUseCase.ChangePassword(
		c.Request.Context(),
		user.ID,
		req.CurrentPassword,
		req.NewPassword,
		req.RefreshToken,
	)
	if err != nil {
		h.audit(c, authDomain.ActionPasswordChange, user.ID.String(), false, "password change failed")
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.ActionPasswordChange, user.ID.String(), true, "")

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ForgotPasswordHandler starts the password reset flow. The response is
// identical whether or not the account exists.
// POST /v1/auth/forgot-password
// Returns 200 OK with a neutral message.
func (h *AuthHandler) ForgotPasswordHandler(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	plainToken, err := h.credentialUseCase.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		h.audit(c, authDomain.ActionPasswordResetRequest, "", false, "reset request failed")
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.ActionPasswordResetRequest, "", true, "reset requested for "+req.Email)

	// Token delivery happens out of band (email). It is never echoed in the
	// response, which would hand account takeover to anyone who knows an
	// email address.
	_ = plainToken

	c.JSON(http.StatusOK, dto.MessageResponse{Message: resetNeutralMessage})
}

// ResetPasswordHandler redeems a reset token and sets the new password.
// POST /v1/auth/reset-password
// Returns 204 No Content; invalid or expired tokens fail 401.
func (h *AuthHandler) ResetPasswordHandler(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.credentialUseCase.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.audit(c, authDomain.ActionPasswordReset, "", false, "reset token rejected")
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.audit(c, authDomain.ActionPasswordReset, "", true, "")

	c.Data(http.StatusNoContent, "application/json", nil)
}
