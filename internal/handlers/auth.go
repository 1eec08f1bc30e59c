// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/greengrocer/internal/i18n"
	"codeberg.org/oliverandrich/greengrocer/internal/repository"
	"codeberg.org/oliverandrich/greengrocer/internal/services/auth"
	"codeberg.org/oliverandrich/greengrocer/internal/services/otp"
	"codeberg.org/oliverandrich/greengrocer/internal/services/session"
	"github.com/labstack/echo/v4"
)

// AuthHandlers serves the verification, registration and session endpoints.
type AuthHandlers struct {
	auth     *auth.Service
	otp      *otp.Service
	sessions *session.Manager
}

// NewAuth creates the auth handlers.
func NewAuth(authSvc *auth.Service, otpSvc *otp.Service, sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{auth: authSvc, otp: otpSvc, sessions: sessions}
}

type sendCodeRequest struct {
	Email string `json:"email"`
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// Token is the ticket returned by a successful code verification.
	Token string `json:"token"`
	// IsVerified is accepted for compatibility; accounts are always created verified.
	IsVerified bool `json:"isVerified"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// SendCode issues a verification code (POST /auth/send-otp).
func (h *AuthHandlers) SendCode(c echo.Context) error {
	var req sendCodeRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "error_invalid_request")
	}

	err := h.otp.Issue(c.Request().Context(), req.Email)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"message": i18n.T(c.Request().Context(), "otp_sent"),
		})
	case errors.Is(err, otp.ErrInvalidEmail):
		return jsonError(c, http.StatusBadRequest, "error_invalid_email")
	case errors.Is(err, otp.ErrSendFailed):
		return jsonError(c, http.StatusInternalServerError, "error_send_failed")
	default:
		return internalError(c, "otp_issue_failed", err)
	}
}

// VerifyCode checks a submitted code (PUT /auth/send-otp). A verified email
// receives a short-lived token for registration or the password reset.
func (h *AuthHandlers) VerifyCode(c echo.Context) error {
	var req verifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "error_invalid_request")
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.OTP) == "" {
		return jsonError(c, http.StatusBadRequest, "error_invalid_otp")
	}

	outcome, err := h.otp.Verify(c.Request().Context(), req.Email, strings.TrimSpace(req.OTP))
	if err != nil {
		return internalError(c, "otp_verify_failed", err)
	}

	switch outcome {
	case otp.Verified:
		token, err := h.otp.Tickets().Issue(repository.NormalizeEmail(req.Email))
		if err != nil {
			return internalError(c, "ticket_issue_failed", err)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success":  true,
			"verified": true,
			"token":    token,
		})
	case otp.Expired:
		return jsonError(c, http.StatusBadRequest, "error_otp_expired")
	default:
		return jsonError(c, http.StatusBadRequest, "error_invalid_otp")
	}
}

// Register creates an account for an email verified through VerifyCode
// (POST /auth/register).
func (h *AuthHandlers) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "error_invalid_request")
	}

	user, err := h.auth.Register(c.Request().Context(), auth.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Ticket:   req.Token,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidTicket) {
			return jsonError(c, http.StatusBadRequest, "error_email_not_verified")
		}
		return h.accountError(c, err, "register_failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": i18n.T(c.Request().Context(), "register_success"),
		"user":    user,
	})
}

// Login starts a session (POST /auth/login).
func (h *AuthHandlers) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "error_invalid_request")
	}

	user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return jsonError(c, http.StatusUnauthorized, "error_invalid_credentials")
		}
		return internalError(c, "login_error", err)
	}

	cookie, err := h.sessions.Create(user.ID, user.Email, user.Role)
	if err != nil {
		return internalError(c, "session_create_failed", err)
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": i18n.T(c.Request().Context(), "login_success"),
		"user":    user,
	})
}

// Logout ends the session (POST /auth/logout).
func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": i18n.T(c.Request().Context(), "logout_success"),
	})
}

// ResetPassword stores a new password for the email proven by the token
// (POST /auth/reset-password).
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "error_invalid_request")
	}

	if _, err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidTicket) || errors.Is(err, auth.ErrUserNotFound) {
			return jsonError(c, http.StatusBadRequest, "error_invalid_token")
		}
		return h.accountError(c, err, "password_reset_failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": i18n.T(c.Request().Context(), "reset_success"),
	})
}

func (h *AuthHandlers) accountError(c echo.Context, err error, event string) error {
	var pwErr *auth.PasswordValidationError
	switch {
	case errors.As(err, &pwErr):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":  pwErr.Error(),
			"errors": map[string]string{"password": strings.Join(pwErr.Messages(), " ")},
		})
	case errors.Is(err, auth.ErrUserExists):
		return jsonError(c, http.StatusConflict, "error_user_exists")
	case errors.Is(err, auth.ErrInvalidName):
		return jsonError(c, http.StatusBadRequest, "error_invalid_name")
	case errors.Is(err, auth.ErrInvalidEmail):
		return jsonError(c, http.StatusBadRequest, "error_invalid_email")
	default:
		return internalError(c, event, err)
	}
}
