// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/greengrocer/internal/i18n"
	"codeberg.org/oliverandrich/greengrocer/internal/services/email"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ContactMailer sends contact form messages.
type ContactMailer interface {
	SendContactNotification(ctx context.Context, operator string, m email.ContactMessage) error
	SendContactAutoReply(ctx context.Context, m email.ContactMessage) error
}

// ContactHandler accepts contact form submissions.
type ContactHandler struct {
	mailer   ContactMailer
	operator string
	validate *validator.Validate
}

// NewContact creates the contact handler. Notifications go to operator.
func NewContact(mailer ContactMailer, operator string) *ContactHandler {
	return &ContactHandler{
		mailer:   mailer,
		operator: operator,
		validate: validator.New(),
	}
}

type contactRequest struct {
	Name    string `json:"name" validate:"min=2"`
	Email   string `json:"email" validate:"email"`
	Subject string `json:"subject" validate:"min=5"`
	Message string `json:"message" validate:"min=10"`
}

var contactMessages = map[string]string{
	"Name":    "error_contact_name",
	"Email":   "error_contact_email",
	"Subject": "error_contact_subject",
	"Message": "error_contact_message",
}

// Submit sends the operator notification and the sender auto-reply
// (POST /contact). A failed auto-reply is logged but does not fail the request.
func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "error_invalid_request")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return jsonError(c, http.StatusBadRequest, contactMessages[verrs[0].Field()])
		}
		return jsonError(c, http.StatusBadRequest, "error_invalid_request")
	}

	ctx := c.Request().Context()
	msg := email.ContactMessage{Name: req.Name, Email: req.Email, Subject: req.Subject, Message: req.Message}

	if err := h.mailer.SendContactNotification(ctx, h.operator, msg); err != nil {
		slog.ErrorContext(ctx, "contact_failed", "error", err)
		return jsonError(c, http.StatusInternalServerError, "error_contact_failed")
	}
	if err := h.mailer.SendContactAutoReply(ctx, msg); err != nil {
		slog.WarnContext(ctx, "contact_autoreply_failed", "email", req.Email, "error", err)
	}

	slog.InfoContext(ctx, "contact_sent", "email", req.Email)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": i18n.T(ctx, "contact_sent"),
	})
}
