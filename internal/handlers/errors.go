// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/greengrocer/internal/i18n"
	"codeberg.org/oliverandrich/greengrocer/internal/templates"
	"github.com/labstack/echo/v4"
)

// jsonError writes {"error": msg} with msg translated from id.
func jsonError(c echo.Context, status int, id string) error {
	return c.JSON(status, map[string]string{"error": i18n.T(c.Request().Context(), id)})
}

// internalError logs err and answers 500 without leaking details.
func internalError(c echo.Context, event string, err error) error {
	slog.ErrorContext(c.Request().Context(), event, "error", err)
	return jsonError(c, http.StatusInternalServerError, "error_internal")
}

// wantsJSON reports whether the client expects a JSON error body.
func wantsJSON(c echo.Context) bool {
	r := c.Request()
	if strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return true
	}
	path := r.URL.Path
	return strings.HasPrefix(path, "/auth/") || strings.HasPrefix(path, "/fruits") ||
		path == "/contact" && r.Method != http.MethodGet
}

// HTTPErrorHandler renders errors that escape handlers: JSON for API calls,
// an HTML page for browsers.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := ""
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request_failed", "error", err)
		message = i18n.T(c.Request().Context(), "error_internal")
	}
	if message == "" {
		message = http.StatusText(code)
	}

	var renderErr error
	switch {
	case c.Request().Method == http.MethodHead:
		renderErr = c.NoContent(code)
	case wantsJSON(c):
		renderErr = c.JSON(code, map[string]string{"error": message})
	default:
		renderErr = Render(c, code, templates.ErrorPage(code, message))
	}
	if renderErr != nil {
		slog.Error("failed to render error", "error", renderErr)
	}
}
