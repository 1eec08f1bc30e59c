// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/greengrocer/internal/appcontext"
	"codeberg.org/oliverandrich/greengrocer/internal/config"
	"codeberg.org/oliverandrich/greengrocer/internal/htmx"
	"codeberg.org/oliverandrich/greengrocer/internal/i18n"
	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"codeberg.org/oliverandrich/greengrocer/internal/repository"
	"codeberg.org/oliverandrich/greengrocer/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	loginPath  = "/login"
	uploadPath = "/fruits/upload-image"
)

// UserLoader loads the user behind a session.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

func setupMiddleware(e *echo.Echo, cfg *config.Config, assets *appcontext.Assets, sessions *session.Manager, users UserLoader) {
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())
	e.Use(bodyLimit(cfg.Server.MaxBodySize))
	e.Use(staticCacheHeaders())
	e.Use(csrfMiddleware(cfg))
	e.Use(csrfToContext())
	e.Use(i18nMiddleware())
	e.Use(customContext(assets))
	e.Use(AuthMiddleware(sessions, users))
}

// bodyLimit caps request bodies at sizeMB. Image uploads enforce their own
// limit so an oversized file gets a proper JSON error.
func bodyLimit(sizeMB int) echo.MiddlewareFunc {
	if sizeMB <= 0 {
		sizeMB = 12
	}
	return middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: fmt.Sprintf("%dM", sizeMB),
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == uploadPath
		},
	})
}

// csrfMiddleware configures CSRF protection.
func csrfMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:csrf_token",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/static/")
		},
	})
}

// csrfToContext copies the CSRF token to the request context.
func csrfToContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := c.Get("csrf").(string); ok {
				ctx := context.WithValue(c.Request().Context(), appcontext.CSRFToken{}, token)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// i18nMiddleware sets the locale based on Accept-Language header.
func i18nMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acceptLang := c.Request().Header.Get("Accept-Language")
			lang := i18n.MatchLanguage(acceptLang)
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// staticCacheHeaders adds cache headers for static assets.
func staticCacheHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/static/") {
				if isHashedAsset(path) {
					c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
				} else {
					c.Response().Header().Set("Cache-Control", "no-cache")
				}
			}
			return next(c)
		}
	}
}

// AuthMiddleware loads the session user into the custom context and the
// request context. Invalid cookies and deleted users leave the request
// anonymous.
func AuthMiddleware(sessions *session.Manager, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			data, err := sessions.Parse(c.Request())
			if err != nil || data == nil {
				return next(c)
			}

			user, err := users.GetUserByID(c.Request().Context(), data.UserID)
			if err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					slog.ErrorContext(c.Request().Context(), "session_user_load_failed", "user_id", data.UserID, "error", err)
				}
				return next(c)
			}

			c.SetRequest(c.Request().WithContext(appcontext.WithUser(c.Request().Context(), user)))
			if cc, ok := c.(*appcontext.Context); ok {
				cc.User = user
			}
			return next(c)
		}
	}
}

// RequireAuth redirects anonymous browsers to the login page.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if appcontext.CurrentUser(c) != nil {
				return next(c)
			}
			if c.Request().Header.Get(htmx.HeaderRequest) == "true" {
				c.Response().Header().Set(htmx.HeaderRedirect, loginPath)
				return c.NoContent(http.StatusOK)
			}
			return c.Redirect(http.StatusSeeOther, loginPath)
		}
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := appcontext.CurrentUser(c)
			ctx := c.Request().Context()
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, i18n.T(ctx, "error_unauthorized"))
			}
			if !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, i18n.T(ctx, "error_admin_required"))
			}
			return next(c)
		}
	}
}
