// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context and context keys.
package appcontext

import (
	"context"

	"codeberg.org/oliverandrich/greengrocer/internal/htmx"
	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"github.com/labstack/echo/v4"
)

// Context keys for storing values in context.Context.
type (
	// CSRFToken is the context key for the CSRF token.
	CSRFToken struct{}
	// CSSPath is the context key for the CSS path.
	CSSPath struct{}
	// JSPath is the context key for the JS path.
	JSPath struct{}
	// User is the context key for the authenticated user.
	User struct{}
)

// Assets holds paths to static assets.
type Assets struct {
	CSSPath string
	JSPath  string
}

// Context is a custom Echo context with typed fields for htmx, assets, and user.
type Context struct {
	echo.Context
	Htmx   *htmx.Request
	Assets *Assets
	User   *models.User // nil if not authenticated
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	return c.User
}

// IsAuthenticated returns true if the user is authenticated.
func (c *Context) IsAuthenticated() bool {
	return c.User != nil
}

// IsAdmin returns true if the authenticated user is an administrator.
func (c *Context) IsAdmin() bool {
	return c.User.IsAdmin()
}

// UserFrom returns the user stored on ctx by WithUser, or nil.
func UserFrom(ctx context.Context) *models.User {
	if user, ok := ctx.Value(User{}).(*models.User); ok {
		return user
	}
	return nil
}

// WithUser stores user on ctx for templates.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, User{}, user)
}

// CurrentUser returns the authenticated user of an echo request. It works
// with both the custom Context and a plain echo.Context.
func CurrentUser(c echo.Context) *models.User {
	if cc, ok := c.(*Context); ok && cc.User != nil {
		return cc.User
	}
	return UserFrom(c.Request().Context())
}
