// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"

	"codeberg.org/oliverandrich/greengrocer/internal/appcontext"
	"codeberg.org/oliverandrich/greengrocer/internal/htmx"
	"github.com/labstack/echo/v4"
)

// customContext wraps the Echo context with appcontext.Context.
// It also populates request.Context with asset paths for template access.
func customContext(assets *appcontext.Assets) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, appcontext.CSSPath{}, assets.CSSPath)
			ctx = context.WithValue(ctx, appcontext.JSPath{}, assets.JSPath)
			c.SetRequest(c.Request().WithContext(ctx))

			cc := &appcontext.Context{
				Context: c,
				Htmx:    htmx.ParseRequest(c.Request()),
				Assets:  assets,
			}
			return next(cc)
		}
	}
}
