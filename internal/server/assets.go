// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/greengrocer/internal/appcontext"
	"codeberg.org/oliverandrich/greengrocer/internal/assets"
	"github.com/labstack/echo/v4"
)

// findAssets returns the fingerprinted asset paths.
func findAssets() *appcontext.Assets {
	a := &appcontext.Assets{
		CSSPath: assets.CSSPath(),
		JSPath:  assets.JSPath(),
	}
	slog.Debug("assets loaded", "css", a.CSSPath, "js", a.JSPath)
	return a
}

// staticHandler serves the embedded assets below /static.
func staticHandler() echo.HandlerFunc {
	return echo.WrapHandler(http.StripPrefix("/static", assets.FileServer()))
}

// isHashedAsset checks if the path contains a hash pattern like .abc12345.
func isHashedAsset(path string) bool {
	parts := strings.Split(path, ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) != 8 {
		return false
	}
	for _, c := range hash {
		isDigit := c >= '0' && c <= '9'
		isHexLetter := c >= 'a' && c <= 'f'
		if !isDigit && !isHexLetter {
			return false
		}
	}
	return true
}
