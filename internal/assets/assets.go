// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

// Package assets provides embedded static assets with content-hashed filenames.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFS embed.FS

const (
	cssFile = "css/app.css"
	jsFile  = "js/app.js"
)

var (
	cssPath string
	jsPath  string

	// hashed maps a fingerprinted name (css/app.1a2b3c4d.css) to the embedded file.
	hashed = map[string]string{}
)

func init() {
	cssPath = "/static/" + fingerprint(cssFile)
	jsPath = "/static/" + fingerprint(jsFile)
	slog.Debug("loaded asset paths", "css", cssPath, "js", jsPath)
}

// fingerprint returns name with the first 8 hex characters of its SHA-256
// inserted before the extension.
func fingerprint(name string) string {
	data, err := staticFS.ReadFile("static/" + name)
	if err != nil {
		slog.Error("failed to read asset", "name", name, "error", err)
		return name
	}
	sum := sha256.Sum256(data)
	ext := path.Ext(name)
	out := strings.TrimSuffix(name, ext) + "." + hex.EncodeToString(sum[:4]) + ext
	hashed[out] = name
	return out
}

// CSSPath returns the path to the main CSS file.
func CSSPath() string {
	return cssPath
}

// JSPath returns the path to the main JS file.
func JSPath() string {
	return jsPath
}

// FileServer returns an http.Handler that serves embedded static files.
// Fingerprinted names resolve to the underlying file.
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}
	files := http.FileServer(http.FS(sub))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name, ok := hashed[strings.TrimPrefix(r.URL.Path, "/")]; ok {
			r2 := r.Clone(r.Context())
			r2.URL.Path = "/" + name
			files.ServeHTTP(w, r2)
			return
		}
		files.ServeHTTP(w, r)
	})
}
