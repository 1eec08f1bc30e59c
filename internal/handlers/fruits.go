// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/greengrocer/internal/i18n"
	"codeberg.org/oliverandrich/greengrocer/internal/services/catalog"
	"codeberg.org/oliverandrich/greengrocer/internal/services/media"
	"github.com/labstack/echo/v4"
)

// maxUploadBody leaves room for multipart framing around a MaxSize image.
const maxUploadBody = media.MaxSize + 1<<20

// ImageUploader stores catalog images.
type ImageUploader interface {
	Upload(ctx context.Context, fruitID, contentType string, data []byte) (*media.Result, error)
}

// FruitHandlers serves the catalog JSON API.
type FruitHandlers struct {
	catalog  *catalog.Service
	uploader ImageUploader // nil when uploads are disabled
}

// NewFruits creates the catalog handlers. uploader may be nil.
func NewFruits(catalogSvc *catalog.Service, uploader ImageUploader) *FruitHandlers {
	return &FruitHandlers{catalog: catalogSvc, uploader: uploader}
}

type updateImageRequest struct {
	FruitID  string `json:"fruitId"`
	ImageURL string `json:"imageUrl"`
	Image    string `json:"image"`
}

// QueryFromRequest reads the optional listing parameters q, category,
// organic and sort.
func QueryFromRequest(c echo.Context) catalog.Query {
	organic, _ := strconv.ParseBool(c.QueryParam("organic"))
	return catalog.Query{
		Term:        c.QueryParam("q"),
		Category:    strings.ToLower(c.QueryParam("category")),
		OrganicOnly: organic,
		Sort:        c.QueryParam("sort"),
	}
}

// List returns the catalog (GET /fruits).
func (h *FruitHandlers) List(c echo.Context) error {
	items, err := h.catalog.List(c.Request().Context(), QueryFromRequest(c))
	if err != nil {
		return internalError(c, "fruit_list_failed", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"fruits": items})
}

// Get returns one item (GET /fruits/:id).
func (h *FruitHandlers) Get(c echo.Context) error {
	item, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return catalogError(c, err, "fruit_get_failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"fruit": item})
}

// Create adds an item (POST /fruits/create-fruit).
func (h *FruitHandlers) Create(c echo.Context) error {
	var in catalog.CreateInput
	if err := c.Bind(&in); err != nil {
		return jsonError(c, http.StatusBadRequest, "error_invalid_request")
	}

	item, err := h.catalog.Create(c.Request().Context(), in)
	if err != nil {
		return catalogError(c, err, "fruit_create_failed")
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": i18n.T(c.Request().Context(), "fruit_created"),
		"fruit":   item,
	})
}

// Update changes the allow-listed fields of an item (PUT /fruits/:id).
func (h *FruitHandlers) Update(c echo.Context) error {
	id := c.Param("id")
	if _, err := catalog.ParseID(id); err != nil {
		return jsonError(c, http.StatusBadRequest, "error_invalid_fruit_id")
	}

	var in catalog.UpdateInput
	if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
		return jsonError(c, http.StatusBadRequest, "error_invalid_request")
	}

	item, err := h.catalog.Update(c.Request().Context(), id, in)
	if err != nil {
		return catalogError(c, err, "fruit_update_failed")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": i18n.T(c.Request().Context(), "fruit_updated"),
		"fruit":   item,
	})
}

// Delete removes an item (DELETE /fruits/:id).
func (h *FruitHandlers) Delete(c echo.Context) error {
	if err := h.catalog.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return catalogError(c, err, "fruit_delete_failed")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": i18n.T(c.Request().Context(), "fruit_deleted"),
	})
}

// UploadImage stores an image for an item (POST /fruits/upload-image) and
// returns its URL. The item itself is updated through UpdateImage.
func (h *FruitHandlers) UploadImage(c echo.Context) error {
	r := c.Request()
	if r.ContentLength > maxUploadBody {
		return jsonError(c, http.StatusBadRequest, "error_file_too_large")
	}
	r.Body = http.MaxBytesReader(c.Response(), r.Body, maxUploadBody)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return jsonError(c, http.StatusBadRequest, "error_file_too_large")
		}
		return jsonError(c, http.StatusBadRequest, "error_file_required")
	}
	fruitID := c.FormValue("fruitId")
	contentType := file.Header.Get(echo.HeaderContentType)

	if err := media.Validate(fruitID, contentType, file.Size); err != nil {
		return mediaError(c, err)
	}
	if h.uploader == nil {
		return jsonError(c, http.StatusServiceUnavailable, "error_uploads_disabled")
	}
	// The id becomes part of the object key, so only existing items qualify.
	item, err := h.catalog.Get(r.Context(), fruitID)
	if err != nil {
		return catalogError(c, err, "upload_lookup_failed")
	}

	src, err := file.Open()
	if err != nil {
		return internalError(c, "upload_open_failed", err)
	}
	defer func() { _ = src.Close() }()
	data, err := io.ReadAll(src)
	if err != nil {
		return internalError(c, "upload_read_failed", err)
	}

	result, err := h.uploader.Upload(r.Context(), item.ID, contentType, data)
	if err != nil {
		return mediaError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// UpdateImage stores an image URL on an item (PUT /fruits/update-image).
// "image" is accepted as an alias of "imageUrl".
func (h *FruitHandlers) UpdateImage(c echo.Context) error {
	var req updateImageRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "error_invalid_request")
	}
	url := req.ImageURL
	if url == "" {
		url = req.Image
	}

	if err := h.catalog.SetImage(c.Request().Context(), req.FruitID, url); err != nil {
		return catalogError(c, err, "fruit_image_update_failed")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":  i18n.T(c.Request().Context(), "image_updated"),
		"imageUrl": url,
	})
}

func catalogError(c echo.Context, err error, event string) error {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		body := map[string]any{"error": verr.Message}
		if len(verr.Fields) > 0 {
			body["errors"] = verr.Fields
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, catalog.ErrInvalidID):
		return jsonError(c, http.StatusBadRequest, "error_invalid_fruit_id")
	case errors.Is(err, catalog.ErrNotFound):
		return jsonError(c, http.StatusNotFound, "error_fruit_not_found")
	case errors.Is(err, catalog.ErrDuplicateName):
		return jsonError(c, http.StatusConflict, "error_duplicate_fruit")
	default:
		return internalError(c, event, err)
	}
}

func mediaError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, media.ErrMissingFile):
		return jsonError(c, http.StatusBadRequest, "error_file_required")
	case errors.Is(err, media.ErrMissingID):
		return jsonError(c, http.StatusBadRequest, "error_fruit_id_required")
	case errors.Is(err, media.ErrNotImage):
		return jsonError(c, http.StatusBadRequest, "error_not_image")
	case errors.Is(err, media.ErrTooLarge):
		return jsonError(c, http.StatusBadRequest, "error_file_too_large")
	default:
		slog.ErrorContext(c.Request().Context(), "image_upload_failed", "error", err)
		return jsonError(c, http.StatusInternalServerError, "error_upload_failed")
	}
}
