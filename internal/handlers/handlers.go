// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/appcontext"
	"codeberg.org/oliverandrich/greengrocer/internal/htmx"
	"codeberg.org/oliverandrich/greengrocer/internal/i18n"
	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"codeberg.org/oliverandrich/greengrocer/internal/services/catalog"
	"codeberg.org/oliverandrich/greengrocer/internal/templates"
	"github.com/labstack/echo/v4"
)

// latestCount is the number of items shown on the home page.
const latestCount = 8

// Handlers renders the HTML pages.
type Handlers struct {
	catalog  *catalog.Service
	cooldown time.Duration
	uploads  bool
}

// New creates the page handlers. cooldown is shown by the resend countdown;
// uploads toggles the file input on the admin form.
func New(catalogSvc *catalog.Service, cooldown time.Duration, uploads bool) *Handlers {
	return &Handlers{catalog: catalogSvc, cooldown: cooldown, uploads: uploads}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the home page.
func (h *Handlers) Home(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.catalog.List(ctx, catalog.Query{})
	if err != nil {
		return err
	}
	counts, err := h.catalog.Counts(ctx)
	if err != nil {
		return err
	}
	if len(items) > latestCount {
		items = items[:latestCount]
	}
	return Render(c, http.StatusOK, templates.Home(items, counts))
}

// AllFruits renders the full catalog.
func (h *Handlers) AllFruits(c echo.Context) error {
	q := QueryFromRequest(c)
	q.Term = ""
	return h.listing(c, "all_fruits_title", "/all-fruits", q)
}

// Vegetables renders the vegetables only.
func (h *Handlers) Vegetables(c echo.Context) error {
	q := QueryFromRequest(c)
	q.Term = ""
	q.Category = models.CategoryVegetable
	return h.listing(c, "vegetables_title", "/vegetables", q)
}

func (h *Handlers) listing(c echo.Context, titleID, action string, q catalog.Query) error {
	items, err := h.catalog.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	title := i18n.T(c.Request().Context(), titleID)
	return Render(c, http.StatusOK, templates.Catalog(title, action, items, q))
}

// Search renders the search page, or only the results for htmx requests.
func (h *Handlers) Search(c echo.Context) error {
	q := QueryFromRequest(c)
	items, err := h.catalog.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	c.Response().Header().Add("Vary", htmx.HeaderRequest)
	if isHtmx(c) {
		return Render(c, http.StatusOK, templates.SearchResults(items))
	}
	return Render(c, http.StatusOK, templates.Search(items, q))
}

// Fruit renders a single catalog entry.
func (h *Handlers) Fruit(c echo.Context) error {
	item, err := h.lookup(c)
	if err != nil {
		return err
	}
	return Render(c, http.StatusOK, templates.Detail(item))
}

// Login renders the login page.
func (h *Handlers) Login(c echo.Context) error {
	if appcontext.CurrentUser(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, http.StatusOK, templates.Login())
}

// Signup renders the signup wizard.
func (h *Handlers) Signup(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Signup(h.cooldown))
}

// ForgotPassword renders the password reset wizard.
func (h *Handlers) ForgotPassword(c echo.Context) error {
	return Render(c, http.StatusOK, templates.ForgotPassword(h.cooldown))
}

// Contact renders the contact form.
func (h *Handlers) Contact(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Contact())
}

// About renders the about page.
func (h *Handlers) About(c echo.Context) error {
	return Render(c, http.StatusOK, templates.About())
}

// Admin renders the catalog table.
func (h *Handlers) Admin(c echo.Context) error {
	items, err := h.catalog.List(c.Request().Context(), catalog.Query{})
	if err != nil {
		return err
	}
	return Render(c, http.StatusOK, templates.AdminList(items))
}

// AdminNew renders the create form.
func (h *Handlers) AdminNew(c echo.Context) error {
	return Render(c, http.StatusOK, templates.AdminForm(nil, h.uploads))
}

// AdminEdit renders the edit form.
func (h *Handlers) AdminEdit(c echo.Context) error {
	item, err := h.lookup(c)
	if err != nil {
		return err
	}
	return Render(c, http.StatusOK, templates.AdminForm(item, h.uploads))
}

// lookup loads the item named by the :id parameter. Unknown and malformed
// ids both yield 404.
func (h *Handlers) lookup(c echo.Context) (*models.Produce, error) {
	item, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrInvalidID) {
		return nil, echo.NewHTTPError(http.StatusNotFound, i18n.T(c.Request().Context(), "error_fruit_not_found"))
	}
	return item, err
}

func isHtmx(c echo.Context) bool {
	if cc, ok := c.(*appcontext.Context); ok && cc.Htmx != nil {
		return cc.Htmx.IsHtmx
	}
	return htmx.ParseRequest(c.Request()).IsHtmx
}
