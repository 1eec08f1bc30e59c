// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/appcontext"
	"codeberg.org/oliverandrich/greengrocer/internal/i18n"
	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"codeberg.org/oliverandrich/greengrocer/internal/services/catalog"
	"codeberg.org/oliverandrich/greengrocer/internal/templates"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func english() context.Context {
	return i18n.WithLocale(context.Background(), language.English)
}

func mango() models.Produce {
	cal := 60.0
	return models.Produce{
		ID:             "0b5f1f7e-8a3c-4c7e-9d2a-1f2e3d4c5b6a",
		Name:           "Mango <Alphonso>",
		Category:       models.CategoryFruit,
		Calories:       &cal,
		Vitamins:       models.StringList{"C", "A"},
		Minerals:       models.MineralMap{"potassium": 168, "magnesium": 10},
		HealthBenefits: models.StringList{"Boosts immunity"},
		IsOrganic:      true,
		ImageURL:       "https://cdn.example.com/mango.jpg",
	}
}

func TestLayout_Head(t *testing.T) {
	ctx := context.WithValue(english(), appcontext.CSRFToken{}, "tok123")
	ctx = context.WithValue(ctx, appcontext.CSSPath{}, "/static/css/app.abcdef12.css")

	out := render(t, ctx, templates.Layout("Title", nil))

	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, `<meta name="csrf-token" content="tok123">`)
	assert.Contains(t, out, `href="/static/css/app.abcdef12.css"`)
	assert.Contains(t, out, "<title>Title | Greengrocer</title>")
	assert.Contains(t, out, `href="/login"`)
	assert.NotContains(t, out, `href="/admin"`)
}

func TestLayout_Navigation(t *testing.T) {
	admin := appcontext.WithUser(english(), &models.User{ID: 1, Role: models.RoleAdmin})
	out := render(t, admin, templates.Layout("", nil))
	assert.Contains(t, out, `href="/admin"`)
	assert.Contains(t, out, `data-api="/auth/logout"`)

	user := appcontext.WithUser(english(), &models.User{ID: 2, Role: models.RoleUser})
	out = render(t, user, templates.Layout("", nil))
	assert.NotContains(t, out, `href="/admin"`)
	assert.NotContains(t, out, `href="/login"`)
}

func TestLayout_Hindi(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), language.Hindi)

	out := render(t, ctx, templates.Layout("", nil))

	assert.Contains(t, out, `<html lang="hi">`)
	assert.Contains(t, out, i18n.T(ctx, "nav_all_fruits"))
}

func TestDetail_EscapesContent(t *testing.T) {
	item := mango()

	out := render(t, english(), templates.Detail(&item))

	assert.Contains(t, out, "Mango &lt;Alphonso&gt;")
	assert.NotContains(t, out, "<Alphonso>")
	assert.Contains(t, out, "potassium")
	assert.Contains(t, out, "Boosts immunity")
	assert.Contains(t, out, "Organic")
	assert.Less(t, bytes.Index([]byte(out), []byte("magnesium")), bytes.Index([]byte(out), []byte("potassium")))
}

func TestSearchResults(t *testing.T) {
	out := render(t, english(), templates.SearchResults([]models.Produce{mango()}))

	assert.Contains(t, out, "1 item")
	assert.Contains(t, out, `href="/fruit/0b5f1f7e-8a3c-4c7e-9d2a-1f2e3d4c5b6a"`)
	assert.NotContains(t, out, "<html")

	out = render(t, english(), templates.SearchResults(nil))
	assert.Contains(t, out, "No items found.")
}

func TestSearch_KeepsQuery(t *testing.T) {
	q := catalog.Query{Term: "man\"go", Category: models.CategoryVegetable, OrganicOnly: true, Sort: catalog.SortCalories}

	out := render(t, english(), templates.Search(nil, q))

	assert.Contains(t, out, `value="man&#34;go"`)
	assert.Contains(t, out, `hx-target="#results"`)
	assert.Contains(t, out, `<option value="vegetable" selected>`)
	assert.Contains(t, out, `<option value="calories" selected>`)
	assert.Contains(t, out, `name="organic" value="true" checked`)
}

func TestSignup_Wizard(t *testing.T) {
	out := render(t, english(), templates.Signup(60*time.Second))

	assert.Contains(t, out, `data-wizard="signup"`)
	assert.Contains(t, out, `data-cooldown="60"`)
	assert.Contains(t, out, `data-step="code" hidden`)
	assert.Equal(t, 6, bytes.Count([]byte(out), []byte(`inputmode="numeric"`)))
	assert.Contains(t, out, "confirmPassword")
}

func TestForgotPassword_HasPasswordStep(t *testing.T) {
	out := render(t, english(), templates.ForgotPassword(time.Minute))

	assert.Contains(t, out, `data-wizard="reset"`)
	assert.Contains(t, out, `data-step="password" hidden`)
}

func TestAdminForm(t *testing.T) {
	out := render(t, english(), templates.AdminForm(nil, false))
	assert.Contains(t, out, `data-api="/fruits/create-fruit"`)
	assert.NotContains(t, out, `type="file"`)

	item := mango()
	out = render(t, english(), templates.AdminForm(&item, true))
	assert.Contains(t, out, `data-api="/fruits/`+item.ID+`"`)
	assert.Contains(t, out, `data-method="put"`)
	assert.Contains(t, out, `type="file"`)
	assert.Contains(t, out, "magnesium: 10\npotassium: 168")
	assert.Contains(t, out, `<option value="fruit" selected>`)
}

func TestAdminList(t *testing.T) {
	out := render(t, english(), templates.AdminList([]models.Produce{mango()}))

	assert.Contains(t, out, `data-delete="/fruits/0b5f1f7e-8a3c-4c7e-9d2a-1f2e3d4c5b6a"`)
	assert.Contains(t, out, `href="/admin/0b5f1f7e-8a3c-4c7e-9d2a-1f2e3d4c5b6a/edit"`)
}

func TestErrorPage(t *testing.T) {
	out := render(t, english(), templates.ErrorPage(404, "missing"))

	assert.Contains(t, out, "Page not found")
	assert.Contains(t, out, "missing")
}

func TestFormatCalories(t *testing.T) {
	v := 52.5
	assert.Equal(t, "52.5", templates.FormatCalories(&v))
	assert.Equal(t, "-", templates.FormatCalories(nil))
}
