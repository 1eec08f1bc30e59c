// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"slices"
	"strconv"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"github.com/a-h/templ"
)

// AdminList renders the catalog table with edit and delete actions.
func AdminList(items []models.Produce) templ.Component {
	body := page(func(p *writer) {
		p.raw("<h1>")
		p.t("admin_title")
		p.raw(`</h1><p><a class="button" href="/admin/new">`)
		p.t("admin_new")
		p.raw("</a></p><table><thead><tr><th>")
		p.t("field_name")
		p.raw("</th><th>")
		p.t("field_category")
		p.raw("</th><th>")
		p.t("detail_calories")
		p.raw("</th><th>")
		p.t("admin_actions")
		p.raw("</th></tr></thead><tbody>")
		for i := range items {
			item := &items[i]
			p.raw("<tr><td><a")
			p.attr("href", "/fruit/"+item.ID)
			p.raw(">")
			p.text(item.Name)
			p.raw("</a></td><td>")
			badges(p, item)
			p.raw("</td><td>")
			p.text(FormatCalories(item.Calories))
			p.raw(`</td><td class="actions"><a`)
			p.attr("href", "/admin/"+item.ID+"/edit")
			p.raw(">")
			p.t("admin_edit")
			p.raw(`</a><button type="button" class="danger"`)
			p.attr("data-delete", "/fruits/"+item.ID)
			p.attr("data-confirm", T(p.ctx, "admin_confirm_delete"))
			p.attr("data-redirect", "/admin")
			p.raw(">")
			p.t("admin_delete")
			p.raw("</button></td></tr>")
		}
		p.raw("</tbody></table>")
	})
	return page(func(p *writer) {
		p.render(Layout(T(p.ctx, "admin_title"), body))
	})
}

// AdminForm renders the create form when item is nil, the edit form otherwise.
// The file input is shown only when uploads are enabled.
func AdminForm(item *models.Produce, uploads bool) templ.Component {
	title := "admin_new_title"
	if item != nil {
		title = "admin_edit_title"
	}
	body := page(func(p *writer) {
		v := item
		if v == nil {
			v = &models.Produce{Category: models.CategoryFruit}
		}
		p.raw(`<form class="panel wide" data-redirect="/admin"`)
		if item == nil {
			p.attr("data-api", "/fruits/create-fruit")
			p.attr("method", "post")
		} else {
			p.attr("data-api", "/fruits/"+item.ID)
			p.attr("data-method", "put")
			p.attr("data-id", item.ID)
		}
		p.flag("data-upload", uploads)
		p.raw("><h1>")
		p.t(title)
		p.raw("</h1>")
		input(p, "text", "name", "field_name", v.Name, "off")
		p.raw(`<label for="category">`)
		p.t("field_category")
		p.raw(`</label><select id="category" name="category">`)
		option(p, models.CategoryFruit, T(p.ctx, "category_fruit"), v.Category == models.CategoryFruit)
		option(p, models.CategoryVegetable, T(p.ctx, "category_vegetable"), v.Category == models.CategoryVegetable)
		p.raw("</select>")
		textarea(p, "description", "field_description", v.Description, "", "")
		p.raw(`<label for="calories">`)
		p.t("field_calories")
		p.raw(`</label><input type="number" step="any" min="0" id="calories" name="calories"`)
		if v.Calories != nil {
			p.attr("value", FormatCalories(v.Calories))
		}
		p.raw(">")
		textarea(p, "vitamins", "field_vitamins", joinLines(v.Vitamins), "list", "hint_list")
		textarea(p, "minerals", "field_minerals", mineralLines(v.Minerals), "minerals", "hint_minerals")
		textarea(p, "healthBenefits", "field_benefits", joinLines(v.HealthBenefits), "list", "hint_list")
		p.raw(`<label for="seasonalAvailability">`)
		p.t("field_season")
		p.raw(`</label><input type="text" id="seasonalAvailability" name="seasonalAvailability"`)
		p.attr("value", v.SeasonalAvailability)
		p.raw(">")
		textarea(p, "originStory", "field_origin", v.OriginStory, "", "")
		p.raw(`<label for="imageUrl">`)
		p.t("field_image_url")
		p.raw(`</label><input type="url" id="imageUrl" name="imageUrl"`)
		p.attr("value", v.ImageURL)
		p.raw(">")
		if uploads {
			p.raw(`<label for="file">`)
			p.t("field_image")
			p.raw(`</label><input type="file" id="file" name="file" accept="image/*">`)
		}
		p.raw(`<label class="inline"><input type="checkbox" name="isOrganic" value="true"`)
		p.flag("checked", v.IsOrganic)
		p.raw(">")
		p.t("field_is_organic")
		p.raw(`</label><p class="error" data-error></p><div class="actions"><button type="submit">`)
		p.t("admin_save")
		p.raw("</button></div></form>")
	})
	return page(func(p *writer) {
		p.render(Layout(T(p.ctx, title), body))
	})
}

func textarea(p *writer, name, label, value, kind, hint string) {
	p.raw("<label")
	p.attr("for", name)
	p.raw(">")
	p.t(label)
	p.raw("</label>")
	if hint != "" {
		p.raw(`<p class="hint">`)
		p.t(hint)
		p.raw("</p>")
	}
	p.raw("<textarea")
	p.attr("id", name)
	p.attr("name", name)
	if kind != "" {
		p.attr("data-kind", kind)
	}
	p.raw(">")
	p.text(value)
	p.raw("</textarea>")
}

func mineralLines(m models.MineralMap) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+strconv.FormatFloat(m[name], 'f', -1, 64))
	}
	return joinLines(lines)
}
