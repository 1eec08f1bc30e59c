// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"slices"
	"strings"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"codeberg.org/oliverandrich/greengrocer/internal/services/catalog"
	"github.com/a-h/templ"
)

// Home renders the landing page with catalog counts and the latest items.
func Home(latest []models.Produce, counts map[string]int64) templ.Component {
	body := page(func(p *writer) {
		p.raw(`<section class="hero"><h1>`)
		p.t("home_title")
		p.raw("</h1><p>")
		p.t("app_tagline")
		p.raw(`</p><div class="stats"><div><strong>`)
		p.text(formatInt(counts[models.CategoryFruit]))
		p.raw("</strong> ")
		p.t("stat_fruits")
		p.raw("</div><div><strong>")
		p.text(formatInt(counts[models.CategoryVegetable]))
		p.raw("</strong> ")
		p.t("stat_vegetables")
		p.raw(`</div></div><p><a class="button" href="/all-fruits">`)
		p.t("home_browse")
		p.raw("</a></p></section><h2>")
		p.t("home_latest")
		p.raw("</h2>")
		grid(p, latest)
	})
	return page(func(p *writer) {
		p.render(Layout("", body))
	})
}

// Catalog renders a titled listing with category and sort controls.
func Catalog(title, action string, items []models.Produce, q catalog.Query) templ.Component {
	body := page(func(p *writer) {
		p.raw("<h1>")
		p.text(title)
		p.raw("</h1>")
		filters(p, action, q, false)
		p.raw(`<p class="hint">`)
		p.text(TPlural(p.ctx, "catalog_count", len(items)))
		p.raw("</p>")
		grid(p, items)
	})
	return page(func(p *writer) {
		p.render(Layout(title, body))
	})
}

// Search renders the search page. Typing re-renders #results through htmx.
func Search(items []models.Produce, q catalog.Query) templ.Component {
	body := page(func(p *writer) {
		p.raw("<h1>")
		p.t("search_title")
		p.raw("</h1>")
		filters(p, "/search", q, true)
		p.raw(`<div id="results">`)
		p.render(SearchResults(items))
		p.raw("</div>")
	})
	return page(func(p *writer) {
		p.render(Layout(T(p.ctx, "search_title"), body))
	})
}

// SearchResults renders the result fragment swapped in by htmx.
func SearchResults(items []models.Produce) templ.Component {
	return page(func(p *writer) {
		p.raw(`<p class="hint">`)
		p.text(TPlural(p.ctx, "catalog_count", len(items)))
		p.raw("</p>")
		grid(p, items)
	})
}

func filters(p *writer, action string, q catalog.Query, search bool) {
	p.raw(`<form class="filters" method="get"`)
	p.attr("action", action)
	if search {
		p.attr("hx-get", action)
		p.attr("hx-target", "#results")
		p.attr("hx-trigger", "input changed delay:300ms, change, submit")
		p.attr("hx-push-url", "true")
		p.raw(`><input type="search" name="q" autofocus`)
		p.attr("value", q.Term)
		p.attr("placeholder", T(p.ctx, "search_placeholder"))
		p.raw(`><select name="category">`)
		option(p, "all", T(p.ctx, "category_all"), q.Category == "" || q.Category == "all")
		option(p, models.CategoryFruit, T(p.ctx, "category_fruit"), q.Category == models.CategoryFruit)
		option(p, models.CategoryVegetable, T(p.ctx, "category_vegetable"), q.Category == models.CategoryVegetable)
		p.raw("</select>")
	} else {
		p.raw(">")
	}
	p.raw(`<label class="inline"><input type="checkbox" name="organic" value="true"`)
	p.flag("checked", q.OrganicOnly)
	p.raw(">")
	p.t("search_organic_only")
	p.raw(`</label><select name="sort">`)
	option(p, catalog.SortNewest, T(p.ctx, "sort_newest"), q.Sort == catalog.SortNewest)
	option(p, catalog.SortName, T(p.ctx, "sort_name"), q.Sort == catalog.SortName)
	option(p, catalog.SortCalories, T(p.ctx, "sort_calories"), q.Sort == catalog.SortCalories)
	p.raw(`</select><button type="submit">`)
	p.t("search_button")
	p.raw("</button></form>")
}

func option(p *writer, value, label string, selected bool) {
	p.raw("<option")
	p.attr("value", value)
	p.flag("selected", selected)
	p.raw(">")
	p.text(label)
	p.raw("</option>")
}

func grid(p *writer, items []models.Produce) {
	if len(items) == 0 {
		p.raw(`<p class="hint">`)
		p.t("catalog_empty")
		p.raw("</p>")
		return
	}
	p.raw(`<div class="grid">`)
	for i := range items {
		card(p, &items[i])
	}
	p.raw("</div>")
}

func card(p *writer, item *models.Produce) {
	p.raw(`<a class="card"`)
	p.attr("href", "/fruit/"+item.ID)
	p.raw(">")
	image(p, item)
	p.raw(`<div class="body"><h3>`)
	p.text(item.Name)
	p.raw("</h3>")
	badges(p, item)
	if item.Calories != nil {
		p.raw(`<p class="hint">`)
		p.t("detail_calories")
		p.raw(": ")
		p.text(FormatCalories(item.Calories))
		p.raw("</p>")
	}
	p.raw("</div></a>")
}

func image(p *writer, item *models.Produce) {
	if item.ImageURL == "" {
		return
	}
	p.raw("<img")
	p.attr("src", item.ImageURL)
	p.attr("alt", item.Name)
	p.raw(` loading="lazy">`)
}

func badges(p *writer, item *models.Produce) {
	p.raw("<span")
	p.attr("class", "badge "+item.Category)
	p.raw(">")
	p.t("category_" + item.Category)
	p.raw("</span>")
	if item.IsOrganic {
		p.raw(`<span class="badge">`)
		p.t("label_organic")
		p.raw("</span>")
	}
}

// Detail renders a single catalog entry.
func Detail(item *models.Produce) templ.Component {
	body := page(func(p *writer) {
		p.raw(`<p><a href="/all-fruits">`)
		p.t("detail_back")
		p.raw(`</a></p><article class="detail"><div>`)
		image(p, item)
		p.raw("</div><div><h1>")
		p.text(item.Name)
		p.raw("</h1>")
		badges(p, item)
		if item.Description != "" {
			p.raw("<p>")
			p.text(item.Description)
			p.raw("</p>")
		}
		p.raw("<dl><dt>")
		p.t("detail_calories")
		p.raw("</dt><dd>")
		p.text(FormatCalories(item.Calories))
		p.raw("</dd>")
		if item.SeasonalAvailability != "" {
			p.raw("<dt>")
			p.t("detail_season")
			p.raw("</dt><dd>")
			p.text(item.SeasonalAvailability)
			p.raw("</dd>")
		}
		p.raw("</dl>")
		list(p, "detail_vitamins", item.Vitamins)
		list(p, "detail_benefits", item.HealthBenefits)
		if len(item.Minerals) > 0 {
			p.raw("<h2>")
			p.t("detail_minerals")
			p.raw("</h2><table>")
			names := make([]string, 0, len(item.Minerals))
			for name := range item.Minerals {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				p.raw("<tr><td>")
				p.text(name)
				p.raw("</td><td>")
				v := item.Minerals[name]
				p.text(FormatCalories(&v))
				p.raw("</td></tr>")
			}
			p.raw("</table>")
		}
		if item.OriginStory != "" {
			p.raw("<h2>")
			p.t("detail_origin")
			p.raw("</h2><p>")
			p.text(item.OriginStory)
			p.raw("</p>")
		}
		p.raw("</div></article>")
	})
	return page(func(p *writer) {
		p.render(Layout(item.Name, body))
	})
}

func list(p *writer, heading string, values []string) {
	if len(values) == 0 {
		return
	}
	p.raw("<h2>")
	p.t(heading)
	p.raw("</h2><ul>")
	for _, v := range values {
		p.raw("<li>")
		p.text(v)
		p.raw("</li>")
	}
	p.raw("</ul>")
}

func joinLines(values []string) string {
	return strings.Join(values, "\n")
}
