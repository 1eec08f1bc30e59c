// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"github.com/a-h/templ"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Layout renders the HTML document around body.
func Layout(title string, body templ.Component) templ.Component {
	return page(func(p *writer) {
		p.raw("<!DOCTYPE html>\n<html")
		p.attr("lang", Locale(p.ctx))
		p.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<meta name="csrf-token"`)
		p.attr("content", CSRFToken(p.ctx))
		p.raw("><title>")
		if title != "" {
			p.text(title)
			p.raw(" | ")
		}
		p.t("app_name")
		p.raw(`</title><link rel="stylesheet"`)
		p.attr("href", CSSPath(p.ctx))
		p.raw(`><script defer`)
		p.attr("src", htmxSrc)
		p.raw(`></script><script defer`)
		p.attr("src", JSPath(p.ctx))
		p.raw("></script></head><body>")
		navigation(p)
		p.raw(`<main class="container">`)
		p.render(body)
		p.raw(`</main><footer class="site"><div class="container">`)
		p.t("footer_text")
		p.raw("</div></footer></body></html>")
	})
}

func navigation(p *writer) {
	p.raw(`<header class="site"><div class="container"><nav><a class="brand" href="/">`)
	p.t("app_name")
	p.raw("</a>")
	link(p, "/all-fruits", "nav_all_fruits")
	link(p, "/vegetables", "nav_vegetables")
	link(p, "/search", "nav_search")
	link(p, "/about", "nav_about")
	link(p, "/contact", "nav_contact")
	switch {
	case IsAdmin(p.ctx):
		link(p, "/admin", "nav_admin")
		logout(p)
	case IsAuthenticated(p.ctx):
		logout(p)
	default:
		link(p, "/login", "nav_login")
		link(p, "/signup", "nav_signup")
	}
	p.raw("</nav></div></header>")
}

func link(p *writer, href, id string) {
	p.raw("<a")
	p.attr("href", href)
	p.raw(">")
	p.t(id)
	p.raw("</a>")
}

func logout(p *writer) {
	p.raw(`<form data-api="/auth/logout" method="post" data-redirect="/"><button type="submit" class="link">`)
	p.t("nav_logout")
	p.raw("</button></form>")
}

// ErrorPage renders a full error page.
func ErrorPage(status int, message string) templ.Component {
	body := page(func(p *writer) {
		p.raw(`<section class="panel"><h1>`)
		switch status {
		case 404:
			p.t("error_not_found")
		default:
			p.t("error_title")
		}
		p.raw("</h1><p>")
		p.text(message)
		p.raw(`</p><a href="/">`)
		p.t("error_back_home")
		p.raw("</a></section>")
	})
	return page(func(p *writer) {
		p.render(Layout(T(p.ctx, "error_title"), body))
	})
}
