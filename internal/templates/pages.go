// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"github.com/a-h/templ"
)

// Contact renders the contact form.
func Contact() templ.Component {
	body := page(func(p *writer) {
		p.raw(`<form class="panel" data-api="/contact" method="post"><h1>`)
		p.t("contact_title")
		p.raw("</h1><p>")
		p.t("contact_intro")
		p.raw("</p>")
		input(p, "text", "name", "field_name", "", "name")
		input(p, "email", "email", "field_email", "", "email")
		input(p, "text", "subject", "field_subject", "", "")
		p.raw(`<label for="message">`)
		p.t("field_message")
		p.raw(`</label><textarea id="message" name="message" required minlength="10"></textarea>`)
		p.raw(`<p class="error" data-error></p><p class="notice" data-success hidden>`)
		p.t("contact_sent")
		p.raw(`</p><div class="actions"><button type="submit">`)
		p.t("contact_submit")
		p.raw("</button></div></form>")
	})
	return page(func(p *writer) {
		p.render(Layout(T(p.ctx, "contact_title"), body))
	})
}

// About renders the about page.
func About() templ.Component {
	body := page(func(p *writer) {
		p.raw(`<section class="hero"><h1>`)
		p.t("about_title")
		p.raw("</h1><p>")
		p.t("about_intro")
		p.raw("</p></section><p>")
		p.t("about_body")
		p.raw("</p>")
	})
	return page(func(p *writer) {
		p.render(Layout(T(p.ctx, "about_title"), body))
	})
}
