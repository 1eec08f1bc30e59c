// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// Login renders the login form.
func Login() templ.Component {
	body := page(func(p *writer) {
		p.raw(`<form class="panel" data-api="/auth/login" method="post" data-redirect="/"><h1>`)
		p.t("login_title")
		p.raw("</h1>")
		input(p, "email", "email", "field_email", "", "email")
		input(p, "password", "password", "field_password", "", "current-password")
		p.raw(`<p class="error" data-error></p><div class="actions"><button type="submit">`)
		p.t("login_submit")
		p.raw(`</button><a href="/forgot-password">`)
		p.t("login_forgot")
		p.raw(`</a></div><p><a href="/signup">`)
		p.t("login_no_account")
		p.raw("</a></p></form>")
	})
	return page(func(p *writer) {
		p.render(Layout(T(p.ctx, "login_title"), body))
	})
}

// Signup renders the two-step signup wizard: details, then the emailed code.
func Signup(cooldown time.Duration) templ.Component {
	body := page(func(p *writer) {
		wizardStart(p, "signup", cooldown)
		step(p, "details", false)
		p.raw(`<form class="panel"><h1>`)
		p.t("signup_title")
		p.raw("</h1>")
		input(p, "text", "name", "field_name", "", "name")
		input(p, "email", "email", "field_email", "", "email")
		input(p, "password", "password", "field_password", "", "new-password")
		p.raw(`<p class="hint">`)
		p.t("password_rules")
		p.raw("</p>")
		input(p, "password", "confirmPassword", "field_confirm_password", "", "new-password")
		p.raw(`<p class="error" data-error></p><div class="actions"><button type="submit">`)
		p.t("signup_submit")
		p.raw("</button></div></form></section>")
		codeStep(p)
		step(p, "done", true)
		p.raw(`<div class="panel"><p class="notice">`)
		p.t("signup_done")
		p.raw(`</p><a class="button" href="/login">`)
		p.t("nav_login")
		p.raw("</a></div></section></div>")
	})
	return page(func(p *writer) {
		p.render(Layout(T(p.ctx, "signup_title"), body))
	})
}

// ForgotPassword renders the reset wizard: email, code, new password, done.
func ForgotPassword(cooldown time.Duration) templ.Component {
	body := page(func(p *writer) {
		wizardStart(p, "reset", cooldown)
		step(p, "details", false)
		p.raw(`<form class="panel"><h1>`)
		p.t("reset_title")
		p.raw("</h1><p>")
		p.t("reset_intro")
		p.raw("</p>")
		input(p, "email", "email", "field_email", "", "email")
		p.raw(`<p class="error" data-error></p><div class="actions"><button type="submit">`)
		p.t("reset_send")
		p.raw("</button></div></form></section>")
		codeStep(p)
		step(p, "password", true)
		p.raw(`<form class="panel"><h1>`)
		p.t("reset_password_title")
		p.raw("</h1>")
		input(p, "password", "password", "field_password", "", "new-password")
		p.raw(`<p class="hint">`)
		p.t("password_rules")
		p.raw("</p>")
		input(p, "password", "confirmPassword", "field_confirm_password", "", "new-password")
		p.raw(`<p class="error" data-error></p><div class="actions"><button type="submit">`)
		p.t("reset_submit")
		p.raw("</button></div></form></section>")
		step(p, "done", true)
		p.raw(`<div class="panel"><p class="notice">`)
		p.t("reset_done")
		p.raw(`</p><a class="button" href="/login">`)
		p.t("nav_login")
		p.raw("</a></div></section></div>")
	})
	return page(func(p *writer) {
		p.render(Layout(T(p.ctx, "reset_title"), body))
	})
}

func wizardStart(p *writer, kind string, cooldown time.Duration) {
	p.raw("<div")
	p.attr("data-wizard", kind)
	p.attr("data-cooldown", strconv.Itoa(int(cooldown.Seconds())))
	p.attr("data-msg-password", T(p.ctx, "password_rules"))
	p.attr("data-msg-confirm", T(p.ctx, "error_password_mismatch"))
	p.raw(">")
}

func step(p *writer, name string, hidden bool) {
	p.raw("<section")
	p.attr("data-step", name)
	p.flag("hidden", hidden)
	p.raw(">")
}

// codeStep renders six single-digit inputs with a resend button.
func codeStep(p *writer) {
	step(p, "code", true)
	p.raw(`<form class="panel"><h1>`)
	p.t("code_title")
	p.raw("</h1><p>")
	p.t("code_hint")
	p.raw(`</p><div class="otp"`)
	p.attr("aria-label", T(p.ctx, "field_code"))
	p.raw(">")
	for i := range 6 {
		p.raw(`<input type="text" inputmode="numeric" pattern="[0-9]" maxlength="6" data-skip`)
		p.attr("name", "otp"+strconv.Itoa(i))
		p.flag(`autocomplete="one-time-code"`, i == 0)
		p.raw(">")
	}
	p.raw(`</div><p class="error" data-error></p><div class="actions"><button type="submit">`)
	p.t("code_verify")
	p.raw(`</button><button type="button" class="secondary" data-resend>`)
	p.t("code_resend")
	p.raw("</button></div></form></section>")
}

func input(p *writer, typ, name, label, value, autocomplete string) {
	p.raw("<label")
	p.attr("for", name)
	p.raw(">")
	p.t(label)
	p.raw("</label><input required")
	p.attr("type", typ)
	p.attr("id", name)
	p.attr("name", name)
	if value != "" {
		p.attr("value", value)
	}
	if autocomplete != "" {
		p.attr("autocomplete", autocomplete)
	}
	p.raw(">")
}
