// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// writer accumulates the first write error so page functions can emit
// markup without checking every call.
type writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newWriter(ctx context.Context, w io.Writer) *writer {
	return &writer{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (p *writer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

// text writes escaped text.
func (p *writer) text(s string) {
	p.raw(templ.EscapeString(s))
}

// t writes an escaped translation.
func (p *writer) t(id string) {
	p.text(T(p.ctx, id))
}

// attr writes ` name="value"` with the value escaped.
func (p *writer) attr(name, value string) {
	p.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// flag writes a boolean attribute when on is true.
func (p *writer) flag(name string, on bool) {
	if on {
		p.raw(" " + name)
	}
}

func (p *writer) render(c templ.Component) {
	if p.err == nil && c != nil {
		p.err = c.Render(p.ctx, p.w)
	}
}

// page wraps fn in a templ component.
func page(fn func(p *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newWriter(ctx, w)
		fn(p)
		return p.err
	})
}
