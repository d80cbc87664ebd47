// Package templates renders titled pages as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/pagetitle/internal/platform/requestctx"
	"github.com/louisbranch/pagetitle/internal/services/titled/sitemap"
	"github.com/louisbranch/pagetitle/internal/title"
)

// HTMXScriptURL is the htmx build loaded by the document layout.
const HTMXScriptURL = "https://unpkg.com/htmx.org@2.0.4"

// MainTargetID is the element HTMX navigations swap.
const MainTargetID = "main"

// LayoutOptions configures the full document.
type LayoutOptions struct {
	Title   string
	Lang    string
	Content templ.Component
}

// MountedView is a view with the level it claimed when mounted.
type MountedView struct {
	View  *sitemap.View
	Level int
}

// PageOptions configures the content of one page.
type PageOptions struct {
	Title string
	Views []MountedView
}

// writer keeps the first write error so components read top to bottom.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) rawf(format string, args ...any) {
	w.raw(fmt.Sprintf(format, args...))
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) component(ctx context.Context, c templ.Component) {
	if w.err != nil || c == nil {
		return
	}
	w.err = c.Render(ctx, w.w)
}

// Layout renders the full HTML document around opts.Content.
func Layout(opts LayoutOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		lang := strings.TrimSpace(opts.Lang)
		if lang == "" {
			lang = "en"
		}
		w := &writer{w: out}
		w.raw("<!doctype html>")
		w.rawf(`<html lang="%s"><head><meta charset="utf-8">`, templ.EscapeString(lang))
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw("<title>")
		w.text(opts.Title)
		w.raw("</title>")
		w.rawf(`<script src="%s"></script>`, HTMXScriptURL)
		w.rawf(`</head><body><main id="%s">`, MainTargetID)
		w.component(ctx, opts.Content)
		w.raw("</main></body></html>")
		return w.err
	})
}

// Page renders the breadcrumb trail, the nested view chain and the active
// title parts of the request's registry.
func Page(opts PageOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		chain := make([]*sitemap.View, 0, len(opts.Views))
		for _, mv := range opts.Views {
			chain = append(chain, mv.View)
		}
		w.component(ctx, Breadcrumbs(BuildBreadcrumbs(chain)))
		w.component(ctx, viewChain(opts.Views))
		w.component(ctx, PartsPanel())
		return w.err
	})
}

// Breadcrumbs renders a breadcrumb trail; an empty trail renders nothing.
func Breadcrumbs(items []BreadcrumbItem) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		if len(items) == 0 {
			return nil
		}
		w := &writer{w: out}
		w.raw(`<nav class="breadcrumbs"><ul>`)
		for _, item := range items {
			if item.URL == "" {
				w.raw("<li>")
				w.text(item.Label)
				w.raw("</li>")
				continue
			}
			w.raw("<li>")
			navLink(w, item.URL, item.Label)
			w.raw("</li>")
		}
		w.raw("</ul></nav>")
		return w.err
	})
}

// PartsPanel lists the title parts active in the request's registry in
// descending level order. Requests bound to a browser session also get a
// control that discards that session's title state.
func PartsPanel() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		registry := requestctx.RegistryFromContext(ctx)
		if registry == nil {
			return nil
		}
		parts := registry.Parts()
		w := &writer{w: out}
		w.raw(`<aside class="title-parts"><h2>Title parts</h2><table><thead><tr><th>Level</th><th>Title</th></tr></thead><tbody>`)
		for idx := len(parts) - 1; idx >= 0; idx-- {
			part := parts[idx]
			level := fmt.Sprint(part.Level)
			if part.IsOverride() {
				level = "override"
			}
			w.rawf(`<tr data-level="%d"><td>%s</td><td>`, part.Level, level)
			w.text(part.Title)
			w.raw("</td></tr>")
		}
		w.raw(`</tbody></table><p class="separator">Separator: <code>`)
		w.text(registry.Separator())
		w.raw("</code></p>")
		if requestctx.SessionIDFromContext(ctx) != "" {
			w.raw(`<button type="button" hx-delete="/api/session" hx-swap="none">Reset title state</button>`)
		}
		w.raw("</aside>")
		return w.err
	})
}

func viewChain(views []MountedView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		for _, mv := range views {
			v := mv.View
			if v == nil {
				continue
			}
			w.rawf(`<section class="view" id="view-%s" data-level="%d"`, templ.EscapeString(v.ID), mv.Level)
			if v.Override {
				w.rawf(` data-title-level="%d"`, title.OverrideLevel)
			}
			w.raw("><h1>")
			w.text(v.Title)
			w.raw("</h1>")
			if v.Body != "" {
				w.raw("<p>")
				w.text(v.Body)
				w.raw("</p>")
			}
			if len(v.Children) > 0 {
				w.raw(`<ul class="children">`)
				for _, child := range v.Children {
					w.raw("<li>")
					navLink(w, child.Href(), child.Title)
					w.raw("</li>")
				}
				w.raw("</ul>")
			}
		}
		for idx := len(views) - 1; idx >= 0; idx-- {
			if views[idx].View != nil {
				w.raw("</section>")
			}
		}
		return w.err
	})
}

func navLink(w *writer, href, label string) {
	href = templ.EscapeString(href)
	w.rawf(`<a href="%s" hx-get="%s" hx-target="#%s" hx-push-url="true">`, href, href, MainTargetID)
	w.text(label)
	w.raw("</a>")
}
