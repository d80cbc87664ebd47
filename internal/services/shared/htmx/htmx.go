// Package htmx renders full documents or HTMX fragments that carry the page
// title.
package htmx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	stdhtml "html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RequestHeaderKey is the HTMX request header used to detect partial updates.
const RequestHeaderKey = "HX-Request"

// IsHTMXRequest reports whether the request was initiated by HTMX.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(RequestHeaderKey), "true")
}

// TitleTag formats an escaped `<title>` element.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + stdhtml.EscapeString(title) + "</title>"
}

// ErrResponseStarted marks a failure after the status line was sent; callers
// must not write another response.
var ErrResponseStarted = errors.New("htmx response already started")

// Page describes one render. Fragment answers HTMX requests and Full answers
// regular navigations; either falls back to the other when nil.
type Page struct {
	Title      string
	StatusCode int
	Fragment   templ.Component
	Full       templ.Component
}

// RenderPage renders page for a regular or HTMX request.
//
// Render failures leave the response untouched. Write failures are wrapped
// with ErrResponseStarted.
//
// HTMX responses always carry a `<title>` element so the client swaps the
// document title along with the content. When only Full is set, the HTMX
// response is the content of its `<main>` element.
func RenderPage(w http.ResponseWriter, r *http.Request, page Page) error {
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	w.Header().Add("Vary", RequestHeaderKey)

	var body bytes.Buffer
	if IsHTMXRequest(r) {
		target := page.Fragment
		fromFull := target == nil
		if fromFull {
			target = page.Full
		}
		if target == nil {
			return nil
		}
		if err := target.Render(ctx, &body); err != nil {
			return err
		}
		out := body.Bytes()
		if fromFull {
			if content, ok := extractMainContent(out); ok {
				out = content
			}
		}
		out = addTitleIfMissing(out, TitleTag(page.Title))
		return write(w, page.StatusCode, out)
	}

	target := page.Full
	if target == nil {
		target = page.Fragment
	}
	if target == nil {
		return nil
	}
	if err := target.Render(ctx, &body); err != nil {
		return err
	}
	return write(w, page.StatusCode, body.Bytes())
}

func write(w http.ResponseWriter, status int, body []byte) error {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("%w: %w", ErrResponseStarted, err)
	}
	return nil
}

func addTitleIfMissing(body []byte, titleTag string) []byte {
	if titleTag == "" || hasTitleElement(body) {
		return body
	}
	return append([]byte(titleTag), body...)
}

func hasTitleElement(body []byte) bool {
	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Title {
				return true
			}
		}
	}
}

// extractMainContent returns the raw markup inside the first <main> element.
func extractMainContent(body []byte) ([]byte, bool) {
	z := html.NewTokenizer(bytes.NewReader(body))
	offset, start, depth := 0, -1, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return nil, false
		}
		size := len(z.Raw())
		if tt == html.StartTagToken || tt == html.EndTagToken {
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Main {
				switch {
				case tt == html.StartTagToken && start < 0:
					start, depth = offset+size, 1
				case tt == html.StartTagToken:
					depth++
				case start >= 0:
					depth--
					if depth == 0 {
						return body[start:offset], true
					}
				}
			}
		}
		offset += size
	}
}
