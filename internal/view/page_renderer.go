/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"studybud/internal/entity"
)

// Data every page receives. Data holds what is specific to the page.
type Page struct {
	Title   string
	Query   string       // Current search, echoed in the header search box
	User    *entity.User // Logged in identity, nil when anonymous
	Flashes []string
	Data    any
}

// PageRenderer renderes web pages throuh a set of templates
type PageRenderer struct {
	templates map[string]*template.Template
}

// Creates a page renderer with the given set, read from fsys:
//
//	The key is a page name
//	The value is a set of paths of templates with layouts, the page last
func NewPageRenderer(fsys fs.FS, tmplMap map[string][]string) (*PageRenderer, error) {
	templates := make(map[string]*template.Template)

	for k, v := range tmplMap {
		t, err := template.New(k).Funcs(Funcs()).ParseFS(fsys, v...)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", k, err)
		}
		templates[k] = t
	}
	return &PageRenderer{templates: templates}, nil
}

// Renders the template with name "name"
// It returns an error if the corresponding template is not present
func (pr *PageRenderer) RenderTemplate(wr io.Writer, name string, data any) error {
	if t, ok := pr.templates[name]; ok {
		return t.ExecuteTemplate(wr, name, data)
	}
	return fmt.Errorf("Template is missing{%s}", name)
}

// Render writes the page with the given status. Nothing is sent if the template fails, so the caller can still answer with an error.
func (pr *PageRenderer) Render(w http.ResponseWriter, status int, name string, page *Page) error {
	var buf bytes.Buffer
	if err := pr.RenderTemplate(&buf, name, page); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Functions available to every template
func Funcs() template.FuncMap {
	return template.FuncMap{
		"since": func(t time.Time) string { return Since(t, time.Now()) },
	}
}

// Since describes the time elapsed from t to now in its largest unit, "3 hours" or "1 minute".
func Since(t, now time.Time) string {
	d := now.Sub(t)
	if d < time.Minute {
		return "0 minutes"
	}

	units := []struct {
		name string
		size time.Duration
	}{
		{"year", 365 * 24 * time.Hour},
		{"month", 30 * 24 * time.Hour},
		{"week", 7 * 24 * time.Hour},
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
	}
	for _, u := range units {
		if n := int(d / u.size); n > 0 {
			if n == 1 {
				return "1 " + u.name
			}
			return fmt.Sprintf("%d %ss", n, u.name)
		}
	}
	return "0 minutes"
}
