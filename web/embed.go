// Package web embeds the server-rendered HTML templates and provides
// a small renderer around html/template.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer renders named pages into the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// pageNames lists every template that can be rendered as a full page.
var pageNames = []string{
	"login", "home", "prompt_builder", "teach_me",
	"learn", "help", "ask_help", "troubleshooter",
}

// NewRenderer parses the embedded templates. Each page is parsed
// together with the layout so pages can override its blocks.
func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes the named page. Data is whatever the handler wants
// the page to see; a render failure after headers are out can only be
// logged.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) {
	t, ok := r.pages[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "name", name, "error", err)
	}
}
