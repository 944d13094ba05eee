// Package handler contains the HTTP handlers for the journal.
//
// Handlers parse the request, call a service, and either redirect (303,
// after a successful POST) or render an HTML page. They never touch the
// database and never decide business rules.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/sakif/violets/internal/auth"
	"github.com/sakif/violets/internal/model"
)

// Page carries the fields base.html needs on every page. Page data structs
// embed it.
type Page struct {
	Title  string
	Error  string // message shown above the content
	Field  string // form field the error belongs to, if any
	Keeper KeeperState
}

// KeeperState tells the layout whether to offer login or logout.
type KeeperState struct {
	Enabled  bool
	LoggedIn bool
}

// Renderer owns the parsed templates. Each page gets its own clone of
// base.html so every page can define "content" without colliding.
type Renderer struct {
	pages  map[string]*template.Template
	tokens *auth.TokenService // nil when keeper login is off
	logger *slog.Logger
}

var templateFuncs = template.FuncMap{
	"date":    func(t time.Time) string { return t.Format(model.DateLayout) },
	"optDate": model.FormatDate,
}

// NewRenderer parses templates/base.html and every other templates/*.html
// page from fsys.
func NewRenderer(fsys fs.FS, tokens *auth.TokenService, logger *slog.Logger) (*Renderer, error) {
	base, err := template.New("base").Funcs(templateFuncs).ParseFS(fsys, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		name := path.Base(f)
		if name == "base.html" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base template: %w", err)
		}
		if _, err := clone.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pages[name] = clone
	}

	return &Renderer{pages: pages, tokens: tokens, logger: logger}, nil
}

// Page returns the common page fields for r.
func (rd *Renderer) Page(r *http.Request, title string) Page {
	state := KeeperState{Enabled: rd.tokens != nil}
	if state.Enabled {
		state.LoggedIn = auth.HasSession(r, rd.tokens)
	}
	return Page{Title: title, Keeper: state}
}

// Render executes page name with data and writes it with status.
//
// The page is rendered into a buffer first, so a template error becomes a
// clean 500 instead of half a page with a 200 header.
func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := rd.pages[name]
	if !ok {
		rd.logger.Error("unknown template", slog.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rd.logger.Warn("failed to write response", slog.String("error", err.Error()))
	}
}
