package handlers

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"sync"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
)

// LayoutTemplate wraps every page; pages fill its "title" and "content" blocks.
const LayoutTemplate = "layout.html"

// TemplateCache holds parsed templates
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"inc":      func(n int) int { return n + 1 },
			"money":    func(v float64) string { return fmt.Sprintf("$%.2f", v) },
			"date":     listview.FormatDate,
			"contains": func(list []string, v string) bool { return slices.Contains(list, v) },
		},
	}
}

// Load parses every page in fsys together with the shared layout.
func (tc *TemplateCache) Load(fsys fs.FS) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return err
	}
	for _, name := range files {
		if name == LayoutTemplate {
			continue
		}
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys, LayoutTemplate, name)
		if err != nil {
			slog.Error("Failed to parse template", "file", name, "error", err)
			return err
		}
		tc.cache[name] = tmpl
		slog.Debug("Cached template", "name", name)
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// Render executes the layout of page name.
func (tc *TemplateCache) Render(w io.Writer, name string, data any) error {
	tmpl := tc.Get(name)
	if tmpl == nil {
		return fmt.Errorf("template %s not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
