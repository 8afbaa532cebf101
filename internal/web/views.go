package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Views renders the onboarding pages. Every page is parsed into its own
// clone of the layout so each can define "title" and "content" without
// clashing. It implements fiber.Views.
type Views struct {
	pages map[string]*template.Template
}

// NewViews parses the embedded templates.
func NewViews() (*Views, error) {
	v := &Views{}
	if err := v.Load(); err != nil {
		return nil, err
	}
	return v, nil
}

// Load parses the layout and every page template.
func (v *Views) Load() error {
	base, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, layoutFile)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return err
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		page, err := template.Must(base.Clone()).ParseFS(templateFS, file)
		if err != nil {
			return fmt.Errorf("parse %s: %w", file, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
		pages[name] = page
	}
	v.pages = pages
	return nil
}

// Render executes page name inside the layout. Layout arguments are
// ignored: every page uses the single embedded layout.
func (v *Views) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	page, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("web: unknown page %q", name)
	}
	return page.ExecuteTemplate(w, "layout", binding)
}

var funcs = template.FuncMap{
	"noticeClass": func(level string) string {
		switch level {
		case "success", "error":
			return "notice notice-" + level
		default:
			return "notice notice-info"
		}
	},
}
