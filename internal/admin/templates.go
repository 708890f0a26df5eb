// ABOUTME: Template loading and rendering for admin UI.
// ABOUTME: Embeds HTML templates, parses each page over the shared layout, and renders fragments.

package admin

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

// fragmentFiles are shared by full pages and htmx responses
var fragmentFiles = []string{
	"templates/tabs.html",
	"templates/toast.html",
	"templates/panel.html",
	"templates/fragment.html",
}

var pageFiles = map[string]string{
	"resource": "templates/resource.html",
	"logs":     "templates/logs.html",
}

var funcs = template.FuncMap{
	"local": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04:05")
	},
	"statusClass": statusClass,
}

// statusClass colors a backend status code. 0 means no response.
func statusClass(code int) string {
	switch {
	case code == 0 || code >= 500:
		return "text-red-700"
	case code >= 400:
		return "text-amber-700"
	case code >= 300:
		return "text-blue-700"
	default:
		return "text-green-700"
	}
}

var (
	fragments = template.Must(template.New("fragments").Funcs(funcs).ParseFS(templateFS, fragmentFiles...))
	pages     = parsePages()
)

// parsePages gives every page its own copy of the layout so each can
// define "content".
func parsePages() map[string]*template.Template {
	layout := template.Must(template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html"))
	out := make(map[string]*template.Template, len(pageFiles))
	for name, file := range pageFiles {
		t := template.Must(layout.Clone())
		t = template.Must(t.ParseFS(templateFS, append([]string{file}, fragmentFiles...)...))
		out[name] = t
	}
	return out
}

func renderPage(w io.Writer, page string, data any) error {
	t, ok := pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func renderPartial(w io.Writer, name string, data any) error {
	return fragments.ExecuteTemplate(w, name, data)
}
