package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplates = []string{
	"landing", "dashboard", "events", "event", "compare", "simulator",
	"predict", "about", "methodology", "case_studies", "notfound",
}

// loadingRefresh is the auto-refresh interval, in seconds, of a page that
// rendered a loading branch. The refresh joins the request still in flight.
const loadingRefresh = 1

type pageData struct {
	Title   string
	Nav     []NavItem
	Refresh int
	Page    any
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	base, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, eris.Wrap(err, "web: parse layout")
	}

	rd := &renderer{pages: make(map[string]*template.Template, len(pageTemplates))}
	for _, name := range pageTemplates {
		t, err := base.Clone()
		if err != nil {
			return nil, eris.Wrapf(err, "web: clone layout for %s", name)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, eris.Wrapf(err, "web: parse %s", name)
		}
		rd.pages[name] = t
	}
	return rd, nil
}

// page renders the named page template. Full-screen paths skip the chrome.
// loading adds a short auto-refresh.
func (rd *renderer) page(w http.ResponseWriter, r *http.Request, status int, name string, loading bool, model any) {
	t, ok := rd.pages[name]
	if !ok {
		zap.L().Error("web: unknown template", zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	route, _ := Lookup(r.URL.Path)
	data := pageData{
		Title: route.Title,
		Nav:   Nav(r.URL.Path),
		Page:  model,
	}
	if data.Title == "" {
		data.Title = "Not Found"
	}
	if loading {
		data.Refresh = loadingRefresh
	}

	wrapper := "chrome"
	if FullScreen(r.URL.Path) {
		wrapper = "bare"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, wrapper, data); err != nil {
		zap.L().Error("web: render failed",
			zap.String("template", name),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
