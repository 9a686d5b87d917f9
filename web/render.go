package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexedwards/scs/v2"

	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/storage"
)

//go:embed templates
var templateFS embed.FS

const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

// Renderer executes the page templates inside the base layout.
type Renderer struct {
	templates map[string]*template.Template
	sessions  *scs.SessionManager
	markdown  *content.Renderer
	media     storage.Store
}

// templateData is what every page template receives.
type templateData struct {
	Title       string
	Data        any
	Flash       string
	FlashType   string
	Query       string
	CurrentYear int
}

func NewRenderer(sessions *scs.SessionManager, markdown *content.Renderer, media storage.Store) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		sessions:  sessions,
		markdown:  markdown,
		media:     media,
	}
	if err := r.parseTemplates(templateFS); err != nil {
		return nil, err
	}
	return r, nil
}

// parseTemplates builds one template set per page: layout, partials, then the page.
func (r *Renderer) parseTemplates(fsys fs.FS) error {
	partials, err := fs.Glob(fsys, "templates/partials/*.html")
	if err != nil {
		return fmt.Errorf("listing partials: %w", err)
	}
	pages, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return fmt.Errorf("listing pages: %w", err)
	}

	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")

		files := []string{"templates/layouts/base.html"}
		files = append(files, partials...)
		files = append(files, page)

		tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(fsys, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return nil
}

func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"markdown": r.markdown.Render,
		"mediaURL": r.mediaURL,
		"excerpt":  excerpt,
		"pageURL":  pageURL,
	}
}

func (r *Renderer) mediaURL(key string) string {
	if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") || r.media == nil {
		return key
	}
	return r.media.URL(key)
}

// excerpt returns the first n runes of s, cut at a word boundary where possible.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	cut := string([]rune(s)[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

// pageURL appends the page number to base, which may already carry a query string.
func pageURL(base string, page int) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", base, sep, page)
}

// Render writes the named page with status. The flash message, if any, is consumed.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, data templateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	if r.sessions != nil {
		if flash := r.sessions.PopString(req.Context(), flashKey); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessions.PopString(req.Context(), flashTypeKey)
			if data.FlashType == "" {
				data.FlashType = "info"
			}
		}
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// SetFlash stores a one-shot message shown by the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessions != nil {
		r.sessions.Put(req.Context(), flashKey, message)
		r.sessions.Put(req.Context(), flashTypeKey, flashType)
	}
}
