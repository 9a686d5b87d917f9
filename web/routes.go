// Package web serves the public HTML site: home, post pages, search and the
// contact and newsletter forms.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/ratelimit"
	"github.com/rpupo63/newsroom-backend/storage"
)

// Dependencies are the services the pages are built on.
type Dependencies struct {
	Sessions    *scs.SessionManager
	Posts       *content.Service
	Comments    *content.CommentService
	Submissions *content.SubmissionService
	Markdown    *content.Renderer
	Media       storage.Store
	// MediaDir is served under /media/ when set (disk media backend).
	MediaDir string
	Limiter  *ratelimit.Limiter
}

// NewSessionManager returns the cookie session store used for flash messages.
func NewSessionManager(lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = lifetime
	sm.Cookie.Name = "newsroom_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	return sm
}

// NewHandler builds the page router.
func NewHandler(deps Dependencies) (http.Handler, error) {
	renderer, err := NewRenderer(deps.Sessions, deps.Markdown, deps.Media)
	if err != nil {
		return nil, err
	}
	h := newPageHandler(renderer, deps.Posts, deps.Comments, deps.Submissions)

	r := chi.NewRouter()
	if deps.Sessions != nil {
		r.Use(deps.Sessions.LoadAndSave)
	}
	r.NotFound(h.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	if deps.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", mediaFiles(deps.MediaDir)))
	}

	limit := func(next http.Handler) http.Handler { return next }
	if deps.Limiter != nil {
		limit = deps.Limiter.Middleware(h.tooManyRequests, http.MethodPost)
	}

	r.Get("/", h.home)
	r.Get("/about", h.about)
	r.Get("/contact", h.contactForm)
	r.With(limit).Post("/contact", h.submitContact)

	r.Get("/posts", h.listPosts)
	r.Get("/posts/{postID}", h.postDetail)
	r.With(limit).Post("/posts/{postID}/comments", h.submitComment)
	r.Get("/posts/category/{categoryID}", h.postsByCategory)
	r.Get("/posts/tag/{tagID}", h.postsByTag)
	r.Get("/search", h.search)

	r.With(limit).Post("/newsletter", h.subscribe)

	return r, nil
}

// mediaFiles serves uploaded files without directory listings.
func mediaFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	})
}
