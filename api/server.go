package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/newsroom-backend/auth"
	"github.com/rpupo63/newsroom-backend/config"
	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/ratelimit"
	"github.com/rpupo63/newsroom-backend/storage"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Database      database.Database
	Posts         *content.Service
	Comments      *content.CommentService
	Submissions   *content.SubmissionService
	Authenticator *auth.Authenticator
	Media         storage.Store
	Limiter       *ratelimit.Limiter
	// Web serves the HTML pages at the root. Optional.
	Web http.Handler
}

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg config.Config, deps Dependencies) (Server, error) {
	// Capture startup time
	startupTime := time.Now()

	router := NewRouter(cfg, deps, startupTime)

	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,  // Timeout for reading the entire request
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second, // Timeout for writing the response
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSeconds) * time.Second,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

// NewRouter builds the full handler: the JSON API under /api and the web pages at /.
func NewRouter(cfg config.Config, deps Dependencies, startupTime time.Time) *chi.Mux {
	chiRouter := chi.NewRouter()
	chiRouter.Use(RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(ColoredHTTPLoggingMiddleware)

	// Initialize all handlers
	handlers := initializeHandlers(deps, startupTime, cfg.S3Prefix, cfg.MaxUploadMB<<20)

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(deps.Authenticator)

	limitPublicWrites := func(next http.Handler) http.Handler { return next }
	if deps.Limiter != nil {
		responder := NewResponder(log.With().Str("handlerName", "rateLimit").Logger())
		limitPublicWrites = deps.Limiter.Middleware(func(w http.ResponseWriter, _ *http.Request) {
			responder.WriteError(w, errs.NewRateLimitedError())
		}, http.MethodPost)
	}

	chiRouter.Route("/api", func(r chi.Router) {
		r.Use(CORSCheckMiddleware(cfg.AcceptedOrigins))
		r.Use(cors.Handler(cors.Options{
			AllowOriginFunc: func(_ *http.Request, origin string) bool {
				return originAllowed(cfg.AcceptedOrigins, origin)
			},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		setupAPIRoutes(r, handlers, authMiddleware, limitPublicWrites)
	})

	if deps.Web != nil {
		chiRouter.Mount("/", deps.Web)
	}

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
