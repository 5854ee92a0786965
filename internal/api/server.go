// Package api provides the HTTP server, pages and handlers for the Grimoire tracker.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/grimoireapp/grimoire-server/internal/metrics"
	"github.com/grimoireapp/grimoire-server/internal/ratelimit"
	"github.com/grimoireapp/grimoire-server/internal/store"
)

// Options carries the HTTP settings taken from configuration.
type Options struct {
	// SecureCookies marks cookies Secure; enable behind HTTPS.
	SecureCookies bool
	// CORSOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSOrigins []string
	// LoginRatePerMinute and LoginBurst throttle POST /login and /register per client IP.
	LoginRatePerMinute int
	LoginBurst         int
	// Version is reported by the health check.
	Version string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        store.Store
	services     *Services
	metrics      *metrics.Metrics
	router       *chi.Mux
	api          huma.API
	pages        *pages
	opts         Options
	loginLimiter *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, m *metrics.Metrics, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	humaConfig := huma.DefaultConfig("Grimoire API", opts.Version)
	humaConfig.OpenAPIPath = ""
	humaConfig.DocsPath = ""
	humaConfig.SchemasPath = ""
	// No $schema links in response bodies.
	humaConfig.CreateHooks = nil

	s := &Server{
		store:        st,
		services:     services,
		metrics:      m,
		router:       router,
		pages:        mustParsePages(),
		opts:         opts,
		loginLimiter: ratelimit.PerMinute(opts.LoginRatePerMinute, opts.LoginBurst),
		logger:       logger,
	}

	s.setupMiddleware()

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(s.opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", CSRFHeader, CSRFHeaderLegacy},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.router.Use(s.loadSession)
	s.router.Use(s.csrfProtect)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.router.Handle("/metrics", s.metrics.Handler())

	// Authentication pages.
	s.router.Group(func(r chi.Router) {
		r.Use(noStore)
		r.Get("/login", s.handleLoginPage)
		r.Get("/register", s.handleRegisterPage)
		r.Get("/logout", s.handleLogout)

		r.With(RateLimitMiddleware(s.loginLimiter, s.metrics, s.logger)).Post("/login", s.handleLogin)
		r.With(RateLimitMiddleware(s.loginLimiter, s.metrics, s.logger)).Post("/register", s.handleRegister)
	})

	// Pages that need a session.
	s.router.Group(func(r chi.Router) {
		r.Use(noStore)
		r.Use(s.requirePageUser)
		r.Get("/", s.handleTrackerPage)
		r.Get("/change_credentials", s.handleChangeCredentialsPage)
		r.Post("/change_credentials", s.handleChangeCredentials)
	})

	// Form endpoints called by the tracker page.
	s.router.Group(func(r chi.Router) {
		r.Use(noStore)
		r.Use(s.requireAPIUser)
		r.Post("/update", s.handleUpdateDay)
		r.Post("/update_footnote", s.handleUpdateFootnote)
		r.Post("/add_tag", s.handleAddTag)
		r.Post("/update_tag_color", s.handleUpdateTagColor)
		r.Post("/delete_tag", s.handleDeleteTag)
	})

	// Typed JSON operations.
	s.registerCalendarRoutes()
	s.registerTagRoutes()
}
