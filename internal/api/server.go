// Package api serves the assessment engine over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zirakhr/zirak/internal/analytics"
	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/config"
	"github.com/zirakhr/zirak/internal/profile"
	"github.com/zirakhr/zirak/internal/skills"
)

// Assessments is the engine surface the API needs.
type Assessments interface {
	Create(ctx context.Context, p assessment.Principal, req assessment.CreateRequest) (*assessment.Assessment, bool, error)
	Get(ctx context.Context, p assessment.Principal, id string) (*assessment.Assessment, error)
	List(ctx context.Context, p assessment.Principal, f assessment.ListFilter) ([]assessment.Assessment, error)
	Start(ctx context.Context, p assessment.Principal, id string) (*assessment.Assessment, error)
	Submit(ctx context.Context, p assessment.Principal, id string, sub assessment.Submission) (*assessment.Assessment, assessment.Result, error)
	Expire(ctx context.Context, p assessment.Principal, id string) (*assessment.Assessment, error)
}

// Profiles lists profile skills.
type Profiles interface {
	Skills(ctx context.Context, userID string) ([]profile.SkillEntry, error)
}

// Catalog resolves skills.
type Catalog interface {
	Find(ref string) (skills.Skill, error)
	All() []skills.Skill
}

// Deps are the collaborators of a Server.
type Deps struct {
	Assessments Assessments
	Profiles    Profiles
	Catalog     Catalog
	Stats       analytics.Store

	// APIKeys maps bearer keys to user ids.
	APIKeys map[string]string

	// Registry backs /metrics and the HTTP metrics. Nil uses a fresh one.
	Registry *prometheus.Registry

	// Ping backs /healthz. Optional.
	Ping func(context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	config      config.ServerConfig
	router      *chi.Mux
	assessments Assessments
	profiles    Profiles
	catalog     Catalog
	stats       analytics.Store
	auth        *AuthMiddleware
	registry    *prometheus.Registry
	metrics     *httpMetrics
	ping        func(context.Context) error
}

// NewServer creates a new API server.
func NewServer(cfg config.ServerConfig, d Deps) *Server {
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		config:      cfg,
		assessments: d.Assessments,
		profiles:    d.Profiles,
		catalog:     d.Catalog,
		stats:       d.Stats,
		auth:        NewAuthMiddleware(d.APIKeys),
		registry:    reg,
		metrics:     newHTTPMetrics(reg),
		ping:        d.Ping,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.middleware)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.auth.Authenticate)

		r.Route("/assessments", func(r chi.Router) {
			r.Post("/", s.handleCreateAssessment)
			r.Get("/", s.handleListAssessments)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAssessment)
				r.Post("/start", s.handleStartAssessment)
				r.Post("/submit", s.handleSubmitAssessment)
				r.Post("/expire", s.handleExpireAssessment)
			})
		})

		r.Get("/profile/skills", s.handleProfileSkills)
		r.Get("/skills", s.handleListSkills)

		if s.stats != nil {
			r.Get("/analytics/skills", s.handleAllSkillStats)
			r.Get("/analytics/skills/{skill}", s.handleSkillStats)
		}
	})

	s.router = r
}
