// Package api exposes the community directory, assessment, and lead capture
// endpoints over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/harborview-living/directory-cli/internal/assessment"
	"github.com/harborview-living/directory-cli/internal/matcher"
	"github.com/harborview-living/directory-cli/internal/store"
)

// Server holds the handler dependencies.
type Server struct {
	store   store.Store
	matcher *matcher.Matcher
	bank    *assessment.Bank
	scorer  *assessment.Scorer
	opts    Options
}

// Options configures request handling defaults.
type Options struct {
	// RadiusMiles and MaxResults are the nearby-search defaults applied when
	// the request does not override them.
	RadiusMiles    float64
	MaxResults     int
	AllowedOrigins []string
}

func NewServer(st store.Store, m *matcher.Matcher, bank *assessment.Bank, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{
		store:   st,
		matcher: m,
		bank:    bank,
		scorer:  assessment.NewScorer(bank),
		opts:    opts,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/communities", s.handleListCommunities)
		r.Get("/communities/nearby", s.handleNearby)
		r.Get("/assessment/questions", s.handleQuestions)
		r.Post("/assessment/score", s.handleScore)
		r.Post("/leads", s.handleCreateLead)
		r.Get("/leads/{leadID}", s.handleGetLead)
	})

	return r
}
