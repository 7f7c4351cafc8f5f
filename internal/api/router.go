package api

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/athujoshi24/legendary-panel/internal/api/handlers"
	mw "github.com/athujoshi24/legendary-panel/internal/api/middleware"
	"github.com/athujoshi24/legendary-panel/internal/metrics"
	"github.com/athujoshi24/legendary-panel/internal/models"
)

type Dependencies struct {
	Authenticator      mw.Authenticator
	Metrics            metrics.Recorder
	Gatherer           prometheus.Gatherer
	Ping               func(ctx context.Context) error
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
	TrustedProxies     []netip.Prefix

	AuthHandler        *handlers.AuthHandler
	TagsHandler        *handlers.AttributeHandler[models.Tag]
	IngredientsHandler *handlers.AttributeHandler[models.Ingredient]
	RecipesHandler     *handlers.RecipesHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.Metrics(dep.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   dep.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(mw.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst, dep.TrustedProxies...))
	r.Use(chimid.Compress(5))

	// Health endpoints
	hh := handlers.NewHealthHandler(dep.Ping)
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)
	if dep.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(dep.Gatherer))
	}

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/token", dep.AuthHandler.Token)
			ar.With(mw.Auth(dep.Authenticator, dep.Metrics)).Get("/me", dep.AuthHandler.Me)
			ar.With(mw.Auth(dep.Authenticator, dep.Metrics)).Patch("/me", dep.AuthHandler.UpdateMe)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.Authenticator, dep.Metrics))

			protected.Route("/tags", func(tr chi.Router) {
				tr.Get("/", dep.TagsHandler.List)
				tr.Post("/", dep.TagsHandler.Create)
			})

			protected.Route("/ingredients", func(ir chi.Router) {
				ir.Get("/", dep.IngredientsHandler.List)
				ir.Post("/", dep.IngredientsHandler.Create)
			})

			protected.Route("/recipes", func(rr chi.Router) {
				rr.Get("/", dep.RecipesHandler.List)
				rr.Post("/", dep.RecipesHandler.Create)
				rr.Get("/{id}", dep.RecipesHandler.Get)
				rr.Put("/{id}", dep.RecipesHandler.Update)
				rr.Patch("/{id}", dep.RecipesHandler.Patch)
				rr.Delete("/{id}", dep.RecipesHandler.Delete)
			})
		})
	})

	return r
}
