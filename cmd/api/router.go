package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Gurova-J/bookspace-backend/internal/config"
	"github.com/Gurova-J/bookspace-backend/internal/handler"
	"github.com/Gurova-J/bookspace-backend/internal/middleware"
	"github.com/Gurova-J/bookspace-backend/internal/service"
	"github.com/Gurova-J/bookspace-backend/internal/validation"
)

// services is the set of domain services behind the HTTP API.
type services struct {
	accounts  *service.AccountService
	profiles  *service.ProfileService
	catalog   *service.CatalogService
	library   *service.LibraryService
	stats     *service.StatsService
	plans     *service.PlanService
	recommend *service.RecommendationService
	reviews   *service.ReviewService
}

type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	validate *validation.Validator
	services services
	health   *handler.HealthHandler
	limiter  middleware.RateLimiter
	metrics  http.Handler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	cfg, logger, svcs := d.cfg, d.logger, d.services

	h := handler.New()
	accountHandler := handler.NewAccountHandler(svcs.accounts, d.validate, logger)
	profileHandler := handler.NewProfileHandler(svcs.profiles, d.validate, logger)
	bookHandler := handler.NewBookHandler(svcs.catalog, svcs.reviews, d.validate, logger)
	libraryHandler := handler.NewLibraryHandler(svcs.library, d.validate, logger)
	statsHandler := handler.NewStatsHandler(svcs.stats, svcs.plans, logger)
	recommendHandler := handler.NewRecommendationHandler(svcs.recommend, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = cfg.IsDevelopment()
	securityCfg.MaxRequestBodySize = cfg.MaxRequestBodySize

	authCfg := middleware.AuthConfig{
		Logger:        logger,
		Authenticator: svcs.accounts,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: d.limiter,
		Enabled: cfg.RateLimitEnabled,
		IPRPM:   cfg.RateLimitIPRPM,
		UserRPM: cfg.RateLimitUserRPM,
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.CORS(corsCfg))

	// Probes and metrics (no auth required)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	if d.metrics != nil {
		r.Handle("/metrics", d.metrics)
	}
	r.Get("/", h.Index)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(securityCfg.MaxRequestBodySize))

		// Public
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitIP(rateLimitCfg))
			r.Post("/auth/register", accountHandler.Register)
			r.Post("/auth/login", accountHandler.Login)
			r.Get("/books/top", bookHandler.Top)
		})

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitUser(rateLimitCfg))

			r.Post("/auth/logout", accountHandler.Logout)

			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Update)

			r.Get("/stats", statsHandler.Get)
			r.Put("/stats/plan", statsHandler.UpdatePlan)
			r.Get("/recommendations", recommendHandler.Get)

			r.Route("/books", func(r chi.Router) {
				r.Get("/search", bookHandler.Search)
				r.Get("/{id}", bookHandler.Get)
				r.Get("/{id}/reviews", bookHandler.ListReviews)
				r.Post("/{id}/reviews", bookHandler.CreateReview)
			})

			r.Route("/library", func(r chi.Router) {
				r.Post("/", libraryHandler.Add)
				r.Get("/recent", libraryHandler.Recent)
				r.Get("/{list}", libraryHandler.Shelf)
				r.Patch("/{id}", libraryHandler.Update)
				r.Delete("/{id}", libraryHandler.Delete)
			})

			r.With(middleware.RequireAdmin()).Post("/admin/books", bookHandler.Create)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
