package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/meowv/blog/internal/handler"
	"github.com/meowv/blog/internal/oauth"
	"github.com/meowv/blog/internal/repository"
	"github.com/meowv/blog/internal/server/middleware"
	"github.com/meowv/blog/internal/service"
)

func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.App.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	queries := repository.New(s.db)

	// Only providers with credentials are registered; every other type is
	// reported as unsupported.
	providers := oauth.ProvidersFromConfig(s.cfg.Authorize, s.cfg.App.BaseURL, &http.Client{
		Timeout: s.cfg.Authorize.HTTPTimeout,
	})
	registry := oauth.NewRegistry(providers...)
	s.logger.Info("oauth providers registered", "providers", registry.Names())

	userService := service.NewUserService(queries, s.logger)
	authorizeService := service.NewAuthorizeService(s.states, registry, s.issuer, s.cfg.Authorize.Account, s.logger)
	authorizeService.SetIdentityRecorder(userService)
	articleService := service.NewArticleService(queries, s.logger)
	postService := service.NewPostService(queries, s.logger)
	statsService := service.NewStatsService(queries, s.logger)

	healthHandler := handler.NewHealthHandler(s.db, s.rdb)
	authorizeHandler := handler.NewAuthorizeHandler(authorizeService)
	articleHandler := handler.NewArticleHandler(articleService)
	postHandler := handler.NewPostHandler(postService)
	adminHandler := handler.NewAdminHandler(statsService, s.cleanupService)

	// Bearer token middleware (reads the JWT, does not reject)
	r.Use(middleware.Authenticate(s.issuer))

	r.Route("/api/meowv", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		// 20 token requests per minute per IP
		tokenRateLimit := middleware.RateLimit(20, 1*time.Minute)

		r.Route("/oauth", func(r chi.Router) {
			r.With(tokenRateLimit).Post("/account/token", authorizeHandler.AccountToken)
			r.Get("/{type}", authorizeHandler.GetAuthorizeURL)
			r.With(tokenRateLimit).Get("/{type}/token", authorizeHandler.Token)
		})

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", articleHandler.List)
			r.Get("/{id}", articleHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", articleHandler.Create)
				r.Put("/{id}", articleHandler.Update)
				r.Delete("/{id}", articleHandler.Delete)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/{url}", postHandler.GetByURL)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", postHandler.Create)
				r.Put("/{id}", postHandler.Update)
				r.Delete("/{id}", postHandler.Delete)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/stats", adminHandler.DashboardStats)
			r.Post("/cleanup", adminHandler.RunCleanup)
		})
	})

	return r
}
