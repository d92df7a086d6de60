package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-rentals-api/internal/application/admin"
	"github.com/go-rentals-api/internal/application/alert"
	"github.com/go-rentals-api/internal/application/auth"
	"github.com/go-rentals-api/internal/application/favorite"
	"github.com/go-rentals-api/internal/application/listing"
	"github.com/go-rentals-api/internal/application/session"
	"github.com/go-rentals-api/internal/application/user"
	"github.com/go-rentals-api/internal/config"
	"github.com/go-rentals-api/internal/domain"
	"github.com/go-rentals-api/internal/transport/http/handler"
	appmiddleware "github.com/go-rentals-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second with a burst of 10 for sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:        deps.UserRepo,
		SessionRepo:     deps.SessionRepo,
		AlertRepo:       deps.AlertRepo,
		FavoriteRepo:    deps.FavoriteRepo,
		EventRepo:       deps.EventRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenExpiry,
	})
	sessionSvc := session.NewService(deps.SessionRepo, deps.UserRepo, deps.EventRepo, deps.JWTProvider, cfg.RefreshTokenExpiry)
	authSvc := auth.NewService(deps.VerificationRepo, deps.UserRepo, deps.SessionRepo, deps.Mailer, deps.JWTProvider, cfg.RefreshTokenExpiry)
	listingSvc := listing.NewService(deps.Catalog, deps.EventRepo)
	favoriteSvc := favorite.NewService(deps.FavoriteRepo, deps.Catalog)
	alertSvc := alert.NewService(deps.AlertRepo)
	adminSvc := admin.NewService(deps.EventRepo, deps.UserRepo, deps.FavoriteRepo, deps.AlertRepo)

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(userSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	pwH := handler.NewPasswordRecoveryHandler(authSvc)
	listingH := handler.NewListingHandler(listingSvc)
	favoriteH := handler.NewFavoriteHandler(favoriteSvc)
	alertH := handler.NewAlertHandler(alertSvc)
	adminH := handler.NewAdminHandler(adminSvc, deps.Sweep)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/password-recovery/{action}", pwH.Action)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)
			r.Post("/password-recovery/change-password", pwH.ChangePassword)

			r.Get("/users/{id}", userH.Get)

			r.Get("/listings", listingH.Search)
			r.Get("/listings/{id}", listingH.Get)

			r.Get("/favorites", favoriteH.List)
			r.Post("/favorites", favoriteH.Add)
			r.Delete("/favorites/{listing_id}", favoriteH.Remove)

			r.Get("/alerts", alertH.List)
			r.Post("/alerts", alertH.Create)
			r.Delete("/alerts/{id}", alertH.Delete)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Delete("/users/{id}", userH.Delete)

				r.Get("/admin/overview", adminH.Overview)
				r.Get("/admin/users", adminH.Users)
				r.Get("/admin/favorites", adminH.TopFavorites)
				r.Get("/admin/alerts", adminH.Alerts)
				r.Post("/admin/sweep", adminH.Sweep)
			})
		})
	})

	return r
}
