package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
		r.Handle("/metrics", h.Metrics.Handler())
	}

	// Static files (served from embedded filesystem)
	if h.staticServer != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
	}
	r.Get("/logos/{name}", h.handleLogo)

	// WebSocket, outside the request timeout
	r.Get("/ws/pages/{id}", h.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Leaderboard pages (public)
		r.Get("/", h.handleIndex)
		r.Get("/leaderboard/{season}", h.handleLeaderboardPage)
		r.Get("/leaderboard/{season}/{userID}", h.handleLeaderboardPage)

		// Viewer identity (public)
		r.Get("/login", h.handleViewerLoginPage)
		r.Post("/login", h.handleViewerLogin)
		r.Post("/logout", h.handleViewerLogout)
		r.Get("/api/viewer", h.handleGetViewer)

		// Page API (public)
		r.Get("/api/seasons", h.handleGetSeasons)
		r.Post("/api/pages", h.handleMountPage)
		r.Get("/api/pages/{id}", h.handleGetPage)
		r.Delete("/api/pages/{id}", h.handleUnmountPage)
		r.Post("/api/pages/{id}/actions", h.handlePageAction)
		r.Get("/api/pages/{id}/share", h.handleShareURL)
		r.Get("/api/pages/{id}/share.png", h.handleShareQR)

		// Auth routes (public)
		r.Get("/admin/login", h.handleLoginPage)
		r.Post("/admin/login", h.handleLogin)
		r.Post("/admin/logout", h.handleLogout)

		// Admin pages (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)
			r.Get("/admin", h.handleAdminHome)
			r.Get("/admin/questions", h.handleAdminQuestions)
			r.Get("/admin/settings", h.handleAdminSettings)
		})

		// Admin API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuthAPI)

			// Question authoring
			r.Post("/api/admin/questions/preview", h.handlePreviewQuestions)
			r.Post("/api/admin/questions/batch", h.handleSubmitQuestions)
			r.Get("/api/admin/questions/batch/{id}", h.handleGetBatch)

			// Settings
			r.Get("/api/admin/settings", h.handleGetSettings)
			r.Post("/api/admin/settings", h.handleUpdateSettings)
			r.Put("/api/admin/settings", h.handleUpdateSettings)
		})
	})

	return r
}
