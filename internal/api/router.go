package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			// Room endpoints. Listing is role-scoped; mutation and grant
			// management are admin-only.
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", s.handleListRooms)

				r.Group(func(r chi.Router) {
					r.Use(s.requireAdmin)
					r.Post("/", s.handleCreateRoom)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetRoom)

					r.Group(func(r chi.Router) {
						r.Use(s.requireAdmin)
						r.Delete("/", s.handleDeleteRoom)
						r.Get("/users", s.handleListRoomUsers)
						r.Post("/access", s.handleGrantAccess)
						r.Delete("/access/{userID}", s.handleRevokeAccess)
					})
				})
			})

			// Diagram endpoints, all gated by the room policy
			r.Route("/diagrams", func(r chi.Router) {
				r.Post("/", s.handleCreateDiagram)
				r.Get("/room/{roomID}", s.handleListDiagrams)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDiagram)
					r.Put("/", s.handleUpdateDiagram)
					r.Delete("/", s.handleDeleteDiagram)
				})
			})

			// User administration (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Get("/{id}", s.handleGetUser)
				r.Delete("/{id}", s.handleDeleteUser)
			})

			// Audit trail (admin only)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/audit", s.handleListAuditLogs)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
