/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/assets/*        Asset registry, depreciation, disposal, revaluation
  /api/depreciation/*  Bulk runs
  /api/scenarios/*     Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Asset routes
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.ListAssets)
			r.Post("/", h.RegisterAsset)
			r.Get("/{id}", h.GetAsset)
			r.Delete("/{id}", h.DeleteAsset)
			r.Put("/{id}/config", h.ConfigureAsset)
			r.Post("/{id}/in-service", h.PlaceInService)
			r.Post("/{id}/status", h.ChangeStatus)
			r.Post("/{id}/cost-additions", h.AddCostAddition)

			r.Get("/{id}/depreciation", h.ListDepreciation)
			r.Get("/{id}/depreciation/preview", h.PreviewDepreciation)
			r.Post("/{id}/depreciation", h.ApplyDepreciation)
			r.Post("/{id}/depreciation/{period}/posted", h.MarkDepreciationPosted)

			r.Post("/{id}/sell", h.SellAsset)
			r.Post("/{id}/scrap", h.ScrapAsset)
			r.Post("/{id}/transfer", h.TransferAsset)
			r.Post("/{id}/dispose", h.DisposeAsset)
			r.Post("/{id}/revalue", h.RevalueAsset)
		})

		// Bulk depreciation routes
		r.Route("/depreciation", func(r chi.Router) {
			r.Post("/run", h.RunDepreciation)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
