package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/lead-management/internal/analytics"
	"github.com/frahmantamala/lead-management/internal/audit"
	"github.com/frahmantamala/lead-management/internal/auth"
	"github.com/frahmantamala/lead-management/internal/hierarchy"
	"github.com/frahmantamala/lead-management/internal/lead"
	"github.com/frahmantamala/lead-management/internal/transport/middleware"
	"github.com/frahmantamala/lead-management/internal/transport/swagger"
	"github.com/frahmantamala/lead-management/internal/user"
	"github.com/go-chi/chi"
)

// RouterDeps bundles everything the route table needs.
type RouterDeps struct {
	DB               *sql.DB
	AuthHandler      *auth.Handler
	UserHandler      *user.Handler
	LeadHandler      *lead.Handler
	AnalyticsHandler *analytics.Handler
	AuditHandler     *audit.Handler
	OpenAPISpecPath  string
	Logger           *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggingMiddleware(deps.Logger))

	// Serve OpenAPI spec at root (outside API prefix)
	specPath := deps.OpenAPISpecPath
	if specPath == "" {
		specPath = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, specPath)
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if deps.AuthHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", deps.AuthHandler.Login)
				sr.Post("/refresh", deps.AuthHandler.RefreshToken)
				sr.Post("/logout", deps.AuthHandler.Logout)
			})
		}

		if deps.AuthHandler == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(deps.AuthHandler.AuthMiddleware)

			// Users
			if deps.UserHandler != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/me", deps.UserHandler.GetCurrentUser)

					ur.Group(func(mr chi.Router) {
						mr.Use(middleware.RequireManagement())
						mr.Get("/team", deps.UserHandler.GetTeam)
					})

					ur.Group(func(ar chi.Router) {
						ar.Use(middleware.RequireRoles(hierarchy.RoleSuperadmin))
						ar.Post("/", deps.UserHandler.CreateUser)
						ar.Patch("/{id}/hierarchy", deps.UserHandler.ReassignHierarchy)
						ar.Delete("/{id}", deps.UserHandler.Deactivate)
					})
				})
			}

			// Leads: every operation re-checks visibility in the service, the
			// route table only requires authentication.
			if deps.LeadHandler != nil {
				pr.Route("/leads", func(lr chi.Router) {
					lr.Post("/", deps.LeadHandler.CreateLead)
					lr.Get("/", deps.LeadHandler.ListLeads)
					lr.Get("/{id}", deps.LeadHandler.GetLead)
					lr.Patch("/{id}/priority", deps.LeadHandler.UpdatePriority)
					lr.Patch("/{id}/assign", deps.LeadHandler.AssignLead)
					lr.Delete("/{id}", deps.LeadHandler.DeleteLead)
					lr.Get("/{id}/history", deps.LeadHandler.GetHistory)

					if deps.AuditHandler != nil {
						lr.Get("/{id}/activities", deps.AuditHandler.GetLeadActivities)
					}
				})
			}

			// Reports
			if deps.AnalyticsHandler != nil {
				pr.Route("/reports", func(rr chi.Router) {
					rr.Get("/dashboard", deps.AnalyticsHandler.Dashboard)
					rr.Get("/daily", deps.AnalyticsHandler.DailyReport)
					rr.Get("/performers", deps.AnalyticsHandler.TopPerformers)

					rr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequireManagement())
						mr.Get("/team", deps.AnalyticsHandler.TeamReport)
						mr.Get("/users/{id}/conversion", deps.AnalyticsHandler.UserConversionRate)
					})
				})
			}
		})
	})
}
