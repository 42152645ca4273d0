package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aquanet/water-service/internal/api/http/handlers"
	"github.com/aquanet/water-service/internal/auth"
	"github.com/aquanet/water-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Tasks          *handlers.TasksHandler
	Meter          *handlers.MeterHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Post("/create-staff", auth.RequireRole(domain.RoleAdmin), cfg.Auth.CreateStaff)
	authProtected.Get("/staff", auth.RequireRole(domain.RoleAdmin, domain.RoleSupervisor), cfg.Auth.ListStaff)

	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle)
	complaints.Post("", cfg.Complaints.Create)
	complaints.Get("", cfg.Complaints.List)
	complaints.Get("/export/csv", auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin), cfg.Complaints.ExportCSV)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Put("/:id", auth.RequireStaff(), cfg.Complaints.Update)

	meter := app.Group("/meter", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	meter.Post("", cfg.Meter.Create)
	meter.Get("", cfg.Meter.List)
	meter.Get("/export/csv", auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin), cfg.Meter.ExportCSV)
	meter.Get("/history/:meterNumber", cfg.Meter.History)
	meter.Get("/:id", cfg.Meter.Get)
	meter.Put("/:id/status", auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin), cfg.Meter.UpdateStatus)

	tasks := app.Group("/tasks", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	tasks.Post("", auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin), cfg.Tasks.Create)
	tasks.Get("", cfg.Tasks.List)
	tasks.Get("/report/summary", auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin), cfg.Tasks.ReportSummary)
	tasks.Get("/export/csv", auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin), cfg.Tasks.ExportCSV)
	tasks.Get("/:id", cfg.Tasks.Get)
	tasks.Put("/:id", cfg.Tasks.Update)

	dashboard := app.Group("/dashboard", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin))
	dashboard.Get("/summary", cfg.Dashboard.Summary)
}
