package routes

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uniadmit/backoffice/config"
	"github.com/uniadmit/backoffice/handlers"
	"github.com/uniadmit/backoffice/middlewares"
)

// Register wires all HTTP routes.
func Register(e *echo.Echo, cfg *config.Config) {
	// ===== Handlers (shared singletons) =====
	auth := handlers.NewAuthHandler()
	inst := handlers.NewInstitutionHandler()
	adm := handlers.NewAdmissionHandler()
	bat := handlers.NewBatchHandler()
	tr := handlers.NewTransferHandler()
	blk := handlers.NewBulkHandler(cfg.BulkWorkers)
	dash := handlers.NewDashboardHandler()
	acct := handlers.NewStaffAccountHandler()

	// ===== Public =====
	e.GET("/health", handlers.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/auth/login", auth.Login)

	// Read-only batch snapshot for the intake UI
	e.GET("/batches", bat.List)
	e.GET("/batches/:id", bat.Get)

	// ===== Protected Groups =====
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret"
	}
	authMW := middlewares.RequireAuth(secret)

	// ===== Staff routes (intake + transfers) =====
	staff := e.Group("", authMW, middlewares.RequireRole("staff", "admin"))

	staff.GET("/admissions", adm.List)
	staff.GET("/admissions/:id", adm.Get)
	staff.POST("/admissions", adm.Create)
	staff.POST("/admissions/import", adm.Import)
	staff.PUT("/admissions/:id", adm.Update)

	staff.GET("/transfers", tr.List)
	staff.GET("/transfers/:id", tr.GetByID)
	staff.POST("/transfers", tr.Create)

	staff.POST("/bulk/status", blk.ChangeStatus)
	staff.POST("/bulk/transfers", blk.Transfer)

	// ===== Admin routes =====
	admin := e.Group("/admin", authMW, middlewares.RequireRole("admin"))

	admin.GET("/dashboard", dash.Overview)
	admin.PUT("/profile/password", auth.ChangePassword)

	admin.GET("/institution", inst.Get)
	admin.POST("/institution", inst.CreateOrUpdate)

	admin.POST("/batches", bat.Create)
	admin.PUT("/batches/:id", bat.Update)
	admin.DELETE("/batches/:id", bat.Delete)

	admin.GET("/staff-accounts", acct.List)
	admin.POST("/staff-accounts", acct.Create)
	admin.POST("/staff-accounts/:id/reset", acct.ResetPassword)
	admin.DELETE("/staff-accounts/:id", acct.Delete)

	admin.DELETE("/admissions/:id", adm.Delete)
}
