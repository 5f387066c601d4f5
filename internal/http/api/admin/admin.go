package admin

import (
	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/http/api/admin/handlers"
	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes registers the health check and administrator routes.
func RegisterAdminRoutes(r *gin.Engine, svc cchttp.Services) {
	if r == nil || svc.DB == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(svc.DB, svc.Ledger, svc.Settings)
	r.GET("/healthz", healthHandler.Healthz)

	if svc.Sessions == nil || svc.Ledger == nil || svc.Directory == nil {
		return
	}

	admin := r.Group("/v0/admin")
	admin.Use(cchttp.SessionAuthMiddleware(svc.Sessions), adminPermissionMiddleware())

	operatorHandler := handlers.NewOperatorHandler(svc.Directory, svc.Ledger, svc.Audit)
	admin.GET("/operators", operatorHandler.List)
	admin.POST("/operators", operatorHandler.Create)
	admin.PUT("/operators/:id/status", operatorHandler.SetStatus)
	admin.PUT("/operators/:id/password", operatorHandler.SetPassword)
	admin.POST("/operators/:id/top-up", operatorHandler.TopUp)
	admin.GET("/operators/:id/entries", operatorHandler.Entries)

	historyHandler := handlers.NewHistoryHandler(svc.Ledger)
	admin.GET("/history", historyHandler.List)

	auditHandler := handlers.NewAuditHandler(svc.Audit)
	admin.GET("/audit-events", auditHandler.List)

	settingsHandler := handlers.NewSettingsHandler(svc.Settings, svc.Audit)
	admin.GET("/settings", settingsHandler.List)
	admin.PUT("/settings/:key", settingsHandler.Update)

	backupHandler := handlers.NewBackupHandler(svc.DB, svc.BackupDir, svc.Audit)
	admin.GET("/backup", backupHandler.Download)

	permissionHandler := handlers.NewPermissionHandler()
	admin.GET("/permissions", permissionHandler.List)
}
