package front

import (
	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/http/api/front/handlers"
	"github.com/gin-gonic/gin"
)

// RegisterTerminalRoutes registers operator terminal routes.
func RegisterTerminalRoutes(r *gin.Engine, svc cchttp.Services) {
	if r == nil || svc.Ledger == nil || svc.Sessions == nil {
		return
	}

	terminal := r.Group("/v0/terminal")

	authHandler := handlers.NewAuthHandler(svc.Sessions, svc.Ledger, svc.Settings)
	terminal.POST("/login", authHandler.Login)
	terminal.POST("/login/break-glass", authHandler.BreakGlass)

	authed := terminal.Group("")
	authed.Use(cchttp.SessionAuthMiddleware(svc.Sessions))

	authed.POST("/logout", authHandler.Logout)
	authed.GET("/me", authHandler.Me)

	voucherHandler := handlers.NewVoucherHandler(svc.Ledger)
	authed.POST("/vouchers", voucherHandler.Issue)
	authed.POST("/vouchers/batch", voucherHandler.Batch)
	authed.POST("/vouchers/redeem", voucherHandler.Redeem)
	authed.GET("/vouchers/:code", voucherHandler.Get)
	authed.GET("/vouchers/:code/qr", voucherHandler.QRCode)

	historyHandler := handlers.NewHistoryHandler(svc.Ledger)
	authed.GET("/history", historyHandler.History)
	authed.GET("/balance/entries", historyHandler.BalanceEntries)

	if svc.Lotto != nil {
		lottoHandler := handlers.NewLottoHandler(svc.Lotto)
		authed.POST("/lotto", lottoHandler.Generate)
	}
}
