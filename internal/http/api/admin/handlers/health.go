package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/cashclear/cashclear-pro/internal/settings"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const healthTimeout = 3 * time.Second

// HealthHandler reports whether the ledger can serve requests.
type HealthHandler struct {
	db       *gorm.DB
	ledger   *ledger.Service
	settings *settings.Store
}

// NewHealthHandler constructs a HealthHandler. ledger and settings may be nil.
func NewHealthHandler(db *gorm.DB, ledgerSvc *ledger.Service, settingsStore *settings.Store) *HealthHandler {
	return &HealthHandler{db: db, ledger: ledgerSvc, settings: settingsStore}
}

// Healthz reports database reachability, missing ledger tables and vouchers still awaiting
// delivery. It answers 503 when the ledger cannot be used.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	sqlDB, errDB := h.db.DB()
	if errDB != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "database": "unavailable"})
		return
	}
	if errPing := sqlDB.PingContext(ctx); errPing != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "database": "unreachable"})
		return
	}

	missing := missingTables(h.db.WithContext(ctx))
	if len(missing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "database": "ok", "missing_tables": missing})
		return
	}

	resp := gin.H{"ok": true, "database": "ok", "dialect": h.db.Dialector.Name()}
	if h.ledger != nil {
		pending, errPending := h.ledger.PendingCount(ctx)
		if errPending != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "database": "ok", "ledger": "unreadable"})
			return
		}
		resp["pending_deliveries"] = pending
	}
	if h.settings != nil {
		if updated := h.settings.UpdatedAt(); !updated.IsZero() {
			resp["settings_updated_at"] = updated
		}
	}
	c.JSON(http.StatusOK, resp)
}

func missingTables(conn *gorm.DB) []string {
	migrator := conn.Migrator()
	var missing []string
	for _, model := range models.All() {
		if migrator.HasTable(model) {
			continue
		}
		stmt := &gorm.Statement{DB: conn}
		if errParse := stmt.Parse(model); errParse == nil {
			missing = append(missing, stmt.Schema.Table)
			continue
		}
		missing = append(missing, fmt.Sprintf("%T", model))
	}
	return missing
}
