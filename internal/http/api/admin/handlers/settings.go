package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cashclear/cashclear-pro/internal/audit"
	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/settings"
	"github.com/gin-gonic/gin"
)

// SettingsHandler reads and updates runtime settings.
type SettingsHandler struct {
	settings *settings.Store
	audit    *audit.Recorder
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(store *settings.Store, recorder *audit.Recorder) *SettingsHandler {
	return &SettingsHandler{settings: store, audit: recorder}
}

// List returns every non-secret setting.
func (h *SettingsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"settings":   h.settings.Public(),
		"updated_at": h.settings.UpdatedAt(),
	})
}

// updateSettingRequest defines the request body for a setting update.
type updateSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// Update sets one admin-editable setting.
func (h *SettingsHandler) Update(c *gin.Context) {
	key := strings.ToUpper(strings.TrimSpace(c.Param("key")))
	if !settings.IsAdminEditable(key) {
		cchttp.WriteError(c, settings.ErrUnknownKey)
		return
	}
	var body updateSettingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || len(body.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if key == settings.VoucherValidityDaysKey {
		var days int
		if errDays := json.Unmarshal(body.Value, &days); errDays != nil || days <= 0 || days > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validity days must be between 1 and 365"})
			return
		}
	}
	if errSet := h.settings.Set(c.Request.Context(), key, body.Value, actorID(c)); errSet != nil {
		cchttp.WriteError(c, errSet)
		return
	}
	h.audit.Log(c.Request.Context(), audit.KindSettingUpdated, actorID(c), map[string]any{"key": key, "value": body.Value})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
