package handlers

import (
	"net/http"
	"time"

	"github.com/cashclear/cashclear-pro/internal/audit"
	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/gin-gonic/gin"
)

// AuditHandler lists audit events.
type AuditHandler struct {
	audit *audit.Recorder
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(recorder *audit.Recorder) *AuditHandler {
	return &AuditHandler{audit: recorder}
}

// List returns audit events newest first. since accepts RFC 3339.
func (h *AuditHandler) List(c *gin.Context) {
	filter := audit.Filter{
		Kind:    c.Query("kind"),
		ActorID: c.Query("actor_id"),
		Limit:   queryInt(c, "limit", 100),
	}
	if raw := c.Query("since"); raw != "" {
		since, errParse := time.Parse(time.RFC3339, raw)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since"})
			return
		}
		filter.Since = &since
	}
	events, errList := h.audit.List(c.Request.Context(), filter)
	if errList != nil {
		cchttp.WriteError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(events))
	for _, e := range events {
		out = append(out, gin.H{
			"id":         e.ID,
			"kind":       e.Kind,
			"actor_id":   e.ActorID,
			"detail":     e.Detail,
			"created_at": e.CreatedAt.UTC(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}
