package handlers

import (
	"net/http"
	"strings"

	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/gin-gonic/gin"
)

// HistoryHandler serves voucher history across all locations.
type HistoryHandler struct {
	ledger *ledger.Service
}

// NewHistoryHandler constructs a HistoryHandler.
func NewHistoryHandler(ledgerSvc *ledger.Service) *HistoryHandler {
	return &HistoryHandler{ledger: ledgerSvc}
}

// List returns vouchers most recently issued first.
func (h *HistoryHandler) List(c *gin.Context) {
	records, errHistory := h.ledger.GetHistory(c.Request.Context(), ledger.HistoryFilter{
		Location:  strings.TrimSpace(c.Query("location")),
		IssuerID:  strings.TrimSpace(c.Query("issuer_id")),
		Recipient: strings.TrimSpace(c.Query("recipient")),
		Limit:     queryInt(c, "limit", 200),
		Offset:    queryInt(c, "offset", 0),
	})
	if errHistory != nil {
		cchttp.WriteError(c, errHistory)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vouchers": cchttp.HistoryView(records)})
}
