package handlers

import (
	"net/http"
	"strings"

	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/gin-gonic/gin"
)

// HistoryHandler lists issued vouchers and balance movements.
type HistoryHandler struct {
	ledger *ledger.Service
}

// NewHistoryHandler constructs a HistoryHandler.
func NewHistoryHandler(ledgerSvc *ledger.Service) *HistoryHandler {
	return &HistoryHandler{ledger: ledgerSvc}
}

// History returns recent vouchers. Operators only see their own location.
func (h *HistoryHandler) History(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	filter := ledger.HistoryFilter{
		Location:  strings.TrimSpace(c.Query("location")),
		IssuerID:  strings.TrimSpace(c.Query("issuer_id")),
		Recipient: strings.TrimSpace(c.Query("recipient")),
		Limit:     queryInt(c, "limit", 100),
		Offset:    queryInt(c, "offset", 0),
	}
	if !s.CanAdminister() {
		filter.Location = s.Location
	}
	records, errHistory := h.ledger.GetHistory(c.Request.Context(), filter)
	if errHistory != nil {
		cchttp.WriteError(c, errHistory)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vouchers": cchttp.HistoryView(records)})
}

// BalanceEntries lists the current operator's balance movements.
func (h *HistoryHandler) BalanceEntries(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	entries, errEntries := h.ledger.Entries(c.Request.Context(), s.OperatorID, queryInt(c, "limit", 100))
	if errEntries != nil {
		cchttp.WriteError(c, errEntries)
		return
	}
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, cchttp.BalanceEntryView(e))
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}
