package handlers

import (
	"net/http"
	"strings"

	"github.com/cashclear/cashclear-pro/internal/audit"
	"github.com/cashclear/cashclear-pro/internal/directory"
	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OperatorHandler manages operator accounts and balances.
type OperatorHandler struct {
	dir    *directory.Directory
	ledger *ledger.Service
	audit  *audit.Recorder
}

// NewOperatorHandler constructs an OperatorHandler.
func NewOperatorHandler(dir *directory.Directory, ledgerSvc *ledger.Service, recorder *audit.Recorder) *OperatorHandler {
	return &OperatorHandler{dir: dir, ledger: ledgerSvc, audit: recorder}
}

// List returns operators filtered by the location, role, status and q query values.
func (h *OperatorHandler) List(c *gin.Context) {
	entries, errList := h.dir.List(c.Request.Context(), directory.ListFilter{
		Location: c.Query("location"),
		Role:     c.Query("role"),
		Status:   c.Query("status"),
		Search:   c.Query("q"),
	})
	if errList != nil {
		cchttp.WriteError(c, errList)
		return
	}
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, cchttp.OperatorView(e))
	}
	c.JSON(http.StatusOK, gin.H{"operators": out})
}

// createOperatorRequest defines the request body for operator creation.
type createOperatorRequest struct {
	ID       string          `json:"id"`
	Password string          `json:"password"`
	Role     string          `json:"role"`
	Location string          `json:"location"`
	Balance  decimal.Decimal `json:"balance"`
}

// Create adds a new operator.
func (h *OperatorHandler) Create(c *gin.Context) {
	var body createOperatorRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing password"})
		return
	}
	entry, errCreate := h.dir.Create(c.Request.Context(), directory.CreateParams{
		ID:       body.ID,
		Password: body.Password,
		Role:     body.Role,
		Location: body.Location,
		Balance:  body.Balance,
		ActorID:  actorID(c),
	})
	if errCreate != nil {
		cchttp.WriteError(c, errCreate)
		return
	}
	h.audit.Log(c.Request.Context(), audit.KindOperatorCreated, actorID(c), map[string]any{
		"operator": entry.ID,
		"role":     entry.Role,
		"location": entry.Location,
		"balance":  entry.Balance.StringFixed(2),
	})
	c.JSON(http.StatusCreated, cchttp.OperatorView(entry))
}

// statusRequest defines the request body for status changes.
type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus activates or deactivates an operator.
func (h *OperatorHandler) SetStatus(c *gin.Context) {
	var body statusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	id := ledger.NormalizeOperatorID(c.Param("id"))
	if errStatus := h.dir.SetStatus(c.Request.Context(), id, strings.TrimSpace(body.Status)); errStatus != nil {
		cchttp.WriteError(c, errStatus)
		return
	}
	h.audit.Log(c.Request.Context(), audit.KindOperatorStatus, actorID(c), map[string]any{"operator": id, "status": body.Status})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// passwordRequest defines the request body for password resets.
type passwordRequest struct {
	Password string `json:"password"`
}

// SetPassword replaces an operator's password.
func (h *OperatorHandler) SetPassword(c *gin.Context) {
	var body passwordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	id := ledger.NormalizeOperatorID(c.Param("id"))
	if errPassword := h.dir.SetPassword(c.Request.Context(), id, body.Password); errPassword != nil {
		cchttp.WriteError(c, errPassword)
		return
	}
	h.audit.Log(c.Request.Context(), audit.KindOperatorPassword, actorID(c), map[string]any{"operator": id})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// topUpRequest defines the request body for balance top-ups.
type topUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TopUp credits an operator balance.
func (h *OperatorHandler) TopUp(c *gin.Context) {
	var body topUpRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	entry, errTopUp := h.ledger.TopUp(c.Request.Context(), c.Param("id"), body.Amount, actorID(c))
	if errTopUp != nil {
		cchttp.WriteError(c, errTopUp)
		return
	}
	h.audit.Log(c.Request.Context(), audit.KindTopUp, actorID(c), map[string]any{
		"operator":      entry.OperatorID,
		"amount":        ledger.CentsToAmount(entry.AmountCents).StringFixed(2),
		"balance_after": ledger.CentsToAmount(entry.BalanceAfterCents).StringFixed(2),
	})
	c.JSON(http.StatusOK, cchttp.BalanceEntryView(*entry))
}

// Entries lists balance entries for an operator.
func (h *OperatorHandler) Entries(c *gin.Context) {
	id := ledger.NormalizeOperatorID(c.Param("id"))
	if _, errLookup := h.dir.Lookup(c.Request.Context(), id); errLookup != nil {
		cchttp.WriteError(c, errLookup)
		return
	}
	entries, errEntries := h.ledger.Entries(c.Request.Context(), id, queryInt(c, "limit", 100))
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
