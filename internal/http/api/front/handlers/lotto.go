package handlers

import (
	"net/http"

	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/lotto"
	"github.com/gin-gonic/gin"
)

// LottoHandler generates lucky-number tickets.
type LottoHandler struct {
	gen *lotto.Generator
}

// NewLottoHandler constructs a LottoHandler.
func NewLottoHandler(gen *lotto.Generator) *LottoHandler {
	return &LottoHandler{gen: gen}
}

type lottoRequest struct {
	Game string `json:"game"`
}

// Generate draws a ticket for the requested game.
func (h *LottoHandler) Generate(c *gin.Context) {
	var body lottoRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	ticket, errGen := h.gen.Generate(body.Game)
	if errGen != nil {
		cchttp.WriteError(c, errGen)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
