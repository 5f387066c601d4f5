package handlers

import (
	"net/http"
	"strings"

	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/cashclear/cashclear-pro/internal/session"
	"github.com/cashclear/cashclear-pro/internal/settings"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles terminal sign-in and session endpoints.
type AuthHandler struct {
	sessions *session.Manager
	ledger   *ledger.Service
	settings *settings.Store
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(sessions *session.Manager, ledgerSvc *ledger.Service, settingsStore *settings.Store) *AuthHandler {
	return &AuthHandler{sessions: sessions, ledger: ledgerSvc, settings: settingsStore}
}

// loginRequest defines the request body for operator login.
type loginRequest struct {
	OperatorID string `json:"operator_id"`
	Password   string `json:"password"`
}

// Login authenticates an operator and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	operatorID := strings.TrimSpace(body.OperatorID)
	if operatorID == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing operator id or password"})
		return
	}

	s, token, errLogin := h.sessions.Login(c.Request.Context(), operatorID, body.Password)
	if errLogin != nil {
		cchttp.WriteError(c, errLogin)
		return
	}
	c.JSON(http.StatusOK, tokenResponse(s, token))
}

// breakGlassRequest defines the request body for emergency access.
type breakGlassRequest struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// BreakGlass opens an audited emergency session with a one-time code.
func (h *AuthHandler) BreakGlass(c *gin.Context) {
	var body breakGlassRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	s, token, errBreak := h.sessions.BreakGlass(c.Request.Context(), body.Code, body.Reason)
	if errBreak != nil {
		cchttp.WriteError(c, errBreak)
		return
	}
	c.JSON(http.StatusOK, tokenResponse(s, token))
}

// Logout destroys the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	if errLogout := h.sessions.Logout(c.Request.Context(), s); errLogout != nil {
		cchttp.WriteError(c, errLogout)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me returns the session owner, terminal name and balance.
func (h *AuthHandler) Me(c *gin.Context) {
	s, ok := requireSession(c)
	if !ok {
		return
	}
	resp := cchttp.SessionView(s)
	resp["site_name"] = h.settings.String(settings.SiteNameKey, settings.DefaultSiteName)
	if !s.BreakGlass {
		balance, errBalance := h.ledger.Balance(c.Request.Context(), s.OperatorID)
		if errBalance != nil {
			cchttp.WriteError(c, errBalance)
			return
		}
		resp["balance"] = balance.StringFixed(2)
	}
	c.JSON(http.StatusOK, resp)
}

func tokenResponse(s *session.Session, token string) gin.H {
	return gin.H{
		"token":      token,
		"token_type": "Bearer",
		"expires_at": s.ExpiresAt.UTC(),
		"session":    cchttp.SessionView(s),
	}
}
