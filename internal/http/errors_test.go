package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/cashclear/cashclear-pro/internal/session"
	"github.com/gin-gonic/gin"
)

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ledger.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
		{fmt.Errorf("issue: %w", ledger.ErrInsufficientBalance), http.StatusPaymentRequired, "insufficient_balance"},
		{ledger.ErrVoucherNotFound, http.StatusNotFound, "voucher_not_found"},
		{ledger.ErrAlreadyRedeemed, http.StatusConflict, "already_redeemed"},
		{ledger.ErrExpired, http.StatusConflict, "expired"},
		{fmt.Errorf("%w: twilio down", ledger.ErrDeliveryFailed), http.StatusBadGateway, "delivery_failed"},
		{session.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, code, _ := ErrorStatus(tc.err)
		if status != tc.status || code != tc.code {
			t.Fatalf("ErrorStatus(%v) = %d %q, want %d %q", tc.err, status, code, tc.status, tc.code)
		}
	}
}

func TestWriteErrorBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(c, ledger.ErrExpired)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "expired" || body["error"] == "" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSessionAuthMiddlewareRejectsBadHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := session.NewManager(nil, nil, nil, nil, session.ManagerOptions{Secret: "test-secret"})
	router := gin.New()
	router.Use(SessionAuthMiddleware(manager))
	router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string]string{
		"missing":   "",
		"no bearer": "Token abc",
		"empty":     "Bearer   ",
		"garbage":   "Bearer not-a-jwt",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}
