package http

import (
	"errors"
	"net/http"

	"github.com/cashclear/cashclear-pro/internal/db"
	"github.com/cashclear/cashclear-pro/internal/directory"
	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/cashclear/cashclear-pro/internal/lotto"
	"github.com/cashclear/cashclear-pro/internal/recipients"
	"github.com/cashclear/cashclear-pro/internal/security"
	"github.com/cashclear/cashclear-pro/internal/session"
	"github.com/cashclear/cashclear-pro/internal/settings"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{ledger.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "amount must be positive with at most two decimal places"},
	{ledger.ErrInvalidRecipient, http.StatusBadRequest, "invalid_recipient", "invalid recipient phone number"},
	{ledger.ErrInvalidOperator, http.StatusBadRequest, "invalid_operator", "operator id is required"},
	{directory.ErrInvalidID, http.StatusBadRequest, "invalid_operator", "operator id is required"},
	{directory.ErrInvalidRole, http.StatusBadRequest, "invalid_role", "invalid role"},
	{directory.ErrInvalidStatus, http.StatusBadRequest, "invalid_status", "invalid status"},
	{security.ErrWeakPassword, http.StatusBadRequest, "weak_password", "password must be at least 8 characters"},
	{recipients.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported_file", "upload a .csv or .xlsx file"},
	{recipients.ErrNoRecipients, http.StatusBadRequest, "no_recipients", "no recipients found"},
	{recipients.ErrTooManyRecipients, http.StatusBadRequest, "too_many_recipients", "too many recipients"},
	{lotto.ErrUnknownGame, http.StatusBadRequest, "unknown_game", "unknown game"},
	{settings.ErrUnknownKey, http.StatusBadRequest, "unknown_setting", "unknown setting"},
	{session.ErrBreakGlassReason, http.StatusBadRequest, "reason_required", "a reason is required"},

	{directory.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid operator id or password"},
	{session.ErrBreakGlassInvalid, http.StatusUnauthorized, "invalid_code", "invalid break-glass code"},
	{session.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "invalid or expired session"},

	{ledger.ErrInsufficientBalance, http.StatusPaymentRequired, "insufficient_balance", "insufficient balance"},

	{ledger.ErrOperatorInactive, http.StatusForbidden, "operator_inactive", "operator is inactive"},
	{directory.ErrOperatorInactive, http.StatusForbidden, "operator_inactive", "operator is inactive"},
	{session.ErrBreakGlassDisabled, http.StatusForbidden, "break_glass_disabled", "break-glass access is disabled"},

	{ledger.ErrOperatorNotFound, http.StatusNotFound, "operator_not_found", "operator not found"},
	{directory.ErrOperatorNotFound, http.StatusNotFound, "operator_not_found", "operator not found"},
	{ledger.ErrVoucherNotFound, http.StatusNotFound, "voucher_not_found", "voucher not found"},

	{ledger.ErrAlreadyRedeemed, http.StatusConflict, "already_redeemed", "voucher already redeemed"},
	{ledger.ErrExpired, http.StatusConflict, "expired", "voucher expired"},
	{directory.ErrOperatorExists, http.StatusConflict, "operator_exists", "operator already exists"},
	{ledger.ErrBatchHalted, http.StatusConflict, "batch_halted", "not attempted: batch halted"},

	{ledger.ErrDeliveryFailed, http.StatusBadGateway, "delivery_failed", "voucher could not be delivered; no balance was deducted"},
	{ledger.ErrCodeCollision, http.StatusServiceUnavailable, "code_collision", "could not allocate a voucher code, try again"},
	{db.ErrBackupUnsupported, http.StatusNotImplemented, "backup_unsupported", "backup is only available for sqlite"},
}

// ErrorStatus maps err to an HTTP status and a stable error code.
func ErrorStatus(err error) (int, string, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, m.message
		}
	}
	return http.StatusInternalServerError, "internal", "internal error"
}

// WriteError responds with the mapped status for err. Unmapped errors are logged.
func WriteError(c *gin.Context, err error) {
	status, code, message := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, gin.H{"error": message, "code": code})
}
