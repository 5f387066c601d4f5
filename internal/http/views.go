package http

import (
	"time"

	"github.com/cashclear/cashclear-pro/internal/directory"
	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/cashclear/cashclear-pro/internal/session"
	"github.com/gin-gonic/gin"
)

// VoucherView renders a voucher with its status as observed at now.
func VoucherView(v *models.Voucher, now time.Time) gin.H {
	return gin.H{
		"code":             v.Code,
		"recipient":        v.Recipient,
		"amount":           ledger.CentsToAmount(v.AmountCents).StringFixed(2),
		"status":           v.EffectiveStatus(now),
		"issued_at":        v.IssuedAt.UTC(),
		"expires_at":       v.ExpiresAt.UTC(),
		"issuer_id":        v.IssuerID,
		"location":         v.Location,
		"redeemed_at":      v.RedeemedAt,
		"redeemed_by":      v.RedeemedBy,
		"qr_code_endpoint": "/v0/terminal/vouchers/" + v.Code + "/qr",
	}
}

// HistoryView renders history records.
func HistoryView(records []ledger.HistoryRecord) []gin.H {
	out := make([]gin.H, 0, len(records))
	for i := range records {
		view := VoucherView(&records[i].Voucher, time.Time{})
		view["status"] = records[i].EffectiveStatus
		out = append(out, view)
	}
	return out
}

// BalanceEntryView renders a balance entry.
func BalanceEntryView(e models.BalanceEntry) gin.H {
	return gin.H{
		"id":            e.ID,
		"operator_id":   e.OperatorID,
		"kind":          e.Kind,
		"amount":        ledger.CentsToAmount(e.AmountCents).StringFixed(2),
		"balance_after": ledger.CentsToAmount(e.BalanceAfterCents).StringFixed(2),
		"voucher_code":  e.VoucherCode,
		"actor_id":      e.ActorID,
		"created_at":    e.CreatedAt.UTC(),
	}
}

// OperatorView renders a directory entry without its password hash.
func OperatorView(e directory.Entry) gin.H {
	return gin.H{
		"id":         e.ID,
		"role":       e.Role,
		"location":   e.Location,
		"status":     e.Status,
		"balance":    e.Balance.StringFixed(2),
		"created_at": e.CreatedAt,
	}
}

// SessionView renders a session for its owner.
func SessionView(s *session.Session) gin.H {
	return gin.H{
		"operator_id": s.OperatorID,
		"role":        s.Role,
		"location":    s.Location,
		"break_glass": s.BreakGlass,
		"expires_at":  s.ExpiresAt.UTC(),
	}
}
