package ledger

import (
	"context"
	"strings"

	"github.com/cashclear/cashclear-pro/internal/db"
	"github.com/cashclear/cashclear-pro/internal/models"
)

// HistoryFilter narrows GetHistory results. Empty fields do not filter.
type HistoryFilter struct {
	Location  string
	IssuerID  string
	Recipient string
	Limit     int
	Offset    int
}

// HistoryRecord is a voucher with its status as observed at query time.
type HistoryRecord struct {
	models.Voucher
	EffectiveStatus string
}

// GetHistory lists vouchers most recently issued first.
func (s *Service) GetHistory(ctx context.Context, filter HistoryFilter) ([]HistoryRecord, error) {
	q := s.db.WithContext(ctx).Model(&models.Voucher{}).Where("status IN ?", models.IssuedVoucherStatuses)
	if location := strings.TrimSpace(filter.Location); location != "" {
		q = q.Where(db.CaseInsensitiveEqualExpr("location"), location)
	}
	if issuer := NormalizeOperatorID(filter.IssuerID); issuer != "" {
		q = q.Where("issuer_id = ?", issuer)
	}
	if recipient := strings.TrimSpace(filter.Recipient); recipient != "" {
		if normalized, errContact := s.contacts.Normalize(recipient); errContact == nil {
			recipient = normalized
		}
		q = q.Where("recipient = ?", recipient)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var vouchers []models.Voucher
	if errFind := q.Order("issued_at DESC").Order("id DESC").Limit(limit).Find(&vouchers).Error; errFind != nil {
		return nil, errFind
	}
	now := s.Now()
	records := make([]HistoryRecord, 0, len(vouchers))
	for _, v := range vouchers {
		records = append(records, HistoryRecord{Voucher: v, EffectiveStatus: v.EffectiveStatus(now)})
	}
	return records, nil
}
