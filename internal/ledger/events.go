package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types.
const (
	EventVoucherIssued   = "voucher.issued"
	EventVoucherRedeemed = "voucher.redeemed"
)

// Event describes a committed voucher lifecycle change.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Code       string          `json:"code"`
	Recipient  string          `json:"recipient"`
	Amount     decimal.Decimal `json:"amount"`
	OperatorID string          `json:"operator_id"`
	Location   string          `json:"location"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// EventPublisher receives events after the change is committed.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

func newEvent(kind, code, recipient string, cents int64, operatorID, location string, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       kind,
		Code:       code,
		Recipient:  recipient,
		Amount:     CentsToAmount(cents),
		OperatorID: operatorID,
		Location:   location,
		OccurredAt: at.UTC(),
	}
}
