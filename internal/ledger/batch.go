package ledger

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/shopspring/decimal"
)

// BatchRequest issues the same amount to each recipient in order.
type BatchRequest struct {
	OperatorID string
	Recipients []string
	Amount     decimal.Decimal
	Location   string
	Validity   time.Duration
}

// BatchOutcome is the result for one recipient.
type BatchOutcome struct {
	Index     int
	Recipient string
	Voucher   *models.Voucher
	Err       error
}

// OK reports whether the voucher was issued.
func (o BatchOutcome) OK() bool {
	return o.Err == nil && o.Voucher != nil
}

// IssueBatch returns a lazy sequence issuing one voucher per step. Each step debits the
// balance on its own, so stopping the iteration early leaves the remaining recipients
// untouched. Invalid recipients fail individually; the first failure that affects every
// remaining recipient (insufficient balance, missing or inactive operator, cancelled
// context) halts the batch and the rest are reported with ErrBatchHalted.
// Iterating the sequence again issues new vouchers.
func (s *Service) IssueBatch(ctx context.Context, req BatchRequest) iter.Seq[BatchOutcome] {
	return func(yield func(BatchOutcome) bool) {
		halted := false
		for i, recipient := range req.Recipients {
			outcome := BatchOutcome{Index: i, Recipient: recipient}
			if !halted {
				if errCtx := ctx.Err(); errCtx != nil {
					halted = true
					outcome.Err = errCtx
				} else {
					outcome.Voucher, outcome.Err = s.IssueVoucher(ctx, IssueRequest{
						OperatorID: req.OperatorID,
						Recipient:  recipient,
						Amount:     req.Amount,
						Location:   req.Location,
						Validity:   req.Validity,
					})
					halted = haltsBatch(outcome.Err)
				}
			} else {
				outcome.Err = ErrBatchHalted
			}
			if !yield(outcome) {
				return
			}
		}
	}
}

func haltsBatch(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrOperatorNotFound) ||
		errors.Is(err, ErrOperatorInactive) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidOperator)
}

// BatchSummary totals a consumed batch.
type BatchSummary struct {
	Outcomes []BatchOutcome
	Issued   int
	Failed   int
	Total    decimal.Decimal
}

// Collect drains seq into a summary.
func Collect(seq iter.Seq[BatchOutcome]) BatchSummary {
	summary := BatchSummary{Total: decimal.Zero}
	for outcome := range seq {
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.OK() {
			summary.Issued++
			summary.Total = summary.Total.Add(CentsToAmount(outcome.Voucher.AmountCents))
			continue
		}
		summary.Failed++
	}
	return summary
}
