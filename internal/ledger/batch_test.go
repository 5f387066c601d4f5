package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/cashclear/cashclear-pro/internal/models"
)

func TestIssueBatchPartialFailure(t *testing.T) {
	h := setupLedgerTest(t, nil)
	h.seedAccount(t, "OP1", 10000, models.AccountStatusActive)

	recipients := []string{"+27821110001", "not-a-number", "0821110002", "27821110003", "+27821110004", "+27821110005"}
	summary := Collect(h.svc.IssueBatch(context.Background(), BatchRequest{
		OperatorID: "OP1",
		Recipients: recipients,
		Amount:     amount("30"),
	}))

	if summary.Issued != 3 || summary.Failed != 3 {
		t.Fatalf("issued=%d failed=%d, want 3 and 3", summary.Issued, summary.Failed)
	}
	if !summary.Total.Equal(amount("90")) {
		t.Fatalf("total = %s, want 90", summary.Total)
	}
	wantErrs := []error{nil, ErrInvalidRecipient, nil, nil, ErrInsufficientBalance, ErrBatchHalted}
	for i, outcome := range summary.Outcomes {
		if outcome.Index != i || outcome.Recipient != recipients[i] {
			t.Fatalf("outcome %d out of order: %+v", i, outcome)
		}
		if wantErrs[i] == nil {
			if !outcome.OK() {
				t.Fatalf("outcome %d: unexpected error %v", i, outcome.Err)
			}
			continue
		}
		if !errors.Is(outcome.Err, wantErrs[i]) {
			t.Fatalf("outcome %d: expected %v, got %v", i, wantErrs[i], outcome.Err)
		}
	}
	if got := h.balanceCents(t, "OP1"); got != 1000 {
		t.Fatalf("balance = %d, want 1000", got)
	}
	if got := h.voucherCount(t); got != 3 {
		t.Fatalf("vouchers = %d, want 3", got)
	}
}

func TestIssueBatchIsLazy(t *testing.T) {
	h := setupLedgerTest(t, nil)
	h.seedAccount(t, "OP1", 10000, models.AccountStatusActive)

	seq := h.svc.IssueBatch(context.Background(), BatchRequest{
		OperatorID: "OP1",
		Recipients: []string{"+27821110001", "+27821110002", "+27821110003"},
		Amount:     amount("10"),
	})
	if got := h.voucherCount(t); got != 0 {
		t.Fatalf("vouchers issued before iteration: %d", got)
	}
	for outcome := range seq {
		if !outcome.OK() {
			t.Fatalf("unexpected failure: %v", outcome.Err)
		}
		break
	}
	if got := h.voucherCount(t); got != 1 {
		t.Fatalf("vouchers = %d, want 1 after stopping early", got)
	}
	if got := h.balanceCents(t, "OP1"); got != 9000 {
		t.Fatalf("balance = %d, want 9000", got)
	}
}

func TestIssueBatchHaltsForInactiveOperator(t *testing.T) {
	h := setupLedgerTest(t, nil)
	h.seedAccount(t, "OP1", 10000, models.AccountStatusInactive)

	summary := Collect(h.svc.IssueBatch(context.Background(), BatchRequest{
		OperatorID: "OP1",
		Recipients: []string{"+27821110001", "+27821110002"},
		Amount:     amount("10"),
	}))
	if !errors.Is(summary.Outcomes[0].Err, ErrOperatorInactive) || !errors.Is(summary.Outcomes[1].Err, ErrBatchHalted) {
		t.Fatalf("unexpected outcomes: %+v", summary.Outcomes)
	}
}

func TestIssueBatchCancelledContext(t *testing.T) {
	h := setupLedgerTest(t, nil)
	h.seedAccount(t, "OP1", 10000, models.AccountStatusActive)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := Collect(h.svc.IssueBatch(ctx, BatchRequest{
		OperatorID: "OP1",
		Recipients: []string{"+27821110001", "+27821110002"},
		Amount:     amount("10"),
	}))
	if !errors.Is(summary.Outcomes[0].Err, context.Canceled) || !errors.Is(summary.Outcomes[1].Err, ErrBatchHalted) {
		t.Fatalf("unexpected outcomes: %+v", summary.Outcomes)
	}
	if got := h.balanceCents(t, "OP1"); got != 10000 {
		t.Fatalf("balance = %d, want 10000", got)
	}
}
