// Package ledger owns voucher issuance, redemption and operator balances.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/cashclear/cashclear-pro/internal/notify"
	"github.com/cashclear/cashclear-pro/internal/settings"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultCodePrefix   = "PIP"
	defaultValidityDays = 30
	defaultCurrency     = "R"
)

// Tunables exposes runtime settings that override configured defaults.
type Tunables interface {
	String(key, fallback string) string
	Int(key string, fallback int) int
}

// Options configures a Service.
type Options struct {
	Notifier     notify.Sender
	Events       EventPublisher
	Contacts     ContactPolicy
	Codes        CodeGenerator
	CodePrefix   string
	ValidityDays int
	Currency     string
	Tunables     Tunables
	Now          func() time.Time
}

// Service implements the voucher ledger on top of a gorm database.
type Service struct {
	db           *gorm.DB
	notifier     notify.Sender
	events       EventPublisher
	contacts     ContactPolicy
	codes        CodeGenerator
	codePrefix   string
	validityDays int
	currency     string
	tunables     Tunables
	now          func() time.Time
}

// NewService constructs a ledger service. Zero options fall back to defaults.
func NewService(db *gorm.DB, opts Options) *Service {
	s := &Service{
		db:           db,
		notifier:     opts.Notifier,
		events:       opts.Events,
		contacts:     opts.Contacts,
		codes:        opts.Codes,
		codePrefix:   strings.ToUpper(strings.TrimSpace(opts.CodePrefix)),
		validityDays: opts.ValidityDays,
		currency:     opts.Currency,
		tunables:     opts.Tunables,
		now:          opts.Now,
	}
	if s.notifier == nil {
		s.notifier = notify.LogSender{}
	}
	if s.events == nil {
		s.events = NopPublisher{}
	}
	if s.contacts.CountryCode == "" || s.contacts.NationalDigits <= 0 {
		s.contacts = DefaultContactPolicy
	}
	if s.codes == nil {
		s.codes = NewCodeGenerator(CodeStylePhone)
	}
	if s.codePrefix == "" {
		s.codePrefix = defaultCodePrefix
	}
	if s.validityDays <= 0 {
		s.validityDays = defaultValidityDays
	}
	if s.currency == "" {
		s.currency = defaultCurrency
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Now returns the service clock in UTC.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

// Contacts returns the recipient contact policy.
func (s *Service) Contacts() ContactPolicy {
	return s.contacts
}

func (s *Service) prefix() string {
	if s.tunables == nil {
		return s.codePrefix
	}
	if p := strings.ToUpper(strings.TrimSpace(s.tunables.String(settings.CodePrefixKey, s.codePrefix))); p != "" {
		return p
	}
	return s.codePrefix
}

// DefaultValidity returns the validity applied when a request does not set one.
func (s *Service) DefaultValidity() time.Duration {
	days := s.validityDays
	if s.tunables != nil {
		if v := s.tunables.Int(settings.VoucherValidityDaysKey, days); v > 0 {
			days = v
		}
	}
	return time.Duration(days) * 24 * time.Hour
}

// IssueRequest describes a single voucher issuance.
type IssueRequest struct {
	OperatorID string
	Recipient  string
	Amount     decimal.Decimal
	Location   string        // Defaults to the operator's location.
	Validity   time.Duration // Defaults to DefaultValidity.
}

// IssueVoucher reserves the voucher and debit, delivers the code, then activates the voucher.
// No transaction is held while the notifier runs. A delivery failure voids the reservation,
// reverses the debit and returns ErrDeliveryFailed.
func (s *Service) IssueVoucher(ctx context.Context, req IssueRequest) (*models.Voucher, error) {
	operatorID := NormalizeOperatorID(req.OperatorID)
	if operatorID == "" {
		return nil, ErrInvalidOperator
	}
	cents, errAmount := AmountToCents(req.Amount)
	if errAmount != nil {
		return nil, errAmount
	}
	recipient, errContact := s.contacts.Normalize(req.Recipient)
	if errContact != nil {
		return nil, errContact
	}
	validity := req.Validity
	if validity <= 0 {
		validity = s.DefaultValidity()
	}
	prefix := s.prefix()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, errCode := s.codes.Generate(prefix, recipient)
		if errCode != nil {
			return nil, fmt.Errorf("ledger: generate code: %w", errCode)
		}
		voucher, errReserve := s.reserve(ctx, operatorID, recipient, NormalizeCode(code), cents, strings.TrimSpace(req.Location), validity)
		if errors.Is(errReserve, errCodeTaken) {
			log.WithField("attempt", attempt+1).Debug("ledger: voucher code collision, retrying")
			continue
		}
		if errReserve != nil {
			return nil, errReserve
		}
		if errDeliver := s.deliver(ctx, voucher, validity); errDeliver != nil {
			return nil, errDeliver
		}
		s.publish(ctx, newEvent(EventVoucherIssued, voucher.Code, voucher.Recipient, voucher.AmountCents, voucher.IssuerID, voucher.Location, voucher.IssuedAt))
		return voucher, nil
	}
	return nil, ErrCodeCollision
}

// reserve debits the operator and stores a Pending voucher in one transaction.
func (s *Service) reserve(ctx context.Context, operatorID, recipient, code string, cents int64, location string, validity time.Duration) (*models.Voucher, error) {
	var voucher models.Voucher
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if errFind := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", operatorID).First(&account).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrOperatorNotFound
			}
			return errFind
		}
		if !account.IsActive() {
			return ErrOperatorInactive
		}
		if account.BalanceCents < cents {
			return ErrInsufficientBalance
		}

		var taken int64
		if errCount := tx.Model(&models.Voucher{}).Where("code = ?", code).Count(&taken).Error; errCount != nil {
			return errCount
		}
		if taken > 0 {
			return errCodeTaken
		}

		res := tx.Model(&models.Account{}).
			Where("id = ? AND status = ? AND balance_cents >= ?", operatorID, models.AccountStatusActive, cents).
			UpdateColumn("balance_cents", gorm.Expr("balance_cents - ?", cents))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		now := s.Now()
		if location == "" {
			location = account.Location
		}
		voucher = models.Voucher{
			Code:        code,
			Recipient:   recipient,
			AmountCents: cents,
			Status:      models.VoucherStatusPending,
			IssuedAt:    now,
			ExpiresAt:   now.Add(validity),
			IssuerID:    operatorID,
			Location:    location,
		}
		if errCreate := tx.Create(&voucher).Error; errCreate != nil {
			if isUniqueViolation(errCreate) {
				return errCodeTaken
			}
			return errCreate
		}

		voucherCode := voucher.Code
		entry := models.BalanceEntry{
			OperatorID:        operatorID,
			Kind:              models.BalanceEntryIssue,
			AmountCents:       -cents,
			BalanceAfterCents: account.BalanceCents - cents,
			VoucherCode:       &voucherCode,
			ActorID:           operatorID,
			CreatedAt:         now,
		}
		return tx.Create(&entry).Error
	})
	if errTx != nil {
		return nil, errTx
	}
	return &voucher, nil
}

// deliver sends the code outside any transaction, then activates or voids the reservation.
func (s *Service) deliver(ctx context.Context, voucher *models.Voucher, validity time.Duration) error {
	days := int(validity.Round(24*time.Hour) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	message := notify.VoucherMessage(voucher.Code, CentsToAmount(voucher.AmountCents), s.currency, days)
	errSend := s.notifier.Send(ctx, voucher.Recipient, message)
	if errSend != nil {
		log.WithError(errSend).WithField("code", voucher.Code).Warn("ledger: delivery failed, reversing issuance")
		// The caller may have given up; the reversal must still land.
		if errVoid := s.voidPending(context.WithoutCancel(ctx), voucher.Code); errVoid != nil {
			log.WithError(errVoid).WithField("code", voucher.Code).Error("ledger: reverse undelivered voucher failed")
		}
		voucher.Status = models.VoucherStatusVoid
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, errSend)
	}

	res := s.db.WithContext(context.WithoutCancel(ctx)).Model(&models.Voucher{}).
		Where("code = ? AND status = ?", voucher.Code, models.VoucherStatusPending).
		UpdateColumn("status", models.VoucherStatusActive)
	if res.Error != nil {
		return fmt.Errorf("ledger: activate voucher: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Reaped as stale while the notifier ran. The recipient holds a code that will not redeem.
		log.WithField("code", voucher.Code).Error("ledger: delivered voucher was voided before activation")
		return fmt.Errorf("%w: reservation expired before activation", ErrDeliveryFailed)
	}
	voucher.Status = models.VoucherStatusActive
	return nil
}

// voidPending marks a Pending voucher Void and credits its amount back with a reversal entry.
func (s *Service) voidPending(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var voucher models.Voucher
		if errFind := tx.Where("code = ? AND status = ?", code, models.VoucherStatusPending).First(&voucher).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return nil
			}
			return errFind
		}
		res := tx.Model(&models.Voucher{}).
			Where("code = ? AND status = ?", code, models.VoucherStatusPending).
			UpdateColumn("status", models.VoucherStatusVoid)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if errCredit := tx.Model(&models.Account{}).
			Where("id = ?", voucher.IssuerID).
			UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", voucher.AmountCents)).Error; errCredit != nil {
			return errCredit
		}
		var account models.Account
		if errFind := tx.Select("id", "balance_cents").Where("id = ?", voucher.IssuerID).First(&account).Error; errFind != nil {
			return errFind
		}
		voucherCode := voucher.Code
		entry := models.BalanceEntry{
			OperatorID:        voucher.IssuerID,
			Kind:              models.BalanceEntryReversal,
			AmountCents:       voucher.AmountCents,
			BalanceAfterCents: account.BalanceCents,
			VoucherCode:       &voucherCode,
			ActorID:           voucher.IssuerID,
			CreatedAt:         s.Now(),
		}
		return tx.Create(&entry).Error
	})
}

// PendingCount returns how many vouchers are reserved and awaiting delivery.
func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	errCount := s.db.WithContext(ctx).Model(&models.Voucher{}).
		Where("status = ?", models.VoucherStatusPending).
		Count(&count).Error
	return count, errCount
}

// ReleaseStalePending voids reservations older than maxAge, reversing their debits.
// It recovers issuances interrupted between reservation and activation.
func (s *Service) ReleaseStalePending(ctx context.Context, maxAge time.Duration) (int64, error) {
	var codes []string
	errFind := s.db.WithContext(ctx).Model(&models.Voucher{}).
		Where("status = ? AND issued_at < ?", models.VoucherStatusPending, s.Now().Add(-maxAge)).
		Pluck("code", &codes).Error
	if errFind != nil {
		return 0, errFind
	}
	var released int64
	for _, code := range codes {
		if errVoid := s.voidPending(ctx, code); errVoid != nil {
			return released, errVoid
		}
		released++
	}
	if released > 0 {
		log.WithField("count", released).Warn("ledger: released stale pending vouchers")
	}
	return released, nil
}

// RedeemVoucher consumes an Active, unexpired voucher exactly once.
// A zero now uses the service clock. Expired vouchers are reported but never written.
func (s *Service) RedeemVoucher(ctx context.Context, code string, now time.Time, redeemerID string) (*models.Voucher, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrVoucherNotFound
	}
	if now.IsZero() {
		now = s.Now()
	}
	now = now.UTC()
	redeemer := NormalizeOperatorID(redeemerID)

	var voucher models.Voucher
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errFind := tx.Where("code = ?", code).First(&voucher).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrVoucherNotFound
			}
			return errFind
		}
		switch voucher.EffectiveStatus(now) {
		case models.VoucherStatusPending, models.VoucherStatusVoid:
			return ErrVoucherNotFound
		case models.VoucherStatusRedeemed:
			return ErrAlreadyRedeemed
		case models.VoucherStatusExpired:
			return ErrExpired
		}

		updates := map[string]any{
			"status":      models.VoucherStatusRedeemed,
			"redeemed_at": now,
		}
		if redeemer != "" {
			updates["redeemed_by"] = redeemer
		}
		res := tx.Model(&models.Voucher{}).
			Where("code = ? AND status = ?", code, models.VoucherStatusActive).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyRedeemed
		}
		voucher.Status = models.VoucherStatusRedeemed
		voucher.RedeemedAt = &now
		if redeemer != "" {
			voucher.RedeemedBy = &redeemer
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	s.publish(ctx, newEvent(EventVoucherRedeemed, voucher.Code, voucher.Recipient, voucher.AmountCents, redeemer, voucher.Location, now))
	return &voucher, nil
}

// GetVoucher returns the voucher with code.
func (s *Service) GetVoucher(ctx context.Context, code string) (*models.Voucher, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrVoucherNotFound
	}
	var voucher models.Voucher
	if errFind := s.db.WithContext(ctx).Where("code = ?", code).First(&voucher).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, errFind
	}
	if !voucher.Delivered() {
		return nil, ErrVoucherNotFound
	}
	return &voucher, nil
}

// Balance returns the operator's spendable balance.
func (s *Service) Balance(ctx context.Context, operatorID string) (decimal.Decimal, error) {
	operatorID = NormalizeOperatorID(operatorID)
	var account models.Account
	if errFind := s.db.WithContext(ctx).Select("id", "balance_cents").Where("id = ?", operatorID).First(&account).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrOperatorNotFound
		}
		return decimal.Zero, errFind
	}
	return CentsToAmount(account.BalanceCents), nil
}

// TopUp credits an operator balance and records the entry.
func (s *Service) TopUp(ctx context.Context, operatorID string, amount decimal.Decimal, actorID string) (*models.BalanceEntry, error) {
	operatorID = NormalizeOperatorID(operatorID)
	if operatorID == "" {
		return nil, ErrInvalidOperator
	}
	cents, errAmount := AmountToCents(amount)
	if errAmount != nil {
		return nil, errAmount
	}
	var entry models.BalanceEntry
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Account{}).
			Where("id = ?", operatorID).
			UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", cents))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOperatorNotFound
		}
		var account models.Account
		if errFind := tx.Select("id", "balance_cents").Where("id = ?", operatorID).First(&account).Error; errFind != nil {
			return errFind
		}
		entry = models.BalanceEntry{
			OperatorID:        operatorID,
			Kind:              models.BalanceEntryTopUp,
			AmountCents:       cents,
			BalanceAfterCents: account.BalanceCents,
			ActorID:           NormalizeOperatorID(actorID),
			CreatedAt:         s.Now(),
		}
		return tx.Create(&entry).Error
	})
	if errTx != nil {
		return nil, errTx
	}
	return &entry, nil
}

// Entries lists balance entries for an operator, newest first.
func (s *Service) Entries(ctx context.Context, operatorID string, limit int) ([]models.BalanceEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []models.BalanceEntry
	errFind := s.db.WithContext(ctx).
		Where("operator_id = ?", NormalizeOperatorID(operatorID)).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if errFind != nil {
		return nil, errFind
	}
	return entries, nil
}

func (s *Service) publish(ctx context.Context, event Event) {
	if errPublish := s.events.Publish(ctx, event); errPublish != nil {
		log.WithError(errPublish).WithFields(log.Fields{
			"type": event.Type,
			"code": event.Code,
		}).Warn("ledger: publish event failed")
	}
}
