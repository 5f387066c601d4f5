// Package directory stores operator credentials, roles and locations.
package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cashclear/cashclear-pro/internal/db"
	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/cashclear/cashclear-pro/internal/security"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("directory: invalid operator id or password")
	ErrOperatorNotFound   = errors.New("directory: operator not found")
	ErrOperatorInactive   = errors.New("directory: operator is inactive")
	ErrOperatorExists     = errors.New("directory: operator already exists")
	ErrInvalidRole        = errors.New("directory: invalid role")
	ErrInvalidStatus      = errors.New("directory: invalid status")
	ErrInvalidID          = errors.New("directory: operator id is required")
)

// Entry is the directory view of an operator account.
type Entry struct {
	ID           string
	PasswordHash string
	Role         string
	Location     string
	Status       string
	Balance      decimal.Decimal
	CreatedAt    time.Time
}

// Active reports whether the operator may sign in.
func (e Entry) Active() bool {
	return e.Status == models.AccountStatusActive
}

// Directory reads and administers operator accounts.
type Directory struct {
	db       *gorm.DB
	password security.PasswordChecker
}

// New constructs a directory. legacySalt enables verification of imported SHA-256 hashes.
func New(db *gorm.DB, legacySalt string) *Directory {
	return &Directory{db: db, password: security.PasswordChecker{LegacySalt: legacySalt}}
}

// Lookup returns the entry for id.
func (d *Directory) Lookup(ctx context.Context, id string) (Entry, error) {
	var account models.Account
	if errFind := d.db.WithContext(ctx).Where("id = ?", ledger.NormalizeOperatorID(id)).First(&account).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return Entry{}, ErrOperatorNotFound
		}
		return Entry{}, errFind
	}
	return entryFromAccount(&account), nil
}

// Authenticate verifies credentials. Legacy hashes are replaced with bcrypt on success.
func (d *Directory) Authenticate(ctx context.Context, id, password string) (Entry, error) {
	entry, errLookup := d.Lookup(ctx, id)
	if errLookup != nil {
		if errors.Is(errLookup, ErrOperatorNotFound) {
			return Entry{}, ErrInvalidCredentials
		}
		return Entry{}, errLookup
	}
	ok, needsUpgrade := d.password.Check(entry.PasswordHash, password)
	if !ok {
		return Entry{}, ErrInvalidCredentials
	}
	if !entry.Active() {
		return Entry{}, ErrOperatorInactive
	}
	if needsUpgrade {
		if hash, errHash := bcryptHash(password); errHash == nil {
			errUpdate := d.db.WithContext(ctx).Model(&models.Account{}).
				Where("id = ? AND password = ?", entry.ID, entry.PasswordHash).
				Update("password", hash).Error
			if errUpdate != nil {
				log.WithError(errUpdate).WithField("operator", entry.ID).Warn("directory: upgrade legacy hash failed")
			} else {
				entry.PasswordHash = hash
			}
		}
	}
	return entry, nil
}

// CreateParams describes a new operator.
type CreateParams struct {
	ID       string
	Password string
	Role     string
	Location string
	Balance  decimal.Decimal
	ActorID  string // Recorded on the opening balance entry.
}

// Create adds a new operator account. A positive opening balance is recorded as an
// opening balance entry in the same transaction.
func (d *Directory) Create(ctx context.Context, params CreateParams) (Entry, error) {
	account, errBuild := buildAccount(params)
	if errBuild != nil {
		return Entry{}, errBuild
	}
	errTx := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if errCount := tx.Model(&models.Account{}).Where("id = ?", account.ID).Count(&count).Error; errCount != nil {
			return errCount
		}
		if count > 0 {
			return ErrOperatorExists
		}
		if errCreate := tx.Create(account).Error; errCreate != nil {
			return errCreate
		}
		if account.BalanceCents <= 0 {
			return nil
		}
		return tx.Create(&models.BalanceEntry{
			OperatorID:        account.ID,
			Kind:              models.BalanceEntryOpening,
			AmountCents:       account.BalanceCents,
			BalanceAfterCents: account.BalanceCents,
			ActorID:           ledger.NormalizeOperatorID(params.ActorID),
			CreatedAt:         account.CreatedAt,
		}).Error
	})
	if errTx != nil {
		return Entry{}, errTx
	}
	return entryFromAccount(account), nil
}

// Provision creates the account when missing. An existing account keeps its password and
// balance. created reports whether a new account was written.
func (d *Directory) Provision(ctx context.Context, params CreateParams) (entry Entry, created bool, err error) {
	entry, err = d.Create(ctx, params)
	if err == nil {
		return entry, true, nil
	}
	if errors.Is(err, ErrOperatorExists) {
		entry, err = d.Lookup(ctx, params.ID)
		return entry, false, err
	}
	return Entry{}, false, err
}

// ListFilter narrows List results.
type ListFilter struct {
	Location string
	Role     string
	Status   string
	Search   string // Substring of the operator id.
}

// List returns operators ordered by id.
func (d *Directory) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	q := d.db.WithContext(ctx).Model(&models.Account{})
	if location := strings.TrimSpace(filter.Location); location != "" {
		q = q.Where(db.CaseInsensitiveEqualExpr("location"), location)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q = q.Where(db.CaseInsensitiveLikeExpr(d.db, "id"), db.NormalizeLikePattern(d.db, "%"+search+"%"))
	}
	if role := strings.TrimSpace(filter.Role); role != "" {
		q = q.Where("role = ?", role)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		q = q.Where("status = ?", status)
	}
	var accounts []models.Account
	if errFind := q.Order("id ASC").Find(&accounts).Error; errFind != nil {
		return nil, errFind
	}
	entries := make([]Entry, 0, len(accounts))
	for i := range accounts {
		entries = append(entries, entryFromAccount(&accounts[i]))
	}
	return entries, nil
}

// SetStatus activates or deactivates an operator.
func (d *Directory) SetStatus(ctx context.Context, id, status string) error {
	if status != models.AccountStatusActive && status != models.AccountStatusInactive {
		return ErrInvalidStatus
	}
	res := d.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", ledger.NormalizeOperatorID(id)).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOperatorNotFound
	}
	return nil
}

// SetPassword replaces an operator's password.
func (d *Directory) SetPassword(ctx context.Context, id, password string) error {
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return errHash
	}
	res := d.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", ledger.NormalizeOperatorID(id)).
		Updates(map[string]any{"password": hash, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOperatorNotFound
	}
	return nil
}

func buildAccount(params CreateParams) (*models.Account, error) {
	id := ledger.NormalizeOperatorID(params.ID)
	if id == "" {
		return nil, ErrInvalidID
	}
	role := strings.TrimSpace(params.Role)
	if role == "" {
		role = models.RoleOperator
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	balanceCents := int64(0)
	if !params.Balance.IsZero() {
		cents, errCents := ledger.AmountToCents(params.Balance)
		if errCents != nil {
			return nil, errCents
		}
		balanceCents = cents
	}
	hash, errHash := security.HashPassword(params.Password)
	if errHash != nil {
		return nil, errHash
	}
	return &models.Account{
		ID:           id,
		Password:     hash,
		BalanceCents: balanceCents,
		Role:         role,
		Location:     strings.TrimSpace(params.Location),
		Status:       models.AccountStatusActive,
	}, nil
}

func bcryptHash(password string) (string, error) {
	hash, errHash := security.HashPassword(password)
	if errors.Is(errHash, security.ErrWeakPassword) {
		// Legacy passwords may predate the length rule; keep them usable.
		return security.HashPasswordUnchecked(password)
	}
	return hash, errHash
}

func entryFromAccount(account *models.Account) Entry {
	return Entry{
		ID:           account.ID,
		PasswordHash: account.Password,
		Role:         account.Role,
		Location:     account.Location,
		Status:       account.Status,
		Balance:      ledger.CentsToAmount(account.BalanceCents),
		CreatedAt:    account.CreatedAt,
	}
}
