package directory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cashclear/cashclear-pro/internal/db"
	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/cashclear/cashclear-pro/internal/security"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupDirectoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := db.Open(fmt.Sprintf("file:directory_%d?mode=memory&cache=shared", time.Now().UnixNano()))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	dir := New(setupDirectoryTestDB(t), "")

	entry, errCreate := dir.Create(ctx, CreateParams{ID: "op1", Password: "correct-horse", Location: "Benoni", Balance: decimal.RequireFromString("100")})
	if errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}
	if entry.ID != "OP1" || entry.Role != models.RoleOperator || !entry.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if _, errDup := dir.Create(ctx, CreateParams{ID: "OP1", Password: "another-pass"}); !errors.Is(errDup, ErrOperatorExists) {
		t.Fatalf("expected ErrOperatorExists, got %v", errDup)
	}

	if _, errAuth := dir.Authenticate(ctx, "OP1", "correct-horse"); errAuth != nil {
		t.Fatalf("authenticate: %v", errAuth)
	}
	if _, errAuth := dir.Authenticate(ctx, "OP1", "wrong-password"); !errors.Is(errAuth, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", errAuth)
	}
	if _, errAuth := dir.Authenticate(ctx, "GHOST", "correct-horse"); !errors.Is(errAuth, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown operator, got %v", errAuth)
	}

	if errStatus := dir.SetStatus(ctx, "op1", models.AccountStatusInactive); errStatus != nil {
		t.Fatalf("set status: %v", errStatus)
	}
	if _, errAuth := dir.Authenticate(ctx, "OP1", "correct-horse"); !errors.Is(errAuth, ErrOperatorInactive) {
		t.Fatalf("expected ErrOperatorInactive, got %v", errAuth)
	}
	if errStatus := dir.SetStatus(ctx, "OP1", "Suspended"); !errors.Is(errStatus, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", errStatus)
	}
	if errStatus := dir.SetStatus(ctx, "GHOST", models.AccountStatusActive); !errors.Is(errStatus, ErrOperatorNotFound) {
		t.Fatalf("expected ErrOperatorNotFound, got %v", errStatus)
	}
}

func TestCreateRecordsOpeningBalance(t *testing.T) {
	ctx := context.Background()
	conn := setupDirectoryTestDB(t)
	dir := New(conn, "")

	if _, errCreate := dir.Create(ctx, CreateParams{ID: "op7", Password: "correct-horse", Balance: decimal.RequireFromString("250.50"), ActorID: "cc-admin"}); errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}
	if _, errCreate := dir.Create(ctx, CreateParams{ID: "op8", Password: "correct-horse"}); errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}

	var entries []models.BalanceEntry
	if errFind := conn.Order("id ASC").Find(&entries).Error; errFind != nil {
		t.Fatalf("load entries: %v", errFind)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want one opening entry", len(entries))
	}
	e := entries[0]
	if e.OperatorID != "OP7" || e.Kind != models.BalanceEntryOpening || e.AmountCents != 25050 || e.BalanceAfterCents != 25050 || e.ActorID != "CC-ADMIN" {
		t.Fatalf("unexpected opening entry: %+v", e)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	dir := New(setupDirectoryTestDB(t), "")

	if _, errCreate := dir.Create(ctx, CreateParams{ID: " ", Password: "long-enough"}); !errors.Is(errCreate, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", errCreate)
	}
	if _, errCreate := dir.Create(ctx, CreateParams{ID: "OP1", Password: "long-enough", Role: "Root"}); !errors.Is(errCreate, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", errCreate)
	}
	if _, errCreate := dir.Create(ctx, CreateParams{ID: "OP1", Password: "short"}); !errors.Is(errCreate, security.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", errCreate)
	}
}

func TestProvisionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn := setupDirectoryTestDB(t)
	dir := New(conn, "")
	params := CreateParams{ID: "CC-ADMIN", Password: "initial-pass", Role: models.RoleAdmin, Location: "Benoni HQ", Balance: decimal.NewFromInt(1000)}

	_, created, errProvision := dir.Provision(ctx, params)
	if errProvision != nil || !created {
		t.Fatalf("first provision: created=%v err=%v", created, errProvision)
	}
	if errPassword := dir.SetPassword(ctx, "CC-ADMIN", "rotated-pass"); errPassword != nil {
		t.Fatalf("set password: %v", errPassword)
	}
	if errTopUp := conn.Model(&models.Account{}).Where("id = ?", "CC-ADMIN").Update("balance_cents", 12345).Error; errTopUp != nil {
		t.Fatalf("update balance: %v", errTopUp)
	}

	entry, created, errProvision := dir.Provision(ctx, params)
	if errProvision != nil || created {
		t.Fatalf("second provision: created=%v err=%v", created, errProvision)
	}
	if !entry.Balance.Equal(decimal.RequireFromString("123.45")) {
		t.Fatalf("balance reset to %s", entry.Balance)
	}
	if _, errAuth := dir.Authenticate(ctx, "CC-ADMIN", "rotated-pass"); errAuth != nil {
		t.Fatalf("rotated password lost: %v", errAuth)
	}
	if _, errAuth := dir.Authenticate(ctx, "CC-ADMIN", "initial-pass"); !errors.Is(errAuth, ErrInvalidCredentials) {
		t.Fatalf("initial password restored: %v", errAuth)
	}
}

func TestAuthenticateUpgradesLegacyHash(t *testing.T) {
	ctx := context.Background()
	conn := setupDirectoryTestDB(t)
	const salt = "LEGACY_SALT"
	sum := sha256.Sum256([]byte("admin" + salt))
	legacy := models.Account{ID: "OLD", Password: hex.EncodeToString(sum[:]), Role: models.RoleAdmin, Status: models.AccountStatusActive}
	if errCreate := conn.Create(&legacy).Error; errCreate != nil {
		t.Fatalf("seed: %v", errCreate)
	}

	dir := New(conn, salt)
	entry, errAuth := dir.Authenticate(ctx, "old", "admin")
	if errAuth != nil {
		t.Fatalf("authenticate legacy: %v", errAuth)
	}
	if !strings.HasPrefix(entry.PasswordHash, "$2") {
		t.Fatalf("hash not upgraded: %q", entry.PasswordHash)
	}
	stored, errLookup := dir.Lookup(ctx, "OLD")
	if errLookup != nil {
		t.Fatalf("lookup: %v", errLookup)
	}
	if security.IsLegacyHash(stored.PasswordHash) {
		t.Fatalf("stored hash still legacy")
	}
	if _, errAuth := dir.Authenticate(ctx, "OLD", "admin"); errAuth != nil {
		t.Fatalf("authenticate after upgrade: %v", errAuth)
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	dir := New(setupDirectoryTestDB(t), "")
	for _, p := range []CreateParams{
		{ID: "B", Password: "password-b", Location: "Springs"},
		{ID: "A", Password: "password-a", Location: "Benoni", Role: models.RoleAdmin},
		{ID: "C", Password: "password-c", Location: "Benoni"},
	} {
		if _, errCreate := dir.Create(ctx, p); errCreate != nil {
			t.Fatalf("create %s: %v", p.ID, errCreate)
		}
	}
	all, errList := dir.List(ctx, ListFilter{})
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(all) != 3 || all[0].ID != "A" || all[2].ID != "C" {
		t.Fatalf("unexpected list: %+v", all)
	}
	benoni, errList := dir.List(ctx, ListFilter{Location: "Benoni", Role: models.RoleOperator})
	if errList != nil {
		t.Fatalf("list filtered: %v", errList)
	}
	if len(benoni) != 1 || benoni[0].ID != "C" {
		t.Fatalf("unexpected filtered list: %+v", benoni)
	}
	anyCase, errList := dir.List(ctx, ListFilter{Location: "benoni"})
	if errList != nil || len(anyCase) != 2 {
		t.Fatalf("expected case-insensitive location match, got %+v (%v)", anyCase, errList)
	}
	searched, errList := dir.List(ctx, ListFilter{Search: "c"})
	if errList != nil || len(searched) != 1 || searched[0].ID != "C" {
		t.Fatalf("unexpected search result: %+v (%v)", searched, errList)
	}
}
