package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestDetectDialectFromDSN(t *testing.T) {
	cases := []struct {
		dsn  string
		want string
	}{
		{"postgres://user:pw@localhost:5432/cashclear", DialectPostgres},
		{"host=localhost user=cc dbname=cashclear sslmode=disable", DialectPostgres},
		{"file:data/cashclear.db", DialectSQLite},
		{"sqlite://data/cashclear.db", DialectSQLite},
		{"pip_data.db", DialectSQLite},
	}
	for _, tc := range cases {
		got, err := detectDialectFromDSN(tc.dsn)
		if err != nil {
			t.Fatalf("detect %q: %v", tc.dsn, err)
		}
		if got != tc.want {
			t.Fatalf("detect %q = %q, want %q", tc.dsn, got, tc.want)
		}
	}
	if _, err := detectDialectFromDSN("mysql://root@localhost/db"); err == nil {
		t.Fatalf("expected error for mysql dsn")
	}
}

func TestSQLitePath(t *testing.T) {
	cases := map[string]string{
		"data/cashclear.db":                     "data/cashclear.db",
		"file:data/cashclear.db?_pragma=x(1)":   "data/cashclear.db",
		"sqlite3://var/lib/cashclear.db":        "var/lib/cashclear.db",
		":memory:":                              "",
		"file::memory:":                         "",
		"file:ledger_1?mode=memory&cache=shared": "",
	}
	for dsn, want := range cases {
		if got := SQLitePath(dsn); got != want {
			t.Fatalf("SQLitePath(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func TestEnsureSQLiteParamsAppendsOnce(t *testing.T) {
	first := ensureSQLiteParams("file:cashclear.db")
	if !strings.Contains(first, "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)") {
		t.Fatalf("unexpected params: %s", first)
	}
	if second := ensureSQLiteParams(first); second != first {
		t.Fatalf("params appended twice: %s", second)
	}
}

func TestOpenSQLiteMigratesAndBacksUp(t *testing.T) {
	dir := t.TempDir()
	conn, err := Open(filepath.Join(dir, "nested", "cashclear.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !IsSQLite(conn) {
		t.Fatalf("expected sqlite dialect, got %q", DialectName(conn))
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	for _, table := range []string{"accounts", "vouchers", "balance_entries", "sessions", "audit_events", "settings"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	if errCreate := conn.Create(&models.Account{ID: "OP1", Password: "x", BalanceCents: 100, Role: models.RoleOperator, Status: models.AccountStatusActive}).Error; errCreate != nil {
		t.Fatalf("create account: %v", errCreate)
	}

	path, errBackup := BackupSQLite(context.Background(), conn, filepath.Join(dir, "backups"))
	if errBackup != nil {
		t.Fatalf("backup: %v", errBackup)
	}
	info, errStat := os.Stat(path)
	if errStat != nil || info.Size() == 0 {
		t.Fatalf("backup file missing or empty: %v", errStat)
	}

	copyConn, errOpen := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open backup: %v", errOpen)
	}
	var count int64
	if errCount := copyConn.Model(&models.Account{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count backup accounts: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("backup has %d accounts, want 1", count)
	}
}

func TestAccountBalanceCheckConstraint(t *testing.T) {
	conn, errOpen := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	bad := models.Account{ID: "NEG", Password: "x", BalanceCents: -1, Role: models.RoleOperator, Status: models.AccountStatusActive}
	if errCreate := conn.Create(&bad).Error; errCreate == nil {
		t.Fatalf("expected negative balance to be rejected")
	}
}
