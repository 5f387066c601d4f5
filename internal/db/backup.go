package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrBackupUnsupported is returned when the dialect has no file-level backup.
var ErrBackupUnsupported = errors.New("db: backup is only supported for sqlite")

// BackupSQLite writes a consistent copy of the SQLite database into dir and returns its path.
// The caller owns the returned file.
func BackupSQLite(ctx context.Context, conn *gorm.DB, dir string) (string, error) {
	if !IsSQLite(conn) {
		return "", ErrBackupUnsupported
	}
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}
	if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
		return "", fmt.Errorf("db: backup dir: %w", errMkdir)
	}
	target := filepath.Join(dir, fmt.Sprintf("cashclear-backup-%s.db", time.Now().UTC().Format("20060102T150405.000000000")))
	// VACUUM INTO rejects bound parameters, so the path is quoted inline.
	quoted := "'" + strings.ReplaceAll(target, "'", "''") + "'"
	if errExec := conn.WithContext(ctx).Exec("VACUUM INTO " + quoted).Error; errExec != nil {
		return "", fmt.Errorf("db: backup: %w", errExec)
	}
	return target, nil
}
