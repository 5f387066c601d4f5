package http

import (
	"github.com/cashclear/cashclear-pro/internal/audit"
	"github.com/cashclear/cashclear-pro/internal/directory"
	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/cashclear/cashclear-pro/internal/lotto"
	"github.com/cashclear/cashclear-pro/internal/session"
	"github.com/cashclear/cashclear-pro/internal/settings"
	"gorm.io/gorm"
)

// Services bundles the components exposed over HTTP.
type Services struct {
	DB        *gorm.DB
	Ledger    *ledger.Service
	Directory *directory.Directory
	Sessions  *session.Manager
	Settings  *settings.Store
	Audit     *audit.Recorder
	Lotto     *lotto.Generator
	BackupDir string
}
