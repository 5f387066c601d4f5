package handlers

import (
	"os"
	"path/filepath"

	"github.com/cashclear/cashclear-pro/internal/audit"
	"github.com/cashclear/cashclear-pro/internal/db"
	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BackupHandler serves database backups.
type BackupHandler struct {
	db    *gorm.DB
	dir   string
	audit *audit.Recorder
}

// NewBackupHandler constructs a BackupHandler. Backups are staged in dir.
func NewBackupHandler(conn *gorm.DB, dir string, recorder *audit.Recorder) *BackupHandler {
	return &BackupHandler{db: conn, dir: dir, audit: recorder}
}

// Download writes a consistent SQLite snapshot and streams it to the caller.
func (h *BackupHandler) Download(c *gin.Context) {
	path, errBackup := db.BackupSQLite(c.Request.Context(), h.db, h.dir)
	if errBackup != nil {
		cchttp.WriteError(c, errBackup)
		return
	}
	defer func() {
		if errRemove := os.Remove(path); errRemove != nil {
			log.WithError(errRemove).Warn("remove staged backup failed")
		}
	}()
	h.audit.Log(c.Request.Context(), audit.KindBackupDownloaded, actorID(c), map[string]any{"file": filepath.Base(path)})
	c.FileAttachment(path, filepath.Base(path))
}
