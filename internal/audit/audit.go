// Package audit records security and accounting events.
package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cashclear/cashclear-pro/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Event kinds.
const (
	KindLogin             = "login"
	KindLoginFailed       = "login.failed"
	KindLogout            = "logout"
	KindBreakGlassLogin   = "break_glass.login"
	KindBreakGlassFailed  = "break_glass.failed"
	KindBreakGlassRotated = "break_glass.rotated"
	KindTopUp             = "balance.top_up"
	KindOperatorCreated   = "operator.created"
	KindOperatorStatus    = "operator.status"
	KindOperatorPassword  = "operator.password"
	KindSettingUpdated    = "setting.updated"
	KindBackupDownloaded  = "backup.downloaded"
)

// Recorder writes audit events.
type Recorder struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecorder constructs a recorder bound to db.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Record persists an event. Use RecordTx to write inside an existing transaction.
func (r *Recorder) Record(ctx context.Context, kind, actorID string, detail map[string]any) error {
	return r.RecordTx(r.db.WithContext(ctx), kind, actorID, detail)
}

// RecordTx persists an event using tx.
func (r *Recorder) RecordTx(tx *gorm.DB, kind, actorID string, detail map[string]any) error {
	event := models.AuditEvent{
		Kind:      kind,
		ActorID:   strings.TrimSpace(actorID),
		CreatedAt: r.now(),
	}
	if event.ActorID == "" {
		event.ActorID = "system"
	}
	if len(detail) > 0 {
		raw, errMarshal := json.Marshal(detail)
		if errMarshal != nil {
			return errMarshal
		}
		event.Detail = datatypes.JSON(raw)
	}
	return tx.Create(&event).Error
}

// Log records an event and only logs a failure. Used where auditing must not change the outcome.
func (r *Recorder) Log(ctx context.Context, kind, actorID string, detail map[string]any) {
	if r == nil {
		return
	}
	if errRecord := r.Record(ctx, kind, actorID, detail); errRecord != nil {
		log.WithError(errRecord).WithField("kind", kind).Warn("audit: record event failed")
	}
}

// Filter narrows List results.
type Filter struct {
	Kind    string
	ActorID string
	Since   *time.Time
	Limit   int
}

// List returns events newest first.
func (r *Recorder) List(ctx context.Context, filter Filter) ([]models.AuditEvent, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditEvent{})
	if kind := strings.TrimSpace(filter.Kind); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if actor := strings.TrimSpace(filter.ActorID); actor != "" {
		q = q.Where("actor_id = ?", actor)
	}
	if filter.Since != nil {
		q = q.Where("created_at >= ?", filter.Since.UTC())
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var events []models.AuditEvent
	if errFind := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&events).Error; errFind != nil {
		return nil, errFind
	}
	return events, nil
}
