package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:audit_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.AuditEvent{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(setupAuditTestDB(t))
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	step := 0
	rec.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	if errRecord := rec.Record(ctx, KindLogin, "OP1", map[string]any{"location": "Benoni"}); errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}
	if errRecord := rec.Record(ctx, KindLoginFailed, "OP2", nil); errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}
	rec.Log(ctx, KindLogout, "", nil)

	events, errList := rec.List(ctx, Filter{})
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if events[0].Kind != KindLogout || events[0].ActorID != "system" {
		t.Fatalf("newest event = %+v", events[0])
	}

	filtered, errFiltered := rec.List(ctx, Filter{ActorID: "OP1"})
	if errFiltered != nil {
		t.Fatalf("list filtered: %v", errFiltered)
	}
	if len(filtered) != 1 {
		t.Fatalf("filtered = %d, want 1", len(filtered))
	}
	var detail map[string]string
	if errUnmarshal := json.Unmarshal(filtered[0].Detail, &detail); errUnmarshal != nil {
		t.Fatalf("detail: %v", errUnmarshal)
	}
	if detail["location"] != "Benoni" {
		t.Fatalf("detail = %v", detail)
	}
}
