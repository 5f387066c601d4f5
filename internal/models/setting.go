package models

import (
	"encoding/json"
	"time"
)

// Setting stores a runtime-tunable value keyed by name.
type Setting struct {
	Key       string          `gorm:"type:varchar(64);primaryKey"` // Setting key.
	Value     json.RawMessage `gorm:"type:json"`                   // JSON-encoded value.
	UpdatedBy string          `gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// All lists every model managed by migrations.
func All() []any {
	return []any{
		&Account{},
		&Voucher{},
		&BalanceEntry{},
		&Session{},
		&AuditEvent{},
		&Setting{},
	}
}
