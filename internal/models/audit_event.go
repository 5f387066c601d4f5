package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEvent records a security or accounting relevant action.
type AuditEvent struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Kind    string         `gorm:"type:text;not null;index"` // Event kind, e.g. login.failed.
	ActorID string         `gorm:"type:text;not null;index"` // Operator or system actor.
	Detail  datatypes.JSON `gorm:"type:json"`                // Structured event detail.

	CreatedAt time.Time `gorm:"not null;index"` // Event timestamp.
}
