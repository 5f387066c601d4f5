package models

import "time"

// Session is a persisted operator login.
type Session struct {
	ID string `gorm:"type:text;primaryKey"` // Session identifier, also the JWT ID.

	OperatorID string `gorm:"type:text;not null;index"`
	Role       string `gorm:"type:text;not null"`
	Location   string `gorm:"type:text;not null;default:''"`
	BreakGlass bool   `gorm:"not null;default:false"` // Created through the break-glass procedure.

	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}
