package models

import "time"

// Operator roles.
const (
	RoleAdmin    = "Admin"
	RoleOperator = "Operator"
	RoleDev      = "Dev"
)

// Operator account statuses.
const (
	AccountStatusActive   = "Active"
	AccountStatusInactive = "Inactive"
)

// Account represents an operator allowed to issue vouchers against a balance.
type Account struct {
	ID string `gorm:"type:text;primaryKey"` // Operator identifier, upper-cased.

	Password string `gorm:"type:text;not null"` // Hashed password.

	BalanceCents int64 `gorm:"not null;default:0;check:balance_cents >= 0"` // Spendable credit in cents.

	Role     string `gorm:"type:text;not null;default:'Operator'"` // Admin, Operator or Dev.
	Location string `gorm:"type:text;not null;default:''"`         // Assigned terminal location.
	Status   string `gorm:"type:text;not null;default:'Active';index"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsActive reports whether the account may sign in and issue vouchers.
func (a *Account) IsActive() bool {
	return a != nil && a.Status == AccountStatusActive
}

// ValidRole reports whether role is one of the known operator roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOperator, RoleDev:
		return true
	default:
		return false
	}
}
