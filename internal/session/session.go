// Package session creates, resolves and destroys operator sessions.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/cashclear/cashclear-pro/internal/models"
)

var (
	// ErrSessionNotFound is returned by stores for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrUnauthorized is returned when a token does not resolve to a live session.
	ErrUnauthorized = errors.New("session: unauthorized")
)

// Session is an authenticated operator context passed explicitly to each operation.
type Session struct {
	ID         string    `json:"id"`
	OperatorID string    `json:"operator_id"`
	Role       string    `json:"role"`
	Location   string    `json:"location"`
	BreakGlass bool      `json:"break_glass"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CanAdminister reports whether the session may use administrative operations.
func (s *Session) CanAdminister() bool {
	return s != nil && (s.Role == models.RoleAdmin || s.Role == models.RoleDev)
}

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
