package session

import (
	"context"
	"errors"
	"time"

	"github.com/cashclear/cashclear-pro/internal/models"
	"gorm.io/gorm"
)

// GormStore keeps sessions in the sessions table.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore constructs a database-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Save implements Store.
func (g *GormStore) Save(ctx context.Context, s *Session) error {
	row := models.Session{
		ID:         s.ID,
		OperatorID: s.OperatorID,
		Role:       s.Role,
		Location:   s.Location,
		BreakGlass: s.BreakGlass,
		CreatedAt:  s.CreatedAt.UTC(),
		ExpiresAt:  s.ExpiresAt.UTC(),
	}
	return g.db.WithContext(ctx).Create(&row).Error
}

// Get implements Store. Expired rows are removed on read.
func (g *GormStore) Get(ctx context.Context, id string) (*Session, error) {
	var row models.Session
	if errFind := g.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, errFind
	}
	s := &Session{
		ID:         row.ID,
		OperatorID: row.OperatorID,
		Role:       row.Role,
		Location:   row.Location,
		BreakGlass: row.BreakGlass,
		CreatedAt:  row.CreatedAt,
		ExpiresAt:  row.ExpiresAt,
	}
	if s.Expired(g.now().UTC()) {
		_ = g.Delete(ctx, id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete implements Store.
func (g *GormStore) Delete(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

// Purge removes expired sessions and returns how many were deleted.
func (g *GormStore) Purge(ctx context.Context) (int64, error) {
	res := g.db.WithContext(ctx).Where("expires_at <= ?", g.now().UTC()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
