package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cashclear/cashclear-pro/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownKey is returned when setting a key outside the known set.
var ErrUnknownKey = errors.New("settings: unknown key")

// Store caches the settings table in memory. Reads come from the snapshot; writes go to
// the database first and then refresh the snapshot.
type Store struct {
	db *gorm.DB

	mu        sync.RWMutex
	values    map[string]json.RawMessage
	updatedAt time.Time
}

// NewStore creates an empty store bound to db. Call Refresh before reading.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, values: map[string]json.RawMessage{}}
}

// Refresh reloads all settings from the database.
func (s *Store) Refresh(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("settings: nil db")
	}
	var rows []models.Setting
	if errFind := s.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; errFind != nil {
		return errFind
	}

	values := make(map[string]json.RawMessage, len(rows))
	latest := time.Time{}
	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		if key == "" {
			continue
		}
		values[key] = append(json.RawMessage(nil), row.Value...)
		if row.UpdatedAt.After(latest) {
			latest = row.UpdatedAt.UTC()
		}
	}

	s.mu.Lock()
	s.values = values
	s.updatedAt = latest
	s.mu.Unlock()
	return nil
}

// Set upserts key with a JSON-encodable value and refreshes the snapshot.
func (s *Store) Set(ctx context.Context, key string, value any, actor string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrUnknownKey
	}
	raw, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return errMarshal
	}
	row := models.Setting{Key: key, Value: raw, UpdatedBy: actor, UpdatedAt: time.Now().UTC()}
	if errSave := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(&row).Error; errSave != nil {
		return errSave
	}
	return s.Refresh(ctx)
}

// Advance stores value under key only when it is greater than the stored integer. It reports
// whether the value was stored. The compare and write share one transaction so concurrent
// callers cannot both advance to the same value.
func (s *Store) Advance(ctx context.Context, key string, value int64, actor string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, ErrUnknownKey
	}
	advanced := false
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Setting
		errFind := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("key = ?", key).First(&row).Error
		switch {
		case errFind == nil:
			if current, ok := parseInt64(row.Value); ok && current >= value {
				return nil
			}
		case !errors.Is(errFind, gorm.ErrRecordNotFound):
			return errFind
		}
		raw, errMarshal := json.Marshal(value)
		if errMarshal != nil {
			return errMarshal
		}
		next := models.Setting{Key: key, Value: raw, UpdatedBy: actor, UpdatedAt: time.Now().UTC()}
		if errSave := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
		}).Create(&next).Error; errSave != nil {
			return errSave
		}
		advanced = true
		return nil
	})
	if errTx != nil {
		return false, errTx
	}
	if !advanced {
		return false, nil
	}
	return true, s.Refresh(ctx)
}

// Raw returns a copy of the raw JSON value for key.
func (s *Store) Raw(key string) (json.RawMessage, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[strings.TrimSpace(key)]
	if !ok {
		return nil, false
	}
	return append(json.RawMessage(nil), val...), true
}

// String returns key as a string, or fallback when unset or not a string.
func (s *Store) String(key, fallback string) string {
	raw, ok := s.Raw(key)
	if !ok {
		return fallback
	}
	if v := parseString(raw); v != "" {
		return v
	}
	return fallback
}

// Int returns key as an int, accepting JSON numbers and numeric strings.
func (s *Store) Int(key string, fallback int) int {
	raw, ok := s.Raw(key)
	if !ok {
		return fallback
	}
	var n int
	if errUnmarshal := json.Unmarshal(raw, &n); errUnmarshal == nil {
		return n
	}
	if v, errParse := strconv.Atoi(parseString(raw)); errParse == nil {
		return v
	}
	return fallback
}

// Public returns every non-secret setting.
func (s *Store) Public() map[string]json.RawMessage {
	out := map[string]json.RawMessage{}
	if s == nil {
		return out
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.values {
		if IsSecret(k) {
			continue
		}
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// UpdatedAt returns the latest update time seen by the last refresh.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func parseInt64(raw json.RawMessage) (int64, bool) {
	var n int64
	if errUnmarshal := json.Unmarshal(raw, &n); errUnmarshal == nil {
		return n, true
	}
	if v, errParse := strconv.ParseInt(parseString(raw), 10, 64); errParse == nil {
		return v, true
	}
	return 0, false
}

// parseString extracts a string from a JSON string or a {"value": ...} wrapper.
func parseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var str string
	if errUnmarshal := json.Unmarshal(raw, &str); errUnmarshal == nil {
		return strings.TrimSpace(str)
	}
	var wrapper struct {
		Value json.RawMessage `json:"value"`
	}
	if errUnmarshal := json.Unmarshal(raw, &wrapper); errUnmarshal == nil && len(wrapper.Value) > 0 {
		return parseString(wrapper.Value)
	}
	return ""
}
