package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cashclear/cashclear-pro/internal/audit"
	"github.com/cashclear/cashclear-pro/internal/directory"
	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/cashclear/cashclear-pro/internal/security"
	"github.com/cashclear/cashclear-pro/internal/settings"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// BreakGlassOperatorID identifies sessions opened through the break-glass procedure.
const BreakGlassOperatorID = "BREAK-GLASS"

var (
	ErrBreakGlassDisabled = errors.New("session: break-glass access is disabled")
	ErrBreakGlassInvalid  = errors.New("session: invalid break-glass code")
	ErrBreakGlassReason   = errors.New("session: break-glass reason is required")
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Secret            string
	TTL               time.Duration
	BreakGlassTTL     time.Duration
	BreakGlassEnabled bool
	BreakGlassIssuer  string
	Now               func() time.Time
}

// Manager issues and resolves session tokens.
type Manager struct {
	dir      *directory.Directory
	store    Store
	settings *settings.Store
	audit    *audit.Recorder
	opts     ManagerOptions
}

// NewManager constructs a Manager.
func NewManager(dir *directory.Directory, store Store, settingsStore *settings.Store, recorder *audit.Recorder, opts ManagerOptions) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	if opts.BreakGlassTTL <= 0 {
		opts.BreakGlassTTL = 15 * time.Minute
	}
	if opts.BreakGlassIssuer == "" {
		opts.BreakGlassIssuer = "CASHCLEAR"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{dir: dir, store: store, settings: settingsStore, audit: recorder, opts: opts}
}

func (m *Manager) now() time.Time {
	return m.opts.Now().UTC()
}

// Login authenticates an operator and opens a session. The returned token carries the session id.
func (m *Manager) Login(ctx context.Context, operatorID, password string) (*Session, string, error) {
	entry, errAuth := m.dir.Authenticate(ctx, operatorID, password)
	if errAuth != nil {
		if errors.Is(errAuth, directory.ErrInvalidCredentials) || errors.Is(errAuth, directory.ErrOperatorInactive) {
			m.audit.Log(ctx, audit.KindLoginFailed, strings.ToUpper(strings.TrimSpace(operatorID)), map[string]any{"reason": errAuth.Error()})
		}
		return nil, "", errAuth
	}
	s, token, errOpen := m.open(ctx, entry.ID, entry.Role, entry.Location, false, m.opts.TTL)
	if errOpen != nil {
		return nil, "", errOpen
	}
	m.audit.Log(ctx, audit.KindLogin, entry.ID, map[string]any{"session_id": s.ID, "location": entry.Location})
	return s, token, nil
}

// BreakGlass opens a short-lived Dev session when code matches the current break-glass secret.
// The secret is reloaded from the database so rotations by other processes apply at once,
// and each code is accepted once across restarts.
func (m *Manager) BreakGlass(ctx context.Context, code, reason string) (*Session, string, error) {
	if !m.opts.BreakGlassEnabled {
		return nil, "", ErrBreakGlassDisabled
	}
	if errRefresh := m.settings.Refresh(ctx); errRefresh != nil {
		return nil, "", errRefresh
	}
	secret := m.settings.String(settings.BreakGlassSecretKey, "")
	if secret == "" {
		return nil, "", ErrBreakGlassDisabled
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, "", ErrBreakGlassReason
	}
	step, ok := security.BreakGlassStep(secret, code, m.now())
	if ok {
		claimed, errClaim := m.settings.Advance(ctx, settings.BreakGlassLastStepKey, step, BreakGlassOperatorID)
		if errClaim != nil {
			return nil, "", errClaim
		}
		ok = claimed
	}
	if !ok {
		m.audit.Log(ctx, audit.KindBreakGlassFailed, BreakGlassOperatorID, map[string]any{"reason": reason})
		return nil, "", ErrBreakGlassInvalid
	}

	s, token, errOpen := m.open(ctx, BreakGlassOperatorID, models.RoleDev, "", true, m.opts.BreakGlassTTL)
	if errOpen != nil {
		return nil, "", errOpen
	}
	if errAudit := m.audit.Record(ctx, audit.KindBreakGlassLogin, BreakGlassOperatorID, map[string]any{
		"session_id": s.ID,
		"reason":     reason,
		"expires_at": s.ExpiresAt,
	}); errAudit != nil {
		// Break-glass access without an audit record is not allowed.
		_ = m.store.Delete(ctx, s.ID)
		return nil, "", errAudit
	}
	log.WithField("session", s.ID).Warn("session: break-glass access granted")
	return s, token, nil
}

// RotateBreakGlass replaces the break-glass secret and returns the new enrolment key.
func (m *Manager) RotateBreakGlass(ctx context.Context, actorID string) (security.BreakGlassKey, error) {
	key, errKey := security.GenerateBreakGlassKey(m.opts.BreakGlassIssuer)
	if errKey != nil {
		return security.BreakGlassKey{}, errKey
	}
	if errSet := m.settings.Set(ctx, settings.BreakGlassSecretKey, key.Secret, actorID); errSet != nil {
		return security.BreakGlassKey{}, errSet
	}
	if errReset := m.settings.Set(ctx, settings.BreakGlassLastStepKey, 0, actorID); errReset != nil {
		return security.BreakGlassKey{}, errReset
	}
	if errAudit := m.audit.Record(ctx, audit.KindBreakGlassRotated, actorID, nil); errAudit != nil {
		return security.BreakGlassKey{}, errAudit
	}
	return key, nil
}

// Resolve validates token and returns its live session.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, errParse := security.ParseSessionToken(m.opts.Secret, strings.TrimSpace(token))
	if errParse != nil {
		return nil, ErrUnauthorized
	}
	s, errGet := m.store.Get(ctx, claims.ID)
	if errGet != nil {
		if errors.Is(errGet, ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, errGet
	}
	if s.OperatorID != claims.OperatorID || s.Expired(m.now()) {
		return nil, ErrUnauthorized
	}
	if !s.BreakGlass {
		entry, errLookup := m.dir.Lookup(ctx, s.OperatorID)
		if errLookup != nil || !entry.Active() {
			_ = m.store.Delete(ctx, s.ID)
			return nil, ErrUnauthorized
		}
	}
	return s, nil
}

// Logout destroys the session.
func (m *Manager) Logout(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrUnauthorized
	}
	if errDelete := m.store.Delete(ctx, s.ID); errDelete != nil {
		return errDelete
	}
	m.audit.Log(ctx, audit.KindLogout, s.OperatorID, map[string]any{"session_id": s.ID})
	return nil
}

func (m *Manager) open(ctx context.Context, operatorID, role, location string, breakGlass bool, ttl time.Duration) (*Session, string, error) {
	now := m.now()
	s := &Session{
		ID:         uuid.NewString(),
		OperatorID: operatorID,
		Role:       role,
		Location:   location,
		BreakGlass: breakGlass,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	token, errToken := security.GenerateSessionToken(m.opts.Secret, s.ID, s.OperatorID, s.Role, s.BreakGlass, s.ExpiresAt)
	if errToken != nil {
		return nil, "", errToken
	}
	if errSave := m.store.Save(ctx, s); errSave != nil {
		return nil, "", errSave
	}
	return s, token, nil
}
