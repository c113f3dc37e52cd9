package session

import (
	"codeclash/internal/logging"
	"codeclash/internal/model"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager owns the process-wide session. It is the only writer of the Store,
// and every screen reads the logged-in user through it.
type Manager struct {
	store Store
	log   *zap.Logger
	now   func() time.Time

	mu      sync.RWMutex
	current *model.Session
}

// NewManager creates a session manager backed by store
func NewManager(store Store, log *zap.Logger) *Manager {
	return &Manager{
		store: store,
		log:   logging.OrNop(log).Named("session"),
		now:   time.Now,
	}
}

// Restore loads the persisted session, if any
func (m *Manager) Restore(ctx context.Context) error {
	s, err := m.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	if s != nil {
		m.log.Debug("session restored", zap.String("user", s.User.Username))
	}
	return nil
}

// Current returns a copy of the live session. A missing token or an expired
// bearer token both count as no session.
func (m *Manager) Current() (*model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.current.Token == "" {
		return nil, false
	}
	if Expired(m.current.Token, m.now()) {
		return nil, false
	}
	cp := *m.current
	return &cp, true
}

// Authenticated reports whether a live session exists
func (m *Manager) Authenticated() bool {
	_, ok := m.Current()
	return ok
}

// Token returns the bearer token, or "" without a live session
func (m *Manager) Token() string {
	s, ok := m.Current()
	if !ok {
		return ""
	}
	return s.Token
}

// User returns the cached user snapshot
func (m *Manager) User() (model.User, bool) {
	s, ok := m.Current()
	if !ok {
		return model.User{}, false
	}
	return s.User, true
}

// IsAdmin reports whether the live session belongs to an admin
func (m *Manager) IsAdmin() bool {
	u, ok := m.User()
	return ok && u.IsAdmin()
}

// Login replaces the session and persists it. Role and id missing from the
// user snapshot are filled from the token claims.
func (m *Manager) Login(ctx context.Context, s *model.Session) error {
	if s == nil || s.Token == "" {
		return model.ErrMissingToken
	}
	next := *s
	if claims, err := DecodeClaims(next.Token); err == nil {
		if next.User.Role == "" {
			next.User.Role = claims.Role
		}
		if next.User.ID.Empty() && claims.UserID != "" {
			next.User.ID = model.Ref(claims.UserID)
		}
	}
	next.SavedAt = m.now().UTC()

	if err := m.store.Set(ctx, &next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.current = &next
	m.mu.Unlock()

	m.log.Info("logged in", zap.String("user", next.User.Username), zap.String("role", string(next.User.Role)))
	return nil
}

// UpdateUser refreshes the cached user after a profile edit
func (m *Manager) UpdateUser(ctx context.Context, u model.User) error {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return ErrNoSession
	}
	next := *m.current
	if u.ID.Empty() {
		u.ID = next.User.ID
	}
	if u.Role == "" {
		u.Role = next.User.Role
	}
	next.User = u
	m.mu.Unlock()

	if err := m.store.Set(ctx, &next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.mu.Lock()
	m.current = &next
	m.mu.Unlock()
	return nil
}

// Logout forgets the session both in memory and in the store
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	if err := m.store.Delete(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.log.Info("logged out")
	return nil
}
