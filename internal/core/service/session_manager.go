package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

// SessionManager owns the authentication state of one client and keeps it
// mirrored under ports.KeyToken and ports.KeyUser. Memory only changes after
// the corresponding storage write succeeded.
type SessionManager struct {
	kv     ports.KVStore
	users  *UserDirectory
	tokens *TokenIssuer
	log    zerolog.Logger

	mu   sync.RWMutex
	sess domain.Session
}

func NewSessionManager(kv ports.KVStore, users *UserDirectory, tokens *TokenIssuer, log zerolog.Logger) *SessionManager {
	return &SessionManager{kv: kv, users: users, tokens: tokens, log: log}
}

// Current returns a copy of the in-memory session.
func (m *SessionManager) Current() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.sess
	if s.UserInfo != nil {
		u := *s.UserInfo
		s.UserInfo = &u
	}
	return s
}

// InitLoginState rebuilds the session from storage. It never writes and may
// be called any number of times.
func (m *SessionManager) InitLoginState(ctx context.Context) error {
	raw, hasToken, err := m.kv.Get(ctx, ports.KeyToken)
	if err != nil {
		return fmt.Errorf("%w: read token: %w", domain.ErrStorage, err)
	}
	token := ""
	if hasToken {
		token = raw
	}

	var user *domain.User
	var stored domain.User
	found, err := loadSnapshot(ctx, m.kv, ports.KeyUser, &stored)
	if err != nil {
		return err
	}
	if found {
		user = &stored
	}

	m.mu.Lock()
	m.sess = domain.NewSession(token, user)
	m.mu.Unlock()
	return nil
}

// Login authenticates through the directory, issues a token and records a
// successful login.
func (m *SessionManager) Login(ctx context.Context, username, password string) (domain.Session, error) {
	user, err := m.users.Authenticate(ctx, username, password)
	if err != nil {
		return domain.Session{}, err
	}
	token, err := m.tokens.Issue(user)
	if err != nil {
		return domain.Session{}, err
	}
	if err := m.SetLoginSuccess(ctx, token, user); err != nil {
		return domain.Session{}, err
	}
	m.log.Info().Str("user_id", user.UserID).Msg("login")
	return m.Current(), nil
}

// SetLoginSuccess persists profile and token, then marks the session as
// logged in. The previous token is dropped first and the new one written
// last, so a failed write never leaves a token without its profile.
func (m *SessionManager) SetLoginSuccess(ctx context.Context, token string, user *domain.User) error {
	if token == "" || user == nil {
		return fmt.Errorf("%w: token and user are required", domain.ErrValidation)
	}
	profile := user.Profile()
	if err := removeKey(ctx, m.kv, ports.KeyToken); err != nil {
		return err
	}
	if err := saveSnapshot(ctx, m.kv, ports.KeyUser, profile); err != nil {
		return err
	}
	if err := m.kv.Set(ctx, ports.KeyToken, token); err != nil {
		return fmt.Errorf("%w: write token: %w", domain.ErrStorage, err)
	}

	m.mu.Lock()
	m.sess = domain.NewSession(token, profile)
	m.mu.Unlock()
	return nil
}

// Logout clears the session and both persisted keys.
func (m *SessionManager) Logout(ctx context.Context) error {
	if err := removeKey(ctx, m.kv, ports.KeyUser); err != nil {
		return err
	}
	if err := removeKey(ctx, m.kv, ports.KeyToken); err != nil {
		return err
	}
	m.mu.Lock()
	m.sess = domain.Session{}
	m.mu.Unlock()
	return nil
}

// Register creates an account without logging in.
func (m *SessionManager) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return m.users.Register(ctx, in)
}

// UpdateProfile patches the logged-in user in the directory and in the
// persisted session profile.
func (m *SessionManager) UpdateProfile(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	cur := m.Current()
	if !cur.IsLogin || cur.UserInfo == nil {
		return nil, domain.ErrUnauthenticated
	}
	updated, err := m.users.Update(ctx, cur.UserInfo.UserID, patch)
	if err != nil {
		return nil, err
	}
	if err := saveSnapshot(ctx, m.kv, ports.KeyUser, updated); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sess = domain.NewSession(cur.Token, updated)
	m.mu.Unlock()
	return updated, nil
}
