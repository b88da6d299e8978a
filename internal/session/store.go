package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// AuthClient is the external authentication collaborator the store depends
// on. Login and CurrentUser return the decoded response body as-is; the
// store normalizes the variable shapes via the extract helpers.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (map[string]any, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (map[string]any, error)
}

// Store is the single source of truth for "who is logged in". All mutation
// goes through Restore, Login and Logout; everything else is read-only.
//
// Concurrent logins race by design: whichever call resolves last wins
// (last-write-wins), which keeps the token and user record consistent with
// each other because both are written under the same lock.
type Store struct {
	mu      sync.Mutex
	client  AuthClient
	storage Storage
	logger  *zap.SugaredLogger

	sess     *Session
	restored bool
}

func NewStore(client AuthClient, storage Storage, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		client:  client,
		storage: storage,
		logger:  logger,
	}
}

// Restore rebuilds the session from durable storage. It never fails: any
// missing or malformed state degrades to "no session". A token without a
// cached user record is resolved through the collaborator's current-user
// endpoint when a client is wired; with none, both-or-neither applies and
// the result is logged out.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.restored = true }()

	token, ok := s.storage.Token()
	if !ok {
		s.sess = nil
		return
	}

	if raw, ok := s.storage.UserRecord(); ok {
		u, err := decodeUser(raw)
		if err != nil {
			s.logger.Warnw("discarding persisted session", "error", err)
			s.storage.Clear()
			s.sess = nil
			return
		}
		s.sess = newSession(u, token)
		return
	}

	if s.client == nil {
		s.storage.Clear()
		s.sess = nil
		return
	}

	body, err := s.client.CurrentUser(ctx, token)
	if err != nil {
		s.logger.Warnw("session restore rejected", "error", err)
		s.storage.Clear()
		s.sess = nil
		return
	}
	u, err := ExtractUser(body)
	if err != nil {
		s.logger.Warnw("session restore returned no usable user", "error", err)
		s.storage.Clear()
		s.sess = nil
		return
	}
	if err := s.persist(u, token); err != nil {
		s.sess = nil
		return
	}
	s.sess = newSession(u, token)
}

// Login authenticates against the collaborator and populates the session.
// Failures of any kind come back as *LoginError with a display message;
// they never leave a partially populated session behind.
func (s *Store) Login(ctx context.Context, email, password string) error {
	body, err := s.client.Login(ctx, email, password)
	if err != nil {
		if le, ok := err.(*LoginError); ok {
			return le
		}
		s.logger.Errorw("login request failed", "error", err)
		return &LoginError{Message: "unable to reach the authentication service"}
	}

	token := ExtractToken(body)
	if token == "" {
		return &LoginError{Message: "missing token in response"}
	}
	u, err := ExtractUser(body)
	if err != nil {
		s.logger.Errorw("login response missing user record", "error", err)
		return &LoginError{Message: "malformed authentication response"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(u, token); err != nil {
		return &LoginError{Message: "unable to persist session"}
	}
	s.sess = newSession(u, token)
	return nil
}

// Logout calls the collaborator best-effort, then unconditionally clears
// both the in-memory session and durable storage. Calling it twice is a
// no-op the second time.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	sess := s.sess
	s.mu.Unlock()

	if sess != nil && s.client != nil {
		if err := s.client.Logout(ctx, sess.Token); err != nil {
			s.logger.Warnw("remote logout failed", "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.Clear()
	s.sess = nil
}

// Session returns a copy of the current session, or nil when logged out.
func (s *Store) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil
	}
	cp := *s.sess
	return &cp
}

// Restoring reports whether the initial Restore has not yet completed.
// Gates must hold rendering decisions while this is true.
func (s *Store) Restoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.restored
}

// HasRole reports whether the current session's role equals the argument.
func (s *Store) HasRole(role Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess != nil && s.sess.Role == role
}

// HasPermission looks the current role up in the permission table. No
// session means false for every key, not an error.
func (s *Store) HasPermission(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess != nil && s.sess.Role.Can(key)
}

func (s *Store) persist(u *User, token string) error {
	raw, err := json.Marshal(u)
	if err != nil {
		s.logger.Errorw("marshal user record", "error", err)
		return err
	}
	if err := s.storage.WriteSession(token, raw); err != nil {
		s.logger.Errorw("persist session", "error", err)
		return err
	}
	return nil
}
