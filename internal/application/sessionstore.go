package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/signupdesk/internal/domain/model"
	"github.com/ericfisherdev/signupdesk/internal/domain/port/driven"
)

// AdminTokenKey is the fixed name the admin token is persisted under.
const AdminTokenKey = "adminToken"

// SessionStore owns the admin credential. It keeps the current value in memory
// behind a RWMutex and writes every change through to a durable
// driven.CredentialStore scoped to the service origin, so the session survives
// a restart of the client.
type SessionStore struct {
	mu     sync.RWMutex
	cred   model.Credential
	store  driven.CredentialStore
	origin string
	logger *slog.Logger
}

// NewSessionStore creates a SessionStore for origin. Call Open to load a
// previously persisted credential.
func NewSessionStore(store driven.CredentialStore, origin string, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		store:  store,
		origin: origin,
		logger: logger,
	}
}

// Open loads the persisted credential. A read failure is logged and leaves the
// session logged out.
func (s *SessionStore) Open(ctx context.Context) {
	token, err := s.store.Get(ctx, s.origin, AdminTokenKey)
	if err != nil {
		s.logger.Error("failed to read stored admin token", "origin", s.origin, "error", err)
		token = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = model.Credential{Value: token}
}

// Get returns the current credential. It has no side effects.
func (s *SessionStore) Get() model.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// Set stores token, or deletes the stored value when token is empty. The
// in-memory credential is always updated, even if persisting fails; the
// persistence error is returned for the caller to log.
func (s *SessionStore) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	s.cred = model.Credential{Value: token}
	s.mu.Unlock()

	if token == "" {
		if err := s.store.Delete(ctx, s.origin, AdminTokenKey); err != nil {
			return fmt.Errorf("delete admin token: %w", err)
		}
		return nil
	}

	if err := s.store.Set(ctx, s.origin, AdminTokenKey, token); err != nil {
		return fmt.Errorf("persist admin token: %w", err)
	}
	return nil
}
