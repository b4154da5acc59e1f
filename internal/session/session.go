// Package session holds the operator's bearer token and user.
// It is the only mutable state shared across requests: written at
// login, logout and forced logout, read on every request.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// State is what gets persisted: token and user always travel together.
type State struct {
	Token   string          `json:"token"`
	Usuario *domain.Usuario `json:"usuario,omitempty"`
}

// Store persists the session between runs.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
	Clear(ctx context.Context) error
}

// Listener is notified after every change. A nil state means logged out.
type Listener func(st *State)

// Session is an injectable token holder with subscriber notification.
type Session struct {
	mu        sync.RWMutex
	state     State
	store     Store
	listeners map[int]Listener
	nextID    int
	logger    *zap.Logger
}

// New creates a session backed by store. A nil store keeps the
// session in memory only.
func New(store Store, logger *zap.Logger) *Session {
	return &Session{
		store:     store,
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// Restore loads the persisted state, if any.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	st, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if st == nil {
		return nil
	}

	s.mu.Lock()
	s.state = *st
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// User returns a copy of the current user, nil when unknown.
func (s *Session) User() *domain.Usuario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Usuario == nil {
		return nil
	}
	u := *s.state.Usuario
	return &u
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set stores a new token and user and persists them.
func (s *Session) Set(ctx context.Context, token string, user *domain.Usuario) error {
	s.mu.Lock()
	s.state = State{Token: token, Usuario: user}
	snapshot := s.state
	s.mu.Unlock()

	var err error
	if s.store != nil {
		err = s.store.Save(ctx, &snapshot)
		if err != nil {
			s.logger.Warn("session: failed to persist", zap.Error(err))
		}
	}
	s.notify(&snapshot)
	return err
}

// SetUser replaces the user while keeping the token (after /auth/me).
func (s *Session) SetUser(ctx context.Context, user *domain.Usuario) error {
	return s.Set(ctx, s.Token(), user)
}

// Clear drops token and user together.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()

	var err error
	if s.store != nil {
		err = s.store.Clear(ctx)
		if err != nil {
			s.logger.Warn("session: failed to clear store", zap.Error(err))
		}
	}
	s.notify(nil)
	return err
}

// Subscribe registers fn for change notifications and returns a func
// that removes it.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify(st *State) {
	s.mu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(st)
	}
}

// ExpiresAt decodes the exp claim of the held token without verifying
// the signature. The console cannot verify it; only the backend can.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
