// Package session holds the storefront's credentials: the bearer token and
// the account role. Every outbound request and every route guard reads it;
// clearing it notifies subscribers so dependent state can be dropped.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// Roles understood by the storefront.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Reason says why a session was cleared.
type Reason string

const (
	ReasonLogout       Reason = "logout"
	ReasonUnauthorized Reason = "unauthorized"
	// ReasonReplaced means another login took over; the old credentials
	// are gone and the new ones are already readable.
	ReasonReplaced Reason = "replaced"
)

var (
	ErrEmptyToken  = errors.New("session: token must not be empty")
	ErrInvalidRole = errors.New("session: unknown role")
)

// Listener is called synchronously after a clear, or after SetSession
// replaces a different signed-in session.
type Listener func(Reason)

// Store is the single source of truth for the current credentials. It is
// safe for concurrent use. Token and Role read memory only and never fail.
type Store struct {
	storage Storage
	logger  zerolog.Logger

	mu    sync.RWMutex
	token string
	role  string

	subMu     sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

// Open loads the persisted session once. A stored role without a token is
// discarded.
func Open(ctx context.Context, storage Storage, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		storage:   storage,
		logger:    logger.With().Str("component", "session").Logger(),
		listeners: make(map[uint64]Listener),
	}

	token, _, err := storage.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	role, _, err := storage.Get(ctx, KeyRole)
	if err != nil {
		return nil, fmt.Errorf("load role: %w", err)
	}
	if token == "" {
		if role != "" {
			if err := storage.Delete(ctx, KeyRole); err != nil {
				return nil, fmt.Errorf("discard orphan role: %w", err)
			}
		}
		role = ""
	}
	if token != "" && !validRole(role) {
		role = RoleUser
	}
	s.token, s.role = token, role
	return s, nil
}

func validRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// SetSession persists token and role together, then makes them visible to
// readers. On a storage error neither memory nor storage changes.
func (s *Store) SetSession(ctx context.Context, token, role string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if !validRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if err := s.storage.Set(ctx, map[string]string{KeyToken: token, KeyRole: role}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	prev := s.token
	s.token, s.role = token, role
	s.mu.Unlock()
	s.logger.Debug().Str("role", role).Msg("session set")
	if prev != "" && prev != token {
		s.notify(ReasonReplaced)
	}
	return nil
}

// ClearSession forgets the credentials in memory, removes them from storage
// and notifies listeners. Memory is cleared even when storage fails. An
// already anonymous store is left alone and nobody is notified.
func (s *Store) ClearSession(ctx context.Context, reason Reason) error {
	s.mu.Lock()
	wasSet := s.token != "" || s.role != ""
	s.token, s.role = "", ""
	s.mu.Unlock()

	if !wasSet {
		return nil
	}

	err := s.storage.Delete(ctx, KeyToken, KeyRole)
	if err != nil {
		s.logger.Error().Err(err).Msg("remove persisted session")
		err = fmt.Errorf("remove persisted session: %w", err)
	}
	s.logger.Info().Str("reason", string(reason)).Msg("session cleared")
	s.notify(reason)
	return err
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.role == RoleAdmin
}

// Subscribe registers fn for clear events. The returned func unsubscribes
// and may be called more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.listeners, id)
			s.subMu.Unlock()
		})
	}
}

// notify calls listeners in subscription order without holding any lock.
func (s *Store) notify(reason Reason) {
	s.subMu.Lock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]Listener, len(ids))
	for i, id := range ids {
		fns[i] = s.listeners[id]
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(reason)
	}
}
