package memory

import (
	"context"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
)

type userRepo struct{ s *Store }

// Users returns the user repository view of the store.
func (s *Store) Users() userrepo.Repository { return userRepo{s} }

func (r userRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if lower(existing.Email) == lower(u.Email) {
			return nil, domain.ErrAlreadyExists
		}
	}
	u.ID = r.s.id("users")
	u.Email = lower(u.Email)
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = u
	out := u
	return &out, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if lower(u.Email) == lower(email) {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

type tokenRepo struct{ s *Store }

// Tokens returns the token repository view of the store.
func (s *Store) Tokens() tokenrepo.Repository { return tokenRepo{s} }

func (r tokenRepo) Create(_ context.Context, t tokenrepo.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.tokens[t.Token]; exists {
		return domain.ErrAlreadyExists
	}
	if _, ok := r.s.users[t.UserID]; !ok {
		return domain.ErrNotFound
	}
	t.CreatedAt = r.s.now()
	r.s.tokens[t.Token] = t
	return nil
}

func (r tokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r tokenRepo) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.tokens, token)
	return nil
}
