package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles account registration, login and token lookup.
type Service struct {
	repo        userrepo.Repository
	tokens      *tokenManager
	accessTTL   time.Duration
	passwordMin int
	logger      zerolog.Logger
}

// New creates a Service. A non-positive ttl falls back to 48h.
func New(repo userrepo.Repository, tokens tokenrepo.Repository, ttl time.Duration, logger zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		accessTTL:   ttl,
		passwordMin: 8,
		logger:      logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Register creates a regular (non-admin) account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.create(ctx, in, domain.RoleUser)
}

// EnsureAdmin creates an admin account unless the email is already taken.
// Used by the seeder.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	existing, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.create(ctx, RegisterInput{
		Name:                 name,
		Email:                email,
		Password:             password,
		PasswordConfirmation: password,
	}, domain.RoleAdmin)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role string) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.FieldError("name", "The name field is required.")
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, domain.FieldError("email", "The email field is required.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.FieldError("email", "The email must be a valid email address.")
	}
	if err := validatePassword(in.Password, s.passwordMin); err != nil {
		return nil, err
	}
	if in.Password != in.PasswordConfirmation {
		return nil, domain.FieldError("password", "The password confirmation does not match.")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.FieldError("email", "The email has already been taken.")
		}
		return nil, err
	}
	s.logger.Info().Int64("user_id", u.ID).Str("role", u.Role).Msg("account created")
	return u, nil
}

// Login validates credentials and returns the user with a fresh access token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, u.ID, s.accessTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// Logout revokes the token. Revoking an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.tokens.Revoke(ctx, token)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// LookupByToken returns the user bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	userID, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validatePassword(p string, min int) error {
	if strings.TrimSpace(p) == "" {
		return domain.FieldError("password", "The password field is required.")
	}
	if len(p) < min {
		return domain.FieldError("password", fmt.Sprintf("The password must be at least %d characters.", min))
	}
	return nil
}
