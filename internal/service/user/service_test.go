package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repository/memory"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(store.Users(), store.Tokens(), time.Hour, zerolog.Nop()), store
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:                 "Sari",
		Email:                "Sari@Example.com ",
		Password:             "rahasia123",
		PasswordConfirmation: "rahasia123",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "sari@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEqual(t, "rahasia123", u.PasswordHash)

	got, token, err := svc.Login(ctx, "SARI@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotEmpty(t, token)

	looked, err := svc.LookupByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, looked.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cases := map[string]func(*RegisterInput){
		"missing name":   func(in *RegisterInput) { in.Name = " " },
		"missing email":  func(in *RegisterInput) { in.Email = "" },
		"bad email":      func(in *RegisterInput) { in.Email = "not-an-email" },
		"short password": func(in *RegisterInput) { in.Password, in.PasswordConfirmation = "short", "short" },
		"mismatch":       func(in *RegisterInput) { in.PasswordConfirmation = "rahasia124" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Register(ctx, in)
			assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.Register(ctx, validInput())
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "email")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "sari@example.com", "salah12345")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "rahasia123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	_, token, err := svc.Login(ctx, "sari@example.com", "rahasia123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.LookupByToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A second logout with the same token is harmless.
	assert.NoError(t, svc.Logout(ctx, token))
}

func TestExpiredTokenIsRejected(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)
	_, token, err := svc.Login(ctx, "sari@example.com", "rahasia123")
	require.NoError(t, err)

	svc.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.LookupByToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.EnsureAdmin(ctx, "Admin", "admin@gmail.com", "12345678")
	require.NoError(t, err)
	assert.True(t, first.IsAdmin())

	second, err := svc.EnsureAdmin(ctx, "Admin", "admin@gmail.com", "other-password")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
