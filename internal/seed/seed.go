package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"storefront/internal/domain"
	"storefront/internal/importer"
	usersvc "storefront/internal/service/user"
)

//go:embed demo_products.csv
var demoProducts []byte

// Demo shopper created next to the admin account.
const (
	DemoUserEmail    = "buyer@example.com"
	DemoUserPassword = "password123"
)

type accounts interface {
	EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error)
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
}

type Options struct {
	AdminEmail    string
	AdminPassword string
}

// Apply inserts demo data for manual testing. It is idempotent: accounts are
// reused and products are matched by name.
func Apply(ctx context.Context, users accounts, products importer.ProductWriter, categories importer.CategoryEnsurer, opts Options, logger zerolog.Logger) error {
	if _, err := users.EnsureAdmin(ctx, "Administrator", opts.AdminEmail, opts.AdminPassword); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	_, err := users.Register(ctx, usersvc.RegisterInput{
		Name:                 "Demo Buyer",
		Email:                DemoUserEmail,
		Password:             DemoUserPassword,
		PasswordConfirmation: DemoUserPassword,
	})
	if err != nil && !isTaken(err) {
		return fmt.Errorf("register demo user: %w", err)
	}

	imp := importer.NewCSVImporter(bytes.NewReader(demoProducts), products, categories, logger)
	if _, err := imp.Run(ctx); err != nil {
		return fmt.Errorf("import demo products: %w", err)
	}
	return nil
}

func isTaken(err error) bool {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	_, ok := ve.Fields["email"]
	return ok
}
