// Package repository holds persistence adapters for the storefront backend.
// Each entity lives in its own subpackage with a Repository interface, a
// Postgres implementation, and an in-memory implementation in memory/.
package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"storefront/internal/domain"
)

// MapError translates driver errors into domain sentinels.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return domain.ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return domain.ErrNotFound
		}
	}
	return err
}
