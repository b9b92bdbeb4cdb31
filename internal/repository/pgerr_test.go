package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"storefront/internal/domain"
)

func TestMapError(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), domain.ErrNotFound},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, domain.ErrAlreadyExists},
		{"foreign key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, domain.ErrNotFound},
		{"other", boom, boom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapError(tc.in))
		})
	}
}
