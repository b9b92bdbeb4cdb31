package category

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	// Upsert creates the category or renames the one sharing its slug.
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}
