package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create stores the order and its items atomically.
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
