package cart

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// GetOrCreateByUser returns the user's cart with its lines and products,
	// creating an empty cart on first access.
	GetOrCreateByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	// AddItem adds quantity units of a product, merging into an existing line.
	AddItem(ctx context.Context, cartID, productID int64, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID int64) error
	Clear(ctx context.Context, cartID int64) error
}
