package wishlist

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	GetOrCreateByUser(ctx context.Context, userID int64) (*domain.Wishlist, error)
	// AddItem is idempotent: adding a product already present is not an error.
	AddItem(ctx context.Context, wishlistID, productID int64) error
	RemoveItem(ctx context.Context, wishlistID, itemID int64) error
}
