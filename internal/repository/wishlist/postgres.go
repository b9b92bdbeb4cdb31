package wishlist

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/repository"
	productrepo "storefront/internal/repository/product"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetOrCreateByUser(ctx context.Context, userID int64) (*domain.Wishlist, error) {
	const q = `
INSERT INTO wishlists (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id, user_id, created_at
`
	var w domain.Wishlist
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&w.ID, &w.UserID, &w.CreatedAt); err != nil {
		return nil, repository.MapError(err)
	}

	itemsQuery := `
SELECT wi.id, wi.wishlist_id, wi.product_id, wi.created_at, ` + productrepo.SelectColumns + `
FROM wishlist_items wi
JOIN products p ON p.id = wi.product_id
` + productrepo.CategoryJoin + `
WHERE wi.wishlist_id = $1
ORDER BY wi.created_at ASC, wi.id ASC
`
	rows, err := r.pool.Query(ctx, itemsQuery, w.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	w.Items = []domain.WishlistItem{}
	for rows.Next() {
		var it domain.WishlistItem
		if err := productrepo.Scan(rows, &it.Product, &it.ID, &it.WishlistID, &it.ProductID, &it.CreatedAt); err != nil {
			return nil, err
		}
		w.Items = append(w.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, wishlistID, productID int64) error {
	const q = `
INSERT INTO wishlist_items (wishlist_id, product_id)
VALUES ($1, $2)
ON CONFLICT (wishlist_id, product_id) DO NOTHING
`
	_, err := r.pool.Exec(ctx, q, wishlistID, productID)
	return repository.MapError(err)
}

func (r *postgresRepo) RemoveItem(ctx context.Context, wishlistID, itemID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE id = $1 AND wishlist_id = $2`, itemID, wishlistID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
