package cart

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

func (r *postgresRepo) GetOrCreateByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id, user_id, created_at
`
	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		return nil, repository.MapError(err)
	}
	items, err := r.items(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, cartID, productID int64, quantity int) error {
	const q = `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
`
	_, err := r.pool.Exec(ctx, q, cartID, productID, quantity)
	return repository.MapError(err)
}

func (r *postgresRepo) SetItemQuantity(ctx context.Context, cartID, itemID int64, quantity int) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE cart_items
SET quantity = $1
WHERE id = $2 AND cart_id = $3
`, quantity, itemID, cartID)
	if err != nil {
		return repository.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, cartID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func (r *postgresRepo) items(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	q := `
SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ` + productrepo.SelectColumns + `
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
` + productrepo.CategoryJoin + `
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC, ci.id ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var it domain.CartItem
		if err := productrepo.Scan(rows, &it.Product, &it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
