package order

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
	"storefront/internal/repository"
	productrepo "storefront/internal/repository/product"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "order").Logger()}
}

const orderColumns = `id, user_id, address, payment_method, status, total_price::float8, created_at`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
INSERT INTO orders (user_id, address, payment_method, status, total_price)
VALUES ($1, $2, $3, $4, $5::numeric)
RETURNING id
`, o.UserID, o.Address, o.PaymentMethod, o.Status, o.TotalPrice).Scan(&id)
	if err != nil {
		return nil, repository.MapError(err)
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4::numeric)
`, id, it.ProductID, it.Quantity, it.Price); err != nil {
			return nil, repository.MapError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info().Int64("order_id", id).Int64("user_id", o.UserID).Int("items", len(o.Items)).Msg("order created")
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.UserID, &o.Address, &o.PaymentMethod, &o.Status, &o.TotalPrice, &o.CreatedAt)
	if err != nil {
		return nil, repository.MapError(err)
	}
	orders := []domain.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Address, &o.PaymentMethod, &o.Status, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads items for all orders in one query. Items whose product
// was deleted keep their price and quantity but carry no product.
func (r *postgresRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT oi.id, oi.order_id, COALESCE(oi.product_id, 0), oi.quantity, oi.price::float8
FROM order_items oi
WHERE oi.order_id = ANY($1)
ORDER BY oi.id ASC
`, ids)
	if err != nil {
		return err
	}
	var productIDs []int64
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			rows.Close()
			return err
		}
		pos := index[it.OrderID]
		orders[pos].Items = append(orders[pos].Items, it)
		if it.ProductID != 0 {
			productIDs = append(productIDs, it.ProductID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}

	products, err := r.products(ctx, productIDs)
	if err != nil {
		return err
	}
	for i := range orders {
		for j := range orders[i].Items {
			if p, ok := products[orders[i].Items[j].ProductID]; ok {
				prod := p
				orders[i].Items[j].Product = &prod
			}
		}
	}
	return nil
}

func (r *postgresRepo) products(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	q := `SELECT ` + productrepo.SelectColumns + ` FROM products p ` + productrepo.CategoryJoin + ` WHERE p.id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]domain.Product, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := productrepo.Scan(rows, &p); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
