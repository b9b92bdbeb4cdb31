package product

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "product").Logger()}
}

// SelectColumns is shared with the cart, wishlist and order repositories,
// which embed products in their lines. Expects products aliased p and
// categories aliased c (LEFT JOIN).
const SelectColumns = `p.id, p.category_id, p.name, COALESCE(p.description, ''), p.price::float8, p.stock, COALESCE(p.image, ''), p.created_at,
       c.id, c.name, c.slug, c.created_at`

// CategoryJoin attaches the category columns read by SelectColumns.
const CategoryJoin = `LEFT JOIN categories c ON c.id = p.category_id`

// Scan reads SelectColumns into dst. Extra destinations are scanned first,
// for queries that select line columns ahead of the product.
func Scan(row pgx.Row, dst *domain.Product, extra ...interface{}) error {
	var (
		catID      *int64
		catName    *string
		catSlug    *string
		catCreated *time.Time
	)
	targets := make([]interface{}, 0, len(extra)+12)
	targets = append(targets, extra...)
	targets = append(targets,
		&dst.ID, &dst.CategoryID, &dst.Name, &dst.Description, &dst.Price, &dst.Stock, &dst.Image, &dst.CreatedAt,
		&catID, &catName, &catSlug, &catCreated,
	)
	if err := row.Scan(targets...); err != nil {
		return err
	}
	dst.Category = nil
	if catID != nil {
		cat := domain.Category{ID: *catID}
		if catName != nil {
			cat.Name = *catName
		}
		if catSlug != nil {
			cat.Slug = *catSlug
		}
		if catCreated != nil {
			cat.CreatedAt = *catCreated
		}
		dst.Category = &cat
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + SelectColumns + ` FROM products p ` + CategoryJoin + ` ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error().Err(err).Msg("list products")
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := Scan(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug().Int("count", len(result)).Msg("listed products")
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	q := `SELECT ` + SelectColumns + ` FROM products p ` + CategoryJoin + ` WHERE p.id = $1`
	var p domain.Product
	if err := Scan(r.pool.QueryRow(ctx, q, id), &p); err != nil {
		return nil, repository.MapError(err)
	}
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (category_id, name, description, price, stock, image)
VALUES ($1, $2, NULLIF($3, ''), $4::numeric, $5, NULLIF($6, ''))
RETURNING id
`
	var id int64
	if err := r.pool.QueryRow(ctx, q, p.CategoryID, p.Name, p.Description, p.Price, p.Stock, p.Image).Scan(&id); err != nil {
		r.logger.Error().Err(err).Str("name", p.Name).Msg("create product")
		return nil, repository.MapError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET category_id = $2,
    name = $3,
    description = NULLIF($4, ''),
    price = $5::numeric,
    stock = $6,
    image = NULLIF($7, '')
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, p.ID, p.CategoryID, p.Name, p.Description, p.Price, p.Stock, p.Image)
	if err != nil {
		return nil, repository.MapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
