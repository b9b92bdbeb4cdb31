// Package backend assembles the reference API's services on either Postgres
// or the in-memory store.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	"storefront/internal/repository/memory"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	wishlistrepo "storefront/internal/repository/wishlist"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	usersvc "storefront/internal/service/user"
	wishlistsvc "storefront/internal/service/wishlist"
)

type Backend struct {
	Users      *usersvc.Service
	Categories *categorysvc.Service
	Products   *productsvc.Service
	Carts      *cartsvc.Service
	Wishlists  *wishlistsvc.Service
	Orders     *ordersvc.Service

	// Pool is nil when running in memory.
	Pool *pgxpool.Pool
}

type repos struct {
	users      userrepo.Repository
	tokens     tokenrepo.Repository
	categories categoryrepo.Repository
	products   productrepo.Repository
	carts      cartrepo.Repository
	wishlists  wishlistrepo.Repository
	orders     orderrepo.Repository
}

// Open connects to Postgres when cfg names a database, otherwise it returns
// an empty in-memory backend.
func Open(ctx context.Context, cfg config.ServerConfig, logger zerolog.Logger) (*Backend, error) {
	if cfg.InMemory() {
		logger.Warn().Msg("DB_DSN not set; using in-memory storage")
		return NewMemory(cfg.TokenTTL, logger), nil
	}
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return NewPostgres(pool, cfg.TokenTTL, logger), nil
}

func NewMemory(tokenTTL time.Duration, logger zerolog.Logger) *Backend {
	store := memory.New()
	return build(repos{
		users:      store.Users(),
		tokens:     store.Tokens(),
		categories: store.Categories(),
		products:   store.Products(),
		carts:      store.Carts(),
		wishlists:  store.Wishlists(),
		orders:     store.Orders(),
	}, tokenTTL, logger)
}

func NewPostgres(pool *pgxpool.Pool, tokenTTL time.Duration, logger zerolog.Logger) *Backend {
	b := build(repos{
		users:      userrepo.NewPostgres(pool, logger),
		tokens:     tokenrepo.NewPostgres(pool),
		categories: categoryrepo.NewPostgres(pool),
		products:   productrepo.NewPostgres(pool, logger),
		carts:      cartrepo.NewPostgres(pool),
		wishlists:  wishlistrepo.NewPostgres(pool),
		orders:     orderrepo.NewPostgres(pool, logger),
	}, tokenTTL, logger)
	b.Pool = pool
	return b
}

func build(r repos, tokenTTL time.Duration, logger zerolog.Logger) *Backend {
	return &Backend{
		Users:      usersvc.New(r.users, r.tokens, tokenTTL, logger),
		Categories: categorysvc.New(r.categories),
		Products:   productsvc.New(r.products, r.categories),
		Carts:      cartsvc.New(r.carts, r.products),
		Wishlists:  wishlistsvc.New(r.wishlists, r.products),
		Orders:     ordersvc.New(r.orders, r.products, logger),
	}
}

// Deps exposes the services to the HTTP router.
func (b *Backend) Deps() httpserver.Deps {
	deps := httpserver.Deps{
		AuthSvc:     b.Users,
		CartSvc:     b.Carts,
		WishlistSvc: b.Wishlists,
		OrderSvc:    b.Orders,
		ProductSvc:  b.Products,
		CategorySvc: b.Categories,
	}
	if b.Pool != nil {
		deps.DB = b.Pool
	}
	return deps
}

func (b *Backend) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
}
