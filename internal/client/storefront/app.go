// Package storefront wires the client components into one application
// object that a view layer drives.
package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"storefront/internal/client/account"
	"storefront/internal/client/api"
	"storefront/internal/client/cart"
	"storefront/internal/client/catalog"
	"storefront/internal/client/guard"
	"storefront/internal/client/model"
	"storefront/internal/client/orders"
	"storefront/internal/client/session"
	"storefront/internal/client/wishlist"
)

var ErrEmptyCart = errors.New("storefront: cart is empty")

type Options struct {
	API     api.Config
	Storage session.Storage
	// Navigator receives the redirect to login when the server rejects
	// the session. Nil only logs.
	Navigator guard.Navigator
	Logger    zerolog.Logger
}

type App struct {
	Session  *session.Store
	API      *api.Client
	Cart     *cart.Synchronizer
	Wishlist *wishlist.Synchronizer
	Account  *account.Client
	Orders   *orders.Client
	Catalog  *catalog.Client

	coordinator *guard.Coordinator
	unsubscribe func()
	logger      zerolog.Logger
}

// New loads the persisted session and builds every component on top of it.
// The caller keeps ownership of opts.Storage.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Storage == nil {
		return nil, errors.New("storefront: storage is required")
	}
	logger := opts.Logger

	sess, err := session.Open(ctx, opts.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	client, err := api.New(opts.API, sess, logger)
	if err != nil {
		return nil, err
	}

	nav := opts.Navigator
	if nav == nil {
		nav = guard.NavigatorFunc(func(path string) {
			logger.Debug().Str("path", path).Msg("navigate")
		})
	}

	a := &App{
		Session:  sess,
		API:      client,
		Cart:     cart.New(client, sess, logger),
		Wishlist: wishlist.New(client, sess, logger),
		Account:  account.New(client, sess, logger),
		Orders:   orders.New(client, logger),
		Catalog:  catalog.New(client, logger),
		logger:   logger.With().Str("component", "storefront").Logger(),
	}
	// Registered before the coordinator so state is gone by the time the
	// login page is shown.
	a.unsubscribe = sess.Subscribe(a.onSessionChanged)
	a.coordinator = guard.NewCoordinator(sess, nav, logger)
	return a, nil
}

func (a *App) onSessionChanged(reason session.Reason) {
	a.Cart.Reset()
	a.Wishlist.Reset()
	a.logger.Debug().Str("reason", string(reason)).Msg("local state dropped")
}

// Login signs in, loads the user's cart and wishlist, and returns the page
// the user should land on. A failed load is logged, not returned. Signing in
// over another user's session drops that user's cart and wishlist first.
func (a *App) Login(ctx context.Context, email, password string) (model.User, string, error) {
	u, err := a.Account.Login(ctx, email, password)
	if err != nil {
		return model.User{}, "", err
	}
	if err := a.Refresh(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("load after login")
	}
	return u, guard.HomeFor(a.Session.Role()), nil
}

// Logout signs out. Local state is dropped even if the server call fails.
func (a *App) Logout(ctx context.Context) error {
	return a.Account.Logout(ctx)
}

// Refresh reloads cart and wishlist concurrently.
func (a *App) Refresh(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Cart.Fetch(gctx) })
	g.Go(func() error { return a.Wishlist.Fetch(gctx) })
	return g.Wait()
}

// Checkout orders everything in the local cart and then empties the cart.
// If the order went through but clearing failed, the order is returned
// together with the error.
func (a *App) Checkout(ctx context.Context, address, paymentMethod string) (model.Order, error) {
	snap := a.Cart.Snapshot()
	if len(snap.Items) == 0 {
		return model.Order{}, ErrEmptyCart
	}
	o, err := a.Orders.Place(ctx, orders.PlaceInput{
		Address:       address,
		PaymentMethod: paymentMethod,
		Items:         orders.ItemsFromCart(snap),
	})
	if err != nil {
		return model.Order{}, err
	}
	if err := a.Cart.Clear(ctx); err != nil {
		return o, fmt.Errorf("order %d placed, clear cart: %w", o.ID, err)
	}
	return o, nil
}

// Close stops reacting to session changes and closes both synchronizers.
func (a *App) Close() {
	a.coordinator.Stop()
	a.unsubscribe()
	a.Cart.Close()
	a.Wishlist.Close()
}
