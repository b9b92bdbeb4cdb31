// Package cart keeps the storefront's local copy of the signed-in user's
// cart. The server owns the cart: every successful call replaces the local
// copy with the snapshot the server returns.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"storefront/internal/client/mirror"
	"storefront/internal/client/model"
)

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
	ErrMissingSnapshot = errors.New("cart: response carried no cart")
	ErrClosed          = mirror.ErrClosed
)

// Gateway is the subset of api.Client the synchronizer uses.
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type Session interface {
	Token() string
}

type addRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type mutationResponse struct {
	Message string              `json:"message"`
	Cart    *model.CartSnapshot `json:"cart"`
}

// Synchronizer is safe for concurrent use. Calls are applied one at a time
// in the order they acquire the synchronizer.
type Synchronizer struct {
	api     Gateway
	session Session
	state   *mirror.Mirror[model.CartSnapshot]
	logger  zerolog.Logger
}

func New(api Gateway, sess Session, logger zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		api:     api,
		session: sess,
		state:   mirror.New(model.CartSnapshot.Clone),
		logger:  logger.With().Str("component", "cart").Logger(),
	}
}

// Fetch loads the cart. Without a token it does nothing.
func (s *Synchronizer) Fetch(ctx context.Context) error {
	if s.state.Closed() {
		return ErrClosed
	}
	if s.session.Token() == "" {
		return nil
	}
	return s.state.Fetch(ctx, func(ctx context.Context) (model.CartSnapshot, error) {
		var raw json.RawMessage
		if err := s.api.Get(ctx, "/cart", &raw); err != nil {
			return model.CartSnapshot{}, fmt.Errorf("fetch cart: %w", err)
		}
		snap, err := model.DecodeItem[model.CartSnapshot](raw)
		if err != nil {
			return model.CartSnapshot{}, fmt.Errorf("fetch cart: %w", err)
		}
		s.logger.Debug().Int("items", len(snap.Items)).Msg("cart fetched")
		return snap, nil
	})
}

// Add puts quantity units of a product in the cart.
func (s *Synchronizer) Add(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, "add to cart", func(ctx context.Context, out *mutationResponse) error {
		return s.api.Post(ctx, "/cart", addRequest{ProductID: productID, Quantity: quantity}, out)
	})
}

// SetQuantity changes the quantity of the cart line itemID.
func (s *Synchronizer) SetQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, "update cart item", func(ctx context.Context, out *mutationResponse) error {
		return s.api.Put(ctx, fmt.Sprintf("/cart/%d", itemID), quantityRequest{Quantity: quantity}, out)
	})
}

// Remove deletes the cart line itemID.
func (s *Synchronizer) Remove(ctx context.Context, itemID int64) error {
	return s.mutate(ctx, "remove cart item", func(ctx context.Context, out *mutationResponse) error {
		return s.api.Delete(ctx, fmt.Sprintf("/cart/%d", itemID), out)
	})
}

// Clear empties the cart. The server does not send the emptied cart back,
// so on success the local items are set to empty whatever the body held.
func (s *Synchronizer) Clear(ctx context.Context) error {
	return s.state.Mutate(ctx, func(ctx context.Context) (model.CartSnapshot, error) {
		if err := s.api.Delete(ctx, "/cart-clear", nil); err != nil {
			return model.CartSnapshot{}, fmt.Errorf("clear cart: %w", err)
		}
		cur, _ := s.state.Snapshot()
		s.logger.Debug().Msg("cart cleared")
		return model.CartSnapshot{ID: cur.ID, Items: []model.CartItem{}}, nil
	})
}

func (s *Synchronizer) mutate(ctx context.Context, op string, send func(context.Context, *mutationResponse) error) error {
	return s.state.Mutate(ctx, func(ctx context.Context) (model.CartSnapshot, error) {
		var resp mutationResponse
		if err := send(ctx, &resp); err != nil {
			return model.CartSnapshot{}, fmt.Errorf("%s: %w", op, err)
		}
		if resp.Cart == nil {
			return model.CartSnapshot{}, fmt.Errorf("%s: %w", op, ErrMissingSnapshot)
		}
		s.logger.Debug().Str("op", op).Int("items", len(resp.Cart.Items)).Msg("cart replaced")
		return *resp.Cart, nil
	})
}

// Snapshot returns a copy of the local cart. It is empty until loaded.
func (s *Synchronizer) Snapshot() model.CartSnapshot {
	snap, _ := s.state.Snapshot()
	if snap.Items == nil {
		snap.Items = []model.CartItem{}
	}
	return snap
}

// Count is the total number of units in the cart.
func (s *Synchronizer) Count() int {
	snap, _ := s.state.Snapshot()
	return snap.TotalQuantity()
}

// Total is the cart's price.
func (s *Synchronizer) Total() float64 {
	snap, _ := s.state.Snapshot()
	return snap.TotalPrice()
}

func (s *Synchronizer) Loaded() bool  { return s.state.Loaded() }
func (s *Synchronizer) Loading() bool { return s.state.Loading() }

// Reset drops the local cart. Responses still in flight are discarded.
func (s *Synchronizer) Reset() { s.state.Reset() }

// Close resets the synchronizer for good; later calls return ErrClosed.
func (s *Synchronizer) Close() { s.state.Close() }
