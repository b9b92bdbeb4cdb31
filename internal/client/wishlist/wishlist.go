// Package wishlist keeps the local copy of the signed-in user's wishlist,
// replaced wholesale by every successful server response.
package wishlist

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
	ErrMissingSnapshot = errors.New("wishlist: response carried no wishlist")
	ErrClosed          = mirror.ErrClosed
)

type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type Session interface {
	Token() string
}

type mutationResponse struct {
	Message  string                  `json:"message"`
	Wishlist *model.WishlistSnapshot `json:"wishlist"`
}

type Synchronizer struct {
	api     Gateway
	session Session
	state   *mirror.Mirror[model.WishlistSnapshot]
	logger  zerolog.Logger
}

func New(api Gateway, sess Session, logger zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		api:     api,
		session: sess,
		state:   mirror.New(model.WishlistSnapshot.Clone),
		logger:  logger.With().Str("component", "wishlist").Logger(),
	}
}

// Fetch loads the wishlist. Without a token it does nothing.
func (s *Synchronizer) Fetch(ctx context.Context) error {
	if s.state.Closed() {
		return ErrClosed
	}
	if s.session.Token() == "" {
		return nil
	}
	return s.state.Fetch(ctx, func(ctx context.Context) (model.WishlistSnapshot, error) {
		var raw json.RawMessage
		if err := s.api.Get(ctx, "/wishlist", &raw); err != nil {
			return model.WishlistSnapshot{}, fmt.Errorf("fetch wishlist: %w", err)
		}
		snap, err := model.DecodeItem[model.WishlistSnapshot](raw)
		if err != nil {
			return model.WishlistSnapshot{}, fmt.Errorf("fetch wishlist: %w", err)
		}
		return snap, nil
	})
}

func (s *Synchronizer) Add(ctx context.Context, productID int64) error {
	return s.mutate(ctx, "add to wishlist", func(ctx context.Context, out *mutationResponse) error {
		return s.api.Post(ctx, "/wishlist", map[string]int64{"product_id": productID}, out)
	})
}

// Remove deletes the wishlist line itemID. itemID is the line id, not the
// product id.
func (s *Synchronizer) Remove(ctx context.Context, itemID int64) error {
	return s.mutate(ctx, "remove from wishlist", func(ctx context.Context, out *mutationResponse) error {
		return s.api.Delete(ctx, fmt.Sprintf("/wishlist/%d", itemID), out)
	})
}

func (s *Synchronizer) mutate(ctx context.Context, op string, send func(context.Context, *mutationResponse) error) error {
	return s.state.Mutate(ctx, func(ctx context.Context) (model.WishlistSnapshot, error) {
		var resp mutationResponse
		if err := send(ctx, &resp); err != nil {
			return model.WishlistSnapshot{}, fmt.Errorf("%s: %w", op, err)
		}
		if resp.Wishlist == nil {
			return model.WishlistSnapshot{}, fmt.Errorf("%s: %w", op, ErrMissingSnapshot)
		}
		s.logger.Debug().Str("op", op).Int("items", len(resp.Wishlist.Items)).Msg("wishlist replaced")
		return *resp.Wishlist, nil
	})
}

// Contains reports whether productID is on the local wishlist.
func (s *Synchronizer) Contains(productID int64) bool {
	snap, _ := s.state.Snapshot()
	return snap.Contains(productID)
}

// ItemFor returns the wishlist line holding productID.
func (s *Synchronizer) ItemFor(productID int64) (model.WishlistItem, bool) {
	snap, _ := s.state.Snapshot()
	for _, it := range snap.Items {
		if it.ProductID == productID || it.ProductID == 0 && it.Product.ID == productID {
			return it, true
		}
	}
	return model.WishlistItem{}, false
}

// Toggle adds productID when absent and removes its line when present.
func (s *Synchronizer) Toggle(ctx context.Context, productID int64) error {
	if it, ok := s.ItemFor(productID); ok {
		return s.Remove(ctx, it.ID)
	}
	return s.Add(ctx, productID)
}

func (s *Synchronizer) Snapshot() model.WishlistSnapshot {
	snap, _ := s.state.Snapshot()
	return snap
}

func (s *Synchronizer) Count() int {
	snap, _ := s.state.Snapshot()
	return len(snap.Items)
}

func (s *Synchronizer) Loaded() bool  { return s.state.Loaded() }
func (s *Synchronizer) Loading() bool { return s.state.Loading() }
func (s *Synchronizer) Reset()        { s.state.Reset() }
func (s *Synchronizer) Close()        { s.state.Close() }
