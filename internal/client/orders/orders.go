// Package orders places and lists storefront orders.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"storefront/internal/client/model"
)

const (
	StatusPending   = "Menunggu Konfirmasi"
	StatusCompleted = "Selesai"
)

// PaymentMethods are the transfer channels offered at checkout.
var PaymentMethods = []string{"bca", "mandiri", "gopay", "ovo"}

var (
	ErrMissingAddress       = errors.New("orders: address is required")
	ErrInvalidPaymentMethod = errors.New("orders: unknown payment method")
	ErrNoItems              = errors.New("orders: order has no items")
	ErrInvalidItem          = errors.New("orders: item needs a product and a quantity of at least 1")
	ErrMissingOrder         = errors.New("orders: response carried no order")
)

type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

type Client struct {
	api    Gateway
	logger zerolog.Logger
}

func New(api Gateway, logger zerolog.Logger) *Client {
	return &Client{api: api, logger: logger.With().Str("component", "orders").Logger()}
}

type Item struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type PlaceInput struct {
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
	Items         []Item `json:"items"`
}

// ItemsFromCart turns cart lines into order items.
func ItemsFromCart(c model.CartSnapshot) []Item {
	items := make([]Item, 0, len(c.Items))
	for _, it := range c.Items {
		id := it.ProductID
		if id == 0 {
			id = it.Product.ID
		}
		items = append(items, Item{ProductID: id, Quantity: it.Quantity})
	}
	return items
}

func (in *PlaceInput) normalize() error {
	in.Address = strings.TrimSpace(in.Address)
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if in.Address == "" {
		return ErrMissingAddress
	}
	if !slices.Contains(PaymentMethods, in.PaymentMethod) {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, in.PaymentMethod)
	}
	if len(in.Items) == 0 {
		return ErrNoItems
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity < 1 {
			return ErrInvalidItem
		}
	}
	return nil
}

type orderResponse struct {
	Message string       `json:"message"`
	Order   *model.Order `json:"order"`
}

// Place submits an order. Prices are decided by the server.
func (c *Client) Place(ctx context.Context, in PlaceInput) (model.Order, error) {
	if err := in.normalize(); err != nil {
		return model.Order{}, err
	}
	var resp orderResponse
	if err := c.api.Post(ctx, "/orders", in, &resp); err != nil {
		return model.Order{}, fmt.Errorf("place order: %w", err)
	}
	if resp.Order == nil {
		return model.Order{}, ErrMissingOrder
	}
	c.logger.Info().Int64("order_id", resp.Order.ID).Int("items", len(in.Items)).Msg("order placed")
	return *resp.Order, nil
}

// List returns the signed-in user's orders.
func (c *Client) List(ctx context.Context) ([]model.Order, error) {
	return c.list(ctx, "/orders")
}

// AdminList returns every order. Admin only.
func (c *Client) AdminList(ctx context.Context) ([]model.Order, error) {
	return c.list(ctx, "/admin/orders")
}

func (c *Client) list(ctx context.Context, path string) ([]model.Order, error) {
	var raw json.RawMessage
	if err := c.api.Get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out, err := model.DecodeList[model.Order](raw)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// Confirm marks an order as paid. Admin only.
func (c *Client) Confirm(ctx context.Context, orderID int64) (model.Order, error) {
	var resp orderResponse
	if err := c.api.Put(ctx, fmt.Sprintf("/orders/%d/confirm", orderID), nil, &resp); err != nil {
		return model.Order{}, fmt.Errorf("confirm order %d: %w", orderID, err)
	}
	if resp.Order == nil {
		return model.Order{ID: orderID, Status: StatusCompleted}, nil
	}
	return *resp.Order, nil
}

// PendingCount counts orders still awaiting confirmation.
func PendingCount(orders []model.Order) int {
	n := 0
	for _, o := range orders {
		if o.Status == StatusPending {
			n++
		}
	}
	return n
}
