// Package catalog reads the product catalog and, for admins, edits it.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"storefront/internal/client/model"
)

type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type Client struct {
	api    Gateway
	logger zerolog.Logger
}

func New(api Gateway, logger zerolog.Logger) *Client {
	return &Client{api: api, logger: logger.With().Str("component", "catalog").Logger()}
}

// ProductInput is the admin product form.
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Stock       int      `json:"stock"`
	Image       string   `json:"image"`
	CategoryID  *int64   `json:"category_id"`
}

// FormError lists the form fields that failed local checks.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	return "catalog: invalid product: " + strings.Join(e.FieldNames(), ", ")
}

// FieldNames lists the failing fields, sorted.
func (e *FormError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "Name is required."
	}
	switch {
	case in.Price == nil:
		fields["price"] = "Price is required."
	case *in.Price < 0:
		fields["price"] = "Price must not be negative."
	}
	if in.CategoryID == nil || *in.CategoryID <= 0 {
		fields["category_id"] = "Category is required."
	}
	if in.Stock < 0 {
		fields["stock"] = "Stock must not be negative."
	}
	if len(fields) > 0 {
		return &FormError{Fields: fields}
	}
	return nil
}

func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var raw json.RawMessage
	if err := c.api.Get(ctx, "/products", &raw); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out, err := model.DecodeList[model.Product](raw)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (c *Client) Product(ctx context.Context, id int64) (model.Product, error) {
	var raw json.RawMessage
	if err := c.api.Get(ctx, fmt.Sprintf("/products/%d", id), &raw); err != nil {
		return model.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	p, err := model.DecodeItem[model.Product](raw)
	if err != nil {
		return model.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}
	var raw json.RawMessage
	if err := c.api.Post(ctx, "/products", in, &raw); err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}
	p, err := model.DecodeItem[model.Product](raw)
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}
	c.logger.Info().Int64("product_id", p.ID).Msg("product created")
	return p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (model.Product, error) {
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}
	var raw json.RawMessage
	if err := c.api.Put(ctx, fmt.Sprintf("/products/%d", id), in, &raw); err != nil {
		return model.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	p, err := model.DecodeItem[model.Product](raw)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, fmt.Sprintf("/products/%d", id), nil); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	c.logger.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var raw json.RawMessage
	if err := c.api.Get(ctx, "/categories", &raw); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out, err := model.DecodeList[model.Category](raw)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}
