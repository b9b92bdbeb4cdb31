package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// Service places and confirms orders. Prices are taken from the catalog at
// placement time, never from the request.
type Service struct {
	repo     orderrepo.Repository
	products productRepo
	logger   zerolog.Logger
}

func New(repo orderrepo.Repository, products productRepo, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		logger:   logger.With().Str("service", "order").Logger(),
	}
}

type ItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type PlaceInput struct {
	Address       string      `json:"address"`
	PaymentMethod string      `json:"payment_method"`
	Items         []ItemInput `json:"items"`
}

func (s *Service) Place(ctx context.Context, userID int64, in PlaceInput) (*domain.Order, error) {
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, domain.FieldError("address", "The address field is required.")
	}
	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if !domain.ValidPaymentMethod(method) {
		return nil, domain.FieldError("payment_method", "The selected payment method is invalid.")
	}
	if len(in.Items) == 0 {
		return nil, domain.FieldError("items", "The items field is required.")
	}

	order := domain.Order{
		UserID:        userID,
		Address:       address,
		PaymentMethod: method,
		Status:        domain.OrderStatusPending,
	}
	for i, it := range in.Items {
		field := fmt.Sprintf("items.%d", i)
		if it.Quantity < 1 {
			return nil, domain.FieldError(field+".quantity", "The quantity must be at least 1.")
		}
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.FieldError(field+".product_id", "The selected product id is invalid.")
			}
			return nil, err
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: p.ID,
			Quantity:  it.Quantity,
			Price:     p.Price,
		})
		order.TotalPrice += p.Price * float64(it.Quantity)
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("order_id", created.ID).
		Int64("user_id", userID).
		Float64("total", created.TotalPrice).
		Msg("order placed")
	return created, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// Confirm marks the payment of an order as verified.
func (s *Service) Confirm(ctx context.Context, orderID int64) (*domain.Order, error) {
	if err := s.repo.UpdateStatus(ctx, orderID, domain.OrderStatusCompleted); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("order_id", orderID).Msg("order confirmed")
	return s.repo.GetByID(ctx, orderID)
}
