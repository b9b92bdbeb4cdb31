package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// Service owns the per-user cart. Every mutation returns the full cart so
// handlers can answer with the authoritative snapshot.
type Service struct {
	repo        cartrepo.Repository
	productRepo productRepo
}

func New(repo cartrepo.Repository, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

type AddInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateInput struct {
	Quantity int `json:"quantity"`
}

func (s *Service) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	return s.repo.GetOrCreateByUser(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID int64, in AddInput) (*domain.Cart, error) {
	if in.ProductID <= 0 {
		return nil, domain.FieldError("product_id", "The product id field is required.")
	}
	if in.Quantity < 1 {
		return nil, domain.FieldError("quantity", "The quantity must be at least 1.")
	}
	product, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.FieldError("product_id", "The selected product id is invalid.")
		}
		return nil, err
	}

	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	wanted := in.Quantity
	for _, it := range cart.Items {
		if it.ProductID == in.ProductID {
			wanted += it.Quantity
		}
	}
	if err := checkStock(product, wanted); err != nil {
		return nil, err
	}

	if err := s.repo.AddItem(ctx, cart.ID, in.ProductID, in.Quantity); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateByUser(ctx, userID)
}

func (s *Service) SetQuantity(ctx context.Context, userID, itemID int64, in UpdateInput) (*domain.Cart, error) {
	if in.Quantity < 1 {
		return nil, domain.FieldError("quantity", "The quantity must be at least 1.")
	}
	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, ok := findItem(cart, itemID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := checkStock(&item.Product, in.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.SetItemQuantity(ctx, cart.ID, itemID, in.Quantity); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateByUser(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, itemID int64) (*domain.Cart, error) {
	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateByUser(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.Clear(ctx, cart.ID)
}

func findItem(cart *domain.Cart, itemID int64) (domain.CartItem, bool) {
	for _, it := range cart.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return domain.CartItem{}, false
}

func checkStock(p *domain.Product, quantity int) error {
	if quantity > p.Stock {
		return domain.FieldError("quantity", "The requested quantity exceeds available stock.")
	}
	return nil
}
