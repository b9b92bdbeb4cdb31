package wishlist

import (
	"context"
	"errors"

	"storefront/internal/domain"
	wishlistrepo "storefront/internal/repository/wishlist"
)

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type Service struct {
	repo        wishlistrepo.Repository
	productRepo productRepo
}

func New(repo wishlistrepo.Repository, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

type AddInput struct {
	ProductID int64 `json:"product_id"`
}

func (s *Service) Get(ctx context.Context, userID int64) (*domain.Wishlist, error) {
	return s.repo.GetOrCreateByUser(ctx, userID)
}

// Add saves a product. Saving one that is already present returns the
// unchanged wishlist.
func (s *Service) Add(ctx context.Context, userID int64, in AddInput) (*domain.Wishlist, error) {
	if in.ProductID <= 0 {
		return nil, domain.FieldError("product_id", "The product id field is required.")
	}
	if _, err := s.productRepo.GetByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.FieldError("product_id", "The selected product id is invalid.")
		}
		return nil, err
	}
	wl, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddItem(ctx, wl.ID, in.ProductID); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateByUser(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, itemID int64) (*domain.Wishlist, error) {
	wl, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RemoveItem(ctx, wl.ID, itemID); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreateByUser(ctx, userID)
}
