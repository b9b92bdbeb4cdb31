package product

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type categoryRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
}

type Service struct {
	repo       productrepo.Repository
	categories categoryRepo
}

func New(repo productrepo.Repository, categories categoryRepo) *Service {
	return &Service{repo: repo, categories: categories}
}

// Input is the admin product form. Price and CategoryID are pointers so a
// missing field can be told apart from zero.
type Input struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Stock       int      `json:"stock"`
	Image       string   `json:"image"`
	CategoryID  *int64   `json:"category_id"`
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*domain.Product, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	p, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(ctx context.Context, in Input) (domain.Product, error) {
	ve := &domain.ValidationError{Fields: map[string][]string{}}
	add := func(field, msg string) {
		if ve.Message == "" {
			ve.Message = msg
		}
		ve.Fields[field] = append(ve.Fields[field], msg)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		add("name", "The name field is required.")
	}
	switch {
	case in.Price == nil:
		add("price", "The price field is required.")
	case *in.Price < 0:
		add("price", "The price must be at least 0.")
	}
	if in.Stock < 0 {
		add("stock", "The stock must be at least 0.")
	}
	if in.CategoryID == nil {
		add("category_id", "The category id field is required.")
	} else if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.Product{}, err
		}
		add("category_id", "The selected category id is invalid.")
	}
	if len(ve.Fields) > 0 {
		return domain.Product{}, ve
	}

	return domain.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       *in.Price,
		Stock:       in.Stock,
		Image:       strings.TrimSpace(in.Image),
		CategoryID:  in.CategoryID,
	}, nil
}
