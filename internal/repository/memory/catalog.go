package memory

import (
	"context"
	"sort"

	"storefront/internal/domain"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
)

type categoryRepo struct{ s *Store }

// Categories returns the category repository view of the store.
func (s *Store) Categories() categoryrepo.Repository { return categoryRepo{s} }

func (r categoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r categoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r categoryRepo) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.categories {
		if existing.Slug == c.Slug {
			existing.Name = c.Name
			r.s.categories[id] = existing
			out := existing
			return &out, nil
		}
	}
	c.ID = r.s.id("categories")
	c.CreatedAt = r.s.now()
	r.s.categories[c.ID] = c
	out := c
	return &out, nil
}

type productRepo struct{ s *Store }

// Products returns the product repository view of the store.
func (s *Store) Products() productrepo.Repository { return productRepo{s} }

func (r productRepo) List(_ context.Context) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := sortedKeys(r.s.products)
	out := make([]domain.Product, 0, len(ids))
	// Newest first, matching the Postgres ordering.
	for i := len(ids) - 1; i >= 0; i-- {
		p, _ := r.s.productLocked(ids[i])
		out = append(out, p)
	}
	return out, nil
}

func (r productRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.productLocked(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r productRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.CategoryID != nil {
		if _, ok := r.s.categories[*p.CategoryID]; !ok {
			return nil, domain.ErrNotFound
		}
	}
	p.ID = r.s.id("products")
	p.CreatedAt = r.s.now()
	p.Category = nil
	r.s.products[p.ID] = p
	out, _ := r.s.productLocked(p.ID)
	return &out, nil
}

func (r productRepo) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.products[p.ID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.CategoryID != nil {
		if _, ok := r.s.categories[*p.CategoryID]; !ok {
			return nil, domain.ErrNotFound
		}
	}
	p.CreatedAt = existing.CreatedAt
	p.Category = nil
	r.s.products[p.ID] = p
	out, _ := r.s.productLocked(p.ID)
	return &out, nil
}

func (r productRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.products, id)
	// Mirror the ON DELETE CASCADE rules of the schema.
	for itemID, it := range r.s.cartItems {
		if it.ProductID == id {
			delete(r.s.cartItems, itemID)
		}
	}
	for itemID, it := range r.s.wishlistItems {
		if it.ProductID == id {
			delete(r.s.wishlistItems, itemID)
		}
	}
	return nil
}
