package memory

import (
	"context"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

type orderRepo struct{ s *Store }

// Orders returns the order repository view of the store.
func (s *Store) Orders() orderrepo.Repository { return orderRepo{s} }

func (r orderRepo) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[o.UserID]; !ok {
		return nil, domain.ErrNotFound
	}
	for _, it := range o.Items {
		if _, ok := r.s.products[it.ProductID]; !ok {
			return nil, domain.ErrNotFound
		}
	}
	o.ID = r.s.id("orders")
	o.CreatedAt = r.s.now()
	items := make([]domain.OrderItem, len(o.Items))
	for i, it := range o.Items {
		it.ID = r.s.id("order_items")
		it.OrderID = o.ID
		it.Product = nil
		items[i] = it
	}
	o.Items = items
	r.s.orders[o.ID] = o
	return r.hydrate(o), nil
}

func (r orderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.hydrate(o), nil
}

func (r orderRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	return r.list(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (r orderRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	return r.list(func(domain.Order) bool { return true }), nil
}

func (r orderRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	r.s.orders[id] = o
	return nil
}

func (r orderRepo) list(keep func(domain.Order) bool) []domain.Order {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := sortedKeys(r.s.orders)
	out := make([]domain.Order, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		o := r.s.orders[ids[i]]
		if keep(o) {
			out = append(out, *r.hydrate(o))
		}
	}
	return out
}

// hydrate copies o and attaches current products to its items. Callers hold mu.
func (r orderRepo) hydrate(o domain.Order) *domain.Order {
	items := make([]domain.OrderItem, len(o.Items))
	for i, it := range o.Items {
		if p, ok := r.s.productLocked(it.ProductID); ok {
			it.Product = &p
		}
		items[i] = it
	}
	o.Items = items
	return &o
}
