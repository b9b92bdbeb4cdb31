// Package memory implements every repository interface on a single
// mutex-guarded in-process store. The API runs on it when no database is
// configured, and end-to-end tests use it to exercise the real services.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

// Store holds all entities. Rows are kept by value and copied on the way out.
type Store struct {
	mu sync.RWMutex

	nextID map[string]int64
	now    func() time.Time

	users         map[int64]domain.User
	tokens        map[string]tokenrepo.Token
	categories    map[int64]domain.Category
	products      map[int64]domain.Product
	carts         map[int64]domain.Cart // keyed by cart id; Items unused
	cartItems     map[int64]domain.CartItem
	wishlists     map[int64]domain.Wishlist
	wishlistItems map[int64]domain.WishlistItem
	orders        map[int64]domain.Order
}

// New returns an empty store.
func New() *Store {
	return &Store{
		nextID:        make(map[string]int64),
		now:           func() time.Time { return time.Now().UTC() },
		users:         make(map[int64]domain.User),
		tokens:        make(map[string]tokenrepo.Token),
		categories:    make(map[int64]domain.Category),
		products:      make(map[int64]domain.Product),
		carts:         make(map[int64]domain.Cart),
		cartItems:     make(map[int64]domain.CartItem),
		wishlists:     make(map[int64]domain.Wishlist),
		wishlistItems: make(map[int64]domain.WishlistItem),
		orders:        make(map[int64]domain.Order),
	}
}

// id returns the next sequence value for table. Callers hold mu.
func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

// productLocked resolves a product with its category. Callers hold mu.
func (s *Store) productLocked(id int64) (domain.Product, bool) {
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, false
	}
	p.Category = nil
	if p.CategoryID != nil {
		if c, ok := s.categories[*p.CategoryID]; ok {
			cat := c
			p.Category = &cat
		}
	}
	return p, true
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
