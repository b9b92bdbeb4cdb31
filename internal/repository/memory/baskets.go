package memory

import (
	"context"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	wishlistrepo "storefront/internal/repository/wishlist"
)

type cartRepo struct{ s *Store }

// Carts returns the cart repository view of the store.
func (s *Store) Carts() cartrepo.Repository { return cartRepo{s} }

func (r cartRepo) GetOrCreateByUser(_ context.Context, userID int64) (*domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return nil, domain.ErrNotFound
	}
	var cart domain.Cart
	found := false
	for _, c := range r.s.carts {
		if c.UserID == userID {
			cart, found = c, true
			break
		}
	}
	if !found {
		cart = domain.Cart{ID: r.s.id("carts"), UserID: userID, CreatedAt: r.s.now()}
		r.s.carts[cart.ID] = cart
	}
	cart.Items = []domain.CartItem{}
	for _, id := range sortedKeys(r.s.cartItems) {
		it := r.s.cartItems[id]
		if it.CartID != cart.ID {
			continue
		}
		p, ok := r.s.productLocked(it.ProductID)
		if !ok {
			continue
		}
		it.Product = p
		cart.Items = append(cart.Items, it)
	}
	return &cart, nil
}

func (r cartRepo) AddItem(_ context.Context, cartID, productID int64, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.carts[cartID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.products[productID]; !ok {
		return domain.ErrNotFound
	}
	for id, it := range r.s.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			it.Quantity += quantity
			r.s.cartItems[id] = it
			return nil
		}
	}
	id := r.s.id("cart_items")
	r.s.cartItems[id] = domain.CartItem{
		ID:        id,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: r.s.now(),
	}
	return nil
}

func (r cartRepo) SetItemQuantity(_ context.Context, cartID, itemID int64, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.cartItems[itemID]
	if !ok || it.CartID != cartID {
		return domain.ErrNotFound
	}
	it.Quantity = quantity
	r.s.cartItems[itemID] = it
	return nil
}

func (r cartRepo) RemoveItem(_ context.Context, cartID, itemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.cartItems[itemID]
	if !ok || it.CartID != cartID {
		return domain.ErrNotFound
	}
	delete(r.s.cartItems, itemID)
	return nil
}

func (r cartRepo) Clear(_ context.Context, cartID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, it := range r.s.cartItems {
		if it.CartID == cartID {
			delete(r.s.cartItems, id)
		}
	}
	return nil
}

type wishlistRepo struct{ s *Store }

// Wishlists returns the wishlist repository view of the store.
func (s *Store) Wishlists() wishlistrepo.Repository { return wishlistRepo{s} }

func (r wishlistRepo) GetOrCreateByUser(_ context.Context, userID int64) (*domain.Wishlist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return nil, domain.ErrNotFound
	}
	var wl domain.Wishlist
	found := false
	for _, w := range r.s.wishlists {
		if w.UserID == userID {
			wl, found = w, true
			break
		}
	}
	if !found {
		wl = domain.Wishlist{ID: r.s.id("wishlists"), UserID: userID, CreatedAt: r.s.now()}
		r.s.wishlists[wl.ID] = wl
	}
	wl.Items = []domain.WishlistItem{}
	for _, id := range sortedKeys(r.s.wishlistItems) {
		it := r.s.wishlistItems[id]
		if it.WishlistID != wl.ID {
			continue
		}
		p, ok := r.s.productLocked(it.ProductID)
		if !ok {
			continue
		}
		it.Product = p
		wl.Items = append(wl.Items, it)
	}
	return &wl, nil
}

func (r wishlistRepo) AddItem(_ context.Context, wishlistID, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wishlists[wishlistID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.products[productID]; !ok {
		return domain.ErrNotFound
	}
	for _, it := range r.s.wishlistItems {
		if it.WishlistID == wishlistID && it.ProductID == productID {
			return nil
		}
	}
	id := r.s.id("wishlist_items")
	r.s.wishlistItems[id] = domain.WishlistItem{
		ID:         id,
		WishlistID: wishlistID,
		ProductID:  productID,
		CreatedAt:  r.s.now(),
	}
	return nil
}

func (r wishlistRepo) RemoveItem(_ context.Context, wishlistID, itemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.wishlistItems[itemID]
	if !ok || it.WishlistID != wishlistID {
		return domain.ErrNotFound
	}
	delete(r.s.wishlistItems, itemID)
	return nil
}
