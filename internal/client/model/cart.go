package model

// CartItem is one cart line. ID identifies the line, not the product.
type CartItem struct {
	ID        int64      `json:"id"`
	ProductID int64      `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Product   ProductRef `json:"product"`
}

// CartSnapshot is the server's full view of a cart.
type CartSnapshot struct {
	ID    int64      `json:"id"`
	Items []CartItem `json:"items"`
}

// TotalQuantity sums the quantity of every line.
func (c CartSnapshot) TotalQuantity() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// TotalPrice sums price times quantity over every line.
func (c CartSnapshot) TotalPrice() float64 {
	var total float64
	for _, it := range c.Items {
		total += float64(it.Product.Price) * float64(it.Quantity)
	}
	return total
}

// Clone returns a copy that shares nothing mutable with c.
func (c CartSnapshot) Clone() CartSnapshot {
	out := CartSnapshot{ID: c.ID, Items: make([]CartItem, len(c.Items))}
	for i, it := range c.Items {
		out.Items[i] = it
		out.Items[i].Product = it.Product.clone()
	}
	return out
}

func (p ProductRef) clone() ProductRef {
	if p.Category != nil {
		cat := *p.Category
		p.Category = &cat
	}
	return p
}

type WishlistItem struct {
	ID        int64      `json:"id"`
	ProductID int64      `json:"product_id"`
	Product   ProductRef `json:"product"`
}

type WishlistSnapshot struct {
	ID    int64          `json:"id"`
	Items []WishlistItem `json:"items"`
}

// Contains reports whether productID is saved. Lines missing product_id are
// matched on their embedded product.
func (w WishlistSnapshot) Contains(productID int64) bool {
	for _, it := range w.Items {
		id := it.ProductID
		if id == 0 {
			id = it.Product.ID
		}
		if id == productID {
			return true
		}
	}
	return false
}

func (w WishlistSnapshot) Clone() WishlistSnapshot {
	out := WishlistSnapshot{ID: w.ID, Items: make([]WishlistItem, len(w.Items))}
	for i, it := range w.Items {
		out.Items[i] = it
		out.Items[i].Product = it.Product.clone()
	}
	return out
}
