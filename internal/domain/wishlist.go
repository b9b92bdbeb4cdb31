package domain

import "time"

type Wishlist struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Items     []WishlistItem `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
}

type WishlistItem struct {
	ID         int64     `json:"id"`
	WishlistID int64     `json:"wishlist_id"`
	ProductID  int64     `json:"product_id"`
	Product    Product   `json:"product"`
	CreatedAt  time.Time `json:"created_at"`
}
