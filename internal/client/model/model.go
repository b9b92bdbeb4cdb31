// Package model defines the JSON shapes the storefront API exchanges.
package model

import "time"

type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductRef struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Price    Amount       `json:"price"`
	Image    string       `json:"image,omitempty"`
	Category *CategoryRef `json:"category,omitempty"`
}

// Product is the catalog view of a product.
type Product struct {
	ProductRef
	Description string `json:"description,omitempty"`
	Stock       int    `json:"stock"`
	CategoryID  *int64 `json:"category_id,omitempty"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"user_id"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"payment_method"`
	Status        string      `json:"status"`
	TotalPrice    Amount      `json:"total_price"`
	CreatedAt     time.Time   `json:"created_at"`
	Items         []OrderItem `json:"items"`
}

type OrderItem struct {
	ID        int64       `json:"id"`
	ProductID int64       `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Price     Amount      `json:"price"`
	Product   *ProductRef `json:"product,omitempty"`
}
