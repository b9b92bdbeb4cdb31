package domain

import "time"

// Order statuses as displayed by the storefront.
const (
	OrderStatusPending   = "Menunggu Konfirmasi"
	OrderStatusCompleted = "Selesai"
)

// PaymentMethods lists the manual transfer channels accepted at checkout.
var PaymentMethods = []string{"bca", "mandiri", "gopay", "ovo"}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

type Order struct {
	ID            int64       `json:"id"`
	UserID        int64       `json:"user_id"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"payment_method"`
	Status        string      `json:"status"`
	TotalPrice    float64     `json:"total_price"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
}

type OrderItem struct {
	ID        int64    `json:"id"`
	OrderID   int64    `json:"order_id"`
	ProductID int64    `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	Product   *Product `json:"product,omitempty"`
}
