package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a registered storefront account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user may use the admin console.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
