package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role gates access to the admin surface.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an application user.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewUser is the insert payload for a user row.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
}

// UserUpdate carries the admin-editable fields. Nil fields are left unchanged.
type UserUpdate struct {
	Role      *Role
	IsActive  *bool
	FirstName *string
	LastName  *string
}

// AccessToken is a signed bearer token and its expiry.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}
