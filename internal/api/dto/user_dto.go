package dto

import (
	"time"

	"github.com/spec-kit/hvac-service-desk/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the token and the authenticated account.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest payload for account administration.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin technician quality_manager"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// SetActiveRequest toggles account state.
type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// UserResponse is the public account view. The password hash never leaves
// the service.
type UserResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	FullName  string      `json:"full_name"`
	Role      domain.Role `json:"role"`
	Phone     string      `json:"phone,omitempty"`
	Email     string      `json:"email,omitempty"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
}
