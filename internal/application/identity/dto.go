package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmos/backend/internal/domain/identity"
)

// LoginInput contains credentials for authentication
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the outcome of a successful login
type LoginResult struct {
	UserID                uuid.UUID `json:"user_id"`
	TenantID              uuid.UUID `json:"tenant_id"`
	Email                 string    `json:"email"`
	Name                  string    `json:"name"`
	Role                  string    `json:"role"`
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// RegisterInput contains fields to create a user within a tenant
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     identity.Role
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToUserResponse maps a user to its API representation
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}
