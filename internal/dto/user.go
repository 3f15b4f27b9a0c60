package dto

import (
	"time"

	"github.com/bankaroo/banking_app/internal/core/domain"
)

// RegisterUserRequest defines the payload for self-service registration.
// Registration also provisions the user's account in the chosen currency.
type RegisterUserRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=64"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	PhoneNumber  string `json:"phoneNumber" binding:"omitempty,e164"`
	CurrencyCode string `json:"currencyCode" binding:"required,len=3,uppercase"`
}

// LoginRequest defines the payload for credential login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse defines the API representation of a user.
type UserResponse struct {
	UserID    string    `json:"userID"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListUsersResponse defines the paginated user listing payload.
type ListUsersResponse struct {
	Users     []UserResponse `json:"users"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// ToUserResponse converts a domain.User to its API representation.
func ToUserResponse(u domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ToListUsersResponse converts a page of domain users.
func ToListUsersResponse(users []domain.User, nextToken *string) ListUsersResponse {
	resp := ListUsersResponse{
		Users:     make([]UserResponse, 0, len(users)),
		NextToken: nextToken,
	}
	for _, u := range users {
		resp.Users = append(resp.Users, ToUserResponse(u))
	}
	return resp
}
