package dto

import (
	"time"

	"github.com/tickbox/tickbox/internal/model"
	"github.com/tickbox/tickbox/internal/service"
)

// CredentialsRequest is the body of register and login calls.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials converts the request for the user service.
func (r CredentialsRequest) Credentials() service.Credentials {
	return service.Credentials{Email: r.Email, Password: r.Password}
}

// UserResponse is the outward view of a user. It never carries the
// password digest or session tokens.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
