package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	"github.com/boutique2v/commerce-backend/pkg/pagination"
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput carries the credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult pairs a minted token with the account it belongs to.
type AuthResult struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
}

// UpdateProfileInput carries the mutable profile fields; nil means keep.
type UpdateProfileInput struct {
	Name    *string
	Phone   *string
	Bio     *string
	City    *string
	Address *string
}

// ChangePasswordInput carries the current and replacement password.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Role       string
	Search     string
	Pagination pagination.Params
}

// ListResult is a page of users with its metadata.
type ListResult struct {
	Users []UserDTO       `json:"users"`
	Meta  pagination.Meta `json:"meta"`
}

// UserDTO is the outward account shape; it never carries the password hash.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	Phone     *string    `json:"phone,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	City      *string    `json:"city,omitempty"`
	Address   *string    `json:"address,omitempty"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// FromModel converts a user row into its outward shape.
func FromModel(user *models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Phone:     user.Phone,
		Bio:       user.Bio,
		City:      user.City,
		Address:   user.Address,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}
}
