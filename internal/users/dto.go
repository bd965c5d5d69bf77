package users

import "github.com/Max3uc3Planz/lcdt-back/pkg/db/models"

// RegisterInput carries the signup form. SponsorCode, when present, is a
// sponsor's referral code and creates a discount for both sides.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Phone       string
	SponsorCode *string
}

// UpdateInput carries profile edits. Nil fields are left untouched.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

// UserDTO is the public representation of an account.
type UserDTO struct {
	ID              string  `json:"id"`
	Email           *string `json:"email,omitempty"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Role            string  `json:"role"`
	SponsorshipCode *string `json:"sponsorship_code,omitempty"`
}

// FromModel converts a user row to its public DTO.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:              user.ID.String(),
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Role:            user.Role.String(),
		SponsorshipCode: user.SponsorshipCode,
	}
}
