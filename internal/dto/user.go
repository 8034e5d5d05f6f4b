package dto

import (
	"time"

	"github.com/yukikurage/corepm/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64          `json:"id"`
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	Role      models.UserRole `json:"role"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}

// TeamMemberDTO represents a team membership in API responses
type TeamMemberDTO struct {
	UserID   uint64    `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	JoinedAt time.Time `json:"joined_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

// ToTeamMemberDTOs converts memberships; the User relation must be loaded
func ToTeamMemberDTOs(members []models.TeamMember) []TeamMemberDTO {
	out := make([]TeamMemberDTO, 0, len(members))
	for _, m := range members {
		member := TeamMemberDTO{UserID: m.UserID, JoinedAt: m.CreatedAt}
		if m.User != nil {
			member.Email = m.User.Email
			member.FullName = m.User.FullName
		}
		out = append(out, member)
	}
	return out
}
