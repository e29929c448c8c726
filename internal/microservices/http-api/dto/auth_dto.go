package dto

import (
	"time"

	"djrating/internal/microservices/http-api/models"
)

// Data Transfer Objects for authentication requests and responses

// LoginRequest: payload for login through the identity provider
type LoginRequest struct {
	Code      string `json:"code" binding:"required,max=256"`
	Nickname  string `json:"nickname" binding:"omitempty,max=64"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url,max=512"`
}

// AuthResponse: response payload after successful authentication
type AuthResponse struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	ExpiresIn   int64                `json:"expires_in"` // seconds
	User        *UserProfileResponse `json:"user"`
	IsNewUser   bool                 `json:"is_new_user"`
}

// UserProfileResponse: the caller's own profile with invite economy counters
type UserProfileResponse struct {
	ID              string             `json:"id"`
	Nickname        string             `json:"nickname"`
	AvatarURL       string             `json:"avatar_url"`
	Role            string             `json:"role"`
	InviteQuota     int                `json:"invite_quota"`
	InvitesSent     int                `json:"invites_sent"`
	InvitesAccepted int                `json:"invites_accepted"`
	InvitedBy       *string            `json:"invited_by,omitempty"`
	AccessLevel     models.AccessLevel `json:"access_level"`
	AccessGrantedAt *time.Time         `json:"access_granted_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

func FromModelToUserProfile(user *models.User) *UserProfileResponse {
	return &UserProfileResponse{
		ID:              user.ID,
		Nickname:        user.Nickname,
		AvatarURL:       user.AvatarURL,
		Role:            user.Role,
		InviteQuota:     user.InviteQuota,
		InvitesSent:     user.InvitesSent,
		InvitesAccepted: user.InvitesAccepted,
		InvitedBy:       user.InvitedBy,
		AccessLevel:     user.AccessLevel,
		AccessGrantedAt: user.AccessGrantedAt,
		CreatedAt:       user.CreatedAt,
	}
}
