package dto

import (
	"time"

	"djrating/internal/microservices/http-api/models"
)

type InviteCodeRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

// AdminInviteRequest issues a code with no creator. Zero values fall back to configured defaults.
type AdminInviteRequest struct {
	Label          string `json:"label" binding:"omitempty,max=32"`
	UsageLimit     int    `json:"usage_limit" binding:"omitempty,min=1,max=10000"`
	ExpiresInHours int    `json:"expires_in_hours" binding:"omitempty,min=1"`
}

type InviteCodeResponse struct {
	Code       string     `json:"code"`
	UsageLimit int        `json:"usage_limit"`
	UsedCount  int        `json:"used_count"`
	Remaining  int        `json:"remaining"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
}

func FromModelToInviteCodeResponse(code *models.InviteCode) *InviteCodeResponse {
	return &InviteCodeResponse{
		Code:       code.Code,
		UsageLimit: code.UsageLimit,
		UsedCount:  code.UsedCount,
		Remaining:  code.Remaining(),
		ExpiresAt:  code.ExpiresAt,
		IsActive:   code.IsActive,
		CreatedAt:  code.CreatedAt,
	}
}

type InviteValidationResponse struct {
	Code      string     `json:"code"`
	Valid     bool       `json:"valid"`
	Reason    string     `json:"reason,omitempty"`
	Remaining int        `json:"remaining"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type InviteUseResponse struct {
	Code        string             `json:"code"`
	AccessLevel models.AccessLevel `json:"access_level"`
	InvitedBy   *string            `json:"invited_by,omitempty"`
	GrantedAt   time.Time          `json:"granted_at"`
}
