package models

import "time"

type InviteCode struct {
	ID         int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Code       string     `json:"code" gorm:"type:varchar(32);uniqueIndex;not null"`
	CreatorID  *string    `json:"creator_id,omitempty" gorm:"type:uuid;index"`
	UsageLimit int        `json:"usage_limit" gorm:"not null;default:1;check:usage_limit > 0"`
	UsedCount  int        `json:"used_count" gorm:"not null;default:0;check:used_count <= usage_limit"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	IsActive   bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (InviteCode) TableName() string {
	return "invite_codes"
}

type InviteInvalidReason string

const (
	InviteValid        InviteInvalidReason = ""
	InviteNotFound     InviteInvalidReason = "NotFound"
	InviteExpired      InviteInvalidReason = "Expired"
	InviteLimitReached InviteInvalidReason = "LimitReached"
)

// Check evaluates the validity invariant at now. A deactivated code reads as
// not found to the caller.
func (c *InviteCode) Check(now time.Time) InviteInvalidReason {
	if c == nil || !c.IsActive {
		return InviteNotFound
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return InviteExpired
	}
	if c.UsedCount >= c.UsageLimit {
		return InviteLimitReached
	}
	return InviteValid
}

func (c *InviteCode) Remaining() int {
	if c.UsedCount >= c.UsageLimit {
		return 0
	}
	return c.UsageLimit - c.UsedCount
}
