package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccessLevel string

const (
	AccessWaitlist AccessLevel = "waitlist"
	AccessFull     AccessLevel = "full"
)

type User struct {
	ID         string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalID string  `gorm:"uniqueIndex;not null" json:"-"`
	LinkedID   *string `gorm:"index" json:"-"`
	Nickname   string  `gorm:"not null;default:''" json:"nickname"`
	AvatarURL  string  `gorm:"not null;default:''" json:"avatar_url"`
	Role       string  `gorm:"default:'user';not null" json:"role"`

	// invite economy
	InviteQuota     int         `gorm:"not null;default:0;check:invite_quota >= 0" json:"invite_quota"`
	InvitesSent     int         `gorm:"not null;default:0" json:"invites_sent"`
	InvitesAccepted int         `gorm:"not null;default:0" json:"invites_accepted"`
	InvitedBy       *string     `gorm:"type:uuid;index" json:"invited_by,omitempty"`
	InviteCodeUsed  *string     `json:"invite_code_used,omitempty"`
	AccessLevel     AccessLevel `gorm:"type:varchar(16);not null;default:'waitlist'" json:"access_level"`
	AccessGrantedAt *time.Time  `json:"access_granted_at,omitempty"`
	// Set once, when the inviter is credited for this user's first review.
	ReferralCreditedAt *time.Time `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.AccessLevel == "" {
		user.AccessLevel = AccessWaitlist
	}
	return
}

// HasRedeemedInvite reports whether the user already entered through an invite code.
func (user *User) HasRedeemedInvite() bool {
	return user.InviteCodeUsed != nil
}

func (User) TableName() string {
	return "users"
}
