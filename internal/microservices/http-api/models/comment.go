package models

import "time"

// MaxCommentDepth is the number of nesting levels: root (0), reply (1), reply to reply (2).
const MaxCommentDepth = 3

type Comment struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ReviewID        int64     `json:"review_id" gorm:"not null;index"`
	UserID          string    `json:"user_id" gorm:"type:uuid;not null;index"`
	ParentCommentID *int64    `json:"parent_comment_id,omitempty" gorm:"index"`
	Content         string    `json:"content" gorm:"not null;type:text"`
	VoteScore       int       `json:"vote_score" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User   User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Review Review   `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
	Parent *Comment `json:"-" gorm:"foreignKey:ParentCommentID;constraint:OnDelete:CASCADE;"`
}

func (Comment) TableName() string {
	return "comments"
}
