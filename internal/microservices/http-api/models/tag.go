package models

import "time"

type Tag struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string    `json:"name" gorm:"uniqueIndex;not null"`
	UsageCount int       `json:"usage_count" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"-" gorm:"autoCreateTime"`
}

func (Tag) TableName() string {
	return "tags"
}

type ReviewTag struct {
	ReviewID int64 `gorm:"primaryKey"`
	TagID    int64 `gorm:"primaryKey"`
}

func (ReviewTag) TableName() string {
	return "review_tags"
}
