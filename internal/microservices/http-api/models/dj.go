package models

import "time"

type DJ struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string `json:"name" gorm:"not null;index"`
	City     string `json:"city" gorm:"not null;default:''"`
	Label    string `json:"label" gorm:"not null;default:''"`
	Bio      string `json:"bio" gorm:"type:text;not null;default:''"`
	PhotoURL string `json:"photo_url" gorm:"not null;default:''"`

	// Derived from approved reviews. Written only by the rating aggregator.
	OverallRating           float64 `json:"overall_rating" gorm:"type:numeric(3,2);not null;default:0"`
	SetRating               float64 `json:"set_rating" gorm:"type:numeric(3,2);not null;default:0"`
	PerformanceRating       float64 `json:"performance_rating" gorm:"type:numeric(3,2);not null;default:0"`
	PersonalityRating       float64 `json:"personality_rating" gorm:"type:numeric(3,2);not null;default:0"`
	ReviewCount             int     `json:"review_count" gorm:"not null;default:0"`
	WouldChooseAgainPercent int     `json:"would_choose_again_percent" gorm:"not null;default:0;check:would_choose_again_percent BETWEEN 0 AND 100"`
	// Bumped by every aggregate write; orders cached snapshots.
	AggregateVersion int64 `json:"aggregate_version" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (DJ) TableName() string {
	return "djs"
}

// DJAggregate is the set of derived rating fields written as one unit.
type DJAggregate struct {
	OverallRating           float64 `json:"overall_rating"`
	SetRating               float64 `json:"set_rating"`
	PerformanceRating       float64 `json:"performance_rating"`
	PersonalityRating       float64 `json:"personality_rating"`
	ReviewCount             int     `json:"review_count"`
	WouldChooseAgainPercent int     `json:"would_choose_again_percent"`
}

func (d *DJ) Aggregate() DJAggregate {
	return DJAggregate{
		OverallRating:           d.OverallRating,
		SetRating:               d.SetRating,
		PerformanceRating:       d.PerformanceRating,
		PersonalityRating:       d.PersonalityRating,
		ReviewCount:             d.ReviewCount,
		WouldChooseAgainPercent: d.WouldChooseAgainPercent,
	}
}

func (d *DJ) ApplyAggregate(agg DJAggregate) {
	d.OverallRating = agg.OverallRating
	d.SetRating = agg.SetRating
	d.PerformanceRating = agg.PerformanceRating
	d.PersonalityRating = agg.PersonalityRating
	d.ReviewCount = agg.ReviewCount
	d.WouldChooseAgainPercent = agg.WouldChooseAgainPercent
}
