package models

import "time"

type ReviewStatus string

const (
	ReviewApproved ReviewStatus = "approved"
	ReviewPending  ReviewStatus = "pending"
	ReviewRejected ReviewStatus = "rejected"
)

type Review struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	DJID   int64  `json:"dj_id" gorm:"not null;index;uniqueIndex:idx_reviews_user_dj"`
	UserID string `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_reviews_user_dj"`

	OverallRating     int  `json:"overall_rating" gorm:"not null;check:overall_rating BETWEEN 1 AND 5"`
	SetRating         int  `json:"set_rating" gorm:"not null;check:set_rating BETWEEN 1 AND 5"`
	PerformanceRating int  `json:"performance_rating" gorm:"not null;check:performance_rating BETWEEN 1 AND 5"`
	PersonalityRating int  `json:"personality_rating" gorm:"not null;check:personality_rating BETWEEN 1 AND 5"`
	WouldChooseAgain  bool `json:"would_choose_again" gorm:"not null"`

	Comment     string       `json:"comment" gorm:"type:text;not null"`
	IsAnonymous bool         `json:"is_anonymous" gorm:"not null;default:false"`
	Status      ReviewStatus `json:"status" gorm:"type:varchar(16);not null;default:'approved';index"`

	HelpfulCount    int `json:"helpful_count" gorm:"not null;default:0"`
	NotHelpfulCount int `json:"not_helpful_count" gorm:"not null;default:0"`
	ReportCount     int `json:"report_count" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Associations
	User User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	DJ   DJ    `json:"-" gorm:"foreignKey:DJID;constraint:OnDelete:CASCADE;"`
	Tags []Tag `json:"tags,omitempty" gorm:"many2many:review_tags;"`
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewScores is the projection of a review the aggregator reads.
type ReviewScores struct {
	OverallRating     int
	SetRating         int
	PerformanceRating int
	PersonalityRating int
	WouldChooseAgain  bool
}

type InteractionKind string

const (
	InteractionHelpful    InteractionKind = "helpful"
	InteractionNotHelpful InteractionKind = "not_helpful"
	InteractionReport     InteractionKind = "report"
)

// CounterColumn is the reviews column kept in step with interactions of this kind.
func (k InteractionKind) CounterColumn() string {
	switch k {
	case InteractionHelpful:
		return "helpful_count"
	case InteractionNotHelpful:
		return "not_helpful_count"
	case InteractionReport:
		return "report_count"
	}
	return ""
}

type ReviewInteraction struct {
	ID        int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	ReviewID  int64           `json:"review_id" gorm:"not null;uniqueIndex:idx_review_interaction"`
	UserID    string          `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_interaction"`
	Kind      InteractionKind `json:"kind" gorm:"type:varchar(16);not null;uniqueIndex:idx_review_interaction"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (ReviewInteraction) TableName() string {
	return "review_interactions"
}
