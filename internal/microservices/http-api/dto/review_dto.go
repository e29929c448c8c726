package dto

import (
	"time"

	"djrating/internal/microservices/http-api/models"
)

// CreateReviewRequest for submitting a DJ review
type CreateReviewRequest struct {
	DJID              int64    `json:"dj_id" binding:"required,min=1"`
	OverallRating     int      `json:"overall_rating" binding:"required,min=1,max=5"`
	SetRating         int      `json:"set_rating" binding:"required,min=1,max=5"`
	PerformanceRating int      `json:"performance_rating" binding:"required,min=1,max=5"`
	PersonalityRating int      `json:"personality_rating" binding:"required,min=1,max=5"`
	WouldChooseAgain  *bool    `json:"would_choose_again" binding:"required"`
	Comment           string   `json:"comment" binding:"required"`
	IsAnonymous       bool     `json:"is_anonymous"`
	Tags              []string `json:"tags" binding:"omitempty,max=5,dive,max=20"`
}

type ReviewAuthor struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

type ReviewResponse struct {
	ID                int64         `json:"id"`
	DJID              int64         `json:"dj_id"`
	Author            *ReviewAuthor `json:"author,omitempty"`
	OverallRating     int           `json:"overall_rating"`
	SetRating         int           `json:"set_rating"`
	PerformanceRating int           `json:"performance_rating"`
	PersonalityRating int           `json:"personality_rating"`
	WouldChooseAgain  bool          `json:"would_choose_again"`
	Comment           string        `json:"comment"`
	IsAnonymous       bool          `json:"is_anonymous"`
	Status            string        `json:"status"`
	HelpfulCount      int           `json:"helpful_count"`
	NotHelpfulCount   int           `json:"not_helpful_count"`
	Tags              []string      `json:"tags"`
	CreatedAt         time.Time     `json:"created_at"`
}

// FromModelToReviewResponse converts a Review; anonymous reviews carry no author.
func FromModelToReviewResponse(review *models.Review) *ReviewResponse {
	resp := &ReviewResponse{
		ID:                review.ID,
		DJID:              review.DJID,
		OverallRating:     review.OverallRating,
		SetRating:         review.SetRating,
		PerformanceRating: review.PerformanceRating,
		PersonalityRating: review.PersonalityRating,
		WouldChooseAgain:  review.WouldChooseAgain,
		Comment:           review.Comment,
		IsAnonymous:       review.IsAnonymous,
		Status:            string(review.Status),
		HelpfulCount:      review.HelpfulCount,
		NotHelpfulCount:   review.NotHelpfulCount,
		Tags:              make([]string, 0, len(review.Tags)),
		CreatedAt:         review.CreatedAt,
	}
	if !review.IsAnonymous && review.User.ID != "" {
		resp.Author = &ReviewAuthor{
			ID:        review.User.ID,
			Nickname:  review.User.Nickname,
			AvatarURL: review.User.AvatarURL,
		}
	}
	for _, tag := range review.Tags {
		resp.Tags = append(resp.Tags, tag.Name)
	}
	return resp
}

type PaginatedReviewResponse struct {
	Data []ReviewResponse `json:"data"`
	Pagination
}

// InteractionResponse reports the caller's toggle state after a helpful/not-helpful/report click.
type InteractionResponse struct {
	ReviewID int64  `json:"review_id"`
	Kind     string `json:"kind"`
	Active   bool   `json:"active"`
	Count    int    `json:"count"`
}

type TagResponse struct {
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
}
