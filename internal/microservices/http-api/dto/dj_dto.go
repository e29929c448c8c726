package dto

import (
	"time"

	"djrating/internal/microservices/http-api/models"
)

// CreateDJRequest for admin DJ creation
type CreateDJRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	City     string `json:"city" binding:"omitempty,max=100"`
	Label    string `json:"label" binding:"omitempty,max=100"`
	Bio      string `json:"bio" binding:"omitempty,max=2000"`
	PhotoURL string `json:"photo_url" binding:"omitempty,url,max=512"`
}

// DJListQuery is bound from the DJ list query string
type DJListQuery struct {
	PageQuery
	Sort string `form:"sort" binding:"omitempty,oneof=overall_rating review_count name"`
}

type DJResponse struct {
	ID                      int64     `json:"id"`
	Name                    string    `json:"name"`
	City                    string    `json:"city"`
	Label                   string    `json:"label"`
	Bio                     string    `json:"bio"`
	PhotoURL                string    `json:"photo_url"`
	OverallRating           float64   `json:"overall_rating"`
	SetRating               float64   `json:"set_rating"`
	PerformanceRating       float64   `json:"performance_rating"`
	PersonalityRating       float64   `json:"personality_rating"`
	ReviewCount             int       `json:"review_count"`
	WouldChooseAgainPercent int       `json:"would_choose_again_percent"`
	CreatedAt               time.Time `json:"created_at"`
}

func FromModelToDJResponse(dj *models.DJ) *DJResponse {
	return &DJResponse{
		ID:                      dj.ID,
		Name:                    dj.Name,
		City:                    dj.City,
		Label:                   dj.Label,
		Bio:                     dj.Bio,
		PhotoURL:                dj.PhotoURL,
		OverallRating:           dj.OverallRating,
		SetRating:               dj.SetRating,
		PerformanceRating:       dj.PerformanceRating,
		PersonalityRating:       dj.PersonalityRating,
		ReviewCount:             dj.ReviewCount,
		WouldChooseAgainPercent: dj.WouldChooseAgainPercent,
		CreatedAt:               dj.CreatedAt,
	}
}

type PaginatedDJResponse struct {
	Data []DJResponse `json:"data"`
	Pagination
}

// BackfillReport summarizes a rating repair run.
type BackfillReport struct {
	Processed int     `json:"processed"`
	Failed    int     `json:"failed"`
	FailedIDs []int64 `json:"failed_ids,omitempty"`
}
