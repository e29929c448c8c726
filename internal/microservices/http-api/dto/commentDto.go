package dto

import (
	"time"

	"djrating/internal/microservices/http-api/models"
)

// CreateCommentDTO for creating a comment or a reply
type CreateCommentDTO struct {
	ReviewID        int64  `json:"reviewId" binding:"required,min=1"`
	Content         string `json:"content" binding:"required"`
	ParentCommentID *int64 `json:"parentCommentId" binding:"omitempty,min=1"`
}

// VoteCommentDTO for casting or toggling a vote
type VoteCommentDTO struct {
	VoteType string `json:"voteType" binding:"required,oneof=upvote downvote"`
}

// CommentListQuery is bound from the comment tree query string
type CommentListQuery struct {
	PageQuery
	Sort  string `form:"sort" binding:"omitempty,oneof=created_at vote_score"`
	Order string `form:"order" binding:"omitempty,oneof=asc desc"`
}

// CommentResponse is one node of the comment tree
type CommentResponse struct {
	ID              int64             `json:"id"`
	ReviewID        int64             `json:"review_id"`
	ParentCommentID *int64            `json:"parent_comment_id,omitempty"`
	UserID          string            `json:"user_id"`
	Nickname        string            `json:"nickname"`
	AvatarURL       string            `json:"avatar_url"`
	Content         string            `json:"content"`
	VoteScore       int               `json:"vote_score"`
	Depth           int               `json:"depth"`
	CreatedAt       time.Time         `json:"created_at"`
	Replies         []CommentResponse `json:"replies"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(comment *models.Comment, depth int) *CommentResponse {
	return &CommentResponse{
		ID:              comment.ID,
		ReviewID:        comment.ReviewID,
		ParentCommentID: comment.ParentCommentID,
		UserID:          comment.UserID,
		Nickname:        comment.User.Nickname,
		AvatarURL:       comment.User.AvatarURL,
		Content:         comment.Content,
		VoteScore:       comment.VoteScore,
		Depth:           depth,
		CreatedAt:       comment.CreatedAt,
		Replies:         []CommentResponse{},
	}
}

// CommentTreeResponse holds a page of root comments with their full reply trees
type CommentTreeResponse struct {
	Data []CommentResponse `json:"data"`
	Pagination
}

type VoteResponse struct {
	CommentID int64  `json:"comment_id"`
	VoteScore int    `json:"vote_score"`
	UserVote  string `json:"user_vote"`
}
