package handler

import (
	"net/http"

	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// RegisterRoutes registers comment-related routes
func (h *CommentHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	// Public routes
	public.GET("/review/:id/comments", h.ListByReview) // Comment tree for a review

	// Write routes
	comments := protected.Group("/comment")
	{
		comments.POST("/create", h.Create) // Root comment or reply
		comments.POST("/:id/vote", h.Vote) // Upvote / downvote toggle
		comments.DELETE("/:id", h.Delete)  // Delete a comment (user's own)
	}
}

// Create posts a comment on a review
// POST /comment/create {reviewId, content, parentCommentId?}
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, comment)
}

// Delete deletes a comment with its replies
// DELETE /comment/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "comment deleted")
}

// ListByReview returns root comments with their reply trees
// GET /review/:id/comments?page=1&page_size=20&sort=vote_score&order=desc
func (h *CommentHandler) ListByReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var query dto.CommentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	comments, err := h.commentService.GetReviewComments(c.Request.Context(), reviewID, query)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, comments)
}

// Vote applies an upvote or downvote
// POST /comment/:id/vote {voteType}
func (h *CommentHandler) Vote(c *gin.Context) {
	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.VoteCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	resp, err := h.commentService.Vote(c.Request.Context(), userID, commentID, models.VoteType(req.VoteType))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}
