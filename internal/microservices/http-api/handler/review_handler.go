package handler

import (
	"net/http"
	"strconv"

	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes registers review routes. Writes go on the authenticated group.
func (h *ReviewHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/tags/popular", h.PopularTags)

	reviews := protected.Group("/review")
	{
		reviews.POST("/create", h.Create)
		reviews.DELETE("/:id", h.Delete)
		reviews.POST("/:id/helpful", h.interaction(models.InteractionHelpful))
		reviews.POST("/:id/not-helpful", h.interaction(models.InteractionNotHelpful))
		reviews.POST("/:id/report", h.interaction(models.InteractionReport))
	}
}

// Create submits a review and refreshes the DJ's aggregate
// POST /review/create
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, review)
}

// Delete removes the caller's own review
// DELETE /review/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), userID, reviewID); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "review deleted")
}

// interaction toggles the caller's mark of the given kind
// POST /review/:id/{helpful,not-helpful,report}
func (h *ReviewHandler) interaction(kind models.InteractionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		resp, err := h.reviewService.ToggleInteraction(c.Request.Context(), userID, reviewID, kind)
		if err != nil {
			respondError(c, err)
			return
		}

		respond(c, http.StatusOK, resp)
	}
}

// PopularTags lists the most used review tags
// GET /tags/popular?limit=20
func (h *ReviewHandler) PopularTags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	tags, err := h.reviewService.PopularTags(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, tags)
}
