package handler

import (
	"net/http"
	"strconv"

	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type DJHandler struct {
	ratingService service.RatingService
	reviewService service.ReviewService
}

func NewDJHandler(ratingService service.RatingService, reviewService service.ReviewService) *DJHandler {
	return &DJHandler{
		ratingService: ratingService,
		reviewService: reviewService,
	}
}

// RegisterRoutes registers the public DJ browsing routes
func (h *DJHandler) RegisterRoutes(router *gin.RouterGroup) {
	djs := router.Group("/djs")
	{
		djs.GET("", h.List)
		djs.GET("/:id", h.Get)
		djs.GET("/:id/reviews", h.ListReviews)
	}
}

// RegisterAdminRoutes registers DJ creation and the aggregate repair trigger
func (h *DJHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/djs", h.Create)
	admin.POST("/ratings/recompute", h.Recompute)
}

// List returns DJs ordered by rating, review count or name
// GET /djs?page=1&page_size=20&sort=overall_rating
func (h *DJHandler) List(c *gin.Context) {
	var query dto.DJListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	resp, err := h.ratingService.ListDJs(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

// Get returns one DJ with its aggregate
// GET /djs/:id
func (h *DJHandler) Get(c *gin.Context) {
	djID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.ratingService.GetDJ(c.Request.Context(), djID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

// ListReviews returns one page of a DJ's reviews
// GET /djs/:id/reviews?page=1&page_size=20
func (h *DJHandler) ListReviews(c *gin.Context) {
	djID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	resp, err := h.reviewService.ListByDJ(c.Request.Context(), djID, query)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

// Create adds a DJ
// POST /admin/djs
func (h *DJHandler) Create(c *gin.Context) {
	var req dto.CreateDJRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	resp, err := h.ratingService.CreateDJ(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, resp)
}

// Recompute rebuilds aggregates for one DJ or, without dj_id, for all of them
// POST /admin/ratings/recompute?dj_id=7
func (h *DJHandler) Recompute(c *gin.Context) {
	var djID *int64
	if raw := c.Query("dj_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondBadRequest(c, "invalid dj_id")
			return
		}
		djID = &id
	}

	report, err := h.ratingService.Backfill(c.Request.Context(), djID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, report)
}
