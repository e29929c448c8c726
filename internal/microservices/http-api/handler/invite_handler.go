package handler

import (
	"net/http"

	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type InviteHandler struct {
	inviteService service.InviteService
}

func NewInviteHandler(inviteService service.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// RegisterRoutes registers the user-facing invite routes. guard runs in front
// of validate and use, which are the endpoints open to code guessing.
func (h *InviteHandler) RegisterRoutes(router *gin.RouterGroup, guard ...gin.HandlerFunc) {
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(guard[:len(guard):len(guard)], handler)
	}

	invites := router.Group("/invite")
	{
		invites.POST("/generate", h.Generate)
		invites.POST("/validate", guarded(h.Validate)...)
		invites.POST("/use", guarded(h.Use)...)
		invites.GET("/mine", h.ListMine)
	}
}

func (h *InviteHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/invite", h.CreateAdmin)
	admin.POST("/invite/:code/deactivate", h.Deactivate)
}

// Generate spends one invite from the caller's quota
// POST /invite/generate
func (h *InviteHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	code, err := h.inviteService.Generate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, code)
}

// Validate reports whether a code can currently be redeemed
// POST /invite/validate {code}
func (h *InviteHandler) Validate(c *gin.Context) {
	var req dto.InviteCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	resp, err := h.inviteService.Validate(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

// Use redeems a code for the caller
// POST /invite/use {code}
func (h *InviteHandler) Use(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.InviteCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	resp, err := h.inviteService.Use(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

// ListMine lists codes the caller has issued
// GET /invite/mine
func (h *InviteHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	codes, err := h.inviteService.ListMine(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, codes)
}

// CreateAdmin issues a code with no creator
// POST /admin/invite
func (h *InviteHandler) CreateAdmin(c *gin.Context) {
	var req dto.AdminInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	code, err := h.inviteService.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, code)
}

// Deactivate switches a code off
// POST /admin/invite/:code/deactivate
func (h *InviteHandler) Deactivate(c *gin.Context) {
	if err := h.inviteService.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "invite code deactivated")
}
