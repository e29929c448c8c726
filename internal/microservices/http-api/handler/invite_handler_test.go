package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUseInvite_Success(t *testing.T) {
	mockInviteService := new(MockInviteService)
	router := setupRouter()
	NewInviteHandler(mockInviteService).RegisterRoutes(router.Group("", asUser("u2")))

	inviter := "u1"
	mockInviteService.On("Use", mock.Anything, "u2", "RAVER7K2").Return(&dto.InviteUseResponse{
		Code:        "RAVER7K2",
		AccessLevel: models.AccessFull,
		InvitedBy:   &inviter,
	}, nil)

	w := doJSON(router, http.MethodPost, "/invite/use", dto.InviteCodeRequest{Code: "RAVER7K2"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.InviteUseResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(w).Data, &resp))
	assert.Equal(t, models.AccessFull, resp.AccessLevel)
	mockInviteService.AssertExpectations(t)
}

func TestUseInvite_Expired(t *testing.T) {
	mockInviteService := new(MockInviteService)
	router := setupRouter()
	NewInviteHandler(mockInviteService).RegisterRoutes(router.Group("", asUser("u2")))

	mockInviteService.On("Use", mock.Anything, "u2", "OLD00001").Return(nil, service.ErrInviteExpired)

	w := doJSON(router, http.MethodPost, "/invite/use", dto.InviteCodeRequest{Code: "OLD00001"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVITE_EXPIRED", decodeEnvelope(w).Code)
}

func TestValidateInvite_RunsGuard(t *testing.T) {
	mockInviteService := new(MockInviteService)
	router := setupRouter()
	guardCalls := 0
	guard := func(c *gin.Context) {
		guardCalls++
		c.Next()
	}
	NewInviteHandler(mockInviteService).RegisterRoutes(router.Group(""), guard)

	mockInviteService.On("Validate", mock.Anything, "RAVER7K2").
		Return(&dto.InviteValidationResponse{Code: "RAVER7K2", Valid: true, Remaining: 3}, nil)

	w := doJSON(router, http.MethodPost, "/invite/validate", dto.InviteCodeRequest{Code: "RAVER7K2"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, guardCalls)
	mockInviteService.AssertExpectations(t)
}

func TestValidateInvite_GuardCanReject(t *testing.T) {
	mockInviteService := new(MockInviteService)
	router := setupRouter()
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) }
	NewInviteHandler(mockInviteService).RegisterRoutes(router.Group(""), deny)

	w := doJSON(router, http.MethodPost, "/invite/validate", dto.InviteCodeRequest{Code: "RAVER7K2"})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	mockInviteService.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
}

func TestGenerateInvite_QuotaExhausted(t *testing.T) {
	mockInviteService := new(MockInviteService)
	router := setupRouter()
	NewInviteHandler(mockInviteService).RegisterRoutes(router.Group("", asUser("u1")))

	mockInviteService.On("Generate", mock.Anything, "u1").Return(nil, service.ErrQuotaExhausted)

	w := doJSON(router, http.MethodPost, "/invite/generate", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "QUOTA_EXHAUSTED", decodeEnvelope(w).Code)
}

func TestAdminInviteRoutes(t *testing.T) {
	mockInviteService := new(MockInviteService)
	router := setupRouter()
	NewInviteHandler(mockInviteService).RegisterAdminRoutes(router.Group("/admin"))

	req := dto.AdminInviteRequest{Label: "launch", UsageLimit: 50}
	mockInviteService.On("CreateAdmin", mock.Anything, req).
		Return(&dto.InviteCodeResponse{Code: "LAUNCH9QX", UsageLimit: 50, Remaining: 50, IsActive: true}, nil)
	mockInviteService.On("Deactivate", mock.Anything, "NOPE0000").Return(service.ErrInviteNotFound)

	w := doJSON(router, http.MethodPost, "/admin/invite", req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/admin/invite/NOPE0000/deactivate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockInviteService.AssertExpectations(t)
}
