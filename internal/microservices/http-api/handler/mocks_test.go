package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserProfileResponse), args.Error(1)
}

type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) Recompute(ctx context.Context, djID int64) (*models.DJAggregate, error) {
	args := m.Called(ctx, djID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DJAggregate), args.Error(1)
}

func (m *MockRatingService) Backfill(ctx context.Context, djID *int64) (*dto.BackfillReport, error) {
	args := m.Called(ctx, djID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BackfillReport), args.Error(1)
}

func (m *MockRatingService) GetDJ(ctx context.Context, djID int64) (*dto.DJResponse, error) {
	args := m.Called(ctx, djID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DJResponse), args.Error(1)
}

func (m *MockRatingService) ListDJs(ctx context.Context, query dto.DJListQuery) (*dto.PaginatedDJResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedDJResponse), args.Error(1)
}

func (m *MockRatingService) CreateDJ(ctx context.Context, req dto.CreateDJRequest) (*dto.DJResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DJResponse), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Create(ctx context.Context, userID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, userID string, reviewID int64) error {
	return m.Called(ctx, userID, reviewID).Error(0)
}

func (m *MockReviewService) ListByDJ(ctx context.Context, djID int64, query dto.PageQuery) (*dto.PaginatedReviewResponse, error) {
	args := m.Called(ctx, djID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedReviewResponse), args.Error(1)
}

func (m *MockReviewService) ToggleInteraction(ctx context.Context, userID string, reviewID int64, kind models.InteractionKind) (*dto.InteractionResponse, error) {
	args := m.Called(ctx, userID, reviewID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InteractionResponse), args.Error(1)
}

func (m *MockReviewService) PopularTags(ctx context.Context, limit int) ([]dto.TagResponse, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]dto.TagResponse), args.Error(1)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) SeedConfigs(ctx context.Context, configs []models.TaskConfig) error {
	return m.Called(ctx, configs).Error(0)
}

func (m *MockTaskService) InitUserTasks(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockTaskService) SetProgress(ctx context.Context, userID, taskCode string, value int) (*models.UserTask, error) {
	args := m.Called(ctx, userID, taskCode, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserTask), args.Error(1)
}

func (m *MockTaskService) IncrementProgress(ctx context.Context, userID, taskCode string, delta int) (*models.UserTask, error) {
	args := m.Called(ctx, userID, taskCode, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserTask), args.Error(1)
}

func (m *MockTaskService) ClaimReward(ctx context.Context, userID, taskCode string) (*dto.ClaimRewardResponse, error) {
	args := m.Called(ctx, userID, taskCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ClaimRewardResponse), args.Error(1)
}

func (m *MockTaskService) ListUserTasks(ctx context.Context, userID string) ([]dto.UserTaskResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]dto.UserTaskResponse), args.Error(1)
}

type MockTaskEvents struct {
	mock.Mock
}

func (m *MockTaskEvents) ReviewCreated(userID string)    { m.Called(userID) }
func (m *MockTaskEvents) CommentCreated(userID string)   { m.Called(userID) }
func (m *MockTaskEvents) HelpfulChanged(authorID string) { m.Called(authorID) }
func (m *MockTaskEvents) Shared(userID string)           { m.Called(userID) }
func (m *MockTaskEvents) ReferralActivated(inviterID, inviteeID string) {
	m.Called(inviterID, inviteeID)
}

type MockInviteService struct {
	mock.Mock
}

func (m *MockInviteService) Generate(ctx context.Context, userID string) (*dto.InviteCodeResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InviteCodeResponse), args.Error(1)
}

func (m *MockInviteService) CreateAdmin(ctx context.Context, req dto.AdminInviteRequest) (*dto.InviteCodeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InviteCodeResponse), args.Error(1)
}

func (m *MockInviteService) Validate(ctx context.Context, code string) (*dto.InviteValidationResponse, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InviteValidationResponse), args.Error(1)
}

func (m *MockInviteService) Use(ctx context.Context, userID, code string) (*dto.InviteUseResponse, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InviteUseResponse), args.Error(1)
}

func (m *MockInviteService) ListMine(ctx context.Context, userID string) ([]dto.InviteCodeResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]dto.InviteCodeResponse), args.Error(1)
}

func (m *MockInviteService) Deactivate(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) CreateComment(ctx context.Context, userID string, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentResponse), args.Error(1)
}

func (m *MockCommentService) DeleteComment(ctx context.Context, userID string, commentID int64) error {
	return m.Called(ctx, userID, commentID).Error(0)
}

func (m *MockCommentService) GetReviewComments(ctx context.Context, reviewID int64, query dto.CommentListQuery) (*dto.CommentTreeResponse, error) {
	args := m.Called(ctx, reviewID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentTreeResponse), args.Error(1)
}

func (m *MockCommentService) Vote(ctx context.Context, userID string, commentID int64, voteType models.VoteType) (*dto.VoteResponse, error) {
	args := m.Called(ctx, userID, commentID, voteType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VoteResponse), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// asUser stands in for AuthMiddleware.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

func decodeEnvelope(w *httptest.ResponseRecorder) envelope {
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return env
}
