package service

import (
	"context"
	"sync"
	"time"

	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// mockStore hands out the same repository mocks in and out of transactions.
type mockStore struct {
	djs      *mockDJRepo
	reviews  *mockReviewRepo
	tags     *mockTagRepo
	users    *mockUserRepo
	tasks    *mockTaskRepo
	invites  *mockInviteRepo
	comments *mockCommentRepo
	txCount  int
}

func newMockStore() *mockStore {
	return &mockStore{
		djs:      new(mockDJRepo),
		reviews:  new(mockReviewRepo),
		tags:     new(mockTagRepo),
		users:    new(mockUserRepo),
		tasks:    new(mockTaskRepo),
		invites:  new(mockInviteRepo),
		comments: new(mockCommentRepo),
	}
}

func (s *mockStore) DJs() repository.DJRepository           { return s.djs }
func (s *mockStore) Reviews() repository.ReviewRepository   { return s.reviews }
func (s *mockStore) Tags() repository.TagRepository         { return s.tags }
func (s *mockStore) Users() repository.UserRepository       { return s.users }
func (s *mockStore) Tasks() repository.TaskRepository       { return s.tasks }
func (s *mockStore) Invites() repository.InviteRepository   { return s.invites }
func (s *mockStore) Comments() repository.CommentRepository { return s.comments }

func (s *mockStore) WithinTx(_ context.Context, fn func(tx repository.Store) error) error {
	s.txCount++
	return fn(s)
}

func (s *mockStore) assertAll(t mock.TestingT) {
	s.djs.AssertExpectations(t)
	s.reviews.AssertExpectations(t)
	s.tags.AssertExpectations(t)
	s.users.AssertExpectations(t)
	s.tasks.AssertExpectations(t)
	s.invites.AssertExpectations(t)
	s.comments.AssertExpectations(t)
}

type mockDJRepo struct{ mock.Mock }

func (m *mockDJRepo) Create(ctx context.Context, dj *models.DJ) error {
	return m.Called(ctx, dj).Error(0)
}

func (m *mockDJRepo) GetByID(ctx context.Context, id int64) (*models.DJ, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DJ), args.Error(1)
}

func (m *mockDJRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.DJ, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DJ), args.Error(1)
}

func (m *mockDJRepo) List(ctx context.Context, page, pageSize int, order repository.SortOrder) ([]models.DJ, int64, error) {
	args := m.Called(ctx, page, pageSize, order)
	return args.Get(0).([]models.DJ), args.Get(1).(int64), args.Error(2)
}

func (m *mockDJRepo) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockDJRepo) UpdateAggregate(ctx context.Context, id int64, agg models.DJAggregate) error {
	return m.Called(ctx, id, agg).Error(0)
}

type mockReviewRepo struct{ mock.Mock }

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockReviewRepo) ListByDJ(ctx context.Context, djID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, djID, page, pageSize)
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *mockReviewRepo) ListApprovedScores(ctx context.Context, djID int64) ([]models.ReviewScores, error) {
	args := m.Called(ctx, djID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewScores), args.Error(1)
}

func (m *mockReviewRepo) SumHelpfulReceived(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReviewRepo) FindInteraction(ctx context.Context, reviewID int64, userID string, kind models.InteractionKind) (*models.ReviewInteraction, error) {
	args := m.Called(ctx, reviewID, userID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewInteraction), args.Error(1)
}

func (m *mockReviewRepo) CreateInteraction(ctx context.Context, interaction *models.ReviewInteraction) error {
	return m.Called(ctx, interaction).Error(0)
}

func (m *mockReviewRepo) DeleteInteraction(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockReviewRepo) AdjustCounter(ctx context.Context, reviewID int64, kind models.InteractionKind, delta int) (int, error) {
	args := m.Called(ctx, reviewID, kind, delta)
	return args.Int(0), args.Error(1)
}

type mockTagRepo struct{ mock.Mock }

func (m *mockTagRepo) UpsertAndBump(ctx context.Context, names []string) ([]models.Tag, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *mockTagRepo) Attach(ctx context.Context, reviewID int64, tagIDs []int64) error {
	return m.Called(ctx, reviewID, tagIDs).Error(0)
}

func (m *mockTagRepo) ReleaseForReview(ctx context.Context, reviewID int64) error {
	return m.Called(ctx, reviewID).Error(0)
}

func (m *mockTagRepo) ListPopular(ctx context.Context, limit int) ([]models.Tag, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.Tag), args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) FindByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockUserRepo) ConsumeInviteQuota(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) AddInviteQuota(ctx context.Context, id string, amount int) error {
	return m.Called(ctx, id, amount).Error(0)
}

func (m *mockUserRepo) IncrementInvitesAccepted(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepo) GrantAccess(ctx context.Context, id, code string, invitedBy *string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, code, invitedBy, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) MarkReferralCredited(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

type mockTaskRepo struct{ mock.Mock }

func (m *mockTaskRepo) ListConfigs(ctx context.Context, activeOnly bool) ([]models.TaskConfig, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]models.TaskConfig), args.Error(1)
}

func (m *mockTaskRepo) GetConfig(ctx context.Context, code string) (*models.TaskConfig, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskConfig), args.Error(1)
}

func (m *mockTaskRepo) UpsertConfig(ctx context.Context, cfg *models.TaskConfig) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *mockTaskRepo) EnsureInstances(ctx context.Context, userID string, codes []string) error {
	return m.Called(ctx, userID, codes).Error(0)
}

func (m *mockTaskRepo) FindOpenForUpdate(ctx context.Context, userID, code string) (*models.UserTask, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserTask), args.Error(1)
}

func (m *mockTaskRepo) FindClaimableForUpdate(ctx context.Context, userID, code string) (*models.UserTask, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserTask), args.Error(1)
}

func (m *mockTaskRepo) SaveProgress(ctx context.Context, task *models.UserTask) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockTaskRepo) MarkClaimed(ctx context.Context, id int64, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockTaskRepo) CreateInstance(ctx context.Context, task *models.UserTask) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockTaskRepo) ListByUser(ctx context.Context, userID string) ([]models.UserTask, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.UserTask), args.Error(1)
}

type mockInviteRepo struct{ mock.Mock }

func (m *mockInviteRepo) Create(ctx context.Context, code *models.InviteCode) error {
	return m.Called(ctx, code).Error(0)
}

func (m *mockInviteRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockInviteRepo) FindByCode(ctx context.Context, code string) (*models.InviteCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InviteCode), args.Error(1)
}

func (m *mockInviteRepo) FindByCodeForUpdate(ctx context.Context, code string) (*models.InviteCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InviteCode), args.Error(1)
}

func (m *mockInviteRepo) IncrementUsed(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockInviteRepo) ListByCreator(ctx context.Context, creatorID string) ([]models.InviteCode, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).([]models.InviteCode), args.Error(1)
}

func (m *mockInviteRepo) Deactivate(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

type mockCommentRepo struct{ mock.Mock }

func (m *mockCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *mockCommentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *mockCommentRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *mockCommentRepo) ParentID(ctx context.Context, id int64) (*int64, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *mockCommentRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCommentRepo) ListTopLevel(ctx context.Context, reviewID int64, page, pageSize int, order repository.SortOrder) ([]models.Comment, int64, error) {
	args := m.Called(ctx, reviewID, page, pageSize, order)
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *mockCommentRepo) ListReplies(ctx context.Context, reviewID int64, order repository.SortOrder) ([]models.Comment, error) {
	args := m.Called(ctx, reviewID, order)
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *mockCommentRepo) FindVote(ctx context.Context, commentID int64, userID string) (*models.CommentVote, error) {
	args := m.Called(ctx, commentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommentVote), args.Error(1)
}

func (m *mockCommentRepo) CreateVote(ctx context.Context, vote *models.CommentVote) error {
	return m.Called(ctx, vote).Error(0)
}

func (m *mockCommentRepo) UpdateVote(ctx context.Context, id int64, voteType models.VoteType) error {
	return m.Called(ctx, id, voteType).Error(0)
}

func (m *mockCommentRepo) DeleteVote(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCommentRepo) AdjustScore(ctx context.Context, commentID int64, delta int) (int, error) {
	args := m.Called(ctx, commentID, delta)
	return args.Int(0), args.Error(1)
}

// recordingEvents captures task events instead of running them.
type recordingEvents struct {
	reviews   []string
	comments  []string
	helpful   []string
	shares    []string
	referrals []string
}

func (e *recordingEvents) ReviewCreated(userID string)    { e.reviews = append(e.reviews, userID) }
func (e *recordingEvents) CommentCreated(userID string)   { e.comments = append(e.comments, userID) }
func (e *recordingEvents) HelpfulChanged(authorID string) { e.helpful = append(e.helpful, authorID) }
func (e *recordingEvents) Shared(userID string)           { e.shares = append(e.shares, userID) }
func (e *recordingEvents) ReferralActivated(inviterID, inviteeID string) {
	e.referrals = append(e.referrals, inviterID+"<-"+inviteeID)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, djID int64) (*models.DJ, error) {
	args := m.Called(ctx, djID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DJ), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, dj *models.DJ) error {
	return m.Called(ctx, dj).Error(0)
}

// versionedCache keeps the newest snapshot per DJ, as the Redis cache does.
type versionedCache struct {
	mu  sync.Mutex
	djs map[int64]models.DJ
}

func newVersionedCache() *versionedCache {
	return &versionedCache{djs: map[int64]models.DJ{}}
}

func (c *versionedCache) Get(_ context.Context, djID int64) (*models.DJ, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dj, ok := c.djs[djID]
	if !ok {
		return nil, nil
	}
	return &dj, nil
}

func (c *versionedCache) Set(_ context.Context, dj *models.DJ) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.djs[dj.ID]; ok && cur.AggregateVersion >= dj.AggregateVersion {
		return nil
	}
	c.djs[dj.ID] = *dj
	return nil
}

var testLogger = zap.NewNop()
