package service

import (
	"context"
	"testing"
	"time"

	"djrating/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type TaskServiceSuite struct {
	suite.Suite
	store *mockStore
	svc   *taskService
	now   time.Time
	ctx   context.Context
}

func (s *TaskServiceSuite) SetupTest() {
	s.store = newMockStore()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.svc = NewTaskService(s.store, testLogger).(*taskService)
	s.svc.now = func() time.Time { return s.now }
	s.ctx = context.Background()
}

func TestTaskServiceSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceSuite))
}

func (s *TaskServiceSuite) config(code string, target, reward int, repeatable bool, maxRepeats int) *models.TaskConfig {
	cfg := &models.TaskConfig{
		TaskCode:      code,
		Target:        target,
		RewardInvites: reward,
		Repeatable:    repeatable,
		MaxRepeats:    maxRepeats,
		IsActive:      true,
	}
	s.store.tasks.On("GetConfig", mock.Anything, code).Return(cfg, nil)
	return cfg
}

func (s *TaskServiceSuite) TestIncrementCompletesAtTarget() {
	s.config("comment_task", 3, 1, false, 1)
	task := &models.UserTask{ID: 11, UserID: "u1", TaskCode: "comment_task", Progress: 2, State: models.TaskPending}
	s.store.tasks.On("FindOpenForUpdate", mock.Anything, "u1", "comment_task").Return(task, nil)
	s.store.tasks.On("SaveProgress", mock.Anything, task).Return(nil)

	got, err := s.svc.IncrementProgress(s.ctx, "u1", "comment_task", 1)

	s.Require().NoError(err)
	s.Equal(3, got.Progress)
	s.Equal(models.TaskCompleted, got.State)
	s.True(got.Completed())
	s.False(got.RewardClaimed())
	s.Equal(s.now, *got.CompletedAt)
}

func (s *TaskServiceSuite) TestIncrementCapsAtTarget() {
	s.config("review_master_task", 5, 2, false, 1)
	task := &models.UserTask{ID: 3, Progress: 4, State: models.TaskPending}
	s.store.tasks.On("FindOpenForUpdate", mock.Anything, "u1", "review_master_task").Return(task, nil)
	s.store.tasks.On("SaveProgress", mock.Anything, task).Return(nil)

	got, err := s.svc.IncrementProgress(s.ctx, "u1", "review_master_task", 10)

	s.Require().NoError(err)
	s.Equal(5, got.Progress)
}

func (s *TaskServiceSuite) TestSetProgressOverwrites() {
	s.config("helpful_received_task", 10, 2, false, 1)
	task := &models.UserTask{ID: 5, Progress: 6, State: models.TaskPending}
	s.store.tasks.On("FindOpenForUpdate", mock.Anything, "u1", "helpful_received_task").Return(task, nil)
	s.store.tasks.On("SaveProgress", mock.Anything, task).Return(nil)

	got, err := s.svc.SetProgress(s.ctx, "u1", "helpful_received_task", 4)

	s.Require().NoError(err)
	s.Equal(4, got.Progress)
	s.Equal(models.TaskPending, got.State)
}

func (s *TaskServiceSuite) TestSetProgressUnchangedSkipsWrite() {
	s.config("helpful_received_task", 10, 2, false, 1)
	task := &models.UserTask{ID: 5, Progress: 6, State: models.TaskPending}
	s.store.tasks.On("FindOpenForUpdate", mock.Anything, "u1", "helpful_received_task").Return(task, nil)

	_, err := s.svc.SetProgress(s.ctx, "u1", "helpful_received_task", 6)

	s.Require().NoError(err)
	s.store.tasks.AssertNotCalled(s.T(), "SaveProgress", mock.Anything, mock.Anything)
}

func (s *TaskServiceSuite) TestProgressWithoutOpenInstanceIsNoop() {
	s.config("first_review_task", 1, 1, false, 1)
	s.store.tasks.On("FindOpenForUpdate", mock.Anything, "u1", "first_review_task").Return(nil, gorm.ErrRecordNotFound)

	got, err := s.svc.IncrementProgress(s.ctx, "u1", "first_review_task", 1)

	s.NoError(err)
	s.Nil(got)
}

func (s *TaskServiceSuite) TestProgressUnknownTaskIsNoop() {
	s.store.tasks.On("GetConfig", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	got, err := s.svc.IncrementProgress(s.ctx, "u1", "nope", 1)

	s.NoError(err)
	s.Nil(got)
}

func (s *TaskServiceSuite) TestProgressRejectsBadInput() {
	_, err := s.svc.IncrementProgress(s.ctx, "u1", "comment_task", 0)
	s.ErrorIs(err, ErrValidation)

	_, err = s.svc.SetProgress(s.ctx, "u1", "comment_task", -1)
	s.ErrorIs(err, ErrValidation)
}

func (s *TaskServiceSuite) TestClaimCreditsQuotaOnce() {
	s.config("comment_task", 3, 1, false, 1)
	task := &models.UserTask{ID: 11, UserID: "u1", TaskCode: "comment_task", Progress: 3, State: models.TaskCompleted}
	s.store.tasks.On("FindClaimableForUpdate", mock.Anything, "u1", "comment_task").Return(task, nil).Once()
	s.store.tasks.On("MarkClaimed", mock.Anything, int64(11), s.now).Return(true, nil).Once()
	s.store.users.On("AddInviteQuota", mock.Anything, "u1", 1).Return(nil).Once()
	s.store.users.On("FindByID", mock.Anything, "u1").Return(&models.User{ID: "u1", InviteQuota: 1}, nil).Once()

	resp, err := s.svc.ClaimReward(s.ctx, "u1", "comment_task")

	s.Require().NoError(err)
	s.Equal(1, resp.RewardInvites)
	s.Equal(1, resp.InviteQuota)
	s.False(resp.NextInstanceOpen)
	s.Equal(models.TaskClaimed, task.State)

	// the claimed instance is no longer claimable
	s.store.tasks.On("FindClaimableForUpdate", mock.Anything, "u1", "comment_task").Return(nil, gorm.ErrRecordNotFound)

	_, err = s.svc.ClaimReward(s.ctx, "u1", "comment_task")

	s.ErrorIs(err, ErrNotClaimable)
	s.store.users.AssertNumberOfCalls(s.T(), "AddInviteQuota", 1)
	s.store.tasks.AssertNotCalled(s.T(), "CreateInstance", mock.Anything, mock.Anything)
}

func (s *TaskServiceSuite) TestClaimLosingRaceGrantsNothing() {
	s.config("comment_task", 3, 1, false, 1)
	task := &models.UserTask{ID: 11, UserID: "u1", State: models.TaskCompleted}
	s.store.tasks.On("FindClaimableForUpdate", mock.Anything, "u1", "comment_task").Return(task, nil)
	s.store.tasks.On("MarkClaimed", mock.Anything, int64(11), s.now).Return(false, nil)

	_, err := s.svc.ClaimReward(s.ctx, "u1", "comment_task")

	s.ErrorIs(err, ErrNotClaimable)
	s.store.users.AssertNotCalled(s.T(), "AddInviteQuota", mock.Anything, mock.Anything, mock.Anything)
}

func (s *TaskServiceSuite) TestClaimRepeatableOpensNextInstance() {
	s.config("invite_active_user_task", 1, 2, true, 10)
	task := &models.UserTask{ID: 21, UserID: "u1", TaskCode: "invite_active_user_task", RepeatCount: 3, Progress: 1, State: models.TaskCompleted}
	s.store.tasks.On("FindClaimableForUpdate", mock.Anything, "u1", "invite_active_user_task").Return(task, nil)
	s.store.tasks.On("MarkClaimed", mock.Anything, int64(21), s.now).Return(true, nil)
	s.store.users.On("AddInviteQuota", mock.Anything, "u1", 2).Return(nil)
	s.store.tasks.On("CreateInstance", mock.Anything, mock.MatchedBy(func(next *models.UserTask) bool {
		return next.RepeatCount == 4 && next.Progress == 0 && next.State == models.TaskPending &&
			next.UserID == "u1" && next.TaskCode == "invite_active_user_task"
	})).Return(nil)
	s.store.users.On("FindByID", mock.Anything, "u1").Return(&models.User{ID: "u1", InviteQuota: 2}, nil)

	resp, err := s.svc.ClaimReward(s.ctx, "u1", "invite_active_user_task")

	s.Require().NoError(err)
	s.True(resp.NextInstanceOpen)
	s.Equal(3, resp.RepeatCount)
	s.store.assertAll(s.T())
}

func (s *TaskServiceSuite) TestClaimLastRepeatOpensNothing() {
	s.config("weekly_reviewer_task", 3, 1, true, 5)
	task := &models.UserTask{ID: 31, UserID: "u1", RepeatCount: 4, State: models.TaskCompleted}
	s.store.tasks.On("FindClaimableForUpdate", mock.Anything, "u1", "weekly_reviewer_task").Return(task, nil)
	s.store.tasks.On("MarkClaimed", mock.Anything, int64(31), s.now).Return(true, nil)
	s.store.users.On("AddInviteQuota", mock.Anything, "u1", 1).Return(nil)
	s.store.users.On("FindByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil)

	resp, err := s.svc.ClaimReward(s.ctx, "u1", "weekly_reviewer_task")

	s.Require().NoError(err)
	s.False(resp.NextInstanceOpen)
	s.store.tasks.AssertNotCalled(s.T(), "CreateInstance", mock.Anything, mock.Anything)
}

func (s *TaskServiceSuite) TestClaimUnknownTask() {
	s.store.tasks.On("GetConfig", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	_, err := s.svc.ClaimReward(s.ctx, "u1", "nope")

	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *TaskServiceSuite) TestListUserTasksShowsCurrentInstance() {
	configs := []models.TaskConfig{
		{TaskCode: "first_review_task", Category: models.TaskBeginner, Target: 1, RewardInvites: 1, IsActive: true},
		{TaskCode: "invite_active_user_task", Category: models.TaskVIP, Target: 1, RewardInvites: 2, Repeatable: true, MaxRepeats: 10, IsActive: true},
	}
	s.store.tasks.On("ListConfigs", mock.Anything, true).Return(configs, nil)
	s.store.tasks.On("EnsureInstances", mock.Anything, "u1", []string{"first_review_task", "invite_active_user_task"}).Return(nil)
	s.store.tasks.On("ListByUser", mock.Anything, "u1").Return([]models.UserTask{
		{TaskCode: "first_review_task", Progress: 1, State: models.TaskCompleted},
		{TaskCode: "invite_active_user_task", RepeatCount: 0, Progress: 1, State: models.TaskClaimed},
		{TaskCode: "invite_active_user_task", RepeatCount: 1, Progress: 0, State: models.TaskPending},
	}, nil)

	out, err := s.svc.ListUserTasks(s.ctx, "u1")

	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.True(out[0].Claimable)
	s.Equal("pending", out[1].State)
	s.Equal(1, out[1].RepeatCount)
	s.False(out[1].Claimable)
}

func TestDefaultTaskConfigs(t *testing.T) {
	configs := DefaultTaskConfigs()
	byCode := make(map[string]models.TaskConfig, len(configs))
	for _, c := range configs {
		require.Positive(t, c.Target, c.TaskCode)
		byCode[c.TaskCode] = c
	}

	assert.Len(t, byCode, 7)
	assert.True(t, byCode[TaskInviteActive].Repeatable)
	assert.Equal(t, 10, byCode[TaskInviteActive].MaxRepeats)
	assert.Equal(t, 10, byCode[TaskHelpfulReceived].Target)
	assert.False(t, byCode[TaskFirstReview].Repeatable)
}

func TestTaskService_SeedConfigsUpsertsEach(t *testing.T) {
	store := newMockStore()
	svc := NewTaskService(store, testLogger)
	store.tasks.On("UpsertConfig", mock.Anything, mock.Anything).Return(nil)

	err := svc.SeedConfigs(context.Background(), DefaultTaskConfigs())

	require.NoError(t, err)
	store.tasks.AssertNumberOfCalls(t, "UpsertConfig", 7)
}
