package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"djrating/internal/metrics"
	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	TaskFirstReview     = "first_review_task"
	TaskComment         = "comment_task"
	TaskShare           = "share_task"
	TaskReviewMaster    = "review_master_task"
	TaskHelpfulReceived = "helpful_received_task"
	TaskInviteActive    = "invite_active_user_task"
	TaskWeeklyReviewer  = "weekly_reviewer_task"
)

// DefaultTaskConfigs is the built-in task catalog.
func DefaultTaskConfigs() []models.TaskConfig {
	return []models.TaskConfig{
		{TaskCode: TaskFirstReview, Category: models.TaskBeginner, Title: "Write your first review", Description: "Review any DJ you have seen live.", Target: 1, RewardInvites: 1, MaxRepeats: 1, IsActive: true, SortOrder: 10},
		{TaskCode: TaskComment, Category: models.TaskBeginner, Title: "Join the conversation", Description: "Post 3 comments on reviews.", Target: 3, RewardInvites: 1, MaxRepeats: 1, IsActive: true, SortOrder: 20},
		{TaskCode: TaskShare, Category: models.TaskBeginner, Title: "Share a DJ", Description: "Share a DJ page with a friend.", Target: 1, RewardInvites: 1, MaxRepeats: 1, IsActive: true, SortOrder: 30},
		{TaskCode: TaskReviewMaster, Category: models.TaskAdvanced, Title: "Review master", Description: "Write 5 reviews.", Target: 5, RewardInvites: 2, MaxRepeats: 1, IsActive: true, SortOrder: 40},
		{TaskCode: TaskHelpfulReceived, Category: models.TaskAdvanced, Title: "Trusted voice", Description: "Collect 10 helpful votes across your reviews.", Target: 10, RewardInvites: 2, MaxRepeats: 1, IsActive: true, SortOrder: 50},
		{TaskCode: TaskInviteActive, Category: models.TaskVIP, Title: "Bring an active friend", Description: "A friend you invited writes their first review.", Target: 1, RewardInvites: 2, Repeatable: true, MaxRepeats: 10, IsActive: true, SortOrder: 60},
		{TaskCode: TaskWeeklyReviewer, Category: models.TaskVIP, Title: "Regular reviewer", Description: "Write 3 more reviews.", Target: 3, RewardInvites: 1, Repeatable: true, MaxRepeats: 5, IsActive: true, SortOrder: 70},
	}
}

// TaskService drives the per-user task state machine. It keeps no state of its
// own; every call works against the store it was built with.
type TaskService interface {
	SeedConfigs(ctx context.Context, configs []models.TaskConfig) error
	InitUserTasks(ctx context.Context, userID string) error
	// SetProgress overwrites progress with min(value, target). It returns nil, nil
	// when the user has no open instance of the task.
	SetProgress(ctx context.Context, userID, taskCode string, value int) (*models.UserTask, error)
	// IncrementProgress adds delta, capped at target, with the same eligibility as SetProgress.
	IncrementProgress(ctx context.Context, userID, taskCode string, delta int) (*models.UserTask, error)
	ClaimReward(ctx context.Context, userID, taskCode string) (*dto.ClaimRewardResponse, error)
	ListUserTasks(ctx context.Context, userID string) ([]dto.UserTaskResponse, error)
}

type taskService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewTaskService(store repository.Store, logger *zap.Logger) TaskService {
	return &taskService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *taskService) SeedConfigs(ctx context.Context, configs []models.TaskConfig) error {
	for i := range configs {
		cfg := configs[i]
		if cfg.Target <= 0 {
			return validationError(fmt.Sprintf("task %s: target must be positive", cfg.TaskCode))
		}
		if cfg.MaxRepeats < 1 {
			cfg.MaxRepeats = 1
		}
		if err := s.store.Tasks().UpsertConfig(ctx, &cfg); err != nil {
			return fmt.Errorf("upsert task config %s: %w", cfg.TaskCode, err)
		}
	}
	return nil
}

func (s *taskService) InitUserTasks(ctx context.Context, userID string) error {
	configs, err := s.store.Tasks().ListConfigs(ctx, true)
	if err != nil {
		return fmt.Errorf("list task configs: %w", err)
	}
	codes := make([]string, 0, len(configs))
	for _, cfg := range configs {
		codes = append(codes, cfg.TaskCode)
	}
	return s.store.Tasks().EnsureInstances(ctx, userID, codes)
}

func (s *taskService) SetProgress(ctx context.Context, userID, taskCode string, value int) (*models.UserTask, error) {
	if value < 0 {
		return nil, validationError("progress cannot be negative")
	}
	return s.advance(ctx, userID, taskCode, func(int) int { return value })
}

func (s *taskService) IncrementProgress(ctx context.Context, userID, taskCode string, delta int) (*models.UserTask, error) {
	if delta <= 0 {
		return nil, validationError("progress delta must be positive")
	}
	return s.advance(ctx, userID, taskCode, func(current int) int { return current + delta })
}

func (s *taskService) advance(ctx context.Context, userID, taskCode string, next func(current int) int) (*models.UserTask, error) {
	var result *models.UserTask
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		cfg, err := tx.Tasks().GetConfig(ctx, taskCode)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load task config %s: %w", taskCode, err)
		}
		if !cfg.IsActive {
			return nil
		}

		task, err := tx.Tasks().FindOpenForUpdate(ctx, userID, taskCode)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock task %s: %w", taskCode, err)
		}

		before := task.Progress
		task.SetProgress(next(task.Progress), cfg.Target, s.now())
		if task.Progress == before && task.State == models.TaskPending {
			result = task
			return nil
		}
		if err := tx.Tasks().SaveProgress(ctx, task); err != nil {
			return fmt.Errorf("save task %s progress: %w", taskCode, err)
		}
		result = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result != nil && result.State == models.TaskCompleted {
		s.logger.Info("task completed",
			zap.String("user_id", userID),
			zap.String("task_code", taskCode),
			zap.Int("repeat_count", result.RepeatCount))
	}
	return result, nil
}

func (s *taskService) ClaimReward(ctx context.Context, userID, taskCode string) (*dto.ClaimRewardResponse, error) {
	resp := &dto.ClaimRewardResponse{TaskCode: taskCode}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		cfg, err := tx.Tasks().GetConfig(ctx, taskCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("load task config %s: %w", taskCode, err)
		}

		task, err := tx.Tasks().FindClaimableForUpdate(ctx, userID, taskCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotClaimable
			}
			return fmt.Errorf("lock task %s: %w", taskCode, err)
		}

		now := s.now()
		if !task.Claim(now) {
			return ErrNotClaimable
		}
		claimed, err := tx.Tasks().MarkClaimed(ctx, task.ID, now)
		if err != nil {
			return fmt.Errorf("mark task %s claimed: %w", taskCode, err)
		}
		if !claimed {
			return ErrNotClaimable
		}

		if cfg.RewardInvites > 0 {
			if err := tx.Users().AddInviteQuota(ctx, userID, cfg.RewardInvites); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return fmt.Errorf("credit invite quota: %w", err)
			}
		}

		if cfg.HasNextInstance(task.RepeatCount) {
			if err := tx.Tasks().CreateInstance(ctx, task.NextInstance()); err != nil {
				return fmt.Errorf("open next instance of %s: %w", taskCode, err)
			}
			resp.NextInstanceOpen = true
		}

		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}

		resp.RewardInvites = cfg.RewardInvites
		resp.RepeatCount = task.RepeatCount
		resp.InviteQuota = user.InviteQuota
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordRewardClaim(taskCode)
	s.logger.Info("task reward claimed",
		zap.String("user_id", userID),
		zap.String("task_code", taskCode),
		zap.Int("reward_invites", resp.RewardInvites))
	return resp, nil
}

func (s *taskService) ListUserTasks(ctx context.Context, userID string) ([]dto.UserTaskResponse, error) {
	if err := s.InitUserTasks(ctx, userID); err != nil {
		return nil, fmt.Errorf("init user tasks: %w", err)
	}

	configs, err := s.store.Tasks().ListConfigs(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list task configs: %w", err)
	}
	tasks, err := s.store.Tasks().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user tasks: %w", err)
	}

	// rows come back in ascending repeat_count, so the last one per code is current
	current := make(map[string]models.UserTask, len(tasks))
	for _, task := range tasks {
		current[task.TaskCode] = task
	}

	out := make([]dto.UserTaskResponse, 0, len(configs))
	for _, cfg := range configs {
		task, ok := current[cfg.TaskCode]
		if !ok {
			continue
		}
		out = append(out, dto.UserTaskResponse{
			TaskCode:      cfg.TaskCode,
			Category:      string(cfg.Category),
			Title:         cfg.Title,
			Description:   cfg.Description,
			Target:        cfg.Target,
			Progress:      task.Progress,
			State:         string(task.State),
			Completed:     task.Completed(),
			RewardClaimed: task.RewardClaimed(),
			Claimable:     task.State == models.TaskCompleted,
			RewardInvites: cfg.RewardInvites,
			Repeatable:    cfg.Repeatable,
			RepeatCount:   task.RepeatCount,
			MaxRepeats:    cfg.MaxRepeats,
			CompletedAt:   task.CompletedAt,
		})
	}
	return out, nil
}
