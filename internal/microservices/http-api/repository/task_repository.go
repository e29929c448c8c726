package repository

import (
	"context"
	"time"

	"djrating/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository interface {
	ListConfigs(ctx context.Context, activeOnly bool) ([]models.TaskConfig, error)
	GetConfig(ctx context.Context, code string) (*models.TaskConfig, error)
	UpsertConfig(ctx context.Context, cfg *models.TaskConfig) error

	// EnsureInstances creates the repeat_count=0 instance for each code the user lacks.
	EnsureInstances(ctx context.Context, userID string, codes []string) error
	// FindOpenForUpdate locks the pending instance with the highest repeat_count.
	FindOpenForUpdate(ctx context.Context, userID, code string) (*models.UserTask, error)
	// FindClaimableForUpdate locks the completed, unclaimed instance with the highest repeat_count.
	FindClaimableForUpdate(ctx context.Context, userID, code string) (*models.UserTask, error)
	// SaveProgress persists progress and state for an instance that is still pending.
	SaveProgress(ctx context.Context, task *models.UserTask) error
	// MarkClaimed flips completed to claimed; false means another claim won.
	MarkClaimed(ctx context.Context, id int64, at time.Time) (bool, error)
	CreateInstance(ctx context.Context, task *models.UserTask) error
	ListByUser(ctx context.Context, userID string) ([]models.UserTask, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) ListConfigs(ctx context.Context, activeOnly bool) ([]models.TaskConfig, error) {
	var configs []models.TaskConfig
	query := r.db.WithContext(ctx).Order("sort_order ASC").Order("task_code ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *taskRepository) GetConfig(ctx context.Context, code string) (*models.TaskConfig, error) {
	var cfg models.TaskConfig
	if err := r.db.WithContext(ctx).First(&cfg, "task_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *taskRepository) UpsertConfig(ctx context.Context, cfg *models.TaskConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "task_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category", "title", "description", "target", "reward_invites",
			"repeatable", "max_repeats", "is_active", "sort_order", "updated_at",
		}),
	}).Create(cfg).Error
}

func (r *taskRepository) EnsureInstances(ctx context.Context, userID string, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	tasks := make([]models.UserTask, 0, len(codes))
	for _, code := range codes {
		tasks = append(tasks, models.UserTask{
			UserID:   userID,
			TaskCode: code,
			State:    models.TaskPending,
		})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tasks).Error
}

func (r *taskRepository) FindOpenForUpdate(ctx context.Context, userID, code string) (*models.UserTask, error) {
	return r.lockLatest(ctx, userID, code, models.TaskPending)
}

func (r *taskRepository) FindClaimableForUpdate(ctx context.Context, userID, code string) (*models.UserTask, error) {
	return r.lockLatest(ctx, userID, code, models.TaskCompleted)
}

func (r *taskRepository) lockLatest(ctx context.Context, userID, code string, state models.TaskState) (*models.UserTask, error) {
	var task models.UserTask
	err := forUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND task_code = ? AND state = ?", userID, code, state).
		Order("repeat_count DESC").
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) SaveProgress(ctx context.Context, task *models.UserTask) error {
	result := r.db.WithContext(ctx).Model(&models.UserTask{}).
		Where("id = ? AND state = ?", task.ID, models.TaskPending).
		Updates(map[string]any{
			"progress":     task.Progress,
			"state":        task.State,
			"completed_at": task.CompletedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *taskRepository) MarkClaimed(ctx context.Context, id int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.UserTask{}).
		Where("id = ? AND state = ?", id, models.TaskCompleted).
		Updates(map[string]any{
			"state":      models.TaskClaimed,
			"claimed_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *taskRepository) CreateInstance(ctx context.Context, task *models.UserTask) error {
	return translateError(r.db.WithContext(ctx).Create(task).Error)
}

func (r *taskRepository) ListByUser(ctx context.Context, userID string) ([]models.UserTask, error) {
	var tasks []models.UserTask
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("task_code ASC").
		Order("repeat_count ASC").
		Find(&tasks).Error
	return tasks, err
}
