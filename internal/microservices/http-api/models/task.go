package models

import "time"

type TaskCategory string

const (
	TaskBeginner TaskCategory = "beginner"
	TaskAdvanced TaskCategory = "advanced"
	TaskVIP      TaskCategory = "vip"
)

// TaskConfig is the static definition of a task.
type TaskConfig struct {
	TaskCode      string       `json:"task_code" gorm:"primaryKey;type:varchar(64)"`
	Category      TaskCategory `json:"category" gorm:"type:varchar(16);not null"`
	Title         string       `json:"title" gorm:"not null"`
	Description   string       `json:"description" gorm:"type:text;not null;default:''"`
	Target        int          `json:"target" gorm:"not null;check:target > 0"`
	RewardInvites int          `json:"reward_invites" gorm:"not null;default:0;check:reward_invites >= 0"`
	Repeatable    bool         `json:"repeatable" gorm:"not null;default:false"`
	MaxRepeats    int          `json:"max_repeats" gorm:"not null;default:1"`
	IsActive      bool         `json:"is_active" gorm:"not null;default:true"`
	SortOrder     int          `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt     time.Time    `json:"-" gorm:"autoCreateTime"`
	UpdatedAt     time.Time    `json:"-" gorm:"autoUpdateTime"`
}

func (TaskConfig) TableName() string {
	return "task_configs"
}

// HasNextInstance reports whether claiming instance repeatCount spawns another one.
func (c *TaskConfig) HasNextInstance(repeatCount int) bool {
	return c.Repeatable && repeatCount < c.MaxRepeats-1
}

// TaskState replaces the completed/reward_claimed flag pair; a claimed but
// incomplete instance cannot be expressed.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskCompleted TaskState = "completed"
	TaskClaimed   TaskState = "claimed"
)

// UserTask is one progress instance of a task for a user.
type UserTask struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      string     `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_task_instance"`
	TaskCode    string     `json:"task_code" gorm:"type:varchar(64);not null;uniqueIndex:idx_user_task_instance"`
	RepeatCount int        `json:"repeat_count" gorm:"not null;default:0;uniqueIndex:idx_user_task_instance"`
	Progress    int        `json:"progress" gorm:"not null;default:0;check:progress >= 0"`
	State       TaskState  `json:"state" gorm:"type:varchar(16);not null;default:'pending';index"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserTask) TableName() string {
	return "user_tasks"
}

func (t *UserTask) Completed() bool {
	return t.State == TaskCompleted || t.State == TaskClaimed
}

func (t *UserTask) RewardClaimed() bool {
	return t.State == TaskClaimed
}

// SetProgress moves a pending instance to min(value, target) and completes it
// when the target is reached. It returns false when the instance is not pending.
func (t *UserTask) SetProgress(value, target int, now time.Time) bool {
	if t.State != TaskPending {
		return false
	}
	if value < 0 {
		value = 0
	}
	if value > target {
		value = target
	}
	t.Progress = value
	if t.Progress == target {
		t.State = TaskCompleted
		t.CompletedAt = &now
	}
	return true
}

// Claim moves a completed instance to claimed. It returns false from any other state.
func (t *UserTask) Claim(now time.Time) bool {
	if t.State != TaskCompleted {
		return false
	}
	t.State = TaskClaimed
	t.ClaimedAt = &now
	return true
}

// NextInstance is the fresh pending instance that follows t.
func (t *UserTask) NextInstance() *UserTask {
	return &UserTask{
		UserID:      t.UserID,
		TaskCode:    t.TaskCode,
		RepeatCount: t.RepeatCount + 1,
		State:       TaskPending,
	}
}
