package repository

import (
	"context"

	"djrating/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type InviteRepository interface {
	Create(ctx context.Context, code *models.InviteCode) error
	CodeExists(ctx context.Context, code string) (bool, error)
	FindByCode(ctx context.Context, code string) (*models.InviteCode, error)
	FindByCodeForUpdate(ctx context.Context, code string) (*models.InviteCode, error)
	// IncrementUsed bumps used_count only while it is below usage_limit.
	IncrementUsed(ctx context.Context, id int64) (bool, error)
	ListByCreator(ctx context.Context, creatorID string) ([]models.InviteCode, error)
	Deactivate(ctx context.Context, code string) error
}

type inviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) Create(ctx context.Context, code *models.InviteCode) error {
	return translateError(r.db.WithContext(ctx).Create(code).Error)
}

func (r *inviteRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InviteCode{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *inviteRepository) FindByCode(ctx context.Context, code string) (*models.InviteCode, error) {
	var invite models.InviteCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) FindByCodeForUpdate(ctx context.Context, code string) (*models.InviteCode, error) {
	var invite models.InviteCode
	if err := forUpdate(r.db.WithContext(ctx)).Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) IncrementUsed(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.InviteCode{}).
		Where("id = ? AND used_count < usage_limit", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *inviteRepository) ListByCreator(ctx context.Context, creatorID string) ([]models.InviteCode, error) {
	var codes []models.InviteCode
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&codes).Error
	return codes, err
}

func (r *inviteRepository) Deactivate(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).Model(&models.InviteCode{}).
		Where("code = ?", code).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
