package repository

import (
	"context"
	"time"

	"djrating/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDForUpdate(ctx context.Context, id string) (*models.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error

	// ConsumeInviteQuota spends one quota unit and counts an invite sent.
	// It reports false, without writing, when the quota is already zero.
	ConsumeInviteQuota(ctx context.Context, id string) (bool, error)
	AddInviteQuota(ctx context.Context, id string, amount int) error
	IncrementInvitesAccepted(ctx context.Context, id string) error
	// GrantAccess records an invite redemption. It reports false if the user
	// had already redeemed a code.
	GrantAccess(ctx context.Context, id, code string, invitedBy *string, at time.Time) (bool, error)
	// MarkReferralCredited stamps an invited user's one-time referral credit.
	// It reports false when the user has no inviter or was already credited.
	MarkReferralCredited(ctx context.Context, id string, at time.Time) (bool, error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	// return nil on error so a zero-value user is never mistaken for a hit
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := forUpdate(r.db.WithContext(ctx)).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}

func (r *userRepository) ConsumeInviteQuota(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND invite_quota > 0", id).
		Updates(map[string]any{
			"invite_quota": gorm.Expr("invite_quota - 1"),
			"invites_sent": gorm.Expr("invites_sent + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *userRepository) AddInviteQuota(ctx context.Context, id string, amount int) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("invite_quota", gorm.Expr("invite_quota + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) IncrementInvitesAccepted(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("invites_accepted", gorm.Expr("invites_accepted + 1")).Error
}

func (r *userRepository) GrantAccess(ctx context.Context, id, code string, invitedBy *string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND invite_code_used IS NULL", id).
		Updates(map[string]any{
			"access_level":      models.AccessFull,
			"invite_code_used":  code,
			"invited_by":        invitedBy,
			"access_granted_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *userRepository) MarkReferralCredited(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND invited_by IS NOT NULL AND referral_credited_at IS NULL", id).
		UpdateColumn("referral_credited_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
