package repository

import (
	"context"
	"errors"
	"fmt"

	"djrating/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Review, error)
	Delete(ctx context.Context, id int64) error
	ListByDJ(ctx context.Context, djID int64, page, pageSize int) ([]models.Review, int64, error)
	ListApprovedScores(ctx context.Context, djID int64) ([]models.ReviewScores, error)
	SumHelpfulReceived(ctx context.Context, userID string) (int64, error)

	// FindInteraction returns nil, nil when the user has no interaction of kind.
	FindInteraction(ctx context.Context, reviewID int64, userID string, kind models.InteractionKind) (*models.ReviewInteraction, error)
	CreateInteraction(ctx context.Context, interaction *models.ReviewInteraction) error
	DeleteInteraction(ctx context.Context, id int64) error
	// AdjustCounter moves the counter for kind by delta (floored at 0) and returns the new value.
	AdjustCounter(ctx context.Context, reviewID int64, kind models.InteractionKind, delta int) (int, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts the review row only; tags are attached separately.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error)
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Tags").
		First(&review, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := forUpdate(r.db.WithContext(ctx)).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByDJ retrieves approved reviews for a DJ, newest first
func (r *reviewRepository) ListByDJ(ctx context.Context, djID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	scope := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("dj_id = ? AND status = ?", djID, models.ReviewApproved)

	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("dj_id = ? AND status = ?", djID, models.ReviewApproved).
		Preload("User").
		Preload("Tags").
		Order("created_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset(pageOffset(page, pageSize)).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) ListApprovedScores(ctx context.Context, djID int64) ([]models.ReviewScores, error) {
	var scores []models.ReviewScores
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("overall_rating, set_rating, performance_rating, personality_rating, would_choose_again").
		Where("dj_id = ? AND status = ?", djID, models.ReviewApproved).
		Order("id ASC").
		Scan(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// SumHelpfulReceived totals helpful votes across all of the user's approved reviews
func (r *reviewRepository) SumHelpfulReceived(ctx context.Context, userID string) (int64, error) {
	var sum struct {
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(SUM(helpful_count), 0) AS total").
		Where("user_id = ? AND status = ?", userID, models.ReviewApproved).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum.Total, nil
}

func (r *reviewRepository) FindInteraction(ctx context.Context, reviewID int64, userID string, kind models.InteractionKind) (*models.ReviewInteraction, error) {
	var interaction models.ReviewInteraction
	err := r.db.WithContext(ctx).
		Where("review_id = ? AND user_id = ? AND kind = ?", reviewID, userID, kind).
		First(&interaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

func (r *reviewRepository) CreateInteraction(ctx context.Context, interaction *models.ReviewInteraction) error {
	return translateError(r.db.WithContext(ctx).Create(interaction).Error)
}

func (r *reviewRepository) DeleteInteraction(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.ReviewInteraction{}, "id = ?", id).Error
}

func (r *reviewRepository) AdjustCounter(ctx context.Context, reviewID int64, kind models.InteractionKind, delta int) (int, error) {
	column := kind.CounterColumn()
	if column == "" {
		return 0, fmt.Errorf("unknown interaction kind %q", kind)
	}

	result := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var value int
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select(column).
		Where("id = ?", reviewID).
		Scan(&value).Error
	return value, err
}
