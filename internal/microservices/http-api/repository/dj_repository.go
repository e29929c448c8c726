package repository

import (
	"context"

	"djrating/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type DJRepository interface {
	Create(ctx context.Context, dj *models.DJ) error
	GetByID(ctx context.Context, id int64) (*models.DJ, error)
	// GetByIDForUpdate serializes concurrent recomputes of the same DJ.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.DJ, error)
	List(ctx context.Context, page, pageSize int, order SortOrder) ([]models.DJ, int64, error)
	ListIDs(ctx context.Context) ([]int64, error)
	UpdateAggregate(ctx context.Context, id int64, agg models.DJAggregate) error
}

type djRepository struct {
	db *gorm.DB
}

func NewDJRepository(db *gorm.DB) DJRepository {
	return &djRepository{db: db}
}

func (r *djRepository) Create(ctx context.Context, dj *models.DJ) error {
	return translateError(r.db.WithContext(ctx).Create(dj).Error)
}

func (r *djRepository) GetByID(ctx context.Context, id int64) (*models.DJ, error) {
	var dj models.DJ
	if err := r.db.WithContext(ctx).First(&dj, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dj, nil
}

func (r *djRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.DJ, error) {
	var dj models.DJ
	if err := forUpdate(r.db.WithContext(ctx)).First(&dj, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dj, nil
}

// List retrieves DJs with pagination; ties break on id for a stable order.
func (r *djRepository) List(ctx context.Context, page, pageSize int, order SortOrder) ([]models.DJ, int64, error) {
	var djs []models.DJ
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.DJ{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order(order.clause()).
		Order("id ASC").
		Limit(pageSize).
		Offset(pageOffset(page, pageSize)).
		Find(&djs).Error
	if err != nil {
		return nil, 0, err
	}

	return djs, total, nil
}

func (r *djRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.DJ{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// UpdateAggregate writes all derived rating fields and bumps the version in a single statement.
func (r *djRepository) UpdateAggregate(ctx context.Context, id int64, agg models.DJAggregate) error {
	result := r.db.WithContext(ctx).Model(&models.DJ{}).Where("id = ?", id).Updates(map[string]any{
		"overall_rating":             agg.OverallRating,
		"set_rating":                 agg.SetRating,
		"performance_rating":         agg.PerformanceRating,
		"personality_rating":         agg.PersonalityRating,
		"review_count":               agg.ReviewCount,
		"would_choose_again_percent": agg.WouldChooseAgainPercent,
		"aggregate_version":          gorm.Expr("aggregate_version + 1"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
