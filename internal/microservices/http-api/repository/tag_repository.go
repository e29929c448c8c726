package repository

import (
	"context"

	"djrating/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	// UpsertAndBump creates missing tags and increments usage_count for every name.
	UpsertAndBump(ctx context.Context, names []string) ([]models.Tag, error)
	Attach(ctx context.Context, reviewID int64, tagIDs []int64) error
	// ReleaseForReview decrements usage_count for the review's tags. Call before deleting the review.
	ReleaseForReview(ctx context.Context, reviewID int64) error
	ListPopular(ctx context.Context, limit int) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) UpsertAndBump(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag := models.Tag{Name: name, UsageCount: 1}
		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"usage_count": gorm.Expr("tags.usage_count + 1"),
			}),
		}).Create(&tag).Error
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *tagRepository) Attach(ctx context.Context, reviewID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]models.ReviewTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, models.ReviewTag{ReviewID: reviewID, TagID: id})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

func (r *tagRepository) ReleaseForReview(ctx context.Context, reviewID int64) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE tags SET usage_count = usage_count - 1
WHERE usage_count > 0
  AND id IN (SELECT tag_id FROM review_tags WHERE review_id = ?)`, reviewID).Error
}

func (r *tagRepository) ListPopular(ctx context.Context, limit int) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).
		Where("usage_count > 0").
		Order("usage_count DESC").
		Order("name ASC").
		Limit(limit).
		Find(&tags).Error
	return tags, err
}
