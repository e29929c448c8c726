package repository

import (
	"context"
	"errors"

	"djrating/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Comment, error)
	// ParentID returns the parent of a comment (nil for a root comment).
	ParentID(ctx context.Context, id int64) (*int64, error)
	// Delete removes the comment; replies and votes go with it through ON DELETE CASCADE.
	Delete(ctx context.Context, id int64) error
	ListTopLevel(ctx context.Context, reviewID int64, page, pageSize int, order SortOrder) ([]models.Comment, int64, error)
	ListReplies(ctx context.Context, reviewID int64, order SortOrder) ([]models.Comment, error)

	// FindVote returns nil, nil when the user has not voted.
	FindVote(ctx context.Context, commentID int64, userID string) (*models.CommentVote, error)
	CreateVote(ctx context.Context, vote *models.CommentVote) error
	UpdateVote(ctx context.Context, id int64, voteType models.VoteType) error
	DeleteVote(ctx context.Context, id int64) error
	// AdjustScore adds delta to vote_score and returns the new score.
	AdjustScore(ctx context.Context, commentID int64, delta int) (int, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create a new comment
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("User", "Review", "Parent").Create(comment).Error
}

// GetByID retrieves a comment by its ID
func (r *commentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).
		Preload("User").
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := forUpdate(r.db.WithContext(ctx)).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ParentID(ctx context.Context, id int64) (*int64, error) {
	var row struct {
		ParentCommentID *int64
	}
	result := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("parent_comment_id").
		Where("id = ?", id).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return row.ParentCommentID, nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTopLevel retrieves root comments for a review with pagination
func (r *commentRepository) ListTopLevel(ctx context.Context, reviewID int64, page, pageSize int, order SortOrder) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("review_id = ? AND parent_comment_id IS NULL", reviewID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Where("review_id = ? AND parent_comment_id IS NULL", reviewID).
		Preload("User").
		Order(order.clause()).
		Order("id ASC").
		Limit(pageSize).
		Offset(pageOffset(page, pageSize)).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// ListReplies loads every reply under a review, unpaginated
func (r *commentRepository) ListReplies(ctx context.Context, reviewID int64, order SortOrder) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("review_id = ? AND parent_comment_id IS NOT NULL", reviewID).
		Preload("User").
		Order(order.clause()).
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) FindVote(ctx context.Context, commentID int64, userID string) (*models.CommentVote, error) {
	var vote models.CommentVote
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *commentRepository) CreateVote(ctx context.Context, vote *models.CommentVote) error {
	return translateError(r.db.WithContext(ctx).Omit("Comment").Create(vote).Error)
}

func (r *commentRepository) UpdateVote(ctx context.Context, id int64, voteType models.VoteType) error {
	return r.db.WithContext(ctx).Model(&models.CommentVote{}).
		Where("id = ?", id).
		Update("vote_type", voteType).Error
}

func (r *commentRepository) DeleteVote(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.CommentVote{}, "id = ?", id).Error
}

func (r *commentRepository) AdjustScore(ctx context.Context, commentID int64, delta int) (int, error) {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", commentID).
		UpdateColumn("vote_score", gorm.Expr("vote_score + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var score int
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("vote_score").
		Where("id = ?", commentID).
		Scan(&score).Error
	return score, err
}
