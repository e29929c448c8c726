package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"djrating/internal/metrics"
	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minReviewComment = 10
	maxReviewComment = 500
	maxReviewTags    = 5
	maxTagLength     = 20
)

type ReviewService interface {
	Create(ctx context.Context, userID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, userID string, reviewID int64) error
	ListByDJ(ctx context.Context, djID int64, query dto.PageQuery) (*dto.PaginatedReviewResponse, error)
	ToggleInteraction(ctx context.Context, userID string, reviewID int64, kind models.InteractionKind) (*dto.InteractionResponse, error)
	PopularTags(ctx context.Context, limit int) ([]dto.TagResponse, error)
}

type reviewService struct {
	store  repository.Store
	cache  RatingCache
	events TaskEvents
	logger *zap.Logger
	now    func() time.Time
}

func NewReviewService(store repository.Store, cache RatingCache, events TaskEvents, logger *zap.Logger) ReviewService {
	return &reviewService{
		store:  store,
		cache:  cache,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

func validateScore(name string, v int) error {
	if v < 1 || v > 5 {
		return validationError(name + " must be between 1 and 5")
	}
	return nil
}

// normalizeTags trims, drops duplicates, and enforces the count and length limits.
func normalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		name := strings.TrimSpace(t)
		n := utf8.RuneCountInString(name)
		if n == 0 || n > maxTagLength {
			return nil, validationError(fmt.Sprintf("tags must be 1-%d characters", maxTagLength))
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
	}
	if len(tags) > maxReviewTags {
		return nil, validationError(fmt.Sprintf("at most %d tags are allowed", maxReviewTags))
	}
	return tags, nil
}

func (s *reviewService) Create(ctx context.Context, userID string, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"overall_rating", req.OverallRating},
		{"set_rating", req.SetRating},
		{"performance_rating", req.PerformanceRating},
		{"personality_rating", req.PersonalityRating},
	} {
		if err := validateScore(f.name, f.value); err != nil {
			return nil, err
		}
	}
	if req.WouldChooseAgain == nil {
		return nil, validationError("would_choose_again is required")
	}

	comment := strings.TrimSpace(req.Comment)
	if n := utf8.RuneCountInString(comment); n < minReviewComment || n > maxReviewComment {
		return nil, validationError(fmt.Sprintf("comment must be %d-%d characters", minReviewComment, maxReviewComment))
	}

	tagNames, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		DJID:              req.DJID,
		UserID:            userID,
		OverallRating:     req.OverallRating,
		SetRating:         req.SetRating,
		PerformanceRating: req.PerformanceRating,
		PersonalityRating: req.PersonalityRating,
		WouldChooseAgain:  *req.WouldChooseAgain,
		Comment:           comment,
		IsAnonymous:       req.IsAnonymous,
		Status:            models.ReviewApproved,
	}

	var (
		dj        *models.DJ
		inviterID string
	)
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.DJs().GetByID(ctx, req.DJID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDJNotFound
			}
			return fmt.Errorf("load dj: %w", err)
		}

		if err := tx.Reviews().Create(ctx, review); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("insert review: %w", err)
		}

		if len(tagNames) > 0 {
			tags, err := tx.Tags().UpsertAndBump(ctx, tagNames)
			if err != nil {
				return fmt.Errorf("upsert tags: %w", err)
			}
			ids := make([]int64, 0, len(tags))
			for _, t := range tags {
				ids = append(ids, t.ID)
			}
			if err := tx.Tags().Attach(ctx, review.ID, ids); err != nil {
				return fmt.Errorf("attach tags: %w", err)
			}
			review.Tags = tags
		}

		var err error
		inviterID, err = creditReferral(ctx, tx, userID, s.now())
		if err != nil {
			return err
		}

		dj, err = recomputeDJ(ctx, tx, req.DJID)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordRecompute(nil)

	publishDJ(ctx, s.cache, s.logger, dj)
	s.events.ReviewCreated(userID)
	if inviterID != "" {
		s.events.ReferralActivated(inviterID, userID)
	}

	return dto.FromModelToReviewResponse(review), nil
}

// creditReferral stamps the reviewer's one-time referral credit and returns
// the inviter to reward, or "" when there is none or it was already paid.
func creditReferral(ctx context.Context, tx repository.Store, userID string, at time.Time) (string, error) {
	credited, err := tx.Users().MarkReferralCredited(ctx, userID, at)
	if err != nil {
		return "", fmt.Errorf("mark referral credit: %w", err)
	}
	if !credited {
		return "", nil
	}
	reviewer, err := tx.Users().FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load reviewer: %w", err)
	}
	if reviewer.InvitedBy == nil {
		return "", nil
	}
	return *reviewer.InvitedBy, nil
}

func (s *reviewService) Delete(ctx context.Context, userID string, reviewID int64) error {
	var dj *models.DJ
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		review, err := tx.Reviews().GetByIDForUpdate(ctx, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("load review: %w", err)
		}
		if review.UserID != userID {
			return ErrNotOwner
		}
		if err := tx.Tags().ReleaseForReview(ctx, reviewID); err != nil {
			return fmt.Errorf("release tags: %w", err)
		}
		if err := tx.Reviews().Delete(ctx, reviewID); err != nil {
			return fmt.Errorf("delete review: %w", err)
		}

		dj, err = recomputeDJ(ctx, tx, review.DJID)
		return err
	})
	if err != nil {
		return err
	}
	metrics.RecordRecompute(nil)

	publishDJ(ctx, s.cache, s.logger, dj)
	return nil
}

func (s *reviewService) ListByDJ(ctx context.Context, djID int64, query dto.PageQuery) (*dto.PaginatedReviewResponse, error) {
	page, pageSize := query.Normalize()

	if _, err := s.store.DJs().GetByID(ctx, djID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDJNotFound
		}
		return nil, err
	}

	reviews, total, err := s.store.Reviews().ListByDJ(ctx, djID, page, pageSize)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		data = append(data, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	return &dto.PaginatedReviewResponse{
		Data:       data,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil
}

// ToggleInteraction flips the caller's helpful/not-helpful/report mark on a
// review. Interaction counts never feed the rating aggregate.
func (s *reviewService) ToggleInteraction(ctx context.Context, userID string, reviewID int64, kind models.InteractionKind) (*dto.InteractionResponse, error) {
	if kind.CounterColumn() == "" {
		return nil, validationError("unknown interaction")
	}

	resp := &dto.InteractionResponse{ReviewID: reviewID, Kind: string(kind)}
	var authorID string

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		review, err := tx.Reviews().GetByIDForUpdate(ctx, reviewID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("load review: %w", err)
		}
		authorID = review.UserID
		if authorID == userID && kind != models.InteractionReport {
			return ErrOwnReview
		}

		existing, err := tx.Reviews().FindInteraction(ctx, reviewID, userID, kind)
		if err != nil {
			return fmt.Errorf("load interaction: %w", err)
		}

		delta := 1
		if existing == nil {
			err = tx.Reviews().CreateInteraction(ctx, &models.ReviewInteraction{
				ReviewID: reviewID,
				UserID:   userID,
				Kind:     kind,
			})
			resp.Active = true
		} else {
			err = tx.Reviews().DeleteInteraction(ctx, existing.ID)
			delta = -1
		}
		if err != nil {
			return fmt.Errorf("toggle interaction: %w", err)
		}

		resp.Count, err = tx.Reviews().AdjustCounter(ctx, reviewID, kind, delta)
		if err != nil {
			return fmt.Errorf("adjust %s counter: %w", kind, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if kind == models.InteractionHelpful {
		s.events.HelpfulChanged(authorID)
	}
	return resp, nil
}

func (s *reviewService) PopularTags(ctx context.Context, limit int) ([]dto.TagResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	tags, err := s.store.Tags().ListPopular(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, dto.TagResponse{Name: t.Name, UsageCount: t.UsageCount})
	}
	return out, nil
}
