package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"djrating/internal/metrics"
	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RatingCache is the snapshot cache in front of DJ reads. Set keeps whichever
// snapshot has the higher AggregateVersion, so a reader that loaded the row
// before a recompute committed cannot replace the recomputed snapshot.
type RatingCache interface {
	Get(ctx context.Context, djID int64) (*models.DJ, error)
	Set(ctx context.Context, dj *models.DJ) error
}

type RatingService interface {
	// Recompute rebuilds one DJ's aggregate from its approved reviews in its own transaction.
	Recompute(ctx context.Context, djID int64) (*models.DJAggregate, error)
	// Backfill recomputes every DJ (or only djID when non-nil) and reports failures
	// without stopping at the first one.
	Backfill(ctx context.Context, djID *int64) (*dto.BackfillReport, error)
	GetDJ(ctx context.Context, djID int64) (*dto.DJResponse, error)
	ListDJs(ctx context.Context, query dto.DJListQuery) (*dto.PaginatedDJResponse, error)
	CreateDJ(ctx context.Context, req dto.CreateDJRequest) (*dto.DJResponse, error)
}

type ratingService struct {
	store  repository.Store
	cache  RatingCache
	logger *zap.Logger
}

func NewRatingService(store repository.Store, cache RatingCache, logger *zap.Logger) RatingService {
	return &ratingService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// recomputeDJ runs inside the caller's transaction and returns the DJ as it
// will be once committed. The DJ row lock serializes concurrent recomputes so
// the last writer saw every committed review, and versions follow commit order.
func recomputeDJ(ctx context.Context, tx repository.Store, djID int64) (*models.DJ, error) {
	dj, err := tx.DJs().GetByIDForUpdate(ctx, djID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDJNotFound
		}
		return nil, fmt.Errorf("lock dj %d: %w", djID, err)
	}

	scores, err := tx.Reviews().ListApprovedScores(ctx, djID)
	if err != nil {
		return nil, fmt.Errorf("load scores for dj %d: %w", djID, err)
	}

	agg := ComputeAggregate(scores)
	if err := tx.DJs().UpdateAggregate(ctx, djID, agg); err != nil {
		return nil, fmt.Errorf("write aggregate for dj %d: %w", djID, err)
	}
	dj.ApplyAggregate(agg)
	dj.AggregateVersion++
	return dj, nil
}

// publishDJ writes the committed snapshot to the cache.
func publishDJ(ctx context.Context, cache RatingCache, logger *zap.Logger, dj *models.DJ) {
	if cache == nil || dj == nil {
		return
	}
	if err := cache.Set(ctx, dj); err != nil {
		logger.Warn("failed to publish dj snapshot", zap.Int64("dj_id", dj.ID), zap.Error(err))
	}
}

func (s *ratingService) Recompute(ctx context.Context, djID int64) (*models.DJAggregate, error) {
	var dj *models.DJ
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		dj, err = recomputeDJ(ctx, tx, djID)
		return err
	})
	metrics.RecordRecompute(err)
	if err != nil {
		return nil, err
	}

	publishDJ(ctx, s.cache, s.logger, dj)
	agg := dj.Aggregate()
	return &agg, nil
}

func (s *ratingService) Backfill(ctx context.Context, djID *int64) (*dto.BackfillReport, error) {
	var ids []int64
	if djID != nil {
		ids = []int64{*djID}
	} else {
		var err error
		ids, err = s.store.DJs().ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list dj ids: %w", err)
		}
	}

	report := &dto.BackfillReport{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := s.Recompute(ctx, id); err != nil {
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, id)
			s.logger.Error("rating recompute failed", zap.Int64("dj_id", id), zap.Error(err))
			continue
		}
		report.Processed++
	}

	s.logger.Info("rating backfill finished",
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (s *ratingService) GetDJ(ctx context.Context, djID int64) (*dto.DJResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, djID)
		if err != nil {
			s.logger.Warn("dj snapshot read failed", zap.Int64("dj_id", djID), zap.Error(err))
		}
		if cached != nil {
			return dto.FromModelToDJResponse(cached), nil
		}
	}

	dj, err := s.store.DJs().GetByID(ctx, djID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDJNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dj); err != nil {
			s.logger.Warn("dj snapshot write failed", zap.Int64("dj_id", djID), zap.Error(err))
		}
	}
	return dto.FromModelToDJResponse(dj), nil
}

var djSortColumns = map[string]repository.SortOrder{
	"overall_rating": {Column: "overall_rating", Desc: true},
	"review_count":   {Column: "review_count", Desc: true},
	"name":           {Column: "name"},
}

func (s *ratingService) ListDJs(ctx context.Context, query dto.DJListQuery) (*dto.PaginatedDJResponse, error) {
	page, pageSize := query.Normalize()

	sortKey := query.Sort
	if sortKey == "" {
		sortKey = "overall_rating"
	}
	order, ok := djSortColumns[sortKey]
	if !ok {
		return nil, validationError("sort must be one of overall_rating, review_count, name")
	}

	djs, total, err := s.store.DJs().List(ctx, page, pageSize, order)
	if err != nil {
		return nil, err
	}

	data := make([]dto.DJResponse, 0, len(djs))
	for i := range djs {
		data = append(data, *dto.FromModelToDJResponse(&djs[i]))
	}
	return &dto.PaginatedDJResponse{
		Data:       data,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil
}

func (s *ratingService) CreateDJ(ctx context.Context, req dto.CreateDJRequest) (*dto.DJResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}

	dj := &models.DJ{
		Name:     name,
		City:     req.City,
		Label:    req.Label,
		Bio:      req.Bio,
		PhotoURL: req.PhotoURL,
	}
	if err := s.store.DJs().Create(ctx, dj); err != nil {
		return nil, err
	}
	return dto.FromModelToDJResponse(dj), nil
}
