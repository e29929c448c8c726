package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"djrating/internal/metrics"
	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/models"
	"djrating/internal/microservices/http-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCommentLength = 500

type CommentService interface {
	CreateComment(ctx context.Context, userID string, req dto.CreateCommentDTO) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, userID string, commentID int64) error
	GetReviewComments(ctx context.Context, reviewID int64, query dto.CommentListQuery) (*dto.CommentTreeResponse, error)
	Vote(ctx context.Context, userID string, commentID int64, voteType models.VoteType) (*dto.VoteResponse, error)
}

type commentService struct {
	store  repository.Store
	events TaskEvents
	logger *zap.Logger
}

func NewCommentService(store repository.Store, events TaskEvents, logger *zap.Logger) CommentService {
	return &commentService{
		store:  store,
		events: events,
		logger: logger,
	}
}

// CreateComment posts a root comment or a reply on a review
func (s *commentService) CreateComment(ctx context.Context, userID string, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if n := utf8.RuneCountInString(content); n < 1 || n > maxCommentLength {
		return nil, validationError(fmt.Sprintf("content must be 1-%d characters", maxCommentLength))
	}

	if _, err := s.store.Reviews().GetByID(ctx, req.ReviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	depth := 0
	if req.ParentCommentID != nil {
		parent, err := s.store.Comments().GetByID(ctx, *req.ParentCommentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.ReviewID != req.ReviewID {
			return nil, validationError("parent comment belongs to a different review")
		}

		parentDepth, err := s.depthOf(ctx, parent)
		if err != nil {
			return nil, err
		}
		if parentDepth >= models.MaxCommentDepth-1 {
			return nil, ErrDepthExceeded
		}
		depth = parentDepth + 1
	}

	comment := &models.Comment{
		ReviewID:        req.ReviewID,
		UserID:          userID,
		ParentCommentID: req.ParentCommentID,
		Content:         content,
	}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}

	s.events.CommentCreated(userID)

	// Reload with user data
	created, err := s.store.Comments().GetByID(ctx, comment.ID)
	if err != nil {
		s.logger.Warn("reload comment failed", zap.Int64("comment_id", comment.ID), zap.Error(err))
		created = comment
	}
	return dto.FromModelToCommentResponse(created, depth), nil
}

// depthOf counts hops from c up to its root. The walk stops once the limit
// is reached, so a corrupt parent cycle cannot loop forever.
func (s *commentService) depthOf(ctx context.Context, c *models.Comment) (int, error) {
	depth := 0
	next := c.ParentCommentID
	for next != nil {
		depth++
		if depth >= models.MaxCommentDepth-1 {
			return depth, nil
		}
		parentID, err := s.store.Comments().ParentID(ctx, *next)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrParentNotFound
			}
			return 0, err
		}
		next = parentID
	}
	return depth, nil
}

// DeleteComment removes the caller's own comment along with its replies and votes
func (s *commentService) DeleteComment(ctx context.Context, userID string, commentID int64) error {
	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		comment, err := tx.Comments().GetByIDForUpdate(ctx, commentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}
		if comment.UserID != userID {
			return ErrNotOwner
		}
		return tx.Comments().Delete(ctx, commentID)
	})
}

var commentSortColumns = map[string]string{
	"created_at": "created_at",
	"vote_score": "vote_score",
}

// GetReviewComments returns one page of root comments, each with its reply tree
func (s *commentService) GetReviewComments(ctx context.Context, reviewID int64, query dto.CommentListQuery) (*dto.CommentTreeResponse, error) {
	page, pageSize := query.Normalize()

	sortKey := query.Sort
	if sortKey == "" {
		sortKey = "created_at"
	}
	column, ok := commentSortColumns[sortKey]
	if !ok {
		return nil, validationError("sort must be created_at or vote_score")
	}
	var desc bool
	switch query.Order {
	case "", "desc":
		desc = true
	case "asc":
	default:
		return nil, validationError("order must be asc or desc")
	}
	order := repository.SortOrder{Column: column, Desc: desc}

	if _, err := s.store.Reviews().GetByID(ctx, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	roots, total, err := s.store.Comments().ListTopLevel(ctx, reviewID, page, pageSize, order)
	if err != nil {
		return nil, err
	}
	replies, err := s.store.Comments().ListReplies(ctx, reviewID, order)
	if err != nil {
		return nil, err
	}

	return &dto.CommentTreeResponse{
		Data:       buildCommentTree(roots, replies),
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil
}

// buildCommentTree hangs replies under their roots, keeping the order each
// slice already has. Nodes deeper than the nesting limit are dropped.
func buildCommentTree(roots, replies []models.Comment) []dto.CommentResponse {
	children := make(map[int64][]*models.Comment, len(replies))
	for i := range replies {
		r := &replies[i]
		if r.ParentCommentID == nil {
			continue
		}
		children[*r.ParentCommentID] = append(children[*r.ParentCommentID], r)
	}

	var build func(c *models.Comment, depth int) dto.CommentResponse
	build = func(c *models.Comment, depth int) dto.CommentResponse {
		node := dto.FromModelToCommentResponse(c, depth)
		if depth+1 < models.MaxCommentDepth {
			for _, child := range children[c.ID] {
				node.Replies = append(node.Replies, build(child, depth+1))
			}
		}
		return *node
	}

	tree := make([]dto.CommentResponse, 0, len(roots))
	for i := range roots {
		tree = append(tree, build(&roots[i], 0))
	}
	return tree
}

// Vote applies the caller's vote through the per-user vote state machine and
// adjusts the comment score by the transition's delta in the same transaction.
func (s *commentService) Vote(ctx context.Context, userID string, commentID int64, voteType models.VoteType) (*dto.VoteResponse, error) {
	if !voteType.Valid() {
		return nil, validationError("voteType must be upvote or downvote")
	}

	resp := &dto.VoteResponse{CommentID: commentID}
	var transition models.VoteTransition

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Comments().GetByIDForUpdate(ctx, commentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommentNotFound
			}
			return err
		}

		existing, err := tx.Comments().FindVote(ctx, commentID, userID)
		if err != nil {
			return fmt.Errorf("load vote: %w", err)
		}

		var ok bool
		transition, ok = models.NextVote(models.VoteStateOf(existing), voteType)
		if !ok {
			return validationError("voteType must be upvote or downvote")
		}

		stored, keep := transition.To.VoteType()
		switch {
		case !keep:
			err = tx.Comments().DeleteVote(ctx, existing.ID)
		case existing == nil:
			err = tx.Comments().CreateVote(ctx, &models.CommentVote{
				CommentID: commentID,
				UserID:    userID,
				VoteType:  stored,
			})
		default:
			err = tx.Comments().UpdateVote(ctx, existing.ID, stored)
		}
		if err != nil {
			return fmt.Errorf("store vote: %w", err)
		}

		resp.VoteScore, err = tx.Comments().AdjustScore(ctx, commentID, transition.Delta)
		if err != nil {
			return fmt.Errorf("adjust score: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordVoteTransition(string(transition.From), string(transition.To))
	resp.UserVote = string(transition.To)
	return resp, nil
}
