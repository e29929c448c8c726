package service

import (
	"context"
	"errors"
	"fmt"

	"djrating/internal/microservices/http-api/repository"

	"go.uber.org/zap"
)

// TaskEvents turns user actions into task progress. Every method returns
// immediately; the updates run on the AsyncRunner and only log on failure.
type TaskEvents interface {
	ReviewCreated(userID string)
	// ReferralActivated credits inviterID once inviteeID's first review is
	// committed. Callers guarantee it fires at most once per invitee.
	ReferralActivated(inviterID, inviteeID string)
	CommentCreated(userID string)
	HelpfulChanged(authorID string)
	Shared(userID string)
}

type taskEvents struct {
	tasks  TaskService
	store  repository.Store
	runner *AsyncRunner
}

func NewTaskEvents(tasks TaskService, store repository.Store, runner *AsyncRunner) TaskEvents {
	return &taskEvents{tasks: tasks, store: store, runner: runner}
}

var reviewTasks = []string{TaskFirstReview, TaskReviewMaster, TaskWeeklyReviewer}

func (e *taskEvents) ReviewCreated(userID string) {
	e.runner.Go("review_tasks", func(ctx context.Context) error {
		var errs []error
		for _, code := range reviewTasks {
			if _, err := e.tasks.IncrementProgress(ctx, userID, code, 1); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", code, err))
			}
		}
		return errors.Join(errs...)
	}, zap.String("user_id", userID))
}

// ReferralActivated runs as its own job so a failure there never touches the
// reviewer's own progress.
func (e *taskEvents) ReferralActivated(inviterID, inviteeID string) {
	e.runner.Go("referral_attribution", func(ctx context.Context) error {
		_, err := e.tasks.IncrementProgress(ctx, inviterID, TaskInviteActive, 1)
		return err
	}, zap.String("user_id", inviterID), zap.String("invitee_id", inviteeID))
}

func (e *taskEvents) CommentCreated(userID string) {
	e.runner.Go("comment_task", func(ctx context.Context) error {
		_, err := e.tasks.IncrementProgress(ctx, userID, TaskComment, 1)
		return err
	}, zap.String("user_id", userID))
}

// HelpfulChanged re-syncs the author's running helpful total with overwrite semantics.
func (e *taskEvents) HelpfulChanged(authorID string) {
	e.runner.Go("helpful_received_task", func(ctx context.Context) error {
		total, err := e.store.Reviews().SumHelpfulReceived(ctx, authorID)
		if err != nil {
			return fmt.Errorf("sum helpful votes: %w", err)
		}
		_, err = e.tasks.SetProgress(ctx, authorID, TaskHelpfulReceived, int(total))
		return err
	}, zap.String("user_id", authorID))
}

func (e *taskEvents) Shared(userID string) {
	e.runner.Go("share_task", func(ctx context.Context) error {
		_, err := e.tasks.IncrementProgress(ctx, userID, TaskShare, 1)
		return err
	}, zap.String("user_id", userID))
}
