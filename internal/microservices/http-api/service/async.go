package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"djrating/internal/metrics"

	"go.uber.org/zap"
)

// AsyncRunner executes fire-and-forget jobs. Jobs run detached from the request
// that spawned them; their errors and panics are logged here and never reach
// the caller.
type AsyncRunner struct {
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsyncRunner(logger *zap.Logger, timeout time.Duration) *AsyncRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AsyncRunner{logger: logger, timeout: timeout}
}

// Go starts job in its own goroutine. fields are attached to any failure log.
func (r *AsyncRunner) Go(job string, fn func(ctx context.Context) error, fields ...zap.Field) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx := context.Background()
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		err := r.run(ctx, fn)
		metrics.RecordAsyncJob(job, err)
		if err != nil {
			r.logger.Warn("async job failed",
				append(fields, zap.String("job", job), zap.Error(err))...)
		}
	}()
}

func (r *AsyncRunner) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx)
}

// Wait blocks until every started job has returned.
func (r *AsyncRunner) Wait() {
	r.wg.Wait()
}
