package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"djrating/internal/microservices/http-api/dto"
	"djrating/internal/microservices/http-api/service"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Rating aggregate maintenance",
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Recompute DJ rating aggregates from approved reviews",
	Long: `Recompute every DJ's aggregate (or one with --dj) from its approved reviews.
With --schedule the command stays running and repeats on REPAIR_SCHEDULE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		djFlag, _ := cmd.Flags().GetInt64("dj")
		scheduled, _ := cmd.Flags().GetBool("schedule")

		var djID *int64
		if djFlag > 0 {
			djID = &djFlag
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()
		ratings := d.ratingService()

		if !scheduled {
			report, err := ratings.Backfill(ctx, djID)
			if err != nil {
				return fmt.Errorf("backfill failed: %w", err)
			}
			printReport(cmd, report)
			return nil
		}

		return runScheduledBackfill(ctx, cmd, ratings, d.cfg.RepairSchedule, djID, d.logger)
	},
}

// runScheduledBackfill repeats the backfill on schedule until ctx is done.
// Runs never overlap; a tick that arrives mid-run is skipped.
func runScheduledBackfill(ctx context.Context, cmd *cobra.Command, ratings service.RatingService, schedule string, djID *int64, logger *zap.Logger) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		report, err := ratings.Backfill(ctx, djID)
		if err != nil {
			logger.Error("scheduled backfill failed", zap.Error(err))
			return
		}
		printReport(cmd, report)
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	success(cmd, "backfill scheduled (%s), press Ctrl+C to stop", schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func printReport(cmd *cobra.Command, report *dto.BackfillReport) {
	if report.Failed == 0 {
		success(cmd, "recomputed %d dj(s)", report.Processed)
		return
	}
	warn(cmd, "recomputed %d dj(s), %d failed: %v", report.Processed, report.Failed, report.FailedIDs)
}

func init() {
	ratingsCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().Int64("dj", 0, "only recompute this DJ")
	backfillCmd.Flags().Bool("schedule", false, "keep running and repeat on REPAIR_SCHEDULE")
}
