package command

import (
	"fmt"

	"djrating/internal/microservices/http-api/service"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Task definition and progress maintenance",
}

var seedTasksCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the built-in task definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		configs := service.DefaultTaskConfigs()
		if err := d.taskService().SeedConfigs(cmd.Context(), configs); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}

		for _, tc := range configs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-20s target=%d reward=%d\n", tc.TaskCode, tc.Target, tc.RewardInvites)
		}
		success(cmd, "seeded %d task definitions", len(configs))
		return nil
	},
}

var initUserTasksCmd = &cobra.Command{
	Use:   "init-user [user-id]",
	Short: "Open the first instance of every active task for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		if err := d.taskService().InitUserTasks(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("init failed: %w", err)
		}

		success(cmd, "tasks initialized for %s", args[0])
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(seedTasksCmd)
	tasksCmd.AddCommand(initUserTasksCmd)
}
