package command

// root.go defines the root command for djratingctl, the operator tool.
// Commands talk to the database directly with the same config as the API server.

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	envFile  string // optional extra .env loaded before config
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "djratingctl",
	Short: "djratingctl - DJ rating operator tool",
	Long: `djratingctl runs maintenance jobs against the DJ rating database:
- Recompute DJ rating aggregates, once or on a schedule
- Seed task definitions and initialize task progress for users
- Issue admin invite codes
- Hash the operator key for ADMIN_KEY_HASH

Use "djratingctl command --help" to see the flags of a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "extra .env file to load before reading config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")

	rootCmd.AddCommand(ratingsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(inviteCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(migrateCmd)
}

func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ "+format, args...))
}

func warn(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("! "+format, args...))
}
