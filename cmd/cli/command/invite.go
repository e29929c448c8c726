package command

import (
	"fmt"
	"time"

	"djrating/internal/microservices/http-api/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Invite code administration",
}

var createInviteCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue an invite code that belongs to no user",
	RunE: func(cmd *cobra.Command, args []string) error {
		label, _ := cmd.Flags().GetString("label")
		limit, _ := cmd.Flags().GetInt("limit")
		hours, _ := cmd.Flags().GetInt("hours")

		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		code, err := d.inviteService().CreateAdmin(cmd.Context(), dto.AdminInviteRequest{
			Label:          label,
			UsageLimit:     limit,
			ExpiresInHours: hours,
		})
		if err != nil {
			return fmt.Errorf("failed to create invite code: %w", err)
		}

		success(cmd, "invite code created")
		fmt.Fprintf(cmd.OutOrStdout(), "Code:        %s\n", color.New(color.Bold).Sprint(code.Code))
		fmt.Fprintf(cmd.OutOrStdout(), "Usage limit: %d\n", code.UsageLimit)
		if code.ExpiresAt != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Expires at:  %s\n", code.ExpiresAt.Format(time.RFC3339))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Expires at:  never")
		}
		return nil
	},
}

var deactivateInviteCmd = &cobra.Command{
	Use:   "deactivate [code]",
	Short: "Switch an invite code off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		if err := d.inviteService().Deactivate(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to deactivate %s: %w", args[0], err)
		}
		success(cmd, "invite code %s deactivated", args[0])
		return nil
	},
}

func init() {
	inviteCmd.AddCommand(createInviteCmd)
	inviteCmd.AddCommand(deactivateInviteCmd)

	createInviteCmd.Flags().String("label", "", "prefix hint for the code (letters only are kept)")
	createInviteCmd.Flags().Int("limit", 0, "redemptions allowed (default INVITE_USAGE_LIMIT)")
	createInviteCmd.Flags().Int("hours", 0, "lifetime in hours (default INVITE_CODE_TTL)")
}
