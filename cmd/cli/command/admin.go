package command

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"djrating/database"
	adminauth "djrating/internal/middleware/auth"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operator credentials",
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key [key]",
	Short: "Print the bcrypt hash to put in ADMIN_KEY_HASH",
	Long: `Hash an operator key for ADMIN_KEY_HASH. The key is read from the
argument, or from the first line of stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no key given")
			}
			key = strings.TrimSpace(line)
		}

		hash, err := adminauth.HashAdminKey(key)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd.Context())
		if err != nil {
			return err
		}
		defer d.close()

		if err := database.RunMigrations(d.db, d.logger); err != nil {
			return err
		}
		success(cmd, "schema is up to date")
		return nil
	},
}

func init() {
	adminCmd.AddCommand(hashKeyCmd)
}
