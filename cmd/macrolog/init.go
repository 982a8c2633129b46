package macrolog

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var initUserName string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local macrolog database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			u, created, err := service.EnsureDefaultUser(sqldb, initUserName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized macrolog database at %s\n", cfg.DBPath)
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", u.Name, u.ID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Current user: %s (%s)\n", u.Name, u.ID)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initUserName, "name", "me", "Name of the first user")
}
