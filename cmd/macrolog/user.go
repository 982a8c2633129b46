package macrolog

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users sharing this database",
}

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			u, err := service.CreateUser(sqldb, args[0])
			if err != nil {
				return err
			}
			if _, ok, err := service.GetConfig(sqldb, service.ConfigCurrentUser); err != nil {
				return err
			} else if !ok {
				if _, err := service.UseUser(sqldb, u.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added user %s (%s)\n", u.Name, u.ID)
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			users, err := service.ListUsers(sqldb)
			if err != nil {
				return err
			}
			current, _, err := service.GetConfig(sqldb, service.ConfigCurrentUser)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tCURRENT")
			for _, u := range users {
				mark := ""
				if u.ID == current {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", u.ID, u.Name, mark)
			}
			return nil
		})
	},
}

var userUseCmd = &cobra.Command{
	Use:   "use <id-or-name>",
	Short: "Make a user the default for later commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			u, err := service.UseUser(sqldb, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Now using %s (%s)\n", u.Name, u.ID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd, userListCmd, userUseCmd)
}
