package macrolog

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage values stored in the database",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Keys: " + strings.Join(service.ConfigKeys(), ", ") + ".",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetConfig(sqldb, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			v, ok, err := service.GetConfig(sqldb, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("config key %q is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		})
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show stored configuration and the effective file settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			stored, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(stored))
			for k := range stored {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(out, "%s\t%s\n", k, stored[k])
			}
			fmt.Fprintf(out, "db_path\t%s\n", cfg.DBPath)
			fmt.Fprintf(out, "env\t%s\n", cfg.Env)
			fmt.Fprintf(out, "openfoodfacts.base_url\t%s\n", cfg.OpenFoodFacts.BaseURL)
			fmt.Fprintf(out, "search.cap\t%d\n", cfg.Search.Cap)
			fmt.Fprintf(out, "search.debounce\t%s\n", cfg.Search.Debounce)
			fmt.Fprintf(out, "server.addr\t%s\n", cfg.Server.Addr)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd, configListCmd)
}
