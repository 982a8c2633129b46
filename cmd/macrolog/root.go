package macrolog

import (
	"fmt"
	"os"

	"github.com/saadjs/macrolog/internal/config"
	"github.com/saadjs/macrolog/internal/logger"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	userFlag   string

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "macrolog",
	Short: "macrolog tracks food, macros and hydration from your terminal",
	Long:  "macrolog logs food from barcodes, nutrition labels, a built-in food table and manual entry, and rolls the results up into daily targets and period insights.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		if _, err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
			return err
		}
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default in the user config dir)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User id or name (default: current user)")
}
