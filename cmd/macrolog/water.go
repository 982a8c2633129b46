package macrolog

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Track water intake",
}

var (
	waterUnit string
	waterDate string
)

var waterAddCmd = &cobra.Command{
	Use:   "add <amount>",
	Short: "Log a drink",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseFloatArg("amount", args[0])
		if err != nil {
			return err
		}
		return withUser(func(sqldb *sql.DB, u model.User) error {
			unit, err := configuredUnit(cmd, sqldb, service.ConfigWaterUnit, waterUnit)
			if err != nil {
				return err
			}
			w, err := service.AddWater(sqldb, service.AddWaterInput{UserID: u.ID, Amount: amount, Unit: unit})
			if err != nil {
				return err
			}
			total, err := service.WaterTotal(sqldb, u.ID, w.Date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %.1f oz (today: %.1f oz)\n", w.AmountOz, total)
			return nil
		})
	},
}

var waterStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show water intake against the goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u model.User) error {
			s, err := service.DaySummary(sqldb, u.ID, dateOrToday(waterDate))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Water %s: %.1f / %d oz\n", s.Date, s.WaterOz, s.WaterGoalOz)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(waterCmd)
	waterCmd.AddCommand(waterAddCmd, waterStatusCmd)
	waterAddCmd.Flags().StringVar(&waterUnit, "unit", "oz", "oz|ml|l|cup (default from config water_unit)")
	waterStatusCmd.Flags().StringVar(&waterDate, "date", "", "Date YYYY-MM-DD (default today)")
}
