package macrolog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var weightCmd = &cobra.Command{
	Use:   "weight",
	Short: "Track body weight",
}

var (
	weightUnit  string
	weightLimit int
)

var weightAddCmd = &cobra.Command{
	Use:   "add <value>",
	Short: "Log a weigh-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := parseFloatArg("weight", args[0])
		if err != nil {
			return err
		}
		return withUser(func(sqldb *sql.DB, u model.User) error {
			unit, err := configuredUnit(cmd, sqldb, service.ConfigWeightUnit, weightUnit)
			if err != nil {
				return err
			}
			w, err := service.AddWeight(sqldb, service.AddWeightInput{UserID: u.ID, Weight: value, Unit: unit})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %.1f kg (%.1f lb)\n", w.WeightKg, nutrition.KgToLbs(w.WeightKg))
			return nil
		})
	},
}

var weightListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent weigh-ins, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u model.User) error {
			logs, err := service.ListWeights(sqldb, u.ID, weightLimit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "DATE\tKG\tLB")
			for _, w := range logs {
				fmt.Fprintf(out, "%s\t%.1f\t%.1f\n", w.LoggedAt.Format("2006-01-02 15:04"), w.WeightKg, nutrition.KgToLbs(w.WeightKg))
			}
			var last *time.Time
			if len(logs) > 0 {
				last = &logs[0].LoggedAt
			}
			if service.WeightReminderDue(last, time.Now()) {
				fmt.Fprintln(out, "Reminder: time to log your weight")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(weightCmd)
	weightCmd.AddCommand(weightAddCmd, weightListCmd)
	weightAddCmd.Flags().StringVar(&weightUnit, "unit", "kg", "kg|lb (default from config weight_unit)")
	weightListCmd.Flags().IntVar(&weightLimit, "limit", 30, "Max rows")
}
