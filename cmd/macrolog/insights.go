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

var (
	insightsMode string
	insightsDate string
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show calories per bucket and average macros for a day, week or month",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, ok := nutrition.ParseMode(insightsMode)
		if !ok {
			return fmt.Errorf("invalid --mode %q (use day, week or month)", insightsMode)
		}
		ref := time.Now()
		if insightsDate != "" {
			t, err := time.ParseInLocation(time.DateOnly, insightsDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", insightsDate)
			}
			ref = t
		}
		return withUser(func(sqldb *sql.DB, u model.User) error {
			res, err := service.PeriodInsights(sqldb, u.ID, mode, ref, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Degraded {
				fmt.Fprintln(out, "Warning: entries could not be loaded; showing an empty period")
			}
			fmt.Fprintf(out, "Period: %s from %s (%d day(s))\n", res.Rollup.Mode, res.Rollup.Start.Format(time.DateOnly), res.Rollup.Days)
			fmt.Fprintf(out, "Calorie target: %d kcal/day\n", res.CalorieTarget)
			fmt.Fprintln(out, "BUCKET\tKCAL")
			for _, b := range res.Rollup.Buckets {
				fmt.Fprintf(out, "%s\t%.0f\n", b.Label, b.Calories)
			}
			fmt.Fprintln(out, "MACRO\tAVG\tTARGET")
			for _, m := range res.Rollup.MacroAverages {
				fmt.Fprintf(out, "%s\t%.1f\t%.1f\n", m.Name, m.Avg, m.Target)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().StringVar(&insightsMode, "mode", string(nutrition.ModeWeek), "day|week|month")
	insightsCmd.Flags().StringVar(&insightsDate, "date", "", "Reference date YYYY-MM-DD (default today)")
}
