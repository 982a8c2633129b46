package macrolog

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var todayDate string

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's intake, targets, water and reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u model.User) error {
			s, err := service.DaySummary(sqldb, u.ID, dateOrToday(todayDate))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User: %s\n", u.Name)
			fmt.Fprintf(out, "Date: %s\n", s.Date)
			fmt.Fprintf(out, "Entries: %d\n", len(s.Entries))
			printMacros(out, "Intake", s.Totals)
			t := s.Targets
			goalNote := ""
			if !s.HasProfile {
				goalNote = " (defaults; run `macrolog profile set`)"
			}
			fmt.Fprintf(out, "Targets: %d kcal | P %dg | C %dg | F %dg%s\n", t.Calories, t.Protein, t.Carbs, t.Fats, goalNote)
			r := s.Remaining
			fmt.Fprintf(out, "Remaining: %.0f kcal | P %.1fg | C %.1fg | F %.1fg\n", r.Calories, r.Protein, r.Carbs, r.Fats)
			fmt.Fprintf(out, "Water: %.0f / %d oz\n", s.WaterOz, s.WaterGoalOz)
			if s.WeightReminder {
				fmt.Fprintln(out, "Reminder: time to log your weight")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
}
