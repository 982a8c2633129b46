package macrolog

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "List, correct and delete logged entries",
}

var listDate string

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a day's entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u model.User) error {
			entries, err := service.ListEntriesForUserDate(sqldb, u.ID, dateOrToday(listDate))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tTIME\tNAME\tBRAND\tQTY\tKCAL\tP\tC\tF\tSOURCE")
			for _, e := range entries {
				n := e.Nutrients
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%g %s\t%.0f\t%.1f\t%.1f\t%.1f\t%s\n",
					e.ID, e.Timestamp.Format("15:04"), e.Name, e.Brand, e.Quantity, e.Unit,
					n.Calories, n.Protein, n.Carbs, n.Fats, e.SourceKind)
			}
			return nil
		})
	},
}

var (
	updateName      string
	updateBrand     string
	updateCalories  float64
	updateProtein   float64
	updateCarbs     float64
	updateFats      float64
	updateFiber     float64
	updateSugar     float64
	updateSodium    float64
	updatePotassium float64
)

var entryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Correct an entry's name, brand or nutrients",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withUser(func(sqldb *sql.DB, u model.User) error {
			existing, err := service.EntryByID(sqldb, u.ID, id)
			if err != nil {
				return err
			}
			in := service.UpdateEntryInput{
				ID:        id,
				UserID:    u.ID,
				Name:      existing.Name,
				Brand:     existing.Brand,
				Nutrients: existing.Nutrients,
			}
			flags := cmd.Flags()
			changed := 0
			setString := func(name string, dst *string, v string) {
				if flags.Changed(name) {
					*dst = v
					changed++
				}
			}
			setFloat := func(name string, dst *float64, v float64) {
				if flags.Changed(name) {
					*dst = v
					changed++
				}
			}
			setString("name", &in.Name, updateName)
			setString("brand", &in.Brand, updateBrand)
			setFloat("calories", &in.Nutrients.Calories, updateCalories)
			setFloat("protein", &in.Nutrients.Protein, updateProtein)
			setFloat("carbs", &in.Nutrients.Carbs, updateCarbs)
			setFloat("fats", &in.Nutrients.Fats, updateFats)
			setFloat("fiber", &in.Nutrients.Fiber, updateFiber)
			setFloat("sugar", &in.Nutrients.Sugar, updateSugar)
			setFloat("sodium", &in.Nutrients.Sodium, updateSodium)
			setFloat("potassium", &in.Nutrients.Potassium, updatePotassium)
			if changed == 0 {
				return fmt.Errorf("set at least one flag")
			}
			e, err := service.UpdateEntry(sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %d\n", e.ID)
			return nil
		})
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withUser(func(sqldb *sql.DB, u model.User) error {
			if err := service.DeleteEntry(sqldb, u.ID, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryListCmd, entryUpdateCmd, entryDeleteCmd)

	entryListCmd.Flags().StringVar(&listDate, "date", "", "Date YYYY-MM-DD (default today)")

	entryUpdateCmd.Flags().StringVar(&updateName, "name", "", "Food name")
	entryUpdateCmd.Flags().StringVar(&updateBrand, "brand", "", "Brand")
	entryUpdateCmd.Flags().Float64Var(&updateCalories, "calories", 0, "Calories (kcal)")
	entryUpdateCmd.Flags().Float64Var(&updateProtein, "protein", 0, "Protein grams")
	entryUpdateCmd.Flags().Float64Var(&updateCarbs, "carbs", 0, "Carbs grams")
	entryUpdateCmd.Flags().Float64Var(&updateFats, "fats", 0, "Fat grams")
	entryUpdateCmd.Flags().Float64Var(&updateFiber, "fiber", 0, "Fiber grams")
	entryUpdateCmd.Flags().Float64Var(&updateSugar, "sugar", 0, "Sugar grams")
	entryUpdateCmd.Flags().Float64Var(&updateSodium, "sodium", 0, "Sodium milligrams")
	entryUpdateCmd.Flags().Float64Var(&updatePotassium, "potassium", 0, "Potassium milligrams")
}
