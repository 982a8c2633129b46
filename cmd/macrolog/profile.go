package macrolog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage body profile and daily targets",
}

var (
	profWeight     float64
	profWeightUnit string
	profHeightCm   float64
	profHeightFt   float64
	profHeightIn   float64
	profAge        float64
	profSex        string
	profActivity   float64
	profGoal       string
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save your profile and recompute targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		weight := profWeight
		switch strings.ToLower(strings.TrimSpace(profWeightUnit)) {
		case "kg":
		case "lb", "lbs":
			weight = nutrition.LbsToKg(weight)
		default:
			return fmt.Errorf("invalid --weight-unit %q (use kg or lb)", profWeightUnit)
		}
		height := profHeightCm
		if cmd.Flags().Changed("height-ft") || cmd.Flags().Changed("height-in") {
			height = nutrition.FtInToCm(profHeightFt, profHeightIn)
		}
		p := nutrition.Profile{
			WeightKg:       weight,
			HeightCm:       height,
			Age:            profAge,
			Sex:            profSex,
			ActivityFactor: profActivity,
			Goal:           nutrition.Goal(strings.ToLower(strings.TrimSpace(profGoal))),
		}
		return withUser(func(sqldb *sql.DB, u model.User) error {
			sp, err := service.UpdateProfile(sqldb, u.ID, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile for %s\n", u.Name)
			printProfile(cmd, sp)
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show profile and targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUser(func(sqldb *sql.DB, u model.User) error {
			sp, err := service.GetProfile(sqldb, u.ID)
			if err != nil {
				return err
			}
			printProfile(cmd, sp)
			return nil
		})
	},
}

func printProfile(cmd *cobra.Command, sp model.StoredProfile) {
	out := cmd.OutOrStdout()
	p := sp.Profile
	fmt.Fprintf(out, "Weight: %.1f kg (%.1f lb)\n", p.WeightKg, nutrition.KgToLbs(p.WeightKg))
	fmt.Fprintf(out, "Height: %.1f cm\n", p.HeightCm)
	fmt.Fprintf(out, "Age: %.0f | Sex: %s | Activity: %.3g | Goal: %s\n", p.Age, p.Sex, p.ActivityFactor, p.Goal)
	t := sp.Targets
	fmt.Fprintf(out, "Targets: %d kcal | P %dg | C %dg | F %dg\n", t.Calories, t.Protein, t.Carbs, t.Fats)
	fmt.Fprintf(out, "Water goal: %d oz\n", sp.WaterGoalOz)
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileSetCmd, profileShowCmd)

	profileSetCmd.Flags().Float64Var(&profWeight, "weight", 0, "Body weight")
	profileSetCmd.Flags().StringVar(&profWeightUnit, "weight-unit", "kg", "Weight unit: kg|lb")
	profileSetCmd.Flags().Float64Var(&profHeightCm, "height-cm", 0, "Height in centimeters")
	profileSetCmd.Flags().Float64Var(&profHeightFt, "height-ft", 0, "Height feet (with --height-in)")
	profileSetCmd.Flags().Float64Var(&profHeightIn, "height-in", 0, "Height inches (with --height-ft)")
	profileSetCmd.Flags().Float64Var(&profAge, "age", 0, "Age in years")
	profileSetCmd.Flags().StringVar(&profSex, "sex", "", "male|female")
	profileSetCmd.Flags().Float64Var(&profActivity, "activity", nutrition.ActivityModerate, "Activity factor (1.2 sedentary to 1.9 very active)")
	profileSetCmd.Flags().StringVar(&profGoal, "goal", string(nutrition.GoalMaintain), "lose|maintain|gain")
	_ = profileSetCmd.MarkFlagRequired("weight")
	_ = profileSetCmd.MarkFlagRequired("age")
	_ = profileSetCmd.MarkFlagRequired("sex")
}
