package nutrition

import (
	"math"
	"strings"

	"github.com/saadjs/macrolog/internal/logger"
	"go.uber.org/zap"
)

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// Activity factors offered by the profile screen.
const (
	ActivitySedentary = 1.2
	ActivityLight     = 1.375
	ActivityModerate  = 1.55
	ActivityActive    = 1.725
	ActivityAthlete   = 1.9
)

const (
	goalAdjustment = 500

	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9

	lbsPerKgFactor = 0.453592
	cmPerFoot      = 30.48
	cmPerInch      = 2.54

	ozWaterPerLb = 0.6

	// DefaultWaterGoalOz applies when no profile has been saved.
	DefaultWaterGoalOz = 64
)

type Profile struct {
	WeightKg       float64 `json:"weight_kg"`
	HeightCm       float64 `json:"height_cm"`
	Age            float64 `json:"age"`
	Sex            string  `json:"sex"`
	ActivityFactor float64 `json:"activity_factor"`
	Goal           Goal    `json:"goal"`
}

type Targets struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fats     int `json:"fats"`
}

// DefaultTargets is returned whenever a profile cannot produce a number.
var DefaultTargets = Targets{Calories: 2000, Protein: 150, Carbs: 200, Fats: 70}

// ComputeTargets derives daily targets with Mifflin-St Jeor. Non-finite
// inputs fall back to DefaultTargets. Any sex other than male uses the
// female constant; an unrecognized goal is treated as maintain.
func ComputeTargets(p Profile) Targets {
	if !finite(p.WeightKg) || !finite(p.HeightCm) || !finite(p.Age) || !finite(p.ActivityFactor) || p.ActivityFactor <= 0 {
		logger.L().Warn("invalid profile input, using default targets",
			zap.Float64("weight_kg", p.WeightKg),
			zap.Float64("height_cm", p.HeightCm),
			zap.Float64("age", p.Age),
			zap.Float64("activity_factor", p.ActivityFactor),
		)
		return DefaultTargets
	}

	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*p.Age
	if strings.EqualFold(strings.TrimSpace(p.Sex), "male") {
		bmr += 5
	} else {
		bmr -= 161
	}

	calories := int(math.Round(bmr * p.ActivityFactor))
	switch p.Goal {
	case GoalLose:
		calories -= goalAdjustment
	case GoalGain:
		calories += goalAdjustment
	}

	return Targets{
		Calories: calories,
		Protein:  int(math.Round(float64(calories) * 0.3 / kcalPerGramProtein)),
		Carbs:    int(math.Round(float64(calories) * 0.4 / kcalPerGramCarbs)),
		Fats:     int(math.Round(float64(calories) * 0.3 / kcalPerGramFat)),
	}
}

// MacroTargets are the unrounded per-day gram targets the rollup compares
// averages against.
type MacroTargets struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

func MacroTargetsFromCalories(calories float64) MacroTargets {
	return MacroTargets{
		Protein: calories * 0.3 / kcalPerGramProtein,
		Carbs:   calories * 0.4 / kcalPerGramCarbs,
		Fats:    calories * 0.3 / kcalPerGramFat,
	}
}

// HydrationGoalOz is the daily water goal in ounces for a body weight in
// pounds.
func HydrationGoalOz(weightLbs float64) int {
	if !finite(weightLbs) || weightLbs <= 0 {
		return DefaultWaterGoalOz
	}
	return int(math.Round(weightLbs * ozWaterPerLb))
}

func LbsToKg(lbs float64) float64 {
	return lbs * lbsPerKgFactor
}

func KgToLbs(kg float64) float64 {
	return kg / lbsPerKgFactor
}

func FtInToCm(feet, inches float64) float64 {
	return feet*cmPerFoot + inches*cmPerInch
}
