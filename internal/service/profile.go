package service

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
)

func validateProfile(p nutrition.Profile) error {
	if err := validatePositiveFloat("weight", p.WeightKg); err != nil {
		return err
	}
	if err := validatePositiveFloat("height", p.HeightCm); err != nil {
		return err
	}
	if err := validatePositiveFloat("age", p.Age); err != nil {
		return err
	}
	if err := validatePositiveFloat("activity factor", p.ActivityFactor); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(p.Sex)) {
	case "male", "female":
	default:
		return invalidf("sex must be male or female")
	}
	switch p.Goal {
	case nutrition.GoalLose, nutrition.GoalMaintain, nutrition.GoalGain:
	default:
		return invalidf("goal must be lose, maintain or gain")
	}
	return nil
}

// SaveProfile upserts the profile with its targets in one transaction. The
// profile weight is also recorded in the weight log. Concurrent saves resolve
// last writer wins.
func SaveProfile(db *sql.DB, userID string, p nutrition.Profile, t nutrition.Targets) (model.StoredProfile, error) {
	if err := requireUser(userID); err != nil {
		return model.StoredProfile{}, err
	}
	if err := validateProfile(p); err != nil {
		return model.StoredProfile{}, err
	}
	p.Sex = strings.ToLower(strings.TrimSpace(p.Sex))
	now := nowFunc()
	waterGoal := nutrition.HydrationGoalOz(nutrition.KgToLbs(p.WeightKg))

	tx, err := db.Begin()
	if err != nil {
		return model.StoredProfile{}, fmt.Errorf("begin profile tx: %w", err)
	}
	_, err = tx.Exec(`
INSERT INTO profiles(user_id, weight_kg, height_cm, age, sex, activity_factor, goal, target_calories, target_protein, target_carbs, target_fats, water_goal_oz, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  weight_kg=excluded.weight_kg,
  height_cm=excluded.height_cm,
  age=excluded.age,
  sex=excluded.sex,
  activity_factor=excluded.activity_factor,
  goal=excluded.goal,
  target_calories=excluded.target_calories,
  target_protein=excluded.target_protein,
  target_carbs=excluded.target_carbs,
  target_fats=excluded.target_fats,
  water_goal_oz=excluded.water_goal_oz,
  updated_at=excluded.updated_at
`, userID, p.WeightKg, p.HeightCm, int(math.Round(p.Age)), p.Sex, p.ActivityFactor, string(p.Goal),
		t.Calories, t.Protein, t.Carbs, t.Fats, waterGoal, formatStamp(now))
	if err != nil {
		_ = tx.Rollback()
		return model.StoredProfile{}, fmt.Errorf("save profile: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO weight_logs(user_id, weight_kg, entry_date, logged_at) VALUES(?, ?, ?, ?)`,
		userID, p.WeightKg, now.Local().Format(time.DateOnly), formatStamp(now)); err != nil {
		_ = tx.Rollback()
		return model.StoredProfile{}, fmt.Errorf("record profile weight: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.StoredProfile{}, fmt.Errorf("commit profile: %w", err)
	}
	return GetProfile(db, userID)
}

// UpdateProfile computes targets for p and saves both.
func UpdateProfile(db *sql.DB, userID string, p nutrition.Profile) (model.StoredProfile, error) {
	if err := validateProfile(p); err != nil {
		return model.StoredProfile{}, err
	}
	return SaveProfile(db, userID, p, nutrition.ComputeTargets(p))
}

// GetProfile returns an ErrNotFound error when the user has no profile.
func GetProfile(db *sql.DB, userID string) (model.StoredProfile, error) {
	if err := requireUser(userID); err != nil {
		return model.StoredProfile{}, err
	}
	sp := model.StoredProfile{UserID: userID}
	var age int
	var goal, updated string
	err := db.QueryRow(`
SELECT weight_kg, height_cm, age, sex, activity_factor, goal, target_calories, target_protein, target_carbs, target_fats, water_goal_oz, updated_at
FROM profiles WHERE user_id = ?
`, userID).Scan(&sp.Profile.WeightKg, &sp.Profile.HeightCm, &age, &sp.Profile.Sex, &sp.Profile.ActivityFactor, &goal,
		&sp.Targets.Calories, &sp.Targets.Protein, &sp.Targets.Carbs, &sp.Targets.Fats, &sp.WaterGoalOz, &updated)
	if err == sql.ErrNoRows {
		return model.StoredProfile{}, fmt.Errorf("profile for user %s %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.StoredProfile{}, fmt.Errorf("get profile: %w", err)
	}
	sp.Profile.Age = float64(age)
	sp.Profile.Goal = nutrition.Goal(goal)
	if sp.UpdatedAt, err = parseStamp(updated); err != nil {
		return model.StoredProfile{}, err
	}
	return sp, nil
}

// targetsFor returns the saved targets, or the defaults when no profile
// exists yet.
func targetsFor(db *sql.DB, userID string) (nutrition.Targets, int, bool, error) {
	sp, err := GetProfile(db, userID)
	if err == nil {
		return sp.Targets, sp.WaterGoalOz, true, nil
	}
	if isNotFound(err) {
		return nutrition.DefaultTargets, nutrition.DefaultWaterGoalOz, false, nil
	}
	return nutrition.Targets{}, 0, false, err
}
