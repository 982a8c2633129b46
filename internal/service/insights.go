package service

import (
	"database/sql"
	"time"

	"github.com/saadjs/macrolog/internal/logger"
	"github.com/saadjs/macrolog/internal/nutrition"
	"go.uber.org/zap"
)

type PeriodInsightsResult struct {
	Rollup        nutrition.RollupResult `json:"rollup"`
	CalorieTarget int                    `json:"calorie_target"`
	Degraded      bool                   `json:"degraded,omitempty"`
}

// PeriodEntries loads the entries a rollup for mode and ref needs. A failed
// read is logged and yields an empty set so the chart still renders.
func PeriodEntries(db *sql.DB, userID string, mode nutrition.Mode, ref time.Time) ([]nutrition.LoggedEntry, bool) {
	entries, err := ListEntriesForUserSince(db, userID, nutrition.PeriodStart(mode, ref))
	if err != nil {
		logger.L().Warn("load insights entries",
			zap.String("user_id", userID),
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		return nil, false
	}
	return entries, true
}

// PeriodInsights rolls up the period containing ref against the user's
// calorie target. When memo is non-nil it is consulted first.
func PeriodInsights(db *sql.DB, userID string, mode nutrition.Mode, ref time.Time, memo *nutrition.RollupMemo) (PeriodInsightsResult, error) {
	if err := requireUser(userID); err != nil {
		return PeriodInsightsResult{}, err
	}
	targets, _, _, err := targetsFor(db, userID)
	if err != nil {
		logger.L().Warn("load targets for insights", zap.String("user_id", userID), zap.Error(err))
		targets = nutrition.DefaultTargets
	}
	entries, ok := PeriodEntries(db, userID, mode, ref)

	res := PeriodInsightsResult{CalorieTarget: targets.Calories, Degraded: !ok}
	if memo != nil {
		res.Rollup = memo.Get(entries, mode, ref, targets.Calories)
	} else {
		res.Rollup = nutrition.Rollup(entries, mode, ref, nutrition.MacroTargetsFromCalories(float64(targets.Calories)))
	}
	return res, nil
}
