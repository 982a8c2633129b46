package service

import (
	"database/sql"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
)

// DaySummary recomputes the day's totals from its entries on every call.
func DaySummary(db *sql.DB, userID, date string) (model.DaySummary, error) {
	if err := requireUser(userID); err != nil {
		return model.DaySummary{}, err
	}
	date, err := parseDate(date)
	if err != nil {
		return model.DaySummary{}, err
	}
	entries, err := ListEntriesForUserDate(db, userID, date)
	if err != nil {
		return model.DaySummary{}, err
	}
	targets, waterGoal, hasProfile, err := targetsFor(db, userID)
	if err != nil {
		return model.DaySummary{}, err
	}
	water, err := WaterTotal(db, userID, date)
	if err != nil {
		return model.DaySummary{}, err
	}
	last, err := latestWeight(db, userID)
	if err != nil {
		return model.DaySummary{}, err
	}

	totals := nutrition.Aggregate(entries)
	s := model.DaySummary{
		UserID:      userID,
		Date:        date,
		Entries:     entries,
		Totals:      totals,
		Targets:     targets,
		Remaining:   nutrition.RemainingFor(targets, totals),
		HasProfile:  hasProfile,
		WaterOz:     water,
		WaterGoalOz: waterGoal,
	}
	if last != nil {
		kg := last.WeightKg
		s.LastWeightKg = &kg
		s.WeightReminder = WeightReminderDue(&last.LoggedAt, nowFunc())
	}
	return s, nil
}
