package service

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/saadjs/macrolog/internal/model"
)

const weightReminderDays = 7

type AddWeightInput struct {
	UserID   string
	Weight   float64
	Unit     string
	LoggedAt time.Time
}

func AddWeight(db *sql.DB, in AddWeightInput) (model.WeightLog, error) {
	if err := requireUser(in.UserID); err != nil {
		return model.WeightLog{}, err
	}
	kg, err := convertWeightToKg(in.Weight, in.Unit)
	if err != nil {
		return model.WeightLog{}, err
	}
	if in.LoggedAt.IsZero() {
		in.LoggedAt = nowFunc()
	}
	w := model.WeightLog{
		UserID:   in.UserID,
		WeightKg: kg,
		Date:     in.LoggedAt.Local().Format(time.DateOnly),
		LoggedAt: in.LoggedAt,
	}
	res, err := db.Exec(`INSERT INTO weight_logs(user_id, weight_kg, entry_date, logged_at) VALUES(?, ?, ?, ?)`,
		w.UserID, w.WeightKg, w.Date, formatStamp(w.LoggedAt))
	if err != nil {
		return model.WeightLog{}, fmt.Errorf("add weight: %w", err)
	}
	if w.ID, err = res.LastInsertId(); err != nil {
		return model.WeightLog{}, fmt.Errorf("resolve weight log id: %w", err)
	}
	return w, nil
}

// ListWeights returns the newest weight logs first.
func ListWeights(db *sql.DB, userID string, limit int) ([]model.WeightLog, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 30
	}
	rows, err := db.Query(`
SELECT id, user_id, weight_kg, entry_date, logged_at
FROM weight_logs
WHERE user_id = ?
ORDER BY logged_at DESC, id DESC
LIMIT ?
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	defer rows.Close()

	out := make([]model.WeightLog, 0)
	for rows.Next() {
		var w model.WeightLog
		var loggedAt string
		if err := rows.Scan(&w.ID, &w.UserID, &w.WeightKg, &w.Date, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan weight: %w", err)
		}
		if w.LoggedAt, err = parseStamp(loggedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weights: %w", err)
	}
	return out, nil
}

// WeightReminderDue reports whether the last weigh-in is more than a week
// away from now, counted in whole days rounded up. Without a weigh-in it is
// never due.
func WeightReminderDue(lastUpdated *time.Time, now time.Time) bool {
	if lastUpdated == nil || lastUpdated.IsZero() {
		return false
	}
	days := math.Ceil(math.Abs(now.Sub(*lastUpdated).Hours()) / 24)
	return days > weightReminderDays
}

func latestWeight(db *sql.DB, userID string) (*model.WeightLog, error) {
	logs, err := ListWeights(db, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}
