package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/macrolog/internal/model"
)

type AddWaterInput struct {
	UserID   string
	Amount   float64
	Unit     string
	LoggedAt time.Time
}

func AddWater(db *sql.DB, in AddWaterInput) (model.WaterLog, error) {
	if err := requireUser(in.UserID); err != nil {
		return model.WaterLog{}, err
	}
	oz, err := toFluidOunces(in.Amount, in.Unit)
	if err != nil {
		return model.WaterLog{}, err
	}
	if in.LoggedAt.IsZero() {
		in.LoggedAt = nowFunc()
	}
	w := model.WaterLog{
		UserID:   in.UserID,
		AmountOz: oz,
		Date:     in.LoggedAt.Local().Format(time.DateOnly),
		LoggedAt: in.LoggedAt,
	}
	res, err := db.Exec(`INSERT INTO water_logs(user_id, amount_oz, entry_date, logged_at) VALUES(?, ?, ?, ?)`,
		w.UserID, w.AmountOz, w.Date, formatStamp(w.LoggedAt))
	if err != nil {
		return model.WaterLog{}, fmt.Errorf("add water: %w", err)
	}
	if w.ID, err = res.LastInsertId(); err != nil {
		return model.WaterLog{}, fmt.Errorf("resolve water log id: %w", err)
	}
	return w, nil
}

// WaterTotal is the fluid ounces logged by the user on date.
func WaterTotal(db *sql.DB, userID, date string) (float64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	date, err := parseDate(date)
	if err != nil {
		return 0, err
	}
	var total float64
	if err := db.QueryRow(`SELECT IFNULL(SUM(amount_oz), 0) FROM water_logs WHERE user_id = ? AND entry_date = ?`, userID, date).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum water for %s: %w", date, err)
	}
	return total, nil
}
