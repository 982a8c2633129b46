package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/nutrition"
)

type InsertEntryInput struct {
	UserID     string
	Name       string
	Brand      string
	SourceKind nutrition.Kind
	Quantity   float64
	Unit       string
	Nutrients  nutrition.NutrientRecord
	LoggedAt   time.Time
	// Date defaults to the local date of LoggedAt.
	Date string
}

type UpdateEntryInput struct {
	ID        int64
	UserID    string
	Name      string
	Brand     string
	Nutrients nutrition.NutrientRecord
}

const entryColumns = `id, user_id, name, brand, source_kind, quantity, unit, ` + nutrientColumns + `, entry_date, logged_at`

func InsertEntry(db *sql.DB, in InsertEntryInput) (nutrition.LoggedEntry, error) {
	if err := requireUser(in.UserID); err != nil {
		return nutrition.LoggedEntry{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nutrition.LoggedEntry{}, invalidf("entry name is required")
	}
	if !in.SourceKind.Valid() {
		return nutrition.LoggedEntry{}, invalidf("unknown source kind %q", in.SourceKind)
	}
	if err := validateNonNegativeFloat("quantity", in.Quantity); err != nil {
		return nutrition.LoggedEntry{}, err
	}
	if err := validateNutrients(in.Nutrients); err != nil {
		return nutrition.LoggedEntry{}, err
	}
	if in.LoggedAt.IsZero() {
		in.LoggedAt = nowFunc()
	}
	if strings.TrimSpace(in.Date) == "" {
		in.Date = in.LoggedAt.Local().Format(time.DateOnly)
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nutrition.LoggedEntry{}, err
	}

	args := []any{in.UserID, in.Name, strings.TrimSpace(in.Brand), string(in.SourceKind), in.Quantity, in.Unit}
	args = append(args, nutrientArgs(in.Nutrients)...)
	args = append(args, date, formatStamp(in.LoggedAt))
	res, err := db.Exec(`
INSERT INTO entries(user_id, name, brand, source_kind, quantity, unit, `+nutrientColumns+`, entry_date, logged_at)
VALUES(?, ?, ?, ?, ?, ?, `+nutrientPlaceholders+`, ?, ?)
`, args...)
	if err != nil {
		return nutrition.LoggedEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nutrition.LoggedEntry{}, fmt.Errorf("resolve inserted entry id: %w", err)
	}
	return EntryByID(db, in.UserID, id)
}

func EntryByID(db *sql.DB, userID string, id int64) (nutrition.LoggedEntry, error) {
	row := db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nutrition.LoggedEntry{}, fmt.Errorf("entry %d %w", id, ErrNotFound)
	}
	if err != nil {
		return nutrition.LoggedEntry{}, fmt.Errorf("get entry %d: %w", id, err)
	}
	return e, nil
}

// ListEntriesForUserDate returns a day's entries in the order they were logged.
func ListEntriesForUserDate(db *sql.DB, userID, date string) ([]nutrition.LoggedEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	date, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	return queryEntries(db, `SELECT `+entryColumns+` FROM entries WHERE user_id = ? AND entry_date = ? ORDER BY logged_at ASC, id ASC`, userID, date)
}

// ListEntriesForUserSince returns entries logged at or after since.
func ListEntriesForUserSince(db *sql.DB, userID string, since time.Time) ([]nutrition.LoggedEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return queryEntries(db, `SELECT `+entryColumns+` FROM entries WHERE user_id = ? AND logged_at >= ? ORDER BY logged_at ASC, id ASC`, userID, formatStamp(since))
}

// UpdateEntry replaces name, brand and every nutrient field of an entry.
func UpdateEntry(db *sql.DB, in UpdateEntryInput) (nutrition.LoggedEntry, error) {
	if err := requireUser(in.UserID); err != nil {
		return nutrition.LoggedEntry{}, err
	}
	if in.ID <= 0 {
		return nutrition.LoggedEntry{}, invalidf("entry id must be > 0")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nutrition.LoggedEntry{}, invalidf("entry name is required")
	}
	if err := validateNutrients(in.Nutrients); err != nil {
		return nutrition.LoggedEntry{}, err
	}

	args := []any{in.Name, strings.TrimSpace(in.Brand)}
	args = append(args, nutrientArgs(in.Nutrients)...)
	args = append(args, in.ID, in.UserID)
	res, err := db.Exec(`
UPDATE entries
SET name = ?, brand = ?, `+nutrientAssignments+`, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND user_id = ?
`, args...)
	if err != nil {
		return nutrition.LoggedEntry{}, fmt.Errorf("update entry %d: %w", in.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nutrition.LoggedEntry{}, fmt.Errorf("check updated rows: %w", err)
	}
	if affected == 0 {
		return nutrition.LoggedEntry{}, fmt.Errorf("entry %d %w", in.ID, ErrNotFound)
	}
	return EntryByID(db, in.UserID, in.ID)
}

func DeleteEntry(db *sql.DB, userID string, id int64) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if id <= 0 {
		return invalidf("entry id must be > 0")
	}
	res, err := db.Exec(`DELETE FROM entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %d %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (nutrition.LoggedEntry, error) {
	var e nutrition.LoggedEntry
	var kind, loggedAt string
	dest := []any{&e.ID, &e.UserID, &e.Name, &e.Brand, &kind, &e.Quantity, &e.Unit}
	dest = append(dest, nutrientDest(&e.Nutrients)...)
	dest = append(dest, &e.Date, &loggedAt)
	if err := row.Scan(dest...); err != nil {
		return nutrition.LoggedEntry{}, err
	}
	e.SourceKind = nutrition.Kind(kind)
	ts, err := parseStamp(loggedAt)
	if err != nil {
		return nutrition.LoggedEntry{}, err
	}
	e.Timestamp = ts
	return e, nil
}

func queryEntries(db *sql.DB, query string, args ...any) ([]nutrition.LoggedEntry, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	out := make([]nutrition.LoggedEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}
