package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
)

const exportVersion = 1

type ExportEntry struct {
	Name       string                   `json:"name"`
	Brand      string                   `json:"brand,omitempty"`
	SourceKind nutrition.Kind           `json:"source_kind"`
	Quantity   float64                  `json:"quantity"`
	Unit       string                   `json:"unit"`
	Nutrients  nutrition.NutrientRecord `json:"nutrients"`
	Date       string                   `json:"date"`
	LoggedAt   time.Time                `json:"logged_at"`
}

type ExportMeasurement struct {
	Value    float64   `json:"value"`
	LoggedAt time.Time `json:"logged_at"`
}

type ExportLearnedProduct struct {
	Name       string                   `json:"name"`
	Brand      string                   `json:"brand,omitempty"`
	Per100g    nutrition.NutrientRecord `json:"per_100g"`
	UsageCount int                      `json:"usage_count"`
	LastUsedAt *time.Time               `json:"last_used_at,omitempty"`
}

// ExportData is one user's logged history. Water values are fluid ounces and
// weight values kilograms.
type ExportData struct {
	Version    int                    `json:"version"`
	ExportedAt time.Time              `json:"exported_at"`
	UserName   string                 `json:"user_name"`
	Profile    *nutrition.Profile     `json:"profile,omitempty"`
	Entries    []ExportEntry          `json:"entries"`
	Water      []ExportMeasurement    `json:"water"`
	Weights    []ExportMeasurement    `json:"weights"`
	Learned    []ExportLearnedProduct `json:"learned_products"`
}

type ImportMode string

const (
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Entries        int  `json:"entries"`
	Water          int  `json:"water"`
	Weights        int  `json:"weights"`
	Learned        int  `json:"learned_products"`
	SkippedEntries int  `json:"skipped_entries"`
	DryRun         bool `json:"dry_run"`
}

func ExportUserData(db *sql.DB, user model.User) (*ExportData, error) {
	out := &ExportData{
		Version:    exportVersion,
		ExportedAt: nowFunc(),
		UserName:   user.Name,
		Entries:    make([]ExportEntry, 0),
		Water:      make([]ExportMeasurement, 0),
		Weights:    make([]ExportMeasurement, 0),
		Learned:    make([]ExportLearnedProduct, 0),
	}

	sp, err := GetProfile(db, user.ID)
	switch {
	case err == nil:
		out.Profile = &sp.Profile
	case !isNotFound(err):
		return nil, err
	}

	entries, err := ListEntriesForUserSince(db, user.ID, time.Time{})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, ExportEntry{
			Name:       e.Name,
			Brand:      e.Brand,
			SourceKind: e.SourceKind,
			Quantity:   e.Quantity,
			Unit:       e.Unit,
			Nutrients:  e.Nutrients,
			Date:       e.Date,
			LoggedAt:   e.Timestamp,
		})
	}

	if out.Water, err = exportMeasurements(db, `SELECT amount_oz, logged_at FROM water_logs WHERE user_id = ? ORDER BY logged_at ASC, id ASC`, user.ID); err != nil {
		return nil, err
	}
	if out.Weights, err = exportMeasurements(db, `SELECT weight_kg, logged_at FROM weight_logs WHERE user_id = ? ORDER BY logged_at ASC, id ASC`, user.ID); err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT name, brand, `+nutrientColumns+`, usage_count, IFNULL(last_used_at, '') FROM learned_products WHERE user_id = ? ORDER BY name_norm ASC`, user.ID)
	if err != nil {
		return nil, fmt.Errorf("export learned products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p ExportLearnedProduct
		var lastUsed string
		dest := []any{&p.Name, &p.Brand}
		dest = append(dest, nutrientDest(&p.Per100g)...)
		dest = append(dest, &p.UsageCount, &lastUsed)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan learned product export: %w", err)
		}
		if lastUsed != "" {
			t, err := parseStamp(lastUsed)
			if err != nil {
				return nil, err
			}
			p.LastUsedAt = &t
		}
		out.Learned = append(out.Learned, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learned product export: %w", err)
	}
	return out, nil
}

func exportMeasurements(db *sql.DB, query, userID string) ([]ExportMeasurement, error) {
	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("export measurements: %w", err)
	}
	defer rows.Close()
	out := make([]ExportMeasurement, 0)
	for rows.Next() {
		var m ExportMeasurement
		var loggedAt string
		if err := rows.Scan(&m.Value, &loggedAt); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		if m.LoggedAt, err = parseStamp(loggedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurements: %w", err)
	}
	return out, nil
}

// ImportUserData loads an export into userID. Merge skips entries already
// logged with the same name, source and time; replace clears the user's
// history first. The profile is not imported since saving one also records a
// weigh-in.
func ImportUserData(db *sql.DB, userID string, data *ExportData, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{DryRun: opts.DryRun}
	if err := requireUser(userID); err != nil {
		return report, err
	}
	if data == nil {
		return report, invalidf("import data is required")
	}
	if data.Version != exportVersion {
		return report, invalidf("unsupported export version %d", data.Version)
	}
	mode := normalizeImportMode(opts.Mode)
	if mode == "" {
		return report, invalidf("import mode must be merge or replace")
	}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if mode == ImportModeReplace {
		if err := clearUserData(tx, userID); err != nil {
			return report, err
		}
	}

	for i, e := range data.Entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return report, invalidf("entry %d: name is required", i)
		}
		if !e.SourceKind.Valid() {
			return report, invalidf("entry %d: unknown source kind %q", i, e.SourceKind)
		}
		if err := validateNutrients(e.Nutrients); err != nil {
			return report, fmt.Errorf("entry %d: %w", i, err)
		}
		if e.LoggedAt.IsZero() {
			return report, invalidf("entry %d: logged_at is required", i)
		}
		date := e.Date
		if strings.TrimSpace(date) == "" {
			date = e.LoggedAt.Local().Format(time.DateOnly)
		}
		if date, err = parseDate(date); err != nil {
			return report, fmt.Errorf("entry %d: %w", i, err)
		}
		if mode == ImportModeMerge {
			var n int
			if err := tx.QueryRow(`SELECT COUNT(1) FROM entries WHERE user_id = ? AND name = ? AND source_kind = ? AND logged_at = ?`,
				userID, name, string(e.SourceKind), formatStamp(e.LoggedAt)).Scan(&n); err != nil {
				return report, fmt.Errorf("check existing entry: %w", err)
			}
			if n > 0 {
				report.SkippedEntries++
				continue
			}
		}
		args := []any{userID, name, strings.TrimSpace(e.Brand), string(e.SourceKind), e.Quantity, e.Unit}
		args = append(args, nutrientArgs(e.Nutrients)...)
		args = append(args, date, formatStamp(e.LoggedAt))
		if _, err := tx.Exec(`
INSERT INTO entries(user_id, name, brand, source_kind, quantity, unit, `+nutrientColumns+`, entry_date, logged_at)
VALUES(?, ?, ?, ?, ?, ?, `+nutrientPlaceholders+`, ?, ?)
`, args...); err != nil {
			return report, fmt.Errorf("import entry %d: %w", i, err)
		}
		report.Entries++
	}

	if report.Water, err = importMeasurements(tx, "water_logs", "amount_oz", userID, data.Water); err != nil {
		return report, err
	}
	if report.Weights, err = importMeasurements(tx, "weight_logs", "weight_kg", userID, data.Weights); err != nil {
		return report, err
	}

	for _, p := range data.Learned {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		if err := validateNutrients(p.Per100g); err != nil {
			return report, fmt.Errorf("learned product %q: %w", name, err)
		}
		var lastUsed any
		if p.LastUsedAt != nil {
			lastUsed = formatStamp(*p.LastUsedAt)
		}
		args := []any{userID, name, normalizeName(name), strings.TrimSpace(p.Brand)}
		args = append(args, nutrientArgs(p.Per100g)...)
		args = append(args, p.UsageCount, lastUsed)
		if _, err := tx.Exec(`
INSERT INTO learned_products(user_id, name, name_norm, brand, `+nutrientColumns+`, usage_count, last_used_at)
VALUES(?, ?, ?, ?, `+nutrientPlaceholders+`, ?, ?)
ON CONFLICT(user_id, name_norm) DO UPDATE SET
  usage_count=MAX(learned_products.usage_count, excluded.usage_count),
  updated_at=CURRENT_TIMESTAMP
`, args...); err != nil {
			return report, fmt.Errorf("import learned product %q: %w", name, err)
		}
		report.Learned++
	}

	if opts.DryRun {
		return report, nil
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit import: %w", err)
	}
	return report, nil
}

// importMeasurements inserts water or weight rows, skipping instants the
// user already has.
func importMeasurements(tx *sql.Tx, table, column, userID string, items []ExportMeasurement) (int, error) {
	n := 0
	for i, m := range items {
		if err := validatePositiveFloat(column, m.Value); err != nil {
			return n, fmt.Errorf("%s %d: %w", table, i, err)
		}
		if m.LoggedAt.IsZero() {
			return n, invalidf("%s %d: logged_at is required", table, i)
		}
		stamp := formatStamp(m.LoggedAt)
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(1) FROM `+table+` WHERE user_id = ? AND logged_at = ?`, userID, stamp).Scan(&exists); err != nil {
			return n, fmt.Errorf("check existing %s: %w", table, err)
		}
		if exists > 0 {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO `+table+`(user_id, `+column+`, entry_date, logged_at) VALUES(?, ?, ?, ?)`,
			userID, m.Value, m.LoggedAt.Local().Format(time.DateOnly), stamp); err != nil {
			return n, fmt.Errorf("import %s %d: %w", table, i, err)
		}
		n++
	}
	return n, nil
}

func normalizeImportMode(mode ImportMode) ImportMode {
	switch ImportMode(strings.ToLower(strings.TrimSpace(string(mode)))) {
	case "", ImportModeMerge:
		return ImportModeMerge
	case ImportModeReplace:
		return ImportModeReplace
	}
	return ""
}

func clearUserData(tx *sql.Tx, userID string) error {
	for _, table := range []string{"entries", "water_logs", "weight_logs", "learned_products"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
