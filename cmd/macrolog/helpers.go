package macrolog

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/app"
	"github.com/saadjs/macrolog/internal/db"
	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/provider/openfoodfacts"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

func resolveDBPath() (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return app.DefaultDBPath()
}

// configuredUnit prefers an explicit --unit, then the stored setting for key.
func configuredUnit(cmd *cobra.Command, sqldb *sql.DB, key, flagValue string) (string, error) {
	if cmd.Flags().Changed("unit") {
		return flagValue, nil
	}
	return service.ConfigOr(sqldb, key, flagValue)
}

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.OpenMigrated(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()
	return run(sqldb)
}

// withUser resolves --user, then the configured user, then the stored
// current user.
func withUser(run func(*sql.DB, model.User) error) error {
	return withDB(func(sqldb *sql.DB) error {
		override := userFlag
		if override == "" {
			override = cfg.User
		}
		u, err := service.CurrentUser(sqldb, override)
		if err != nil {
			return err
		}
		return run(sqldb, u)
	})
}

func offClient() *openfoodfacts.Client {
	return &openfoodfacts.Client{BaseURL: cfg.OpenFoodFacts.BaseURL}
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func parseFloatArg(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return v, nil
}

func parseDateTimeOrNow(date, timeStr string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now(), nil
	}
	if date == "" {
		return time.Time{}, fmt.Errorf("--date is required when --time is set")
	}
	if timeStr == "" {
		t, err := time.ParseInLocation(time.DateOnly, date, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
		}
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

func dateOrToday(date string) string {
	if strings.TrimSpace(date) == "" {
		return time.Now().Format(time.DateOnly)
	}
	return strings.TrimSpace(date)
}

func printMacros(w io.Writer, label string, r nutrition.NutrientRecord) {
	fmt.Fprintf(w, "%s: %.0f kcal | P %.1fg | C %.1fg | F %.1fg\n", label, r.Calories, r.Protein, r.Carbs, r.Fats)
}
