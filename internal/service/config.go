package service

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Keys stored in app_config.
const (
	// ConfigCurrentUser holds the active user id.
	ConfigCurrentUser = "current_user"
	// ConfigWaterUnit is the unit `water add` uses when none is given.
	ConfigWaterUnit = "water_unit"
	// ConfigWeightUnit is the unit `weight add` uses when none is given.
	ConfigWeightUnit = "weight_unit"
)

// configKeys canonicalizes a value before it is stored. A user name stored
// as current_user becomes that user's id; units are checked against the
// conversion table.
var configKeys = map[string]func(db *sql.DB, value string) (string, error){
	ConfigCurrentUser: func(db *sql.DB, value string) (string, error) {
		u, err := ResolveUser(db, value)
		if err != nil {
			return "", err
		}
		return u.ID, nil
	},
	ConfigWaterUnit: func(_ *sql.DB, value string) (string, error) {
		if _, err := toFluidOunces(1, value); err != nil {
			return "", err
		}
		return normalizeUnit(value), nil
	},
	ConfigWeightUnit: func(_ *sql.DB, value string) (string, error) {
		if _, err := convertWeightToKg(1, value); err != nil {
			return "", err
		}
		return normalizeUnit(value), nil
	},
}

// ConfigKeys lists the settable keys in name order.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func configKey(key string) (string, error) {
	key = normalizeName(key)
	if key == "" {
		return "", invalidf("config key is required")
	}
	if _, ok := configKeys[key]; !ok {
		return "", invalidf("unknown config key %q (use %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	return key, nil
}

// SetConfig validates value for key and stores it, replacing any prior value.
func SetConfig(db *sql.DB, key, value string) error {
	key, err := configKey(key)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return invalidf("%s value is required", key)
	}
	if value, err = configKeys[key](db, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	_, err = db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

// GetConfig reports ok=false when the key was never set.
func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key, err := configKey(key)
	if err != nil {
		return "", false, err
	}
	var value string
	err = db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

// ConfigOr returns the stored value for key, or fallback when it is unset.
func ConfigOr(db *sql.DB, key, fallback string) (string, error) {
	v, ok, err := GetConfig(db, key)
	if err != nil || !ok {
		return fallback, err
	}
	return v, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}
