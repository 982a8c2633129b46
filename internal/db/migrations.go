package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  name_norm TEXT NOT NULL UNIQUE,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profiles (
  user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  height_cm REAL NOT NULL CHECK(height_cm > 0),
  age INTEGER NOT NULL CHECK(age > 0),
  sex TEXT NOT NULL,
  activity_factor REAL NOT NULL CHECK(activity_factor > 0),
  goal TEXT NOT NULL,
  target_calories INTEGER NOT NULL,
  target_protein INTEGER NOT NULL,
  target_carbs INTEGER NOT NULL,
  target_fats INTEGER NOT NULL,
  water_goal_oz INTEGER NOT NULL CHECK(water_goal_oz >= 0),
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  source_kind TEXT NOT NULL,
  quantity REAL NOT NULL DEFAULT 0,
  unit TEXT NOT NULL DEFAULT '',
  calories REAL NOT NULL CHECK(calories >= 0),
  protein_g REAL NOT NULL CHECK(protein_g >= 0),
  carbs_g REAL NOT NULL CHECK(carbs_g >= 0),
  fat_g REAL NOT NULL CHECK(fat_g >= 0),
  fiber_g REAL NOT NULL DEFAULT 0 CHECK(fiber_g >= 0),
  sugar_g REAL NOT NULL DEFAULT 0 CHECK(sugar_g >= 0),
  sodium_mg REAL NOT NULL DEFAULT 0 CHECK(sodium_mg >= 0),
  potassium_mg REAL NOT NULL DEFAULT 0 CHECK(potassium_mg >= 0),
  calcium_mg REAL NOT NULL DEFAULT 0 CHECK(calcium_mg >= 0),
  iron_mg REAL NOT NULL DEFAULT 0 CHECK(iron_mg >= 0),
  magnesium_mg REAL NOT NULL DEFAULT 0 CHECK(magnesium_mg >= 0),
  zinc_mg REAL NOT NULL DEFAULT 0 CHECK(zinc_mg >= 0),
  vitamin_a REAL NOT NULL DEFAULT 0 CHECK(vitamin_a >= 0),
  vitamin_c REAL NOT NULL DEFAULT 0 CHECK(vitamin_c >= 0),
  vitamin_d REAL NOT NULL DEFAULT 0 CHECK(vitamin_d >= 0),
  vitamin_b12 REAL NOT NULL DEFAULT 0 CHECK(vitamin_b12 >= 0),
  entry_date TEXT NOT NULL,
  logged_at TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entries_user_date ON entries(user_id, entry_date);
CREATE INDEX IF NOT EXISTS idx_entries_user_logged_at ON entries(user_id, logged_at);
`,
	},
	{
		version: 2,
		name:    "hydration_and_weight",
		sql: `
CREATE TABLE IF NOT EXISTS water_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  amount_oz REAL NOT NULL CHECK(amount_oz > 0),
  entry_date TEXT NOT NULL,
  logged_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_water_logs_user_date ON water_logs(user_id, entry_date);

CREATE TABLE IF NOT EXISTS weight_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  entry_date TEXT NOT NULL,
  logged_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_weight_logs_user_logged_at ON weight_logs(user_id, logged_at);
`,
	},
	{
		version: 3,
		name:    "learned_products",
		sql: `
CREATE TABLE IF NOT EXISTS learned_products (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  name_norm TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  calories REAL NOT NULL CHECK(calories >= 0),
  protein_g REAL NOT NULL CHECK(protein_g >= 0),
  carbs_g REAL NOT NULL CHECK(carbs_g >= 0),
  fat_g REAL NOT NULL CHECK(fat_g >= 0),
  fiber_g REAL NOT NULL DEFAULT 0 CHECK(fiber_g >= 0),
  sugar_g REAL NOT NULL DEFAULT 0 CHECK(sugar_g >= 0),
  sodium_mg REAL NOT NULL DEFAULT 0 CHECK(sodium_mg >= 0),
  potassium_mg REAL NOT NULL DEFAULT 0 CHECK(potassium_mg >= 0),
  calcium_mg REAL NOT NULL DEFAULT 0 CHECK(calcium_mg >= 0),
  iron_mg REAL NOT NULL DEFAULT 0 CHECK(iron_mg >= 0),
  magnesium_mg REAL NOT NULL DEFAULT 0 CHECK(magnesium_mg >= 0),
  zinc_mg REAL NOT NULL DEFAULT 0 CHECK(zinc_mg >= 0),
  vitamin_a REAL NOT NULL DEFAULT 0 CHECK(vitamin_a >= 0),
  vitamin_c REAL NOT NULL DEFAULT 0 CHECK(vitamin_c >= 0),
  vitamin_d REAL NOT NULL DEFAULT 0 CHECK(vitamin_d >= 0),
  vitamin_b12 REAL NOT NULL DEFAULT 0 CHECK(vitamin_b12 >= 0),
  usage_count INTEGER NOT NULL DEFAULT 0,
  last_used_at TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(user_id, name_norm)
);

CREATE INDEX IF NOT EXISTS idx_learned_products_usage ON learned_products(user_id, usage_count DESC);
`,
	},
	{
		version: 4,
		name:    "barcode_cache",
		sql: `
CREATE TABLE IF NOT EXISTS barcode_cache (
  code TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  serving_grams REAL NOT NULL DEFAULT 0,
  nutriments_json TEXT NOT NULL,
  fetched_at TEXT NOT NULL,
  expires_at TEXT NOT NULL
);
`,
	},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}
	return nil
}
