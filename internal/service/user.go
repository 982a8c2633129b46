package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/saadjs/macrolog/internal/model"
)


func CreateUser(db *sql.DB, name string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, invalidf("user name is required")
	}
	u := model.User{ID: uuid.NewString(), Name: name, CreatedAt: nowFunc()}
	if _, err := db.Exec(`INSERT INTO users(id, name, name_norm, created_at) VALUES(?, ?, ?, ?)`,
		u.ID, u.Name, normalizeName(name), formatStamp(u.CreatedAt)); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return model.User{}, invalidf("user %q already exists", name)
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func ListUsers(db *sql.DB) ([]model.User, error) {
	rows, err := db.Query(`SELECT id, name, created_at FROM users ORDER BY name_norm ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		var created string
		if err := rows.Scan(&u.ID, &u.Name, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if u.CreatedAt, err = parseStamp(created); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

// ResolveUser finds a user by id or by name, ignoring case.
func ResolveUser(db *sql.DB, idOrName string) (model.User, error) {
	key := strings.TrimSpace(idOrName)
	if key == "" {
		return model.User{}, invalidf("user is required")
	}
	var u model.User
	var created string
	err := db.QueryRow(`SELECT id, name, created_at FROM users WHERE id = ? OR name_norm = ? LIMIT 1`, key, normalizeName(key)).
		Scan(&u.ID, &u.Name, &created)
	if err == sql.ErrNoRows {
		return model.User{}, fmt.Errorf("user %q %w", key, ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("lookup user %q: %w", key, err)
	}
	if u.CreatedAt, err = parseStamp(created); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// UseUser makes the user the default for later commands.
func UseUser(db *sql.DB, idOrName string) (model.User, error) {
	u, err := ResolveUser(db, idOrName)
	if err != nil {
		return model.User{}, err
	}
	if err := SetConfig(db, ConfigCurrentUser, u.ID); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// CurrentUser resolves override when given, else the stored current user.
func CurrentUser(db *sql.DB, override string) (model.User, error) {
	if strings.TrimSpace(override) != "" {
		return ResolveUser(db, override)
	}
	id, ok, err := GetConfig(db, ConfigCurrentUser)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, invalidf("no current user; run `macrolog user add <name>` or pass --user")
	}
	return ResolveUser(db, id)
}

// EnsureDefaultUser creates and selects a user named name when none exist.
func EnsureDefaultUser(db *sql.DB, name string) (model.User, bool, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM users`).Scan(&n); err != nil {
		return model.User{}, false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		u, err := CurrentUser(db, "")
		return u, false, err
	}
	u, err := CreateUser(db, name)
	if err != nil {
		return model.User{}, false, err
	}
	if err := SetConfig(db, ConfigCurrentUser, u.ID); err != nil {
		return model.User{}, false, err
	}
	return u, true, nil
}
