package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
)

// UpsertLearnedProduct remembers a per-100g product for the user's history
// suggestions. A product already known by name gets its nutrients replaced
// and its usage count bumped.
func UpsertLearnedProduct(db *sql.DB, userID, name, brand string, per100g nutrition.NutrientRecord) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return invalidf("product name is required")
	}
	if err := validateNutrients(per100g); err != nil {
		return err
	}
	stamp := formatStamp(nowFunc())
	args := []any{userID, name, normalizeName(name), strings.TrimSpace(brand)}
	args = append(args, nutrientArgs(per100g)...)
	args = append(args, stamp)
	_, err := db.Exec(`
INSERT INTO learned_products(user_id, name, name_norm, brand, `+nutrientColumns+`, usage_count, last_used_at)
VALUES(?, ?, ?, ?, `+nutrientPlaceholders+`, 1, ?)
ON CONFLICT(user_id, name_norm) DO UPDATE SET
  name=excluded.name,
  brand=excluded.brand,
  calories=excluded.calories,
  protein_g=excluded.protein_g,
  carbs_g=excluded.carbs_g,
  fat_g=excluded.fat_g,
  fiber_g=excluded.fiber_g,
  sugar_g=excluded.sugar_g,
  sodium_mg=excluded.sodium_mg,
  potassium_mg=excluded.potassium_mg,
  calcium_mg=excluded.calcium_mg,
  iron_mg=excluded.iron_mg,
  magnesium_mg=excluded.magnesium_mg,
  zinc_mg=excluded.zinc_mg,
  vitamin_a=excluded.vitamin_a,
  vitamin_c=excluded.vitamin_c,
  vitamin_d=excluded.vitamin_d,
  vitamin_b12=excluded.vitamin_b12,
  usage_count=learned_products.usage_count + 1,
  last_used_at=excluded.last_used_at,
  updated_at=CURRENT_TIMESTAMP
`, args...)
	if err != nil {
		return fmt.Errorf("upsert learned product %q: %w", name, err)
	}
	return nil
}

// ListLearnedProducts returns products whose name contains query, most used
// first. An empty query lists everything.
func ListLearnedProducts(db *sql.DB, userID, query string, limit int) ([]model.LearnedProduct, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, user_id, name, brand, ` + nutrientColumns + `, usage_count, IFNULL(last_used_at, '')
FROM learned_products WHERE user_id = ?`
	args := []any{userID}
	if term := normalizeName(query); term != "" {
		q += ` AND name_norm LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(term)+"%")
	}
	q += ` ORDER BY usage_count DESC, name_norm ASC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list learned products: %w", err)
	}
	defer rows.Close()

	out := make([]model.LearnedProduct, 0)
	for rows.Next() {
		var p model.LearnedProduct
		var lastUsed string
		dest := []any{&p.ID, &p.UserID, &p.Name, &p.Brand}
		dest = append(dest, nutrientDest(&p.Per100g)...)
		dest = append(dest, &p.UsageCount, &lastUsed)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan learned product: %w", err)
		}
		if lastUsed != "" {
			t, err := parseStamp(lastUsed)
			if err != nil {
				return nil, err
			}
			p.LastUsedAt = &t
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learned products: %w", err)
	}
	return out, nil
}

// SearchLearnedProducts returns the user's history as suggestion candidates.
func SearchLearnedProducts(db *sql.DB, userID, term string, limit int) ([]nutrition.Candidate, error) {
	products, err := ListLearnedProducts(db, userID, term, limit)
	if err != nil {
		return nil, err
	}
	out := make([]nutrition.Candidate, 0, len(products))
	for _, p := range products {
		out = append(out, nutrition.NewCandidate(nutrition.SuggestionHistory, nutrition.HistorySource(p.Name, p.Brand, p.Per100g)))
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
