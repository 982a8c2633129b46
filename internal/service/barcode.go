package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/logger"
	"github.com/saadjs/macrolog/internal/provider/openfoodfacts"
	"go.uber.org/zap"
)

const defaultBarcodeTTL = 30 * 24 * time.Hour

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

type BarcodeClient interface {
	LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Product, []byte, error)
}

type BarcodeLookupResult struct {
	Product   openfoodfacts.Product `json:"product"`
	FromCache bool                  `json:"from_cache"`
}

func isValidBarcode(code string) bool {
	return barcodePattern.MatchString(code)
}

// LookupBarcode returns a cached product when one has not expired, otherwise
// fetches it and caches the result.
func LookupBarcode(ctx context.Context, db *sql.DB, client BarcodeClient, barcode string) (BarcodeLookupResult, error) {
	barcode = strings.TrimSpace(barcode)
	if !isValidBarcode(barcode) {
		return BarcodeLookupResult{}, invalidf("invalid barcode %q (expected 8-14 digits)", barcode)
	}
	if p, ok, err := lookupBarcodeCache(db, barcode, nowFunc()); err != nil {
		return BarcodeLookupResult{}, err
	} else if ok {
		return BarcodeLookupResult{Product: p, FromCache: true}, nil
	}

	p, _, err := client.LookupBarcode(ctx, barcode)
	if errors.Is(err, openfoodfacts.ErrNotFound) {
		return BarcodeLookupResult{}, fmt.Errorf("barcode %s %w", barcode, ErrNotFound)
	}
	if err != nil {
		return BarcodeLookupResult{}, fmt.Errorf("lookup barcode %s: %w: %w", barcode, ErrUpstream, err)
	}
	if err := upsertBarcodeCache(db, p, nowFunc()); err != nil {
		// the product is still usable without the cache row
		logger.L().Warn("cache barcode product", zap.String("barcode", barcode), zap.Error(err))
	}
	return BarcodeLookupResult{Product: p}, nil
}

func lookupBarcodeCache(db *sql.DB, barcode string, now time.Time) (openfoodfacts.Product, bool, error) {
	var p openfoodfacts.Product
	var nutrimentsRaw, expiresRaw string
	err := db.QueryRow(`
SELECT code, name, brand, serving_grams, nutriments_json, expires_at
FROM barcode_cache WHERE code = ?
`, barcode).Scan(&p.Code, &p.Name, &p.Brand, &p.ServingGrams, &nutrimentsRaw, &expiresRaw)
	if err == sql.ErrNoRows {
		return openfoodfacts.Product{}, false, nil
	}
	if err != nil {
		return openfoodfacts.Product{}, false, fmt.Errorf("read barcode cache: %w", err)
	}
	expires, err := parseStamp(expiresRaw)
	if err != nil {
		return openfoodfacts.Product{}, false, err
	}
	if !now.Before(expires) {
		return openfoodfacts.Product{}, false, nil
	}
	if err := json.Unmarshal([]byte(nutrimentsRaw), &p.Nutriments); err != nil {
		return openfoodfacts.Product{}, false, fmt.Errorf("decode cached nutriments for %s: %w", barcode, err)
	}
	return p, true, nil
}

func upsertBarcodeCache(db *sql.DB, p openfoodfacts.Product, now time.Time) error {
	raw, err := json.Marshal(p.Nutriments)
	if err != nil {
		return fmt.Errorf("encode nutriments: %w", err)
	}
	_, err = db.Exec(`
INSERT INTO barcode_cache(code, name, brand, serving_grams, nutriments_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(code) DO UPDATE SET
  name=excluded.name,
  brand=excluded.brand,
  serving_grams=excluded.serving_grams,
  nutriments_json=excluded.nutriments_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, p.Code, p.Name, p.Brand, p.ServingGrams, string(raw), formatStamp(now), formatStamp(now.Add(defaultBarcodeTTL)))
	if err != nil {
		return fmt.Errorf("upsert barcode cache: %w", err)
	}
	return nil
}

// PurgeBarcodeCache drops expired rows and reports how many were removed.
func PurgeBarcodeCache(db *sql.DB) (int64, error) {
	res, err := db.Exec(`DELETE FROM barcode_cache WHERE expires_at <= ?`, formatStamp(nowFunc()))
	if err != nil {
		return 0, fmt.Errorf("purge barcode cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check purged rows: %w", err)
	}
	return n, nil
}
