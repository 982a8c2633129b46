package nutrition

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	servingSuffix = "_serving"
	per100gSuffix = "_100g"

	// barcode providers report sodium in kilograms per 100g.
	kgToMg = 1000
)

// Normalize reduces a raw source to a canonical record on the source's own
// basis. It never fails: anything missing or unparseable becomes 0.
func Normalize(src RawSource) NutrientRecord {
	switch src.Kind {
	case KindLocal:
		return sanitize(src.Entry.Per100g)
	case KindManual:
		return fromMap(src.Values)
	case KindBarcode:
		r := fromMap(src.Nutriments)
		r.Sodium *= kgToMg
		// a finite value can still overflow once converted
		return sanitize(r)
	default:
		return fromMap(src.Nutriments)
	}
}

func fromMap(n map[string]any) NutrientRecord {
	var r NutrientRecord
	if len(n) == 0 {
		return r
	}
	for _, f := range fields {
		*f.pointer(&r) = lookup(n, f)
	}
	return r
}

// lookup resolves one field: every _serving key first, then every _100g key,
// then bare keys. A key holding something unparseable is skipped.
func lookup(n map[string]any, f field) float64 {
	for _, suffix := range []string{servingSuffix, per100gSuffix, ""} {
		for _, stem := range f.keys {
			raw, ok := n[stem+suffix]
			if !ok {
				continue
			}
			if v, ok := ParseFloat(raw); ok {
				return max(v, 0)
			}
		}
	}
	if raw, ok := n[f.name]; ok {
		if v, ok := ParseFloat(raw); ok {
			return max(v, 0)
		}
	}
	return 0
}

// ParseFloat is the single numeric coercion point for source values. It
// accepts numbers, json.Number and numeric strings, and rejects NaN and
// infinities.
func ParseFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if !finite(f) {
		return 0, false
	}
	return f, true
}
