package service

import (
	"database/sql"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/logger"
	"github.com/saadjs/macrolog/internal/nutrition"
	"go.uber.org/zap"
)

type LogFoodInput struct {
	UserID string
	Source nutrition.RawSource
	// Quantity is in Unit. Zero means 100 g for per-100g sources and one
	// serving for per-serving sources. Manual sources ignore it.
	Quantity float64
	Unit     string
	LoggedAt time.Time
	Date     string
}

type LogFoodResult struct {
	Entry   nutrition.LoggedEntry `json:"entry"`
	Basis   nutrition.Basis       `json:"basis"`
	Learned bool                  `json:"learned"`
}

// LogFood normalizes the source, sizes it to the amount eaten and stores the
// entry. Per-100g scans are remembered for history suggestions.
func LogFood(db *sql.DB, in LogFoodInput) (LogFoodResult, error) {
	if err := requireUser(in.UserID); err != nil {
		return LogFoodResult{}, err
	}
	src := in.Source
	if strings.TrimSpace(src.Name) == "" {
		return LogFoodResult{}, invalidf("food name is required")
	}
	if !src.Kind.Valid() {
		return LogFoodResult{}, invalidf("unknown source kind %q", src.Kind)
	}

	base := nutrition.Normalize(src)
	basis := src.Basis()
	sized, qty, unit, err := sizeRecord(base, basis, src.PieceWeight(), in.Quantity, in.Unit)
	if err != nil {
		return LogFoodResult{}, err
	}

	entry, err := InsertEntry(db, InsertEntryInput{
		UserID:     in.UserID,
		Name:       src.Name,
		Brand:      src.Brand,
		SourceKind: src.Kind,
		Quantity:   qty,
		Unit:       unit,
		Nutrients:  sized,
		LoggedAt:   in.LoggedAt,
		Date:       in.Date,
	})
	if err != nil {
		return LogFoodResult{}, err
	}

	res := LogFoodResult{Entry: entry, Basis: basis}
	if basis == nutrition.BasisPer100g && learnable(src) {
		if err := UpsertLearnedProduct(db, in.UserID, src.Name, src.Brand, base); err != nil {
			logger.L().Warn("remember product", zap.String("name", src.Name), zap.Error(err))
		} else {
			res.Learned = true
		}
	}
	return res, nil
}

// learnable reports whether src is worth remembering. Labels still carrying
// the placeholder name would overwrite each other, so they are skipped.
func learnable(src nutrition.RawSource) bool {
	switch src.Kind {
	case nutrition.KindBarcode, nutrition.KindHistory:
		return true
	case nutrition.KindOCR:
		return !strings.EqualFold(strings.TrimSpace(src.Name), nutrition.ScannedLabelName)
	default:
		return false
	}
}

func sizeRecord(base nutrition.NutrientRecord, basis nutrition.Basis, pieceWeight, quantity float64, unit string) (nutrition.NutrientRecord, float64, string, error) {
	switch basis {
	case nutrition.BasisAsLogged:
		return nutrition.Round(base), 1, "serving", nil

	case nutrition.BasisPerServing:
		if quantity == 0 && strings.TrimSpace(unit) == "" {
			return nutrition.ScaleServings(base, 1), 1, "serving", nil
		}
		amount, mode, err := resolveQuantity(quantity, unit)
		if err != nil {
			return nutrition.NutrientRecord{}, 0, "", err
		}
		if mode == nutrition.UnitPiece {
			return nutrition.ScaleServings(base, amount), amount, "serving", nil
		}
		if pieceWeight <= 0 {
			return nutrition.NutrientRecord{}, 0, "", invalidf("serving weight is unknown for this product; log it by serving")
		}
		return nutrition.ScaleServings(base, amount/pieceWeight), amount, "g", nil

	default:
		if quantity == 0 && strings.TrimSpace(unit) == "" {
			quantity, unit = 100, "g"
		}
		amount, mode, err := resolveQuantity(quantity, unit)
		if err != nil {
			return nutrition.NutrientRecord{}, 0, "", err
		}
		if mode == nutrition.UnitPiece {
			return nutrition.Scale(base, amount, mode, pieceWeight), amount, "piece", nil
		}
		return nutrition.Scale(base, amount, mode, 0), amount, "g", nil
	}
}
