package nutrition

import "strings"

// Kind tags a RawSource. It is set where the data is captured and decides
// which unit rule Normalize applies.
type Kind string

const (
	KindBarcode Kind = "barcode"
	KindOCR     Kind = "ocr"
	KindLocal   Kind = "local"
	KindManual  Kind = "manual"
	KindHistory Kind = "history"
)

// Valid reports whether k is one of the known source kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindBarcode, KindOCR, KindLocal, KindManual, KindHistory:
		return true
	default:
		return false
	}
}

// SodiumUnit names the unit sodium arrives in for a source kind.
func SodiumUnit(k Kind) string {
	if k == KindBarcode {
		return "kg_per_100g"
	}
	return "mg"
}

// Basis says what quantity a normalized record describes.
type Basis string

const (
	BasisPer100g    Basis = "100g"
	BasisPerServing Basis = "serving"
	BasisAsLogged   Basis = "as_logged"
)

// StaticFoodEntry is a row of the built-in reference table, per 100g.
type StaticFoodEntry struct {
	Name             string         `json:"name"`
	PieceWeightGrams float64        `json:"piece_weight_g,omitempty"`
	Per100g          NutrientRecord `json:"per_100g"`
}

// RawSource is food data as captured, before normalization.
//
// Nutriments is used by barcode, ocr and history sources, Entry by local
// sources and Values by manual sources. ServingGrams is the declared serving
// weight of a barcode product, when known.
type RawSource struct {
	Kind         Kind            `json:"kind"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand,omitempty"`
	Code         string          `json:"code,omitempty"`
	Nutriments   map[string]any  `json:"nutriments,omitempty"`
	Entry        StaticFoodEntry `json:"entry,omitempty"`
	Values       map[string]any  `json:"values,omitempty"`
	ServingGrams float64         `json:"serving_grams,omitempty"`
}

func BarcodeSource(name, brand, code string, nutriments map[string]any, servingGrams float64) RawSource {
	return RawSource{Kind: KindBarcode, Name: name, Brand: brand, Code: code, Nutriments: nutriments, ServingGrams: servingGrams}
}

func OCRSource(name, brand string, nutriments map[string]any) RawSource {
	return RawSource{Kind: KindOCR, Name: name, Brand: brand, Nutriments: nutriments}
}

func LocalSource(entry StaticFoodEntry) RawSource {
	return RawSource{Kind: KindLocal, Name: entry.Name, Entry: entry}
}

func ManualSource(name, brand string, values map[string]any) RawSource {
	return RawSource{Kind: KindManual, Name: name, Brand: brand, Values: values}
}

func HistorySource(name, brand string, per100g NutrientRecord) RawSource {
	return RawSource{Kind: KindHistory, Name: name, Brand: brand, Nutriments: per100g.Map()}
}

// Basis reports whether the normalized record is per 100g, per declared
// serving, or already sized to the logged amount.
func (s RawSource) Basis() Basis {
	switch s.Kind {
	case KindManual:
		return BasisAsLogged
	case KindBarcode:
		for k := range s.Nutriments {
			if strings.HasSuffix(k, servingSuffix) {
				return BasisPerServing
			}
		}
		return BasisPer100g
	default:
		return BasisPer100g
	}
}

// PieceWeight returns the grams of one piece or serving, or 0 when unknown.
func (s RawSource) PieceWeight() float64 {
	switch s.Kind {
	case KindLocal:
		return s.Entry.PieceWeightGrams
	case KindBarcode:
		return s.ServingGrams
	default:
		return 0
	}
}
