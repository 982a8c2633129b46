package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/saadjs/macrolog/internal/nutrition"
)

// SourceRequest names food to log. Exactly one of its fields should be set;
// they are tried in field order.
type SourceRequest struct {
	Staple    string               `json:"staple,omitempty"`
	Reference string               `json:"reference,omitempty"`
	History   string               `json:"history,omitempty"`
	LabelText string               `json:"label_text,omitempty"`
	Raw       *nutrition.RawSource `json:"raw,omitempty"`
}

// ResolveSource turns a request into the raw source LogFood normalizes.
func ResolveSource(db *sql.DB, userID string, req SourceRequest) (nutrition.RawSource, error) {
	switch {
	case strings.TrimSpace(req.Staple) != "":
		s, ok := nutrition.StapleByID(req.Staple)
		if !ok {
			return nutrition.RawSource{}, fmt.Errorf("staple %q %w", req.Staple, ErrNotFound)
		}
		return s.Source(), nil

	case strings.TrimSpace(req.Reference) != "":
		e, ok := nutrition.LookupReference(req.Reference)
		if !ok {
			return nutrition.RawSource{}, fmt.Errorf("food %q %w", req.Reference, ErrNotFound)
		}
		return nutrition.LocalSource(e), nil

	case strings.TrimSpace(req.History) != "":
		return historySource(db, userID, req.History)

	case strings.TrimSpace(req.LabelText) != "":
		return nutrition.ParseLabelText(req.LabelText), nil

	case req.Raw != nil:
		return *req.Raw, nil
	}
	return nutrition.RawSource{}, invalidf("nothing to log: set staple, reference, history, label_text or raw")
}

// historySource finds a remembered product by exact name, ignoring case.
func historySource(db *sql.DB, userID, name string) (nutrition.RawSource, error) {
	products, err := ListLearnedProducts(db, userID, name, 0)
	if err != nil {
		return nutrition.RawSource{}, err
	}
	want := normalizeName(name)
	for _, p := range products {
		if normalizeName(p.Name) == want {
			return nutrition.HistorySource(p.Name, p.Brand, p.Per100g), nil
		}
	}
	return nutrition.RawSource{}, fmt.Errorf("remembered product %q %w", name, ErrNotFound)
}
