package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/macrolog/internal/logger"
	"github.com/saadjs/macrolog/internal/nutrition"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://world.openfoodfacts.org"
	userAgent      = "macrolog/1.0 (+https://github.com/saadjs/macrolog)"
)

// ErrNotFound is returned when a barcode has no usable product.
var ErrNotFound = errors.New("openfoodfacts product not found")

// Product is an OpenFoodFacts product with its nutriments left raw.
// ServingGrams is 0 when the serving is not declared in grams.
type Product struct {
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	Brand        string         `json:"brand"`
	ServingGrams float64        `json:"serving_grams"`
	Nutriments   map[string]any `json:"nutriments"`
}

// Source tags the product for normalization. Its sodium is in kg per 100g.
func (p Product) Source() nutrition.RawSource {
	return nutrition.BarcodeSource(p.Name, p.Brand, p.Code, p.Nutriments, p.ServingGrams)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) base() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return DefaultBaseURL
	}
	return base
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 12 * time.Second}
}

func (c *Client) get(ctx context.Context, what, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts %s request: %w", what, err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts %s request: %w", what, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts %s response: %w", what, err)
	}
	logger.L().Debug("openfoodfacts request",
		zap.String("kind", what),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("openfoodfacts %s request failed with status %d", what, resp.StatusCode)
	}
	return body, nil
}

// LookupBarcode fetches one product. The raw body is returned for caching.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Product, []byte, error) {
	barcode = strings.TrimSpace(barcode)
	body, err := c.get(ctx, "barcode", fmt.Sprintf("%s/api/v2/product/%s.json", c.base(), url.PathEscape(barcode)))
	if err != nil {
		return Product{}, body, err
	}
	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, body, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return Product{}, body, fmt.Errorf("%w for barcode %q", ErrNotFound, barcode)
	}
	p := parsed.Product.toProduct()
	if p.Code == "" {
		p.Code = barcode
	}
	return p, body, nil
}

// SearchFoods runs a full-text product search. Products without a name are
// skipped; no matches is an empty result, not an error.
func (c *Client) SearchFoods(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		c.base(),
		url.QueryEscape(strings.TrimSpace(query)),
		limit,
	)
	body, err := c.get(ctx, "search", u)
	if err != nil {
		return nil, err
	}
	var parsed offSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts search response: %w", err)
	}
	out := make([]Product, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		out = append(out, p.toProduct())
	}
	return out, nil
}

// servingGrams reads the declared serving weight. Only gram servings count.
func servingGrams(p offProduct) float64 {
	if qty, ok := nutrition.ParseFloat(p.ServingQuantity); ok && qty > 0 {
		unit := strings.ToLower(strings.TrimSpace(p.ServingQuantityUnit))
		if unit == "" || unit == "g" {
			return qty
		}
		return 0
	}
	parts := strings.Fields(strings.TrimSpace(p.ServingSize))
	if len(parts) >= 2 && strings.EqualFold(strings.Trim(parts[1], "()"), "g") {
		if val, err := strconv.ParseFloat(strings.ReplaceAll(parts[0], ",", "."), 64); err == nil && val > 0 {
			return val
		}
	}
	return 0
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code                string         `json:"code"`
	ProductName         string         `json:"product_name"`
	Brands              string         `json:"brands"`
	ServingSize         string         `json:"serving_size"`
	ServingQuantity     any            `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	Nutriments          map[string]any `json:"nutriments"`
}

func (p offProduct) toProduct() Product {
	return Product{
		Code:         strings.TrimSpace(p.Code),
		Name:         strings.TrimSpace(p.ProductName),
		Brand:        strings.TrimSpace(p.Brands),
		ServingGrams: servingGrams(p),
		Nutriments:   p.Nutriments,
	}
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}
