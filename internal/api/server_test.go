package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/saadjs/macrolog/internal/db"
	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/provider/openfoodfacts"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBarcodes struct {
	products map[string]openfoodfacts.Product
	calls    int
	err      error
}

func (f *fakeBarcodes) LookupBarcode(_ context.Context, code string) (openfoodfacts.Product, []byte, error) {
	f.calls++
	if f.err != nil {
		return openfoodfacts.Product{}, nil, f.err
	}
	p, ok := f.products[code]
	if !ok {
		return openfoodfacts.Product{}, nil, openfoodfacts.ErrNotFound
	}
	return p, nil, nil
}

var fixedNow = time.Date(2026, 3, 4, 12, 30, 0, 0, time.Local)

func newTestServer(t *testing.T) (*Server, http.Handler, model.User) {
	t.Helper()
	sqldb, err := db.OpenMigrated(filepath.Join(t.TempDir(), "macrolog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })

	u, err := service.CreateUser(sqldb, "Sam")
	require.NoError(t, err)

	barcodes := &fakeBarcodes{products: map[string]openfoodfacts.Product{
		"3017620422003": {
			Code:  "3017620422003",
			Name:  "Granola",
			Brand: "Acme",
			Nutriments: map[string]any{
				"energy-kcal_100g": 400.0,
				"proteins_100g":    10.0,
				"sodium_100g":      0.2,
			},
		},
	}}
	s := NewServer(sqldb, Options{Barcodes: barcodes})
	s.now = func() time.Time { return fixedNow }
	return s, s.Router(), u
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	_, h, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownUserIsNotFound(t *testing.T) {
	_, h, _ := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/users/nobody/days/today", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestLogReferenceFoodAndReadDay(t *testing.T) {
	_, h, u := newTestServer(t)
	base := "/api/users/" + u.ID

	rec := do(t, h, http.MethodPost, base+"/entries", map[string]any{
		"reference": "egg",
		"quantity":  2,
		"unit":      "piece",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	logged := decode[service.LogFoodResult](t, rec)
	assert.Equal(t, 155.0, logged.Entry.Nutrients.Calories)
	assert.Equal(t, "2026-03-04", logged.Entry.Date)
	assert.False(t, logged.Learned)

	rec = do(t, h, http.MethodGet, base+"/days/2026-03-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	day := decode[model.DaySummary](t, rec)
	require.Len(t, day.Entries, 1)
	assert.Equal(t, 155.0, day.Totals.Calories)
	assert.False(t, day.HasProfile)
	assert.Equal(t, nutrition.DefaultTargets, day.Targets)
	assert.Equal(t, float64(nutrition.DefaultTargets.Calories)-155, day.Remaining.Calories)
}

func TestLogStapleByName(t *testing.T) {
	_, h, u := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/users/Sam/entries", map[string]any{"staple": "shake"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	logged := decode[service.LogFoodResult](t, rec)
	assert.Equal(t, u.ID, logged.Entry.UserID)
	assert.Equal(t, nutrition.QuickLogBrand, logged.Entry.Brand)
	assert.Equal(t, 150.0, logged.Entry.Nutrients.Calories)
	assert.Equal(t, nutrition.BasisAsLogged, logged.Basis)
}

func TestLogFoodRejectsEmptyRequest(t *testing.T) {
	_, h, u := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/users/"+u.ID+"/entries", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/users/"+u.ID+"/entries", map[string]any{"reference": "unobtainium"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBarcodeLogConvertsSodiumAndLearns(t *testing.T) {
	_, h, u := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/users/"+u.ID+"/barcodes/3017620422003", map[string]any{"quantity": 50, "unit": "g"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	logged := decode[service.LogFoodResult](t, rec)
	assert.Equal(t, 200.0, logged.Entry.Nutrients.Calories)
	assert.Equal(t, 5.0, logged.Entry.Nutrients.Protein)
	assert.Equal(t, 100.0, logged.Entry.Nutrients.Sodium)
	assert.True(t, logged.Learned)

	rec = do(t, h, http.MethodGet, "/api/users/"+u.ID+"/suggestions?q=granola", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]nutrition.Candidate](t, rec)
	require.NotEmpty(t, got)
	assert.Equal(t, "Granola", got[0].Name)
	assert.Equal(t, nutrition.SuggestionHistory, got[0].Source)

	rec = do(t, h, http.MethodPost, "/api/users/"+u.ID+"/barcodes/0000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/users/"+u.ID+"/barcodes/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	_, h, u := newTestServer(t)
	base := "/api/users/" + u.ID
	rec := do(t, h, http.MethodPost, base+"/entries", map[string]any{"staple": "banana"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[service.LogFoodResult](t, rec).Entry.ID

	rec = do(t, h, http.MethodPut, base+"/entries/"+itoa(id), map[string]any{
		"name":      "Big Banana",
		"nutrients": map[string]any{"calories": 130, "carbs": 33},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[nutrition.LoggedEntry](t, rec)
	assert.Equal(t, "Big Banana", updated.Name)
	assert.Equal(t, 130.0, updated.Nutrients.Calories)
	assert.Zero(t, updated.Nutrients.Protein)

	rec = do(t, h, http.MethodDelete, base+"/entries/"+itoa(id), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, base+"/entries/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, base+"/entries/zero", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileDrivesTargets(t *testing.T) {
	_, h, u := newTestServer(t)
	base := "/api/users/" + u.ID

	rec := do(t, h, http.MethodGet, base+"/profile", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, base+"/profile", map[string]any{
		"weight":          70,
		"weight_unit":     "kg",
		"height_cm":       175,
		"age":             30,
		"sex":             "male",
		"activity_factor": 1.2,
		"goal":            "maintain",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sp := decode[model.StoredProfile](t, rec)
	assert.Equal(t, nutrition.Targets{Calories: 1979, Protein: 148, Carbs: 198, Fats: 66}, sp.Targets)

	rec = do(t, h, http.MethodPut, base+"/profile", map[string]any{"weight": 80, "sex": "male"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsightsModes(t *testing.T) {
	s, h, u := newTestServer(t)
	base := "/api/users/" + u.ID
	rec := do(t, h, http.MethodPost, base+"/entries", map[string]any{"reference": "egg", "quantity": 100, "unit": "g"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, base+"/insights?mode=day&ref=2026-03-04", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[service.PeriodInsightsResult](t, rec)
	require.Len(t, res.Rollup.Buckets, 8)
	assert.Equal(t, "12:00", res.Rollup.Buckets[4].Label)
	assert.Equal(t, 155.0, res.Rollup.Buckets[4].Calories)

	do(t, h, http.MethodGet, base+"/insights?mode=day&ref=2026-03-04", nil)
	assert.Equal(t, 1, s.memoFor(u.ID).Computations())

	rec = do(t, h, http.MethodGet, base+"/insights?mode=week&ref=2026-03-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[service.PeriodInsightsResult](t, rec)
	// 2026-03-04 is a Wednesday
	assert.Equal(t, 4, res.Rollup.Days)
	assert.Equal(t, 2, s.memoFor(u.ID).Computations())

	rec = do(t, h, http.MethodGet, base+"/insights?mode=year", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWaterAndWeight(t *testing.T) {
	_, h, u := newTestServer(t)
	base := "/api/users/" + u.ID

	rec := do(t, h, http.MethodPost, base+"/water", map[string]any{"amount": 16, "unit": "oz"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, base+"/water", map[string]any{"amount": 8})
	require.Equal(t, http.StatusCreated, rec.Code)
	water := decode[map[string]any](t, rec)
	assert.InDelta(t, 24.0, water["total_oz"], 1e-9)

	rec = do(t, h, http.MethodPost, base+"/water", map[string]any{"amount": 8, "unit": "kg"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/weight", map[string]any{"weight": 176.37, "unit": "lb"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	w := decode[model.WeightLog](t, rec)
	assert.InDelta(t, 80.0, w.WeightKg, 0.01)

	rec = do(t, h, http.MethodGet, base+"/weight?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.WeightLog](t, rec), 1)
}

func TestSuggestionsPickUpNewlyLearnedProduct(t *testing.T) {
	_, h, u := newTestServer(t)
	base := "/api/users/" + u.ID

	rec := do(t, h, http.MethodGet, base+"/suggestions?q=granola", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]nutrition.Candidate](t, rec))

	rec = do(t, h, http.MethodPost, base+"/barcodes/3017620422003", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.True(t, decode[service.LogFoodResult](t, rec).Learned)

	rec = do(t, h, http.MethodGet, base+"/suggestions?q=granola", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]nutrition.Candidate](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "Granola", got[0].Name)
	assert.Equal(t, nutrition.SuggestionHistory, got[0].Source)
}

func TestStorageFailureIsInternalError(t *testing.T) {
	s, h, u := newTestServer(t)
	require.NoError(t, s.db.Close())

	rec := do(t, h, http.MethodGet, "/api/users/"+u.ID+"/entries", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "internal error", body["error"])
	assert.NotContains(t, rec.Body.String(), "sql")
}

func TestBarcodeUpstreamFailureIsBadGateway(t *testing.T) {
	s, h, u := newTestServer(t)
	s.barcodes.(*fakeBarcodes).err = errors.New("dial tcp: connection refused")

	rec := do(t, h, http.MethodPost, "/api/users/"+u.ID+"/barcodes/3017620422003", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
