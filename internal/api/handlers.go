package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/service"
	"go.uber.org/zap"
)

type ctxKey int

const userKey ctxKey = iota

func userFrom(r *http.Request) model.User {
	u, _ := r.Context().Value(userKey).(model.User)
	return u
}

func (s *Server) withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := service.ResolveUser(s.db, chi.URLParam(r, "user"))
		if err != nil {
			s.fail(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func (s *Server) today() string {
	return s.now().Local().Format(time.DateOnly)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listStaples(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, nutrition.Staples())
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := service.ListUsers(s.db)
	if err != nil {
		s.log.Error("list users", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := service.CreateUser(s.db, body.Name)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, u)
}

type profileRequest struct {
	Weight         float64        `json:"weight"`
	WeightUnit     string         `json:"weight_unit"`
	HeightCm       float64        `json:"height_cm"`
	HeightFt       float64        `json:"height_ft"`
	HeightIn       float64        `json:"height_in"`
	Age            float64        `json:"age"`
	Sex            string         `json:"sex"`
	ActivityFactor float64        `json:"activity_factor"`
	Goal           nutrition.Goal `json:"goal"`
}

func (p profileRequest) profile() nutrition.Profile {
	weight := p.Weight
	if u := strings.ToLower(strings.TrimSpace(p.WeightUnit)); u == "lb" || u == "lbs" {
		weight = nutrition.LbsToKg(weight)
	}
	height := p.HeightCm
	if height == 0 && (p.HeightFt > 0 || p.HeightIn > 0) {
		height = nutrition.FtInToCm(p.HeightFt, p.HeightIn)
	}
	return nutrition.Profile{
		WeightKg:       weight,
		HeightCm:       height,
		Age:            p.Age,
		Sex:            p.Sex,
		ActivityFactor: p.ActivityFactor,
		Goal:           p.Goal,
	}
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	sp, err := service.GetProfile(s.db, userFrom(r).ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sp)
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	var body profileRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sp, err := service.UpdateProfile(s.db, userFrom(r).ID, body.profile())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sp)
}

func (s *Server) getDay(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if date == "today" {
		date = s.today()
	}
	summary, err := service.DaySummary(s.db, userFrom(r).ID, date)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.today()
	}
	entries, err := service.ListEntriesForUserDate(s.db, userFrom(r).ID, date)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

type logFoodRequest struct {
	service.SourceRequest
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Date     string  `json:"date"`
}

func (s *Server) logFood(w http.ResponseWriter, r *http.Request) {
	var body logFoodRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u := userFrom(r)
	src, err := service.ResolveSource(s.db, u.ID, body.SourceRequest)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.logSource(w, u.ID, src, body.Quantity, body.Unit, body.Date)
}

func (s *Server) logSource(w http.ResponseWriter, userID string, src nutrition.RawSource, quantity float64, unit, date string) {
	res, err := service.LogFood(s.db, service.LogFoodInput{
		UserID:   userID,
		Source:   src,
		Quantity: quantity,
		Unit:     unit,
		LoggedAt: s.now(),
		Date:     date,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	if res.Learned {
		s.suggester.Forget(userID)
	}
	s.writeJSON(w, http.StatusCreated, res)
}

func (s *Server) logBarcode(w http.ResponseWriter, r *http.Request) {
	if s.barcodes == nil {
		s.writeError(w, http.StatusServiceUnavailable, "barcode lookup is not configured")
		return
	}
	var body struct {
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
		Date     string  `json:"date"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &body); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	found, err := service.LookupBarcode(r.Context(), s.db, s.barcodes, chi.URLParam(r, "code"))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.logSource(w, userFrom(r).ID, found.Product.Source(), body.Quantity, body.Unit, body.Date)
}

func entryID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	var body struct {
		Name      string                   `json:"name"`
		Brand     string                   `json:"brand"`
		Nutrients nutrition.NutrientRecord `json:"nutrients"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, err := service.UpdateEntry(s.db, service.UpdateEntryInput{
		ID:        id,
		UserID:    userFrom(r).ID,
		Name:      body.Name,
		Brand:     body.Brand,
		Nutrients: body.Nutrients,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	if err := service.DeleteEntry(s.db, userFrom(r).ID, id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getInsights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := nutrition.ModeWeek
	if raw := q.Get("mode"); raw != "" {
		m, ok := nutrition.ParseMode(raw)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "mode must be day, week or month")
			return
		}
		mode = m
	}
	ref := s.now()
	if raw := q.Get("ref"); raw != "" {
		t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "ref must be YYYY-MM-DD")
			return
		}
		ref = t
	}
	u := userFrom(r)
	res, err := service.PeriodInsights(s.db, u.ID, mode, ref, s.memoFor(u.ID))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) getSuggestions(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if strings.TrimSpace(term) == "" {
		s.writeJSON(w, http.StatusOK, []nutrition.Candidate{})
		return
	}
	s.writeJSON(w, http.StatusOK, s.suggester.Suggest(r.Context(), userFrom(r).ID, term))
}

func (s *Server) addWater(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount float64 `json:"amount"`
		Unit   string  `json:"unit"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u := userFrom(r)
	log, err := service.AddWater(s.db, service.AddWaterInput{UserID: u.ID, Amount: body.Amount, Unit: body.Unit, LoggedAt: s.now()})
	if err != nil {
		s.fail(w, err)
		return
	}
	total, err := service.WaterTotal(s.db, u.ID, log.Date)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"log": log, "total_oz": total})
}

func (s *Server) listWeight(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	logs, err := service.ListWeights(s.db, userFrom(r).ID, limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, logs)
}

func (s *Server) addWeight(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Weight float64 `json:"weight"`
		Unit   string  `json:"unit"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	log, err := service.AddWeight(s.db, service.AddWeightInput{UserID: userFrom(r).ID, Weight: body.Weight, Unit: body.Unit, LoggedAt: s.now()})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, log)
}
