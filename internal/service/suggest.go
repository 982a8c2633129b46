package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/saadjs/macrolog/internal/logger"
	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/provider/openfoodfacts"
	"go.uber.org/zap"
)

const (
	DefaultRemoteTimeout  = 8 * time.Second
	DefaultSearchDebounce = 300 * time.Millisecond
)

type SearchClient interface {
	SearchFoods(ctx context.Context, query string, limit int) ([]openfoodfacts.Product, error)
}

// Suggester merges reference, history and remote matches for a search term.
// History and remote are fetched concurrently and fail independently.
// It is safe for concurrent use.
type Suggester struct {
	db            *sql.DB
	remote        SearchClient
	cap           int
	remoteTimeout time.Duration

	mu    sync.Mutex
	cache map[string][]nutrition.Candidate
}

// NewSuggester builds a Suggester. remote may be nil to search offline.
func NewSuggester(db *sql.DB, remote SearchClient, limit int, remoteTimeout time.Duration) *Suggester {
	if limit <= 0 {
		limit = nutrition.DefaultSuggestionCap
	}
	if remoteTimeout <= 0 {
		remoteTimeout = DefaultRemoteTimeout
	}
	return &Suggester{
		db:            db,
		remote:        remote,
		cap:           limit,
		remoteTimeout: remoteTimeout,
		cache:         map[string][]nutrition.Candidate{},
	}
}

func cacheKey(userID, term string) string {
	return userID + "\x00" + term
}

// Suggest returns the merged suggestions for term. It never fails: a source
// that errors contributes nothing. Results are cached per normalized term
// once every source has answered.
func (s *Suggester) Suggest(ctx context.Context, userID, term string) []nutrition.Candidate {
	var out []nutrition.Candidate
	s.SuggestProgressive(ctx, userID, term, func(c []nutrition.Candidate, final bool) {
		if final {
			out = c
		}
	})
	return out
}

// SuggestProgressive calls emit with local and history matches first, then
// with the full merge once the remote search finishes. A cached term is
// emitted once, final.
func (s *Suggester) SuggestProgressive(ctx context.Context, userID, term string, emit func(candidates []nutrition.Candidate, final bool)) {
	key := nutrition.NormalizeTerm(term)
	if key == "" {
		emit(nil, true)
		return
	}
	if cached, ok := s.cached(userID, key); ok {
		emit(cached, true)
		return
	}

	local := s.localMatches(key)

	remoteCh := make(chan remoteResult, 1)
	go func() {
		c, err := s.remoteMatches(ctx, key)
		remoteCh <- remoteResult{candidates: c, err: err}
	}()

	history, historyErr := SearchLearnedProducts(s.db, userID, key, s.cap)
	if historyErr != nil {
		logger.L().Warn("history suggestions failed", zap.String("term", key), zap.Error(historyErr))
		history = nil
	}
	emit(nutrition.Merge(local, history, nil, s.cap), false)

	r := <-remoteCh
	if r.err != nil {
		logger.L().Warn("remote suggestions failed", zap.String("term", key), zap.Error(r.err))
	}
	merged := nutrition.Merge(local, history, r.candidates, s.cap)
	if historyErr == nil && r.err == nil {
		s.store(userID, key, merged)
	}
	emit(merged, true)
}

type remoteResult struct {
	candidates []nutrition.Candidate
	err        error
}

func (s *Suggester) localMatches(term string) []nutrition.Candidate {
	foods := nutrition.SearchReference(term, s.cap)
	out := make([]nutrition.Candidate, 0, len(foods))
	for _, f := range foods {
		out = append(out, nutrition.NewCandidate(nutrition.SuggestionLocal, nutrition.LocalSource(f)))
	}
	return out
}

func (s *Suggester) remoteMatches(ctx context.Context, term string) ([]nutrition.Candidate, error) {
	if s.remote == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()
	products, err := s.remote.SearchFoods(ctx, term, s.cap)
	if err != nil {
		return nil, err
	}
	out := make([]nutrition.Candidate, 0, len(products))
	for _, p := range products {
		out = append(out, nutrition.NewCandidate(nutrition.SuggestionRemote, p.Source()))
	}
	return out, nil
}

func (s *Suggester) cached(userID, term string) ([]nutrition.Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cache[cacheKey(userID, term)]
	return c, ok
}

func (s *Suggester) store(userID, term string, c []nutrition.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[cacheKey(userID, term)] = c
}

// Forget drops cached suggestions for a user, e.g. after logging a new
// product that should show up in history.
func (s *Suggester) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := userID + "\x00"
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
}
