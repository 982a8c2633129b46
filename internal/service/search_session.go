package service

import (
	"context"
	"sync"
	"time"

	"github.com/saadjs/macrolog/internal/nutrition"
)

// SuggestFunc matches Suggester.Suggest.
type SuggestFunc func(ctx context.Context, userID, term string) []nutrition.Candidate

// SearchSession debounces typed search terms for one user. A search fires
// once input has been quiet for the debounce window, and its results are
// delivered only if its term is still the latest one submitted.
type SearchSession struct {
	ctx      context.Context
	suggest  SuggestFunc
	userID   string
	debounce time.Duration
	deliver  func(term string, results []nutrition.Candidate)

	mu     sync.Mutex
	latest string
	timer  *time.Timer
	closed bool
}

// NewSearchSession starts a session. deliver runs on a timer goroutine with
// the session lock held, so it must not call Submit.
func NewSearchSession(ctx context.Context, suggest SuggestFunc, userID string, debounce time.Duration, deliver func(term string, results []nutrition.Candidate)) *SearchSession {
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	return &SearchSession{ctx: ctx, suggest: suggest, userID: userID, debounce: debounce, deliver: deliver}
}

// Submit records term as the latest input and restarts the debounce timer.
func (s *SearchSession) Submit(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.latest = term
	if s.timer != nil {
		s.timer.Stop()
	}
	if nutrition.NormalizeTerm(term) == "" {
		s.timer = nil
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(term) })
}

func (s *SearchSession) fire(term string) {
	results := s.suggest(s.ctx, s.userID, term)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.latest != term {
		return
	}
	s.deliver(term, results)
}

// Latest returns the most recently submitted term.
func (s *SearchSession) Latest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Close stops any pending search. In-flight searches finish but are not
// delivered.
func (s *SearchSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
