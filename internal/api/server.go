package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/saadjs/macrolog/internal/nutrition"
	"github.com/saadjs/macrolog/internal/service"
	"go.uber.org/zap"
)

// Server serves the JSON API the web dashboard renders from.
type Server struct {
	db        *sql.DB
	suggester *service.Suggester
	barcodes  service.BarcodeClient
	log       *zap.Logger
	origins   []string
	now       func() time.Time

	memoMu sync.Mutex
	memos  map[string]*nutrition.RollupMemo
}

type Options struct {
	Suggester      *service.Suggester
	Barcodes       service.BarcodeClient
	Logger         *zap.Logger
	AllowedOrigins []string
}

func NewServer(db *sql.DB, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	suggester := opts.Suggester
	if suggester == nil {
		suggester = service.NewSuggester(db, nil, 0, 0)
	}
	return &Server{
		db:        db,
		suggester: suggester,
		barcodes:  opts.Barcodes,
		log:       log,
		origins:   origins,
		now:       time.Now,
		memos:     map[string]*nutrition.RollupMemo{},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/staples", s.listStaples)
		r.Get("/users", s.listUsers)
		r.Post("/users", s.createUser)

		r.Route("/users/{user}", func(r chi.Router) {
			r.Use(s.withUser)
			r.Get("/profile", s.getProfile)
			r.Put("/profile", s.putProfile)
			r.Get("/days/{date}", s.getDay)
			r.Get("/entries", s.listEntries)
			r.Post("/entries", s.logFood)
			r.Put("/entries/{id}", s.updateEntry)
			r.Delete("/entries/{id}", s.deleteEntry)
			r.Post("/barcodes/{code}", s.logBarcode)
			r.Get("/insights", s.getInsights)
			r.Get("/suggestions", s.getSuggestions)
			r.Post("/water", s.addWater)
			r.Get("/weight", s.listWeight)
			r.Post("/weight", s.addWeight)
		})
	})
	return r
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// memoFor returns the user's rollup memo, creating it on first use.
func (s *Server) memoFor(userID string) *nutrition.RollupMemo {
	s.memoMu.Lock()
	defer s.memoMu.Unlock()
	m, ok := s.memos[userID]
	if !ok {
		m = &nutrition.RollupMemo{}
		s.memos[userID] = m
	}
	return m
}
