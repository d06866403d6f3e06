package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"placehours/internal/availability"
	"placehours/internal/export"
	"placehours/internal/metrics"
	"placehours/internal/model"

	"github.com/rs/zerolog"
)

// PlaceLister lists stored places with their closed days.
type PlaceLister interface {
	ListPlaces(ctx context.Context, activeOnly bool) ([]model.Place, error)
}

// RecordReader loads single records; *placecache.Store satisfies it.
type RecordReader interface {
	GetPlace(ctx context.Context, id int64) (*model.Place, error)
	GetCourse(ctx context.Context, id int64) (*model.Course, error)
}

// Options configures the HTTP server.
type Options struct {
	Port           int
	AuthoringRPS   float64
	AuthoringBurst int
}

// Deps are the collaborators behind the API.
type Deps struct {
	Places       PlaceLister
	Records      RecordReader
	Availability *availability.Service
	Export       *export.Writer
	// Ready reports whether storage is reachable; nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *zerolog.Logger
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// HTTPServer serves the places and hours JSON API.
type HTTPServer struct {
	deps    Deps
	logger  *zerolog.Logger
	limiter *rateLimiter
	server  *http.Server
}

func NewHTTPServer(opts Options, deps Deps) *HTTPServer {
	if deps.Logger == nil {
		nop := zerolog.Nop()
		deps.Logger = &nop
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.Port == 0 {
		opts.Port = 8080
	}

	s := &HTTPServer{
		deps:    deps,
		logger:  deps.Logger,
		limiter: newRateLimiter(opts.AuthoringRPS, opts.AuthoringBurst),
	}

	mux := http.NewServeMux()
	s.handle(mux, "GET /api/places", "places", s.handlePlaces)
	s.handle(mux, "GET /api/places/{id}/status", "place_status", s.handlePlaceStatus)
	s.handle(mux, "GET /api/courses/{id}/status", "course_status", s.handleCourseStatus)
	s.handle(mux, "POST /api/hours/parse", "hours_parse", s.limiter.limit(s.handleParse))
	s.handle(mux, "POST /api/hours/format", "hours_format", s.limiter.limit(s.handleFormat))
	s.handle(mux, "POST /api/hours/lint", "hours_lint", s.limiter.limit(s.handleLint))
	s.handle(mux, "GET /api/export/hours.xlsx", "export_hours", s.handleExportHours)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("API server started")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handle registers h and counts its responses per status code.
func (s *HTTPServer) handle(mux *http.ServeMux, pattern, name string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h(rec, r)
		metrics.IncHTTP(name, rec.status)
		s.logger.Debug().
			Str("request_id", requestIDFrom(r.Context())).
			Str("endpoint", name).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request served")
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctxPing, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := s.deps.Ready(ctxPing); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
