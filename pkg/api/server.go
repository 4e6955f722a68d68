package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/seatcall/seatcall/internal/config"
	"github.com/seatcall/seatcall/pkg/db"
)

const maxUploadBytes = 32 << 20

// Server exposes the allocation services over HTTP
type Server struct {
	store  db.Database
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time

	// Every request loads, changes and saves the whole session, so requests run one at a time
	mu sync.Mutex
}

// NewServer creates a server backed by the given store
func NewServer(store db.Database, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(corsMiddleware(s.cfg.HTTP.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/pools/{unit}/{program}/{shift}", func(pool chi.Router) {
		pool.Post("/candidates", s.loadCandidates)
		pool.Put("/ledger", s.defineSeats)
		pool.Get("/ledger", s.viewLedger)
		pool.Post("/rounds", s.generatePool)
		pool.Get("/round", s.currentRound)
		pool.Get("/classification", s.classification)
	})

	r.Post("/rounds", s.generateAll)
	r.Post("/disqualifications", s.disqualify)

	r.Route("/calls", func(calls chi.Router) {
		calls.Get("/", s.listCalls)
		calls.Get("/{round}", s.viewRound)
		calls.Get("/{round}/export", s.exportCall)
	})

	r.Delete("/session", s.reset)

	return r
}

// logRequests logs every request once it completes
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug("HTTP request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

// corsMiddleware answers preflight requests and tags responses for the allowed origins.
// "*" allows any origin.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAny = true
		}
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAny || allowed[origin]) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Expose-Headers", "Content-Disposition")

				if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
