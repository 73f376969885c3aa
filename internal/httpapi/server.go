package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/easycheck/internal/metrics"
	"github.com/hamed0406/easycheck/internal/status"
)

// Server exposes the aggregated verdict. It only ever reads the
// holder; the check loop is the sole writer.
type Server struct {
	Logger *zap.Logger
	Status *status.Holder
}

func NewServer(l *zap.Logger, holder *status.Holder) *Server {
	return &Server{Logger: l, Status: holder}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/", s.handleStatus)
	r.Options("/", s.handleStatus)

	// self-liveness of the sidecar, independent of the probed service
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// handleStatus answers with the verdict's response code, the verdict
// age in seconds and the JSON array of failing checks.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	current := s.Status.Current()

	age := int(time.Since(current.Timestamp).Seconds())
	if age < 0 {
		age = 0
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Age", strconv.Itoa(age))
	w.WriteHeader(current.StatusCode)
	if err := json.NewEncoder(w).Encode(current.FailingChecks); err != nil {
		s.Logger.Warn("status_encode_error", zap.Error(err))
	}
}
