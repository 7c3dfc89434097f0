package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
	"github.com/couchcryptid/farm-advisory-service/internal/observability"
	"github.com/couchcryptid/farm-advisory-service/internal/pipeline"
)

const (
	maxBodyBytes = 64 << 10

	missingCoordinatesMessage = "Missing required parameters: lat and lon."
	invalidBodyMessage        = "Request body must be a JSON object."

	requestIDHeader = "X-Request-ID"
)

// Advisor produces advice for a validated request.
type Advisor interface {
	Advise(ctx context.Context, req pipeline.Request) (pipeline.Response, error)
}

// Server exposes the advisory API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	advisor    Advisor
	validate   *validator.Validate
	metrics    *observability.Metrics
	logger     *slog.Logger
}

type advisoryRequest struct {
	Lat      *float64 `json:"lat" validate:"required"`
	Lon      *float64 `json:"lon" validate:"required"`
	Language string   `json:"language" validate:"omitempty,max=16"`
}

// NewServer creates an HTTP server. Advisory requests can wait on two model
// calls, so the write timeout is longer than the read timeout.
func NewServer(addr string, advisor Advisor, ready sharedobs.ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		advisor:  advisor,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/weather-prediction", func(r chi.Router) {
		advisory := s.handleAdvisory("advisory", false)
		dashboard := s.handleAdvisory("dashboard", true)
		r.Post("/advisory", advisory)
		r.Post("/advice", advisory)
		r.Post("/advisory-for-dashboard", dashboard)
		r.Post("/advice-for-dashboard", dashboard)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleAdvisory serves one advisory endpoint. Only the dashboard variants
// honor the requested language; the plain ones always answer in English.
func (s *Server) handleAdvisory(endpoint string, localized bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		req, err := s.decodeRequest(w, r)
		if err != nil {
			s.metrics.AdvisoryRequests.WithLabelValues(endpoint, "invalid").Inc()
			s.writeError(w, requestID, err)
			return
		}
		req.RequestID = requestID
		if !localized {
			req.Language = domain.English
		}

		resp, err := s.advisor.Advise(r.Context(), req)
		if err != nil {
			var inputErr *domain.InputError
			outcome := "failed"
			if errors.As(err, &inputErr) {
				outcome = "invalid"
			}
			s.metrics.AdvisoryRequests.WithLabelValues(endpoint, outcome).Inc()
			s.writeError(w, requestID, err)
			return
		}

		s.metrics.AdvisoryRequests.WithLabelValues(endpoint, "success").Inc()
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	var body advisoryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return pipeline.Request{}, &domain.InputError{Message: invalidBodyMessage}
	}
	if err := s.validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Tag() == "required" {
					return pipeline.Request{}, &domain.InputError{Message: missingCoordinatesMessage}
				}
			}
			return pipeline.Request{}, &domain.InputError{Message: "Invalid " + invalidField(verrs) + "."}
		}
		return pipeline.Request{}, &domain.InputError{Message: invalidBodyMessage}
	}

	coord := domain.Coordinate{Lat: *body.Lat, Lon: *body.Lon}
	if err := coord.Validate(); err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Coord:    coord,
		Language: domain.ParseLanguage(body.Language),
	}, nil
}

// invalidField names the first failing field in its JSON form.
func invalidField(verrs validator.ValidationErrors) string {
	switch verrs[0].Field() {
	case "Language":
		return "language"
	case "Lat":
		return "lat"
	case "Lon":
		return "lon"
	default:
		return "request"
	}
}

// writeError maps pipeline errors to client responses. Provider bodies and
// internal error text never reach the client.
func (s *Server) writeError(w http.ResponseWriter, requestID string, err error) {
	var (
		inputErr *domain.InputError
		upstream *domain.UpstreamError
	)
	switch {
	case errors.As(err, &inputErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": inputErr.Message})
	case errors.As(err, &upstream):
		s.logger.Error("advisory request failed", "request_id", requestID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": upstream.PublicMessage()})
	default:
		s.logger.Error("advisory request failed", "request_id", requestID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": domain.GenericErrorMessage})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
