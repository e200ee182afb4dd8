// internal/pipeline/ingest/http.go
package ingest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	stderrors "order-insights/internal/common/errors"
	"order-insights/internal/common/logger"
	"order-insights/internal/common/validation"
	"order-insights/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadyCheck pings one dependency for the readiness endpoint.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server exposes the webhook, diagnostic, health, readiness, and metrics
// endpoints over the gateway.
type Server struct {
	gateway     *Gateway
	validator   *validation.Validator
	readyChecks []ReadyCheck
	logger      logger.Logger
	service     string
	version     string
}

func NewServer(service, version string, gateway *Gateway, log logger.Logger, readyChecks ...ReadyCheck) (*Server, error) {
	validator, err := validation.NewValidator(OrderEventSchema)
	if err != nil {
		return nil, err
	}

	return &Server{
		gateway:     gateway,
		validator:   validator,
		readyChecks: readyChecks,
		logger:      log.WithFields(map[string]interface{}{"component": "ingest-http"}),
		service:     service,
		version:     version,
	}, nil
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook/order", s.handleOrder)
	mux.HandleFunc("/webhook/test", s.handleTest)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeFailure(w, "read request body")
		return
	}

	result, err := s.validator.Validate(body)
	if err != nil {
		s.writeFailure(w, "invalid JSON payload")
		return
	}
	if !result.Valid {
		stdErr := stderrors.NewInvalidOrderPayloadError(strings.Join(result.GetErrorMessages(), "; "))
		s.logger.Warn("order payload rejected", map[string]interface{}{
			"code":    string(stdErr.Code),
			"details": stdErr.Details,
		})
		s.writeFailure(w, "invalid order payload: "+stdErr.Details)
		return
	}

	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.writeFailure(w, "decode order payload")
		return
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	s.process(w, r.Context(), &event)
}

// handleTest runs the pipeline against the fixed synthetic order. The request
// body, if any, is ignored.
func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.process(w, r.Context(), SyntheticOrder())
}

func (s *Server) process(w http.ResponseWriter, ctx context.Context, event *models.OrderEvent) {
	reqCtx, cancel := context.WithTimeout(ctx, s.gateway.config.RequestTimeout)
	defer cancel()

	response, err := s.gateway.Process(reqCtx, event)
	if err != nil {
		s.writeFailure(w, "order processing failed")
		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"service": s.service,
		"status":  "healthy",
		"version": s.version,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for _, check := range s.readyChecks {
		if err := check.Check(ctx); err != nil {
			s.logger.Warn("readiness check failed", map[string]interface{}{
				"dependency": check.Name,
				"error":      err.Error(),
			})
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":     "not ready",
				"dependency": check.Name,
			})
			return
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeFailure(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusInternalServerError, &models.IngestResponse{
		Success: false,
		Error:   message,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encode failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
