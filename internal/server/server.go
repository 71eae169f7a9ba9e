package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vendidero/shiptastic-ups/internal/storage"
	"github.com/vendidero/shiptastic-ups/internal/telemetry"
	"github.com/vendidero/shiptastic-ups/pkg/shipper"
	"go.uber.org/zap"
)

// Server is the HTTP server exposing the registered carriers.
type Server struct {
	port     int
	registry *shipper.Registry
	store    shipper.ArtifactStore
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
	gatherer prometheus.Gatherer
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance. A nil store returns label files inline
// only.
func New(cfg Config, registry *shipper.Registry, store shipper.ArtifactStore, logger *otelzap.Logger) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		port:     cfg.Port,
		registry: registry,
		store:    store,
		logger:   logger,
		metrics:  telemetry.NewMetrics(reg),
		gatherer: reg,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/connections", s.handleConnections)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /labels/{carrier}", s.handleGetLabel)
	mux.HandleFunc("DELETE /labels/{carrier}/{tracking}", s.handleCancelLabel)
	mux.HandleFunc("GET /pickup-points/{carrier}", s.handleFindPickupPoints)
	mux.HandleFunc("GET /pickup-points/{carrier}/{id}", s.handleFindPickupPointByID)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	// Label calls may take up to the carrier write timeout.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type healthResponse struct {
	Status   string   `json:"status"`
	Carriers []string `json:"carriers"`
}

// handleHealth is a liveness check. It does not contact any carrier.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Carriers: s.registry.Names()})
}

type connectionsResponse struct {
	Status   string          `json:"status"`
	Carriers map[string]bool `json:"carriers"`
}

// handleConnections checks the credentials of every carrier. Each call
// requests fresh access tokens, so it is not meant for frequent probes.
func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	results := s.registry.TestConnections(r.Context())

	resp := connectionsResponse{Status: "ok", Carriers: results}
	status := http.StatusOK
	for _, ok := range results {
		if !ok {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

// kindArtifactError marks a booked label whose file could not be built.
const kindArtifactError = "artifact_error"

type labelResponse struct {
	TrackingNumber string            `json:"tracking_number"`
	Charges        shipper.Money     `json:"charges"`
	Kind           string            `json:"kind,omitempty"`
	Files          map[string]string `json:"files,omitempty"`
	Label          []byte            `json:"label,omitempty"`
	RawFiles       map[string][]byte `json:"raw_files,omitempty"`
	Warnings       []string          `json:"warnings,omitempty"`
}

func (s *Server) handleGetLabel(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}

	var label shipper.Label
	if err := json.NewDecoder(r.Body).Decode(&label); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON: "+err.Error())
		return
	}

	start := time.Now()
	artifact, err := carrier.GetLabel(r.Context(), &label)
	s.observe("get_label", carrier.Name(), start, err)

	if err != nil && (artifact == nil || !shipper.IsArtifactError(err)) {
		s.logger.Ctx(r.Context()).Error("Label request failed",
			zap.String("carrier", carrier.Name()),
			zap.Error(err),
		)
		s.writeCarrierError(w, err)
		return
	}

	resp := labelResponse{
		TrackingNumber: artifact.TrackingNumber,
		Charges:        artifact.Charges,
	}
	if err != nil {
		resp.Kind = kindArtifactError
		resp.Warnings = append(resp.Warnings, messages(err)...)
	}

	if s.store != nil {
		paths, saveErr := storage.SaveArtifact(r.Context(), s.store, artifact)
		if saveErr != nil {
			s.logger.Ctx(r.Context()).Error("Saving label files failed",
				zap.String("tracking_number", artifact.TrackingNumber),
				zap.Error(saveErr),
			)
			resp.Warnings = append(resp.Warnings, messages(saveErr)...)
		}
		resp.Files = paths
	} else {
		resp.Label = artifact.PrimaryFile
		if len(artifact.PrimaryFile) == 0 {
			resp.RawFiles = storage.RawFiles(artifact.Booking)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelLabel(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}

	start := time.Now()
	err := carrier.CancelLabel(r.Context(), &shipper.Label{TrackingNumber: r.PathValue("tracking")})
	s.observe("cancel_label", carrier.Name(), start, err)

	if err != nil {
		s.writeCarrierError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFindPickupPoints(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}

	address, ok := addressFromQuery(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive number")
			return
		}
		limit = n
	}

	start := time.Now()
	points, err := carrier.FindPickupPoints(r.Context(), address, limit)
	s.observe("find_pickup_points", carrier.Name(), start, err)

	if err != nil {
		s.writeCarrierError(w, err)
		return
	}
	if points == nil {
		points = []shipper.PickupPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleFindPickupPointByID(w http.ResponseWriter, r *http.Request) {
	carrier, ok := s.carrier(w, r)
	if !ok {
		return
	}

	address, ok := addressFromQuery(w, r)
	if !ok {
		return
	}

	start := time.Now()
	point, err := carrier.FindPickupPointByID(r.Context(), r.PathValue("id"), address)
	s.observe("find_pickup_point", carrier.Name(), start, err)

	if err != nil {
		s.writeCarrierError(w, err)
		return
	}
	if point == nil {
		writeError(w, http.StatusNotFound, "not_found", "Pickup point not found")
		return
	}
	writeJSON(w, http.StatusOK, point)
}

func (s *Server) carrier(w http.ResponseWriter, r *http.Request) (shipper.Shipper, bool) {
	carrier, err := s.registry.Get(r.PathValue("carrier"))
	if err != nil {
		writeError(w, http.StatusNotFound, "carrier_not_found", err.Error())
		return nil, false
	}
	return carrier, true
}

func (s *Server) observe(operation, carrier string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		s.metrics.RecordError(carrier, err)
	}
	s.metrics.RecordRequest(operation, carrier, status, time.Since(start).Seconds())
}

func addressFromQuery(w http.ResponseWriter, r *http.Request) (shipper.Address, bool) {
	q := r.URL.Query()
	address := shipper.Address{
		Line1:       q.Get("street"),
		City:        q.Get("city"),
		State:       q.Get("state"),
		PostalCode:  q.Get("postal_code"),
		CountryCode: q.Get("country"),
	}
	if address.CountryCode == "" || (address.PostalCode == "" && address.City == "") {
		writeError(w, http.StatusBadRequest, "invalid_address", "country and postal_code or city are required")
		return address, false
	}
	return address, true
}

type errorEntry struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Kind   string       `json:"kind,omitempty"`
	Errors []errorEntry `json:"errors"`
}

func (s *Server) writeCarrierError(w http.ResponseWriter, err error) {
	var shipperErr *shipper.ShipperError
	if !errors.As(err, &shipperErr) {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	status := http.StatusUnprocessableEntity
	switch shipperErr.Kind {
	case shipper.KindAuth:
		status = http.StatusBadGateway
	case shipper.KindConnectivity:
		status = http.StatusServiceUnavailable
	case shipper.KindArtifact:
		status = http.StatusInternalServerError
	}
	if errors.Is(err, shipper.ErrRateLimitExceeded) {
		status = http.StatusTooManyRequests
	}

	resp := errorResponse{Kind: string(shipperErr.Kind)}
	for _, e := range shipperErr.Entries {
		resp.Errors = append(resp.Errors, errorEntry{Code: e.Code, Message: e.Message})
	}
	writeJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Errors: []errorEntry{{Code: code, Message: message}}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func messages(err error) []string {
	var shipperErr *shipper.ShipperError
	if errors.As(err, &shipperErr) {
		return shipperErr.Messages()
	}
	return []string{err.Error()}
}
