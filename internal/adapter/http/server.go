package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darshan1137/case/internal/density"
	"github.com/darshan1137/case/internal/domain"
	"github.com/darshan1137/case/internal/engine"
	"github.com/darshan1137/case/internal/ward"
)

// Service is the query surface the HTTP API needs. *engine.Engine satisfies it.
type Service interface {
	sharedobs.ReadinessChecker
	Wards() []string
	Ward(code string) (ward.Region, bool)
	ResolveWard(lat, lon float64) ward.Resolution
	FindHotspots(ctx context.Context, minCount int, radiusKm float64) ([]density.Hotspot, error)
	Prioritize(ctx context.Context, lat, lon, radiusKm float64) engine.Priority
}

// Defaults holds the query parameter values used when a request omits them.
type Defaults struct {
	HotspotMinTickets int
	HotspotRadiusKm   float64
	PriorityRadiusKm  float64
}

// Server exposes health, readiness, metrics and the ward/density query API.
type Server struct {
	httpServer *http.Server
	svc        Service
	defaults   Defaults
	logger     *slog.Logger
}

type hotspotsResponse struct {
	Success      bool              `json:"success"`
	HotspotCount int               `json:"hotspot_count"`
	Hotspots     []density.Hotspot `json:"hotspots"`
}

type wardsResponse struct {
	Count int      `json:"count"`
	Wards []string `json:"wards"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

var errMissingParam = errors.New("missing parameter")

// NewServer creates an HTTP server with probe, metrics and /v1 query routes.
func NewServer(addr string, svc Service, defaults Defaults, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:      svc,
		defaults: defaults,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/wards", s.handleWards)
	mux.HandleFunc("GET /v1/wards/resolve", s.handleResolve)
	mux.HandleFunc("GET /v1/wards/{code...}", s.handleWard)
	mux.HandleFunc("GET /v1/hotspots", s.handleHotspots)
	mux.HandleFunc("GET /v1/priority", s.handlePriority)

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

func (s *Server) handleWards(w http.ResponseWriter, _ *http.Request) {
	codes := s.svc.Wards()
	if codes == nil {
		codes = []string{}
	}
	writeJSON(w, http.StatusOK, wardsResponse{Count: len(codes), Wards: codes})
}

func (s *Server) handleWard(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	region, ok := s.svc.Ward(code)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("ward %q not found", code))
		return
	}
	writeJSON(w, http.StatusOK, region)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := coordinates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.ResolveWard(lat, lon))
}

func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	minCount, err := intParam(r, "min_tickets", s.defaults.HotspotMinTickets)
	if err != nil || minCount < 1 {
		writeError(w, http.StatusBadRequest, "min_tickets must be a positive integer")
		return
	}
	radius, err := radiusParam(r, s.defaults.HotspotRadiusKm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hotspots, err := s.svc.FindHotspots(r.Context(), minCount, radius)
	if err != nil {
		s.logger.Error("hotspot query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "hotspot query failed")
		return
	}
	writeJSON(w, http.StatusOK, hotspotsResponse{
		Success:      true,
		HotspotCount: len(hotspots),
		Hotspots:     hotspots,
	})
}

func (s *Server) handlePriority(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := coordinates(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	radius, err := radiusParam(r, s.defaults.PriorityRadiusKm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Prioritize(r.Context(), lat, lon, radius))
}

func coordinates(r *http.Request) (lat, lon float64, err error) {
	lat, err = floatParam(r, "lat")
	if err != nil {
		return 0, 0, err
	}
	lon, err = floatParam(r, "lon")
	if err != nil {
		return 0, 0, err
	}
	if !domain.ValidCoordinates(lat, lon) {
		return 0, 0, fmt.Errorf("coordinates out of range: lat=%v lon=%v", lat, lon)
	}
	return lat, lon, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", errMissingParam, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return v, nil
}

func radiusParam(r *http.Request, def float64) (float64, error) {
	if r.URL.Query().Get("radius_km") == "" {
		return def, nil
	}
	v, err := floatParam(r, "radius_km")
	if err != nil {
		return 0, err
	}
	if !(v > 0) {
		return 0, errors.New("radius_km must be positive")
	}
	return v, nil
}

func intParam(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
