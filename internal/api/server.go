// Package api provides the HTTP server for Vigil.
// It exposes the node's /ping probe target, availability status, and
// peer directory management.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vigil-network/vigil/internal/availability"
	"github.com/vigil-network/vigil/internal/domain"
	"github.com/vigil-network/vigil/internal/health"
	"github.com/vigil-network/vigil/internal/infra/directory"
	"github.com/vigil-network/vigil/internal/protocol"
)

// RoundSource reads archived availability rounds.
type RoundSource interface {
	RecentRounds(n int) ([]domain.RoundRecord, error)
}

// Server is the Vigil HTTP API server.
type Server struct {
	identity       string
	sensor         *availability.Sensor
	peers          *directory.Directory
	checker        *health.Checker
	rounds         RoundSource
	defaultPort    int
	startedAt      time.Time
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(identity string, sensor *availability.Sensor, peers *directory.Directory, checker *health.Checker, rounds RoundSource, defaultPort int) *Server {
	return &Server{
		identity:    identity,
		sensor:      sensor,
		peers:       peers,
		checker:     checker,
		rounds:      rounds,
		defaultPort: defaultPort,
		startedAt:   time.Now(),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Probe target: peers measure this node's liveness here.
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Health check with per-check detail.
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/peers", s.handleListPeers)
		r.Post("/peers", s.handleAddPeer)
		r.Delete("/peers", s.handleRemovePeer)
		r.Get("/rounds", s.handleRounds)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	statuses := s.checker.Statuses()
	code := http.StatusOK
	if !s.checker.IsHealthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"healthy": s.checker.IsHealthy(),
		"checks":  statuses,
	})
}

// NodeStatus is the /api/status response body.
type NodeStatus struct {
	Identity  string              `json:"identity"`
	Uptime    string              `json:"uptime"`
	PeerCount int                 `json:"peer_count"`
	Lonely    bool                `json:"lonely"`
	Sensor    availability.Status `json:"sensor"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NodeStatus{
		Identity:  s.identity,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		PeerCount: s.peers.Len(),
		Lonely:    s.peers.Lonely(),
		Sensor:    s.sensor.Status(),
	})
}

func (s *Server) handleListPeers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"peers": s.peers.KnownPeers(),
	})
}

func (s *Server) handleAddPeer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Locator string `json:"locator"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Locator == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"locator\": \"[identity@]host[:port]\"}")
		return
	}

	host, port, identity, err := protocol.ParseNodeURIWith(req.Locator, s.defaultPort, protocol.IsChecksumAddress)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	addr := protocol.NewAddress(host, port)
	peer := domain.Peer{
		Identity: identity,
		Host:     addr.Host,
		Port:     addr.Port,
		LastSeen: time.Now(),
		State:    domain.PeerAlive,
	}
	s.peers.Add(peer)
	writeJSON(w, http.StatusCreated, peer)
}

func (s *Server) handleRemovePeer(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Query().Get("endpoint")
	if endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint query parameter is required")
		return
	}
	if err := s.peers.Remove(endpoint); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"removed": endpoint})
}

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	if s.rounds == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"rounds": []domain.RoundRecord{}})
		return
	}
	recs, err := s.rounds.RecentRounds(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []domain.RoundRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rounds": recs})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
