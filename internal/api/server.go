package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"NetSentry/internal/engine/monitor"

	"github.com/gorilla/mux"
)

// Server exposes the agent's live detection state over HTTP: a stats
// snapshot, an on-demand anomaly sweep, and a health probe.
type Server struct {
	monitor *monitor.Monitor
	server  *http.Server
}

// NewServer builds the router around the running monitor.
func NewServer(listenAddr string, m *monitor.Monitor) *Server {
	s := &Server{monitor: m}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/stats", s.statsHandler).Methods("GET")
	r.HandleFunc("/api/v1/sweep", s.sweepHandler).Methods("POST")
	r.HandleFunc("/api/v1/health", s.healthHandler).Methods("GET")

	s.server = &http.Server{
		Addr:    listenAddr,
		Handler: r,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the HTTP server in the background.
func (s *Server) Start() {
	go func() {
		log.Printf("API server starting on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", s.server.Addr, err)
		}
	}()
}

// Stop shuts the HTTP server down gracefully.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Printf("API server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}

// statsHandler returns a snapshot of the shared detection state plus the
// dropped-alert counter.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.monitor.Stats().TakeSnapshot()
	resp := struct {
		BandwidthUsage  float64     `json:"bandwidth_usage"`
		ConnectionCount int         `json:"connection_count"`
		PacketCount     uint64      `json:"packet_count"`
		DroppedAlerts   uint64      `json:"dropped_alerts"`
		Connections     interface{} `json:"connections"`
	}{
		BandwidthUsage:  snap.BandwidthUsage,
		ConnectionCount: snap.ConnectionCount,
		PacketCount:     snap.PacketCount,
		DroppedAlerts:   s.monitor.DroppedAlerts(),
		Connections:     snap.Connections,
	}
	writeJSON(w, http.StatusOK, resp)
}

// sweepHandler triggers one anomaly sweep. The resulting alert, if any, is
// both returned to the caller and emitted through the normal egress path.
func (s *Server) sweepHandler(w http.ResponseWriter, r *http.Request) {
	alert := s.monitor.RunSweep()
	if alert == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
