package perfserver

import (
	"net/http"
	"os"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/perfwatch/pkg/history"
)

// Health is the body of GET /health.
type Health struct {
	SourcePresent    bool          `json:"source_present"`
	CollectorRunning bool          `json:"collector_running"`
	History          history.Stats `json:"history"`
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/api/data", s.data).Methods(http.MethodGet)
	s.router.HandleFunc("/api/latest", s.latest).Methods(http.MethodGet)
	s.router.HandleFunc("/api/summary", s.summary).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.metrics).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", s.staticFiles())).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.index).Methods(http.MethodGet)
}

func (s *Server) data(w http.ResponseWriter, r *http.Request) {
	samples, err := s.history.Snapshot()
	if err != nil {
		refreshFailed(w, err)
		return
	}
	log.WithField("samples", len(samples)).Debug("retrieved samples")
	writeJSON(w, samples)
}

func (s *Server) latest(w http.ResponseWriter, r *http.Request) {
	sample, ok, err := s.history.Latest()
	if err != nil {
		refreshFailed(w, err)
		return
	}
	if !ok {
		writeJSON(w, map[string]interface{}{})
		return
	}
	log.WithField("timestamp", sample.Timestamp).Debug("retrieved latest sample")
	writeJSON(w, sample)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	samples, err := s.history.Snapshot()
	if err != nil {
		refreshFailed(w, err)
		return
	}
	writeJSON(w, history.Summarize(samples))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	h := Health{History: s.history.Stats()}

	if _, err := os.Stat(s.cfg.SourcePath); err == nil {
		h.SourcePresent = true
	}

	if s.cfg.CollectorName != "" {
		running, err := collectorRunning(s.cfg.CollectorName)
		if err != nil {
			log.Warnf("error looking up collector process: %v", err)
		}
		h.CollectorRunning = running
	}

	log.WithFields(map[string]interface{}{
		"source-present":    h.SourcePresent,
		"collector-running": h.CollectorRunning,
	}).Debug("checked health")
	writeJSON(w, h)
}

func refreshFailed(w http.ResponseWriter, err error) {
	log.Errorf("error refreshing samples: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("error encoding response to json: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
