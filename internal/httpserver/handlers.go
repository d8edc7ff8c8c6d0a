package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pfrederiksen/event-discovery/internal/logger"
)

// Triggerer queues a reconciliation pass without blocking
type Triggerer interface {
	Trigger() bool
}

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func healthz(started time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(healthzResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(started).Seconds(),
		})
	}
}

func runPass(t Triggerer, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !t.Trigger() {
			log.Warn("pass already queued", logger.Fields{"remote_ip": r.RemoteAddr})
			http.Error(w, "pass already queued", http.StatusTooManyRequests)
			return
		}

		log.Info("manual pass triggered via endpoint", logger.Fields{"remote_ip": r.RemoteAddr})
		w.WriteHeader(http.StatusAccepted)
		if _, err := w.Write([]byte("pass queued\n")); err != nil {
			log.Debug("failed to write response", logger.Fields{"error": err.Error()})
		}
	}
}
