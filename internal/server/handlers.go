package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/willcgage/wirelessboard/internal/config"
	"github.com/willcgage/wirelessboard/internal/dcid"
	"github.com/willcgage/wirelessboard/internal/logging"
	"github.com/willcgage/wirelessboard/internal/registry"
)

// dataPayload is the /data.json document the dashboard polls.
type dataPayload struct {
	Discovered []registry.Device `json:"discovered"`
	DCIDStatus dcid.Status       `json:"dcid_status"`
	URL        string            `json:"url"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func (s *Server) handleDataJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dataPayload{
		Discovered: s.source.Snapshot(),
		DCIDStatus: s.db.Status(),
		URL:        s.localURL(),
	})
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.source.Snapshot())
}

func (s *Server) handleDiscoveryStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.db.Status())
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.DiscoverySettings())
}

// handleSettingsPost accepts the loose client shapes, validates them,
// persists the normalized settings, and echoes the result. The engine
// picks up the change on its next cycle through the settings provider.
func (s *Server) handleSettingsPost(w http.ResponseWriter, r *http.Request) {
	var raw config.RawDiscoverySettings
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "invalid JSON body"})
		return
	}

	settings, err := s.store.UpdateDiscovery(raw)
	if err != nil {
		logging.Error("Failed to persist discovery settings", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorPayload{Error: "failed to save settings"})
		return
	}

	logging.Info("Discovery settings updated",
		zap.Bool("auto", settings.Auto),
		zap.Strings("subnets", settings.Subnets),
		zap.Int("scan_interval", settings.ScanInterval),
		zap.Int("timeout_ms", settings.TimeoutMS),
	)
	writeJSON(w, http.StatusOK, settings)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
