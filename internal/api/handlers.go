// Package api exposes the engine over HTTP: live and scheduled snapshots,
// match lookup, bet tracking, and provider diagnostics.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/XavierBriggs/Argus/internal/credentials"
	"github.com/XavierBriggs/Argus/internal/fetcher"
)

// ProviderPool pairs a provider name with its credential pool for the
// diagnostics endpoint.
type ProviderPool struct {
	Name string
	Pool *credentials.Pool
}

// Handler contains dependencies for match-data HTTP handlers
type Handler struct {
	fetcher *fetcher.Fetcher
	pools   []ProviderPool
}

// NewHandler creates a new handler with dependencies
func NewHandler(f *fetcher.Fetcher, pools []ProviderPool) *Handler {
	return &Handler{
		fetcher: f,
		pools:   pools,
	}
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "argus",
	})
}

// GetLive returns the current live snapshot. Source in the payload tells
// the caller whether the data came from a provider, the cache, or is empty
// because every provider is rate limited.
func (h *Handler) GetLive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	snap := h.fetcher.GetLive(ctx)
	respondJSON(w, http.StatusOK, snap)
}

// GetSchedule returns upcoming fixtures.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	snap := h.fetcher.GetSchedule(ctx)
	respondJSON(w, http.StatusOK, snap)
}

// FindMatch resolves a fixture from team names.
// Query params: home, away
func (h *Handler) FindMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	home := r.URL.Query().Get("home")
	away := r.URL.Query().Get("away")
	if home == "" || away == "" {
		respondError(w, http.StatusBadRequest, "home and away are required", nil)
		return
	}

	match := h.fetcher.FindMatch(ctx, home, away)
	if match == nil {
		respondError(w, http.StatusNotFound, "no fixture matched the given teams", nil)
		return
	}

	respondJSON(w, http.StatusOK, match)
}

// GetMatch retrieves a single match by its canonical ID
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	matchID := chi.URLParam(r, "matchID")
	if matchID == "" {
		respondError(w, http.StatusBadRequest, "match_id is required", nil)
		return
	}

	match := h.fetcher.MatchByID(ctx, matchID)
	if match == nil {
		respondError(w, http.StatusNotFound, "match not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, match)
}

// GetProviders reports credential pool health per provider
func (h *Handler) GetProviders(w http.ResponseWriter, r *http.Request) {
	type providerStatus struct {
		Name         string `json:"name"`
		TotalKeys    int    `json:"total_keys"`
		ActiveKeys   int    `json:"active_keys"`
		DisabledKeys int    `json:"disabled_keys"`
	}

	statuses := make([]providerStatus, 0, len(h.pools))
	for _, p := range h.pools {
		active, disabled := p.Pool.Stats()
		statuses = append(statuses, providerStatus{
			Name:         p.Name,
			TotalKeys:    p.Pool.Size(),
			ActiveKeys:   active,
			DisabledKeys: disabled,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"providers": statuses,
		"count":     len(statuses),
	})
}

// Helper functions

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}

	if err != nil {
		log.Printf("[API] error: %s - %v", message, err)
	}

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		log.Printf("[API] error encoding error response: %v", err)
	}
}
