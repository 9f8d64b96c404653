package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/XavierBriggs/Argus/internal/correlate"
	"github.com/XavierBriggs/Argus/internal/fetcher"
	"github.com/XavierBriggs/Argus/internal/notifier"
	"github.com/XavierBriggs/Argus/internal/store"
	"github.com/XavierBriggs/Argus/pkg/models"
)

// BetHandler handles bet tracking requests
type BetHandler struct {
	store      store.Store
	fetcher    *fetcher.Fetcher
	correlator *correlate.Engine
}

// NewBetHandler creates a new bet handler
func NewBetHandler(s store.Store, f *fetcher.Fetcher) *BetHandler {
	return &BetHandler{
		store:      s,
		fetcher:    f,
		correlator: correlate.NewEngine(),
	}
}

// CreateBet registers a bet slip for live tracking
func (h *BetHandler) CreateBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var bet models.TrackedBet
	if err := json.NewDecoder(r.Body).Decode(&bet); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if len(bet.Selections) == 0 {
		respondError(w, http.StatusBadRequest, "at least one selection is required", nil)
		return
	}
	for _, sel := range bet.Selections {
		if sel.HomeTeam == "" || sel.AwayTeam == "" {
			respondError(w, http.StatusBadRequest, "each selection needs home_team and away_team", nil)
			return
		}
	}

	if bet.Status == "" {
		bet.Status = models.BetStatusPending
	}
	if bet.CreatedAt.IsZero() {
		bet.CreatedAt = time.Now().UTC()
	}

	if err := h.store.CreateBet(ctx, &bet); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create bet", err)
		return
	}

	respondJSON(w, http.StatusCreated, bet)
}

// GetBets retrieves all tracked bets, newest first
func (h *BetHandler) GetBets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bets, err := h.store.ListBets(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bets", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bets":  bets,
		"count": len(bets),
	})
}

// GetBet retrieves a single bet by ID
func (h *BetHandler) GetBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	betID := chi.URLParam(r, "betID")
	if betID == "" {
		respondError(w, http.StatusBadRequest, "bet_id is required", nil)
		return
	}

	bet, err := h.store.GetBet(ctx, betID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bet", err)
		return
	}
	if bet == nil {
		respondError(w, http.StatusNotFound, "bet not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, bet)
}

// GetBetLive enriches one bet with the current live snapshot on demand
func (h *BetHandler) GetBetLive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	betID := chi.URLParam(r, "betID")
	bet, err := h.store.GetBet(ctx, betID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bet", err)
		return
	}
	if bet == nil {
		respondError(w, http.StatusNotFound, "bet not found", nil)
		return
	}

	snap := h.fetcher.GetLive(ctx)
	enriched := h.correlator.Correlate([]models.TrackedBet{*bet}, snap)

	if len(enriched) == 0 {
		// Bet exists but none of its fixtures are live right now.
		respondJSON(w, http.StatusOK, models.EnrichedBet{BetID: bet.ID, Selections: []models.EnrichedSelection{}})
		return
	}

	respondJSON(w, http.StatusOK, enriched[0])
}

// UpdateBetStatus changes a bet's lifecycle status
func (h *BetHandler) UpdateBetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	betID := chi.URLParam(r, "betID")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if body.Status == "" {
		respondError(w, http.StatusBadRequest, "status is required", nil)
		return
	}

	if err := h.store.UpdateBetStatus(ctx, betID, body.Status); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update bet", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     betID,
		"status": body.Status,
	})
}

// DeleteBet removes a bet and its subscriptions
func (h *BetHandler) DeleteBet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	betID := chi.URLParam(r, "betID")
	if err := h.store.DeleteBet(ctx, betID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete bet", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateSubscription attaches a notification target to a bet
func (h *BetHandler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	betID := chi.URLParam(r, "betID")
	bet, err := h.store.GetBet(ctx, betID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve bet", err)
		return
	}
	if bet == nil {
		respondError(w, http.StatusNotFound, "bet not found", nil)
		return
	}

	var sub models.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if sub.Channel != notifier.ChannelTelegram && sub.Channel != notifier.ChannelWebhook {
		respondError(w, http.StatusBadRequest, "channel must be telegram or webhook", nil)
		return
	}
	if sub.Target == "" {
		respondError(w, http.StatusBadRequest, "target is required", nil)
		return
	}

	sub.BetID = betID
	if err := h.store.CreateSubscription(ctx, &sub); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create subscription", err)
		return
	}

	respondJSON(w, http.StatusCreated, sub)
}
