package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"viktresan/internal/tracker"
)

type WeightsHandler struct {
	svc *tracker.Service
}

func NewWeightsHandler(svc *tracker.Service) *WeightsHandler {
	return &WeightsHandler{svc: svc}
}

type addWeightRequest struct {
	Weight float64 `json:"weight"`
	Date   string  `json:"date"` // YYYY-MM-DD, defaults to today
	Public bool    `json:"public"`
}

// Add godoc
// @Summary Log a weight entry
// @Description Stores the entry, recomputes stars from cumulative loss, and returns a feedback message
// @Tags weights
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} tracker.RecordResult
// @Failure 400 {string} string "Bad request"
// @Router /weights [post]
func (h *WeightsHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var req addWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "invalid date format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	result, err := h.svc.RecordWeight(r.Context(), userID, req.Weight, date, req.Public)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidInput) {
			http.Error(w, "weight must be a positive number", http.StatusBadRequest)
			return
		}
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

func (h *WeightsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	entries, err := h.svc.ListWeights(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	out := make([]weightEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toWeightEntryDTO(e))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (h *WeightsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	entryID, err := strconv.Atoi(chi.URLParam(r, "entryID"))
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteWeight(r.Context(), userID, entryID); err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
