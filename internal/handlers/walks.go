package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"viktresan/internal/models"
)

type WalksHandler struct {
	db *sqlx.DB
}

func NewWalksHandler(db *sqlx.DB) *WalksHandler {
	return &WalksHandler{db: db}
}

type addWalkRequest struct {
	Date        string  `json:"date"` // YYYY-MM-DD, defaults to today
	DistanceKm  float64 `json:"distance_km"`
	DurationMin *int    `json:"duration_min"`
	Note        *string `json:"note"`
}

func (h *WalksHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var req addWalkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DistanceKm <= 0 {
		http.Error(w, "distance_km must be a positive number", http.StatusBadRequest)
		return
	}
	if req.DurationMin != nil && *req.DurationMin <= 0 {
		http.Error(w, "duration_min must be positive", http.StatusBadRequest)
		return
	}
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			http.Error(w, "invalid date format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	var entry models.WalkEntry
	err := h.db.QueryRowx(`
		INSERT INTO walk_entries (user_id, entry_date, distance_km, duration_min, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, entry_date, distance_km, duration_min, note, created_at`,
		userID, date, req.DistanceKm, req.DurationMin, req.Note).StructScan(&entry)
	if err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toWalkEntryDTO(entry))
}

func (h *WalksHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var entries []models.WalkEntry
	err := h.db.Select(&entries, `
		SELECT id, user_id, entry_date, distance_km, duration_min, note, created_at
		FROM walk_entries
		WHERE user_id=$1
		ORDER BY entry_date DESC, id DESC
		LIMIT 100`, userID)
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	out := make([]walkEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toWalkEntryDTO(e))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (h *WalksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	entryID, err := strconv.Atoi(chi.URLParam(r, "entryID"))
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return
	}
	res, err := h.db.Exec(`DELETE FROM walk_entries WHERE user_id=$1 AND id=$2`, userID, entryID)
	if err != nil {
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
