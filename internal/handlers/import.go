package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

// ImportHandler bulk-loads historical data, e.g. when moving over from a
// spreadsheet or another tracker.
type ImportHandler struct {
	db *sqlx.DB
}

func NewImportHandler(db *sqlx.DB) *ImportHandler {
	return &ImportHandler{db: db}
}

type importedWeight struct {
	Weight float64 `json:"weight"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Public bool    `json:"public"`
}

type importedWalk struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	DistanceKm  float64 `json:"distance_km"`
	DurationMin *int    `json:"duration_min"`
	Note        *string `json:"note"`
}

type importRequest struct {
	Weights []importedWeight `json:"weights"`
	Walks   []importedWalk   `json:"walks"`
}

// ImportData godoc
// @Summary Import historical entries
// @Description Inserts a batch of weight and walk entries for the authenticated user in one transaction
// @Tags import
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Data imported"
// @Failure 400 {string} string "Bad request"
// @Failure 500 {string} string "Internal server error"
// @Router /import [post]
func (h *ImportHandler) ImportData(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Weights) == 0 && len(req.Walks) == 0 {
		http.Error(w, "no entries provided", http.StatusBadRequest)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		http.Error(w, "could not start transaction", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	if len(req.Weights) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO weight_entries (user_id, weight, entry_date, public) VALUES ($1, $2, $3, $4)`)
		if err != nil {
			http.Error(w, "could not prepare statement", http.StatusInternalServerError)
			return
		}
		defer stmt.Close()
		for _, entry := range req.Weights {
			if entry.Weight <= 0 || entry.Date == "" {
				http.Error(w, fmt.Sprintf("invalid weight entry: %+v", entry), http.StatusBadRequest)
				return
			}
			date, err := time.Parse("2006-01-02", entry.Date)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid date for weight entry: %s", entry.Date), http.StatusBadRequest)
				return
			}
			if _, err := stmt.Exec(userID, entry.Weight, date, entry.Public); err != nil {
				http.Error(w, "could not save weight entry", http.StatusInternalServerError)
				return
			}
		}
	}

	if len(req.Walks) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO walk_entries (user_id, entry_date, distance_km, duration_min, note) VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			http.Error(w, "could not prepare statement", http.StatusInternalServerError)
			return
		}
		defer stmt.Close()
		for _, entry := range req.Walks {
			if entry.DistanceKm <= 0 || entry.Date == "" {
				http.Error(w, fmt.Sprintf("invalid walk entry: %+v", entry), http.StatusBadRequest)
				return
			}
			date, err := time.Parse("2006-01-02", entry.Date)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid date for walk entry: %s", entry.Date), http.StatusBadRequest)
				return
			}
			if _, err := stmt.Exec(userID, date, entry.DistanceKm, entry.DurationMin, entry.Note); err != nil {
				http.Error(w, "could not save walk entry", http.StatusInternalServerError)
				return
			}
		}
	}

	// Imported history can change the latest weight; stars are recomputed on
	// the next log rather than here.
	if err := tx.Commit(); err != nil {
		http.Error(w, "could not commit transaction", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "data imported successfully",
		"weights": len(req.Weights),
		"walks":   len(req.Walks),
	})
}
