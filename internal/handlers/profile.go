package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"viktresan/internal/models"
)

type ProfileHandler struct {
	db *sqlx.DB
}

func NewProfileHandler(db *sqlx.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetMe godoc
// @Summary Get own profile
// @Description Returns the profile with derived progress: percent-to-goal, stars and medal tier
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileDTO
// @Failure 404 {string} string "Not found"
// @Router /profile [get]
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	var p models.Profile
	if err := h.db.Get(&p, `
		SELECT user_id, first_name, last_name, start_weight, goal_weight, stars, public, created_at, updated_at
		FROM profiles WHERE user_id=$1`, userID); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var latest *float64
	var lw float64
	err := h.db.Get(&lw, `
		SELECT weight FROM weight_entries
		WHERE user_id=$1 ORDER BY entry_date DESC, id DESC LIMIT 1`, userID)
	if err == nil {
		latest = &lw
	} else if !errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToProfileDTO(p, latest))
}

// UpdateMe updates the provided fields on the profile.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var body struct {
		FirstName   *string  `json:"first_name"`
		LastName    *string  `json:"last_name"`
		StartWeight *float64 `json:"start_weight"`
		GoalWeight  *float64 `json:"goal_weight"`
		Public      *bool    `json:"public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if (body.StartWeight != nil && *body.StartWeight <= 0) || (body.GoalWeight != nil && *body.GoalWeight <= 0) {
		http.Error(w, "weights must be positive", http.StatusBadRequest)
		return
	}

	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1
	add := func(column string, v interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s=$%d", column, argIdx))
		args = append(args, v)
		argIdx++
	}
	if body.FirstName != nil {
		add("first_name", *body.FirstName)
	}
	if body.LastName != nil {
		add("last_name", *body.LastName)
	}
	if body.StartWeight != nil {
		add("start_weight", *body.StartWeight)
	}
	if body.GoalWeight != nil {
		add("goal_weight", *body.GoalWeight)
	}
	if body.Public != nil {
		add("public", *body.Public)
	}
	if len(setClauses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	setClauses = append(setClauses, "updated_at=NOW()")

	query := "UPDATE profiles SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE user_id=$%d", argIdx)
	args = append(args, userID)
	if _, err := h.db.Exec(query, args...); err != nil {
		http.Error(w, "could not update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
