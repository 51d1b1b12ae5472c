package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"viktresan/internal/sharing"
)

// SharingHandler exposes the access-grant operations. The profile id is
// always the authenticated user's own id, never taken from the request, so
// only owners can manage their grants.
type SharingHandler struct {
	svc *sharing.Service
}

func NewSharingHandler(svc *sharing.Service) *SharingHandler {
	return &SharingHandler{svc: svc}
}

type shareRequest struct {
	Email string `json:"email"`
}

// Share godoc
// @Summary Share profile with a user
// @Description Resolves the email to an account and grants read access; repeating an existing grant is a no-op
// @Tags sharing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.AccessGrant
// @Failure 400 {string} string "Bad request"
// @Failure 404 {string} string "No account with that email"
// @Router /share [post]
func (h *SharingHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	grant, err := h.svc.Grant(r.Context(), userID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, sharing.ErrInvalidInput):
			http.Error(w, "email required", http.StatusBadRequest)
		case errors.Is(err, sharing.ErrNotFound):
			http.Error(w, "no account with that email", http.StatusNotFound)
		default:
			http.Error(w, "could not share profile", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(grant)
}

func (h *SharingHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	viewerID, err := strconv.Atoi(chi.URLParam(r, "viewerID"))
	if err != nil {
		http.Error(w, "invalid viewer id", http.StatusBadRequest)
		return
	}
	if err := h.svc.Revoke(r.Context(), userID, viewerID); err != nil {
		if errors.Is(err, sharing.ErrInvalidInput) {
			http.Error(w, "invalid viewer id", http.StatusBadRequest)
			return
		}
		http.Error(w, "could not revoke", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Viewers returns everyone the caller's profile is shared with, emails
// resolved server-side.
func (h *SharingHandler) Viewers(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	viewers, err := h.svc.Viewers(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not fetch viewers", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"shared_users": viewers})
}

// VisibleProfiles lists public profiles plus those explicitly shared with
// the caller.
func (h *SharingHandler) VisibleProfiles(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	profiles, err := h.svc.VisibleProfiles(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not fetch profiles", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profiles)
}
