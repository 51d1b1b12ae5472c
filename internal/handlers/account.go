package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// AccountHandler owns account-level operations that need elevated store
// access and therefore must never run client-side.
type AccountHandler struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAccountHandler(db *sqlx.DB, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{db: db, logger: logger}
}

// Delete godoc
// @Summary Delete own account
// @Description Removes logged data, grants and the profile best-effort, then the account record; fails only if the account record cannot be removed
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Account deleted"
// @Failure 500 {string} string "Internal server error"
// @Router /account [delete]
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	// Dependent rows first, best-effort: a failed step is logged and skipped
	// so a half-broken dataset still lets people leave. The final identity
	// row is the only hard requirement.
	cleanup := []struct {
		name  string
		query string
	}{
		{"weight entries", `DELETE FROM weight_entries WHERE user_id=$1`},
		{"walk entries", `DELETE FROM walk_entries WHERE user_id=$1`},
		{"access grants", `DELETE FROM profile_access WHERE profile_id=$1 OR viewer_id=$1`},
		{"password resets", `DELETE FROM password_resets WHERE user_id=$1`},
		{"profile", `DELETE FROM profiles WHERE user_id=$1`},
	}
	for _, step := range cleanup {
		if _, err := h.db.Exec(step.query, userID); err != nil {
			h.logger.Warn("account cleanup step failed",
				zap.String("step", step.name),
				zap.Int("user_id", userID),
				zap.Error(err),
			)
		}
	}

	if _, err := h.db.Exec(`DELETE FROM users WHERE id=$1`, userID); err != nil {
		h.logger.Error("could not delete account record",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		http.Error(w, "could not delete account", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"message": "account and related data deleted"})
}
