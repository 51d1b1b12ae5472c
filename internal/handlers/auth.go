package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"viktresan/internal/models"
	"viktresan/internal/services"
)

type AuthHandler struct {
	db        *sqlx.DB
	encSvc    *services.EncryptionService
	jwtSecret []byte
	logger    *zap.Logger
}

func NewAuthHandler(db *sqlx.DB, encSvc *services.EncryptionService, jwtSecret []byte, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, encSvc: encSvc, jwtSecret: jwtSecret, logger: logger}
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Signup creates the account and its profile row in one transaction, then
// returns a token so the client is signed in right away.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "could not hash password", http.StatusInternalServerError)
		return
	}

	user := models.User{Email: req.Email, PasswordHash: string(hashed)}
	if err := h.encSvc.EncryptUser(&user); err != nil {
		http.Error(w, "could not encrypt user data", http.StatusInternalServerError)
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	err = tx.QueryRowx(`
		INSERT INTO users (email, email_blind_index, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id`, user.Email, user.EmailBlindIndex, user.PasswordHash).Scan(&user.ID)
	if err != nil {
		http.Error(w, "could not create user", http.StatusBadRequest)
		return
	}
	if _, err := tx.Exec(`
		INSERT INTO profiles (user_id, first_name, last_name)
		VALUES ($1, $2, $3)`, user.ID, req.FirstName, req.LastName); err != nil {
		http.Error(w, "could not create profile", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	token, err := h.issueJWT(user.ID)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"token": token})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	if c.Email == "" || c.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	var user models.User
	err := h.db.Get(&user, `
		SELECT id, email, email_blind_index, password_hash, created_at
		FROM users WHERE email_blind_index=$1`, h.encSvc.EmailBlindIndex(c.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(c.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := h.issueJWT(user.ID)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"token": token})
}

// ResetRequest issues a single-use reset token. The response is 204 whether
// or not the email matches an account, so addresses cannot be probed. Mail
// delivery is outside this service; the token is handed to the mailer via
// the log for now.
func (h *AuthHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(strings.ToLower(body.Email))

	var userID int
	err := h.db.Get(&userID, `SELECT id FROM users WHERE email_blind_index=$1`, h.encSvc.EmailBlindIndex(email))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	token := uuid.New()
	if _, err := h.db.Exec(`
		INSERT INTO password_resets (token, user_id, expires_at)
		VALUES ($1, $2, NOW() + INTERVAL '1 hour')`, token, userID); err != nil {
		http.Error(w, "could not create reset token", http.StatusInternalServerError)
		return
	}
	h.logger.Info("password reset token issued",
		zap.Int("user_id", userID),
		zap.String("token", token.String()),
	)
	w.WriteHeader(http.StatusNoContent)
}

// ResetConfirm trades a valid token for a new password.
func (h *AuthHandler) ResetConfirm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" || body.Password == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	token, err := uuid.Parse(body.Token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusBadRequest)
		return
	}

	var reset models.PasswordReset
	err = h.db.Get(&reset, `
		SELECT token, user_id, expires_at, used, created_at
		FROM password_resets
		WHERE token=$1 AND used=false AND expires_at > NOW()`, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "invalid or expired token", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "could not hash password", http.StatusInternalServerError)
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`UPDATE users SET password_hash=$1 WHERE id=$2`, string(hashed), reset.UserID); err != nil {
		http.Error(w, "could not update password", http.StatusInternalServerError)
		return
	}
	if _, err := tx.Exec(`UPDATE password_resets SET used=true WHERE token=$1`, token); err != nil {
		http.Error(w, "could not update password", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueJWT(userID int) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
