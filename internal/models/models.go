package models

import "time"

type User struct {
	ID              int       `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"` // Encrypted in DB
	EmailBlindIndex string    `db:"email_blind_index" json:"-"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type Profile struct {
	UserID      int       `db:"user_id" json:"user_id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	StartWeight *float64  `db:"start_weight" json:"start_weight,omitempty"`
	GoalWeight  *float64  `db:"goal_weight" json:"goal_weight,omitempty"`
	Stars       int       `db:"stars" json:"stars"`
	Public      bool      `db:"public" json:"public"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type WeightEntry struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Weight    float64   `db:"weight" json:"weight"`
	EntryDate time.Time `db:"entry_date" json:"entry_date"`
	Public    bool      `db:"public" json:"public"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type WalkEntry struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	EntryDate   time.Time `db:"entry_date" json:"entry_date"`
	DistanceKm  float64   `db:"distance_km" json:"distance_km"`
	DurationMin *int      `db:"duration_min" json:"duration_min,omitempty"`
	Note        *string   `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AccessGrant lets viewer_id read profile_id's data regardless of the public flag.
// At most one grant exists per (profile_id, viewer_id) pair.
type AccessGrant struct {
	ProfileID int       `db:"profile_id" json:"profile_id"`
	ViewerID  int       `db:"viewer_id" json:"viewer_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type PasswordReset struct {
	Token     string    `db:"token" json:"-"`
	UserID    int       `db:"user_id" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"-"`
	Used      bool      `db:"used" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}
