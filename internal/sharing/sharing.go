// Package sharing maintains the access-grant relation: which viewers may
// read a profile's data regardless of its public flag.
package sharing

import (
	"context"
	"errors"
	"strings"
	"time"

	"viktresan/internal/models"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Viewer is a grant resolved to display info.
type Viewer struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

// VisibleProfile is a profile another user may read, with the latest logged
// weight when one exists.
type VisibleProfile struct {
	UserID       int        `db:"user_id" json:"user_id"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Stars        int        `db:"stars" json:"stars"`
	LatestWeight *float64   `db:"latest_weight" json:"latest_weight,omitempty"`
	LatestDate   *time.Time `db:"latest_date" json:"latest_date,omitempty"`
}

// GrantRepo is the persistence port for access grants.
type GrantRepo interface {
	// Upsert creates the grant, or leaves an existing one untouched.
	Upsert(ctx context.Context, profileID, viewerID int) error
	Delete(ctx context.Context, profileID, viewerID int) error
	ViewerIDs(ctx context.Context, profileID int) ([]int, error)
}

// AccountDirectory resolves accounts the identity store knows about.
type AccountDirectory interface {
	// IDByEmail returns ErrNotFound when no account matches.
	IDByEmail(ctx context.Context, email string) (int, error)
	EmailByID(ctx context.Context, accountID int) (string, error)
}

// ProfileDirectory lists profiles readable by a viewer.
type ProfileDirectory interface {
	// VisibleTo returns the union of public profiles and profiles explicitly
	// shared with viewerID. May contain a profile twice when both apply.
	VisibleTo(ctx context.Context, viewerID int) ([]VisibleProfile, error)
}

// Service implements grant, revoke and the read-side listings. Callers must
// only pass their own authenticated user id as profileID for Grant, Revoke
// and Viewers; the handlers enforce that.
type Service struct {
	grants   GrantRepo
	accounts AccountDirectory
	profiles ProfileDirectory
}

func NewService(grants GrantRepo, accounts AccountDirectory, profiles ProfileDirectory) *Service {
	return &Service{grants: grants, accounts: accounts, profiles: profiles}
}

// Grant resolves the viewer's email to an account and creates (or idempotently
// re-affirms) the access grant.
func (s *Service) Grant(ctx context.Context, profileID int, email string) (*models.AccessGrant, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if profileID == 0 || email == "" {
		return nil, ErrInvalidInput
	}
	viewerID, err := s.accounts.IDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.grants.Upsert(ctx, profileID, viewerID); err != nil {
		return nil, err
	}
	return &models.AccessGrant{ProfileID: profileID, ViewerID: viewerID}, nil
}

// Revoke deletes the grant for the exact pair. Revoking a grant that does not
// exist is a no-op.
func (s *Service) Revoke(ctx context.Context, profileID, viewerID int) error {
	if profileID == 0 || viewerID == 0 {
		return ErrInvalidInput
	}
	return s.grants.Delete(ctx, profileID, viewerID)
}

// Viewers lists everyone currently granted access, with emails resolved for
// display.
func (s *Service) Viewers(ctx context.Context, profileID int) ([]Viewer, error) {
	ids, err := s.grants.ViewerIDs(ctx, profileID)
	if err != nil {
		return nil, err
	}
	viewers := make([]Viewer, 0, len(ids))
	for _, id := range ids {
		email, err := s.accounts.EmailByID(ctx, id)
		if err != nil {
			return nil, err
		}
		viewers = append(viewers, Viewer{ID: id, Email: email})
	}
	return viewers, nil
}

// VisibleProfiles returns every profile viewerID may read: public profiles
// plus explicit grants, deduplicated by profile id.
func (s *Service) VisibleProfiles(ctx context.Context, viewerID int) ([]VisibleProfile, error) {
	rows, err := s.profiles.VisibleTo(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(rows))
	out := make([]VisibleProfile, 0, len(rows))
	for _, p := range rows {
		if seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true
		out = append(out, p)
	}
	return out, nil
}
