package tracker

import (
	"context"
	"errors"
	"time"

	"viktresan/internal/models"
	"viktresan/internal/progress"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// WeightRepo is the persistence port for weight entries.
type WeightRepo interface {
	Insert(ctx context.Context, userID int, weight float64, date time.Time, public bool) (models.WeightEntry, error)
	// PriorTo returns the most recent entry strictly before date, nil when none.
	PriorTo(ctx context.Context, userID int, date time.Time) (*models.WeightEntry, error)
	// Latest returns the newest entry by date, nil when none.
	Latest(ctx context.Context, userID int) (*models.WeightEntry, error)
	List(ctx context.Context, userID int) ([]models.WeightEntry, error)
	Delete(ctx context.Context, userID, entryID int) (bool, error)
}

// ProfileRepo is the slice of profile persistence the tracker needs.
type ProfileRepo interface {
	Get(ctx context.Context, userID int) (*models.Profile, error)
	// RaiseStars sets the star count to stars only if the stored value is
	// lower, reporting whether a row was updated. The conditional write keeps
	// the count monotonic under concurrent submissions.
	RaiseStars(ctx context.Context, userID, stars int) (bool, error)
}

// Service records weight entries and keeps the profile's star count in sync.
type Service struct {
	weights  WeightRepo
	profiles ProfileRepo
}

func NewService(weights WeightRepo, profiles ProfileRepo) *Service {
	return &Service{weights: weights, profiles: profiles}
}

// RecordResult is what a successful weight log reports back.
type RecordResult struct {
	Entry      models.WeightEntry `json:"entry"`
	Feedback   string             `json:"feedback"`
	Stars      int                `json:"stars"`
	StarsAdded bool               `json:"stars_added"`
}

// RecordWeight persists the entry, then recomputes the star count from the
// profile's start weight and the current latest entry. Stars are written
// through the conditional update only, so a stale or backdated log can never
// lower the stored count.
func (s *Service) RecordWeight(ctx context.Context, userID int, weight float64, date time.Time, public bool) (*RecordResult, error) {
	if weight <= 0 {
		return nil, ErrInvalidInput
	}
	if date.IsZero() {
		date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	entry, err := s.weights.Insert(ctx, userID, weight, date, public)
	if err != nil {
		return nil, err
	}

	prior, err := s.weights.PriorTo(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	var priorWeight *float64
	if prior != nil {
		priorWeight = &prior.Weight
	}
	result := &RecordResult{
		Entry:    entry,
		Feedback: progress.FeedbackMessage(priorWeight, weight),
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.Stars = profile.Stars
	if profile.StartWeight == nil {
		return result, nil
	}

	// Stars follow the latest weight overall, not necessarily the one just
	// logged (the new entry may be backdated).
	latest, err := s.weights.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return result, nil
	}

	stars := progress.Stars(*profile.StartWeight - latest.Weight)
	if stars > profile.Stars {
		raised, err := s.profiles.RaiseStars(ctx, userID, stars)
		if err != nil {
			return nil, err
		}
		if raised {
			result.Stars = stars
			result.StarsAdded = true
		}
	}
	return result, nil
}

// ListWeights returns the user's entries, newest first.
func (s *Service) ListWeights(ctx context.Context, userID int) ([]models.WeightEntry, error) {
	return s.weights.List(ctx, userID)
}

// DeleteWeight removes one entry by id. The star count is intentionally left
// alone: it only ever moves up, on the next log.
func (s *Service) DeleteWeight(ctx context.Context, userID, entryID int) error {
	deleted, err := s.weights.Delete(ctx, userID, entryID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
