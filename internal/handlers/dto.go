package handlers

import (
	"time"

	"viktresan/internal/models"
	"viktresan/internal/progress"
)

// ProfileDTO is the profile plus everything derived from it for display.
type ProfileDTO struct {
	UserID       int      `json:"user_id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	StartWeight  *float64 `json:"start_weight,omitempty"`
	GoalWeight   *float64 `json:"goal_weight,omitempty"`
	LatestWeight *float64 `json:"latest_weight,omitempty"`
	Stars        int      `json:"stars"`
	Medal        string   `json:"medal,omitempty"`
	Percent      *int     `json:"percent,omitempty"`
	Public       bool     `json:"public"`
	CreatedAt    string   `json:"created_at"`
}

// ToProfileDTO attaches percent-to-goal and medal tier to the stored profile.
// Percent is only present when start and goal weights are set, the goal is
// below the start, and at least one weight has been logged.
func ToProfileDTO(p models.Profile, latestWeight *float64) ProfileDTO {
	dto := ProfileDTO{
		UserID:       p.UserID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		StartWeight:  p.StartWeight,
		GoalWeight:   p.GoalWeight,
		LatestWeight: latestWeight,
		Stars:        p.Stars,
		Medal:        string(progress.MedalTier(p.Stars)),
		Public:       p.Public,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
	}
	if p.StartWeight != nil && p.GoalWeight != nil && latestWeight != nil {
		summary := progress.Compute(*p.StartWeight, *p.GoalWeight, *latestWeight)
		if summary.Applicable {
			dto.Percent = &summary.Percent
		}
	}
	return dto
}

type weightEntryDTO struct {
	ID     int     `json:"id"`
	Weight float64 `json:"weight"`
	Date   string  `json:"date"`
	Public bool    `json:"public"`
}

func toWeightEntryDTO(e models.WeightEntry) weightEntryDTO {
	return weightEntryDTO{
		ID:     e.ID,
		Weight: e.Weight,
		Date:   e.EntryDate.Format("2006-01-02"),
		Public: e.Public,
	}
}

type walkEntryDTO struct {
	ID          int     `json:"id"`
	Date        string  `json:"date"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin *int    `json:"duration_min,omitempty"`
	Note        *string `json:"note,omitempty"`
}

func toWalkEntryDTO(e models.WalkEntry) walkEntryDTO {
	return walkEntryDTO{
		ID:          e.ID,
		Date:        e.EntryDate.Format("2006-01-02"),
		DistanceKm:  e.DistanceKm,
		DurationMin: e.DurationMin,
		Note:        e.Note,
	}
}
