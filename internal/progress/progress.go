// Package progress holds the pure scoring math: percent-to-goal, stars and
// medal tier from cumulative weight loss, and the feedback message picked
// after logging a weight. Nothing in here touches storage.
package progress

import (
	"fmt"
	"math"
)

// KgPerStar is the cumulative loss required to earn one star.
const KgPerStar = 1.5

// Summary is the derived progress for a profile.
type Summary struct {
	Percent    int  `json:"percent"`
	Applicable bool `json:"applicable"` // false when start <= goal, i.e. no loss direction
	Stars      int  `json:"stars"`
}

// Compute derives percent-to-goal and the star count from the start weight,
// goal weight, and the latest logged weight. Percent is clamped to [0, 100]
// so not-yet-started and overshot-goal cases stay in range. When the goal is
// not below the start weight the percent is reported as not applicable
// rather than negative or >100.
func Compute(startWeight, goalWeight, latestWeight float64) Summary {
	s := Summary{Stars: Stars(startWeight - latestWeight)}
	if startWeight <= goalWeight {
		return s
	}
	raw := (startWeight - latestWeight) / (startWeight - goalWeight) * 100
	pct := int(math.Round(raw))
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	s.Percent = pct
	s.Applicable = true
	return s
}

// Stars awards one star per KgPerStar of cumulative loss. Recomputed from
// scratch on every log so edits and deletions of history stay consistent.
func Stars(kgLost float64) int {
	if kgLost <= 0 {
		return 0
	}
	return int(math.Floor(kgLost / KgPerStar))
}

// Tier is the presentational medal label derived from the star count.
type Tier string

const (
	TierNone     Tier = ""
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// MedalTier maps a star count to its medal. Total over all non-negative
// inputs; counts below 5 have no tier.
func MedalTier(stars int) Tier {
	switch {
	case stars >= 20:
		return TierPlatinum
	case stars >= 15:
		return TierGold
	case stars >= 10:
		return TierSilver
	case stars >= 5:
		return TierBronze
	default:
		return TierNone
	}
}

// FeedbackTier classifies the delta against the most recent prior entry.
type FeedbackTier int

const (
	FeedbackSteady FeedbackTier = iota // no prior entry, unchanged, or loss below the praise cutoff
	FeedbackGain
	FeedbackHalfKilo // >= 0.4 kg, < 1 kg
	FeedbackOneKilo
	FeedbackStrong // >= 1.5 kg
	FeedbackSuper  // >= 3 kg
)

// ClassifyFeedback picks the message tier for a newly logged weight given the
// most recent prior weight (nil when this is the first entry). Display only;
// it never feeds the star calculation.
func ClassifyFeedback(previous *float64, latest float64) FeedbackTier {
	if previous == nil {
		return FeedbackSteady
	}
	lost := *previous - latest
	switch {
	case lost >= 3:
		return FeedbackSuper
	case lost >= 1.5:
		return FeedbackStrong
	case lost >= 1:
		return FeedbackOneKilo
	case lost >= 0.4:
		return FeedbackHalfKilo
	case lost < 0:
		return FeedbackGain
	default:
		return FeedbackSteady
	}
}

// FeedbackMessage renders the user-facing text for the tier.
func FeedbackMessage(previous *float64, latest float64) string {
	tier := ClassifyFeedback(previous, latest)
	var lost float64
	if previous != nil {
		lost = *previous - latest
	}
	switch tier {
	case FeedbackSuper:
		return fmt.Sprintf("🥳 Superstar! You've dropped %.1f kg!", lost)
	case FeedbackStrong:
		return fmt.Sprintf("🌟 Wow! %.1f kg down, this is going great!", lost)
	case FeedbackOneKilo:
		return fmt.Sprintf("🏃 You're on a roll! -%.1f kg, strong!", lost)
	case FeedbackHalfKilo:
		return "💪 Well done! Half a kilo gone!"
	case FeedbackGain:
		return "📈 The weight went up a little. New day, new chances 💪"
	default:
		return "👍 You're keeping track, that's what counts!"
	}
}
