package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_Percent(t *testing.T) {
	tests := []struct {
		name       string
		start      float64
		goal       float64
		latest     float64
		percent    int
		applicable bool
	}{
		{"no progress yet", 100, 80, 100, 0, true},
		{"halfway", 100, 80, 90, 50, true},
		{"three kilos down", 100, 80, 97, 15, true},
		{"fraction rounds up", 100, 80, 85.5, 73, true},
		{"goal reached", 100, 80, 80, 100, true},
		{"overshot clamps to 100", 100, 80, 75, 100, true},
		{"gained above start clamps to 0", 100, 80, 103, 0, true},
		{"goal equals start not applicable", 90, 90, 85, 0, false},
		{"goal above start not applicable", 80, 90, 85, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.start, tc.goal, tc.latest)
			assert.Equal(t, tc.percent, got.Percent)
			assert.Equal(t, tc.applicable, got.Applicable)
		})
	}
}

func TestCompute_PercentMonotoneInLoss(t *testing.T) {
	prev := -1
	for latest := 100.0; latest >= 80.0; latest -= 0.5 {
		got := Compute(100, 80, latest)
		assert.True(t, got.Applicable)
		assert.GreaterOrEqual(t, got.Percent, prev, "latest=%v", latest)
		assert.GreaterOrEqual(t, got.Percent, 0)
		assert.LessOrEqual(t, got.Percent, 100)
		prev = got.Percent
	}
}

func TestStars(t *testing.T) {
	tests := []struct {
		lost float64
		want int
	}{
		{0, 0},
		{-2, 0},
		{1.4, 0},
		{1.5, 1},
		{3.0, 2},
		{14.5, 9},
		{14.9, 9},
		{15.0, 10},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Stars(tc.lost), "lost=%v", tc.lost)
	}
}

func TestStars_NonDecreasingStepFunction(t *testing.T) {
	prev := 0
	for lost := 0.0; lost <= 30.0; lost += 0.1 {
		got := Stars(lost)
		assert.GreaterOrEqual(t, got, prev, "lost=%v", lost)
		prev = got
	}
}

func TestCompute_StarsFromCumulativeLoss(t *testing.T) {
	// start=100, goal=80: log 97 then 85.5 (the end-to-end scenario).
	first := Compute(100, 80, 97)
	assert.Equal(t, 15, first.Percent)
	assert.Equal(t, 2, first.Stars)

	second := Compute(100, 80, 85.5)
	assert.Equal(t, 73, second.Percent)
	assert.Equal(t, 9, second.Stars)
}

func TestMedalTier(t *testing.T) {
	tests := []struct {
		stars int
		want  Tier
	}{
		{0, TierNone},
		{4, TierNone},
		{5, TierBronze},
		{9, TierBronze},
		{10, TierSilver},
		{14, TierSilver},
		{15, TierGold},
		{19, TierGold},
		{20, TierPlatinum},
		{1000, TierPlatinum},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, MedalTier(tc.stars), "stars=%d", tc.stars)
	}
}

func ptr(v float64) *float64 { return &v }

func TestClassifyFeedback(t *testing.T) {
	tests := []struct {
		name     string
		previous *float64
		latest   float64
		want     FeedbackTier
	}{
		{"no prior entry", nil, 90, FeedbackSteady},
		{"unchanged", ptr(90), 90, FeedbackSteady},
		{"tiny loss below cutoff", ptr(90), 89.7, FeedbackSteady},
		{"half kilo", ptr(90), 89.5, FeedbackHalfKilo},
		{"just under a kilo", ptr(90), 89.1, FeedbackHalfKilo},
		{"one kilo", ptr(90), 89, FeedbackOneKilo},
		{"kilo and a half", ptr(90), 88.5, FeedbackStrong},
		{"three kilos", ptr(90), 87, FeedbackSuper},
		{"big drop", ptr(90), 82, FeedbackSuper},
		{"gain", ptr(90), 90.5, FeedbackGain},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyFeedback(tc.previous, tc.latest))
		})
	}
}

func TestFeedbackMessage_IncludesLoss(t *testing.T) {
	msg := FeedbackMessage(ptr(90), 86.5)
	assert.Contains(t, msg, "3.5")

	// Every tier renders something.
	for _, latest := range []float64{90, 89.5, 89, 88.4, 87, 91} {
		assert.NotEmpty(t, FeedbackMessage(ptr(90), latest))
	}
	assert.NotEmpty(t, FeedbackMessage(nil, 90))
}
