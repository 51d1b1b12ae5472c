package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viktresan/internal/models"
	"viktresan/internal/tracker"
)

type mockWeightRepo struct {
	insertFn func(ctx context.Context, userID int, weight float64, date time.Time, public bool) (models.WeightEntry, error)
	priorFn  func(ctx context.Context, userID int, date time.Time) (*models.WeightEntry, error)
	latestFn func(ctx context.Context, userID int) (*models.WeightEntry, error)
	listFn   func(ctx context.Context, userID int) ([]models.WeightEntry, error)
	deleteFn func(ctx context.Context, userID, entryID int) (bool, error)
}

func (m *mockWeightRepo) Insert(ctx context.Context, userID int, weight float64, date time.Time, public bool) (models.WeightEntry, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, userID, weight, date, public)
	}
	return models.WeightEntry{UserID: userID, Weight: weight, EntryDate: date, Public: public}, nil
}

func (m *mockWeightRepo) PriorTo(ctx context.Context, userID int, date time.Time) (*models.WeightEntry, error) {
	if m.priorFn != nil {
		return m.priorFn(ctx, userID, date)
	}
	return nil, nil
}

func (m *mockWeightRepo) Latest(ctx context.Context, userID int) (*models.WeightEntry, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockWeightRepo) List(ctx context.Context, userID int) ([]models.WeightEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockWeightRepo) Delete(ctx context.Context, userID, entryID int) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, entryID)
	}
	return false, nil
}

type mockProfileRepo struct {
	profile     *models.Profile
	raiseCalls  []int
	raiseResult bool
	raiseErr    error
}

func (m *mockProfileRepo) Get(ctx context.Context, userID int) (*models.Profile, error) {
	if m.profile == nil {
		return nil, tracker.ErrNotFound
	}
	return m.profile, nil
}

func (m *mockProfileRepo) RaiseStars(ctx context.Context, userID, stars int) (bool, error) {
	m.raiseCalls = append(m.raiseCalls, stars)
	return m.raiseResult, m.raiseErr
}

func ptr(v float64) *float64 { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRecordWeight_InvalidWeight(t *testing.T) {
	svc := tracker.NewService(&mockWeightRepo{}, &mockProfileRepo{})
	_, err := svc.RecordWeight(context.Background(), 1, 0, day("2026-02-01"), false)
	require.ErrorIs(t, err, tracker.ErrInvalidInput)
	_, err = svc.RecordWeight(context.Background(), 1, -80, day("2026-02-01"), false)
	require.ErrorIs(t, err, tracker.ErrInvalidInput)
}

func TestRecordWeight_AwardsStars(t *testing.T) {
	weights := &mockWeightRepo{
		latestFn: func(_ context.Context, _ int) (*models.WeightEntry, error) {
			return &models.WeightEntry{Weight: 97, EntryDate: day("2026-02-01")}, nil
		},
	}
	profiles := &mockProfileRepo{
		profile:     &models.Profile{UserID: 1, StartWeight: ptr(100), GoalWeight: ptr(80), Stars: 0},
		raiseResult: true,
	}
	svc := tracker.NewService(weights, profiles)

	res, err := svc.RecordWeight(context.Background(), 1, 97, day("2026-02-01"), false)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, profiles.raiseCalls) // floor(3.0 / 1.5)
	assert.True(t, res.StarsAdded)
	assert.Equal(t, 2, res.Stars)
}

func TestRecordWeight_NeverLowersStars(t *testing.T) {
	// Stored count is 9; the recomputed value for this log is only 2, so the
	// conditional update must not even be attempted.
	weights := &mockWeightRepo{
		latestFn: func(_ context.Context, _ int) (*models.WeightEntry, error) {
			return &models.WeightEntry{Weight: 97, EntryDate: day("2026-02-01")}, nil
		},
	}
	profiles := &mockProfileRepo{
		profile: &models.Profile{UserID: 1, StartWeight: ptr(100), Stars: 9},
	}
	svc := tracker.NewService(weights, profiles)

	res, err := svc.RecordWeight(context.Background(), 1, 97, day("2026-02-01"), false)
	require.NoError(t, err)
	assert.Empty(t, profiles.raiseCalls)
	assert.False(t, res.StarsAdded)
	assert.Equal(t, 9, res.Stars)
}

func TestRecordWeight_LostRaceKeepsStoredCount(t *testing.T) {
	// Another session raised the count between our read and our write: the
	// conditional update reports no row hit and the result keeps the stored
	// value rather than claiming new stars.
	weights := &mockWeightRepo{
		latestFn: func(_ context.Context, _ int) (*models.WeightEntry, error) {
			return &models.WeightEntry{Weight: 85.5, EntryDate: day("2026-02-08")}, nil
		},
	}
	profiles := &mockProfileRepo{
		profile:     &models.Profile{UserID: 1, StartWeight: ptr(100), Stars: 2},
		raiseResult: false,
	}
	svc := tracker.NewService(weights, profiles)

	res, err := svc.RecordWeight(context.Background(), 1, 85.5, day("2026-02-08"), false)
	require.NoError(t, err)
	assert.Equal(t, []int{9}, profiles.raiseCalls)
	assert.False(t, res.StarsAdded)
	assert.Equal(t, 2, res.Stars)
}

func TestRecordWeight_BackdatedUsesLatestOverall(t *testing.T) {
	// A backdated heavier entry must not shrink the loss: the latest entry by
	// date still decides the star count.
	weights := &mockWeightRepo{
		latestFn: func(_ context.Context, _ int) (*models.WeightEntry, error) {
			return &models.WeightEntry{Weight: 85.5, EntryDate: day("2026-02-08")}, nil
		},
	}
	profiles := &mockProfileRepo{
		profile:     &models.Profile{UserID: 1, StartWeight: ptr(100), Stars: 2},
		raiseResult: true,
	}
	svc := tracker.NewService(weights, profiles)

	_, err := svc.RecordWeight(context.Background(), 1, 99, day("2026-01-05"), false)
	require.NoError(t, err)
	assert.Equal(t, []int{9}, profiles.raiseCalls) // floor(14.5 / 1.5), from the 85.5 entry
}

func TestRecordWeight_NoStartWeight(t *testing.T) {
	profiles := &mockProfileRepo{profile: &models.Profile{UserID: 1, Stars: 0}}
	svc := tracker.NewService(&mockWeightRepo{}, profiles)

	res, err := svc.RecordWeight(context.Background(), 1, 90, day("2026-02-01"), false)
	require.NoError(t, err)
	assert.Empty(t, profiles.raiseCalls)
	assert.False(t, res.StarsAdded)
}

func TestRecordWeight_FeedbackFromPriorEntry(t *testing.T) {
	weights := &mockWeightRepo{
		priorFn: func(_ context.Context, _ int, date time.Time) (*models.WeightEntry, error) {
			assert.Equal(t, day("2026-02-08"), date)
			return &models.WeightEntry{Weight: 97, EntryDate: day("2026-02-01")}, nil
		},
		latestFn: func(_ context.Context, _ int) (*models.WeightEntry, error) {
			return &models.WeightEntry{Weight: 93, EntryDate: day("2026-02-08")}, nil
		},
	}
	profiles := &mockProfileRepo{
		profile:     &models.Profile{UserID: 1, StartWeight: ptr(100), Stars: 2},
		raiseResult: true,
	}
	svc := tracker.NewService(weights, profiles)

	res, err := svc.RecordWeight(context.Background(), 1, 93, day("2026-02-08"), false)
	require.NoError(t, err)
	assert.Contains(t, res.Feedback, "4.0") // lost 4 kg since the prior entry
}

func TestRecordWeight_FirstEntryFeedback(t *testing.T) {
	profiles := &mockProfileRepo{profile: &models.Profile{UserID: 1}}
	svc := tracker.NewService(&mockWeightRepo{}, profiles)

	res, err := svc.RecordWeight(context.Background(), 1, 90, day("2026-02-01"), false)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Feedback)
}

func TestRecordWeight_RepoError(t *testing.T) {
	weights := &mockWeightRepo{
		insertFn: func(_ context.Context, _ int, _ float64, _ time.Time, _ bool) (models.WeightEntry, error) {
			return models.WeightEntry{}, errors.New("db down")
		},
	}
	svc := tracker.NewService(weights, &mockProfileRepo{})
	_, err := svc.RecordWeight(context.Background(), 1, 90, day("2026-02-01"), false)
	require.Error(t, err)
}

func TestDeleteWeight(t *testing.T) {
	weights := &mockWeightRepo{
		deleteFn: func(_ context.Context, userID, entryID int) (bool, error) {
			return entryID == 7, nil
		},
	}
	svc := tracker.NewService(weights, &mockProfileRepo{})

	require.NoError(t, svc.DeleteWeight(context.Background(), 1, 7))
	require.ErrorIs(t, svc.DeleteWeight(context.Background(), 1, 8), tracker.ErrNotFound)
}
