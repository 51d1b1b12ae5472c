package sharing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viktresan/internal/sharing"
)

type pair struct{ profileID, viewerID int }

// mockGrantRepo keeps grants in a set, matching the composite-key semantics
// of the real table.
type mockGrantRepo struct {
	grants map[pair]bool
	err    error
}

func newMockGrantRepo() *mockGrantRepo {
	return &mockGrantRepo{grants: make(map[pair]bool)}
}

func (m *mockGrantRepo) Upsert(_ context.Context, profileID, viewerID int) error {
	if m.err != nil {
		return m.err
	}
	m.grants[pair{profileID, viewerID}] = true
	return nil
}

func (m *mockGrantRepo) Delete(_ context.Context, profileID, viewerID int) error {
	if m.err != nil {
		return m.err
	}
	delete(m.grants, pair{profileID, viewerID})
	return nil
}

func (m *mockGrantRepo) ViewerIDs(_ context.Context, profileID int) ([]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	var ids []int
	for p := range m.grants {
		if p.profileID == profileID {
			ids = append(ids, p.viewerID)
		}
	}
	return ids, nil
}

type mockDirectory struct {
	byEmail map[string]int
	emails  map[int]string
}

func (m *mockDirectory) IDByEmail(_ context.Context, email string) (int, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return 0, sharing.ErrNotFound
	}
	return id, nil
}

func (m *mockDirectory) EmailByID(_ context.Context, accountID int) (string, error) {
	email, ok := m.emails[accountID]
	if !ok {
		return "", sharing.ErrNotFound
	}
	return email, nil
}

type mockProfileDirectory struct {
	rows []sharing.VisibleProfile
	err  error
}

func (m *mockProfileDirectory) VisibleTo(_ context.Context, _ int) ([]sharing.VisibleProfile, error) {
	return m.rows, m.err
}

func newService(grants *mockGrantRepo) (*sharing.Service, *mockDirectory, *mockProfileDirectory) {
	dir := &mockDirectory{
		byEmail: map[string]int{"bert@example.com": 2},
		emails:  map[int]string{2: "bert@example.com"},
	}
	profiles := &mockProfileDirectory{}
	return sharing.NewService(grants, dir, profiles), dir, profiles
}

func TestGrant_Idempotent(t *testing.T) {
	grants := newMockGrantRepo()
	svc, _, _ := newService(grants)

	g1, err := svc.Grant(context.Background(), 1, "bert@example.com")
	require.NoError(t, err)
	g2, err := svc.Grant(context.Background(), 1, "bert@example.com")
	require.NoError(t, err)

	assert.Equal(t, g1, g2)
	assert.Len(t, grants.grants, 1)
}

func TestGrant_NormalizesEmail(t *testing.T) {
	grants := newMockGrantRepo()
	svc, _, _ := newService(grants)

	g, err := svc.Grant(context.Background(), 1, "  Bert@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, 2, g.ViewerID)
}

func TestGrant_UnknownEmail(t *testing.T) {
	svc, _, _ := newService(newMockGrantRepo())
	_, err := svc.Grant(context.Background(), 1, "nobody@example.com")
	require.ErrorIs(t, err, sharing.ErrNotFound)
}

func TestGrant_InvalidInput(t *testing.T) {
	svc, _, _ := newService(newMockGrantRepo())
	_, err := svc.Grant(context.Background(), 0, "bert@example.com")
	require.ErrorIs(t, err, sharing.ErrInvalidInput)
	_, err = svc.Grant(context.Background(), 1, "   ")
	require.ErrorIs(t, err, sharing.ErrInvalidInput)
}

func TestRevoke_MissingGrantIsNoOp(t *testing.T) {
	grants := newMockGrantRepo()
	svc, _, _ := newService(grants)

	require.NoError(t, svc.Revoke(context.Background(), 1, 42))
}

func TestGrantThenRevoke_RestoresPriorSet(t *testing.T) {
	grants := newMockGrantRepo()
	svc, _, _ := newService(grants)

	before, err := svc.Viewers(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.Grant(context.Background(), 1, "bert@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(context.Background(), 1, 2))

	after, err := svc.Viewers(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestViewers_ResolvesEmails(t *testing.T) {
	grants := newMockGrantRepo()
	svc, _, _ := newService(grants)

	_, err := svc.Grant(context.Background(), 1, "bert@example.com")
	require.NoError(t, err)

	viewers, err := svc.Viewers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, viewers, 1)
	assert.Equal(t, sharing.Viewer{ID: 2, Email: "bert@example.com"}, viewers[0])
}

func TestVisibleProfiles_Dedup(t *testing.T) {
	grants := newMockGrantRepo()
	svc, _, profiles := newService(grants)

	// Profile 3 is both public and explicitly shared with the viewer.
	profiles.rows = []sharing.VisibleProfile{
		{UserID: 3, FirstName: "Anna", Stars: 5},
		{UserID: 4, FirstName: "Cesar", Stars: 1},
		{UserID: 3, FirstName: "Anna", Stars: 5},
	}

	visible, err := svc.VisibleProfiles(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	ids := []int{visible[0].UserID, visible[1].UserID}
	assert.ElementsMatch(t, []int{3, 4}, ids)
}

func TestVisibleProfiles_Error(t *testing.T) {
	grants := newMockGrantRepo()
	svc, _, profiles := newService(grants)
	profiles.err = errors.New("db down")

	_, err := svc.VisibleProfiles(context.Background(), 2)
	require.Error(t, err)
}
