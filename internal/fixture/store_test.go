package fixture

import (
	"context"
	"errors"
	"io"
	"testing"

	"matchday/internal/dbtest"
	"matchday/internal/provider"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	snap  *provider.FixtureSnapshot
	err   error
	calls int
}

func (s *stubSource) Fixture(_ context.Context, _ int64) (*provider.FixtureSnapshot, error) {
	s.calls++
	return s.snap, s.err
}

func newStore(t *testing.T) *Store {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewStore(dbtest.Open(t), l)
}

func intPtr(v int) *int { return &v }

func TestEnsure_FetchesOnce(t *testing.T) {
	s := newStore(t)
	src := &stubSource{snap: &provider.FixtureSnapshot{
		ID:    10,
		Home:  provider.Team{ID: 1, Name: "Ajax"},
		Away:  provider.Team{ID: 2, Name: "PSV"},
		State: "NS",
	}}
	ctx := context.Background()

	f, err := s.Ensure(ctx, src, 10)
	require.NoError(t, err)
	assert.Equal(t, "Ajax", f.HomeTeam)
	assert.False(t, f.Placeholder)

	_, err = s.Ensure(ctx, src, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestEnsure_PlaceholderOnProviderFailure(t *testing.T) {
	s := newStore(t)
	src := &stubSource{err: errors.New("connection refused")}

	f, err := s.Ensure(context.Background(), src, 77)
	require.NoError(t, err)
	assert.True(t, f.Placeholder)
	assert.EqualValues(t, 77, f.ExternalID)
	assert.Equal(t, "NS", f.State)
}

func TestUpsert_OverwritesPlaceholder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, err := s.Ensure(ctx, &stubSource{err: errors.New("down")}, 5)
	require.NoError(t, err)

	f, err := s.Upsert(ctx, &provider.FixtureSnapshot{
		ID:        5,
		Home:      provider.Team{Name: "Inter"},
		Away:      provider.Team{Name: "Milan"},
		HomeScore: intPtr(1),
		AwayScore: intPtr(0),
		State:     "FT",
	})
	require.NoError(t, err)
	assert.False(t, f.Placeholder)
	assert.Equal(t, "FT", f.State)
	require.NotNil(t, f.HomeScore)
	assert.Equal(t, 1, *f.HomeScore)

	var n int64
	require.NoError(t, s.db.Table("fixtures").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGet_Missing(t *testing.T) {
	s := newStore(t)
	f, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, f)
}
