package wager

import (
	"context"
	"errors"
	"io"
	"testing"

	"matchday/internal/dbtest"
	"matchday/internal/domain"
	"matchday/internal/fixture"
	"matchday/internal/provider"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubSource struct {
	err   error
	calls int
}

func (s *stubSource) Fixture(_ context.Context, id int64) (*provider.FixtureSnapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &provider.FixtureSnapshot{
		ID:    id,
		Home:  provider.Team{ID: 1, Name: "Home FC"},
		Away:  provider.Team{ID: 2, Name: "Away FC"},
		State: "NS",
	}, nil
}

func newService(t *testing.T, src provider.FixtureSource) (*Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(db, fixture.NewStore(db, log), src, 10, log, nil), db
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestPlaceMatch_DebitsStake(t *testing.T) {
	svc, db := newService(t, &stubSource{})
	acc := dbtest.SeedAccount(t, db, "alice", 100)

	p, err := svc.PlaceMatch(context.Background(), acc.ID, MatchWager{FixtureID: 42, Home: 1, Away: 0, Stake: 40})
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictPending, p.Verdict)
	assert.False(t, p.IsSettled)
	assert.Zero(t, p.CoinsWon)
	assert.EqualValues(t, 60, dbtest.Balance(t, db, acc.ID))

	var entry domain.CoinTransaction
	require.NoError(t, db.Where("account_id = ?", acc.ID).First(&entry).Error)
	assert.EqualValues(t, -40, entry.Amount)
	assert.Equal(t, domain.TxWagerStake, entry.Type)
}

func TestPlaceMatch_InsufficientFunds(t *testing.T) {
	svc, db := newService(t, &stubSource{})
	acc := dbtest.SeedAccount(t, db, "bob", 30)

	_, err := svc.PlaceMatch(context.Background(), acc.ID, MatchWager{FixtureID: 42, Home: 1, Away: 1, Stake: 31})
	assert.Equal(t, "INSUFFICIENT_BALANCE", appCode(t, err))
	assert.EqualValues(t, 30, dbtest.Balance(t, db, acc.ID))

	var n int64
	require.NoError(t, db.Model(&domain.Prediction{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPlaceMatch_RejectsDuplicate(t *testing.T) {
	svc, db := newService(t, &stubSource{})
	acc := dbtest.SeedAccount(t, db, "carol", 100)
	ctx := context.Background()

	_, err := svc.PlaceMatch(ctx, acc.ID, MatchWager{FixtureID: 7, Home: 2, Away: 2, Stake: 10})
	require.NoError(t, err)

	_, err = svc.PlaceMatch(ctx, acc.ID, MatchWager{FixtureID: 7, Home: 0, Away: 0, Stake: 10})
	assert.Equal(t, "DUPLICATE_PREDICTION", appCode(t, err))
	assert.EqualValues(t, 90, dbtest.Balance(t, db, acc.ID))

	// Another account may still predict the same fixture.
	other := dbtest.SeedAccount(t, db, "dan", 100)
	_, err = svc.PlaceMatch(ctx, other.ID, MatchWager{FixtureID: 7, Home: 0, Away: 0, Stake: 10})
	require.NoError(t, err)
}

func TestPlaceMatch_PlaceholderFixtureOnProviderFailure(t *testing.T) {
	src := &stubSource{err: errors.New("timeout")}
	svc, db := newService(t, src)
	acc := dbtest.SeedAccount(t, db, "erin", 100)

	_, err := svc.PlaceMatch(context.Background(), acc.ID, MatchWager{FixtureID: 9, Home: 3, Away: 1, Stake: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	var f domain.Fixture
	require.NoError(t, db.Where("external_id = ?", 9).First(&f).Error)
	assert.True(t, f.Placeholder)
}

func TestPlaceMatch_UsesCachedFixture(t *testing.T) {
	src := &stubSource{}
	svc, db := newService(t, src)
	acc := dbtest.SeedAccount(t, db, "fay", 100)
	require.NoError(t, db.Create(&domain.Fixture{ExternalID: 11, HomeTeam: "A", AwayTeam: "B", State: "NS"}).Error)

	_, err := svc.PlaceMatch(context.Background(), acc.ID, MatchWager{FixtureID: 11, Home: 0, Away: 0, Stake: 5})
	require.NoError(t, err)
	assert.Zero(t, src.calls)
}

func TestPlaceMatch_Validation(t *testing.T) {
	svc, db := newService(t, &stubSource{})
	acc := dbtest.SeedAccount(t, db, "gus", 100)
	ctx := context.Background()

	cases := []MatchWager{
		{FixtureID: 1, Home: 11, Away: 0, Stake: 5},
		{FixtureID: 1, Home: -1, Away: 0, Stake: 5},
		{FixtureID: 1, Home: 1, Away: 0, Stake: 0},
		{FixtureID: 0, Home: 1, Away: 0, Stake: 5},
	}
	for _, w := range cases {
		_, err := svc.PlaceMatch(ctx, acc.ID, w)
		assert.Equal(t, "VALIDATION_ERROR", appCode(t, err), "%+v", w)
	}
	assert.EqualValues(t, 100, dbtest.Balance(t, db, acc.ID))
}

func TestPlaceLeague_AllowsRepeats(t *testing.T) {
	svc, db := newService(t, &stubSource{})
	acc := dbtest.SeedAccount(t, db, "hal", 100)
	ctx := context.Background()

	w := LeagueWager{LeagueID: 8, SeasonID: 21646, TeamID: 1, TeamName: "Arsenal", Stake: 20}
	p, err := svc.PlaceLeague(ctx, acc.ID, w)
	require.NoError(t, err)
	assert.Equal(t, domain.KindLeague, p.Kind)
	assert.Nil(t, p.FixtureID)

	_, err = svc.PlaceLeague(ctx, acc.ID, w)
	require.NoError(t, err)
	assert.EqualValues(t, 60, dbtest.Balance(t, db, acc.ID))
}

func TestListAndStats(t *testing.T) {
	svc, db := newService(t, &stubSource{})
	acc := dbtest.SeedAccount(t, db, "ivy", 100)
	ctx := context.Background()

	_, err := svc.PlaceMatch(ctx, acc.ID, MatchWager{FixtureID: 1, Home: 1, Away: 0, Stake: 10})
	require.NoError(t, err)
	p2, err := svc.PlaceMatch(ctx, acc.ID, MatchWager{FixtureID: 2, Home: 1, Away: 0, Stake: 20})
	require.NoError(t, err)
	require.NoError(t, db.Model(p2).Updates(map[string]any{"is_settled": true, "verdict": domain.VerdictWin, "coins_won": 40}).Error)

	all, err := svc.List(ctx, acc.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Fixture)

	pending, err := svc.List(ctx, acc.ID, "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	st, err := svc.Stats(ctx, acc.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.Total)
	assert.EqualValues(t, 1, st.Pending)
	assert.EqualValues(t, 1, st.Wins)
	assert.EqualValues(t, 30, st.Staked)
	assert.EqualValues(t, 40, st.Won)
}
