package settlement

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"matchday/internal/dbtest"
	"matchday/internal/domain"
	"matchday/internal/fixture"
	"matchday/internal/provider"
	"matchday/internal/wager"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSource struct {
	mu    sync.Mutex
	snaps map[int64]*provider.FixtureSnapshot
	errs  map[int64]error
	calls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{snaps: map[int64]*provider.FixtureSnapshot{}, errs: map[int64]error{}}
}

func (f *fakeSource) Fixture(_ context.Context, id int64) (*provider.FixtureSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	if s, ok := f.snaps[id]; ok {
		cp := *s
		return &cp, nil
	}
	return &provider.FixtureSnapshot{ID: id, State: "NS"}, nil
}

func (f *fakeSource) finish(id int64, home, away int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps[id] = &provider.FixtureSnapshot{
		ID:        id,
		Home:      provider.Team{ID: 1, Name: "Home FC"},
		Away:      provider.Team{ID: 2, Name: "Away FC"},
		HomeScore: &home,
		AwayScore: &away,
		State:     "FT",
		LeagueID:  8,
	}
}

type env struct {
	db      *gorm.DB
	src     *fakeSource
	wagers  *wager.Service
	settler *Settler
}

func newEnv(t *testing.T, concurrency int) *env {
	t.Helper()
	db := dbtest.Open(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	src := newFakeSource()
	store := fixture.NewStore(db, log)
	return &env{
		db:      db,
		src:     src,
		wagers:  wager.NewService(db, store, src, 20, log, nil),
		settler: NewSettler(db, store, src, Options{Concurrency: concurrency}, log, nil),
	}
}

func loadPrediction(t *testing.T, db *gorm.DB, id uint) domain.Prediction {
	t.Helper()
	var p domain.Prediction
	require.NoError(t, db.First(&p, id).Error)
	return p
}

func TestSettle_ExactScoreWins(t *testing.T) {
	e := newEnv(t, 1)
	ctx := context.Background()
	acc := dbtest.SeedAccount(t, e.db, "alice", 100)

	p, err := e.wagers.PlaceMatch(ctx, acc.ID, wager.MatchWager{FixtureID: 1, Home: 1, Away: 0, Stake: 40})
	require.NoError(t, err)
	assert.EqualValues(t, 60, dbtest.Balance(t, e.db, acc.ID))

	e.src.finish(1, 1, 0)
	sum, err := e.settler.SettleAccount(ctx, acc.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Checked)
	assert.Equal(t, 1, sum.Settled)
	assert.EqualValues(t, 80, sum.CoinsAwarded)
	require.Len(t, sum.Results, 1)
	assert.Equal(t, domain.VerdictPending, sum.Results[0].Before.Verdict)
	assert.Equal(t, domain.VerdictWin, sum.Results[0].After.Verdict)
	assert.EqualValues(t, 140, dbtest.Balance(t, e.db, acc.ID))

	got := loadPrediction(t, e.db, p.ID)
	assert.True(t, got.IsSettled)
	assert.Equal(t, domain.VerdictWin, got.Verdict)
	assert.EqualValues(t, 80, got.CoinsWon)
	assert.NotNil(t, got.SettledAt)
}

func TestSettle_WrongScoreLoses(t *testing.T) {
	e := newEnv(t, 1)
	ctx := context.Background()
	acc := dbtest.SeedAccount(t, e.db, "bob", 100)

	p, err := e.wagers.PlaceMatch(ctx, acc.ID, wager.MatchWager{FixtureID: 1, Home: 1, Away: 0, Stake: 40})
	require.NoError(t, err)

	e.src.finish(1, 2, 0)
	sum, err := e.settler.SettleAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Settled)
	assert.Zero(t, sum.CoinsAwarded)
	assert.EqualValues(t, 60, dbtest.Balance(t, e.db, acc.ID))

	got := loadPrediction(t, e.db, p.ID)
	assert.True(t, got.IsSettled)
	assert.Equal(t, domain.VerdictLose, got.Verdict)
	assert.Zero(t, got.CoinsWon)
}

func TestSettle_IsIdempotent(t *testing.T) {
	e := newEnv(t, 1)
	ctx := context.Background()
	acc := dbtest.SeedAccount(t, e.db, "carol", 100)

	_, err := e.wagers.PlaceMatch(ctx, acc.ID, wager.MatchWager{FixtureID: 3, Home: 2, Away: 1, Stake: 10})
	require.NoError(t, err)
	e.src.finish(3, 2, 1)

	first, err := e.settler.SettleAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Settled)

	second, err := e.settler.SettleAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Zero(t, second.Checked)
	assert.Zero(t, second.Settled)
	assert.EqualValues(t, 110, dbtest.Balance(t, e.db, acc.ID))
}

func TestSettle_LeavesUnfinishedAndFailedPending(t *testing.T) {
	e := newEnv(t, 1)
	ctx := context.Background()
	acc := dbtest.SeedAccount(t, e.db, "dave", 100)

	unfinished, err := e.wagers.PlaceMatch(ctx, acc.ID, wager.MatchWager{FixtureID: 10, Home: 0, Away: 0, Stake: 5})
	require.NoError(t, err)
	failing, err := e.wagers.PlaceMatch(ctx, acc.ID, wager.MatchWager{FixtureID: 11, Home: 0, Away: 0, Stake: 5})
	require.NoError(t, err)
	done, err := e.wagers.PlaceMatch(ctx, acc.ID, wager.MatchWager{FixtureID: 12, Home: 0, Away: 0, Stake: 5})
	require.NoError(t, err)
	league, err := e.wagers.PlaceLeague(ctx, acc.ID, wager.LeagueWager{LeagueID: 8, TeamID: 1, Stake: 5})
	require.NoError(t, err)

	e.src.errs[11] = errors.New("503")
	e.src.finish(12, 0, 0)
	// Final state but score missing still counts as unfinished.
	e.src.snaps[10] = &provider.FixtureSnapshot{ID: 10, State: "FT"}

	sum, err := e.settler.SettleAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Checked)
	assert.Equal(t, 1, sum.Settled)
	require.Len(t, sum.Results, 1)
	assert.Equal(t, done.ID, sum.Results[0].PredictionID)

	for _, id := range []uint{unfinished.ID, failing.ID, league.ID} {
		p := loadPrediction(t, e.db, id)
		assert.False(t, p.IsSettled, "prediction %d", id)
		assert.Equal(t, domain.VerdictPending, p.Verdict)
	}
}

func TestSettle_RefreshesFixtureCache(t *testing.T) {
	e := newEnv(t, 1)
	ctx := context.Background()
	acc := dbtest.SeedAccount(t, e.db, "erin", 100)

	_, err := e.wagers.PlaceMatch(ctx, acc.ID, wager.MatchWager{FixtureID: 20, Home: 1, Away: 1, Stake: 5})
	require.NoError(t, err)
	e.src.finish(20, 3, 2)

	_, err = e.settler.SettleAccount(ctx, acc.ID)
	require.NoError(t, err)

	var f domain.Fixture
	require.NoError(t, e.db.Where("external_id = ?", 20).First(&f).Error)
	assert.Equal(t, "FT", f.State)
	require.NotNil(t, f.HomeScore)
	assert.Equal(t, 3, *f.HomeScore)
	assert.EqualValues(t, 8, f.LeagueID)
}

func TestSettleAll_ConcurrentRunsAwardOnce(t *testing.T) {
	e := newEnv(t, 3)
	ctx := context.Background()
	a := dbtest.SeedAccount(t, e.db, "fay", 100)
	b := dbtest.SeedAccount(t, e.db, "gus", 100)

	for i := int64(1); i <= 4; i++ {
		_, err := e.wagers.PlaceMatch(ctx, a.ID, wager.MatchWager{FixtureID: i, Home: 1, Away: 0, Stake: 10})
		require.NoError(t, err)
		_, err = e.wagers.PlaceMatch(ctx, b.ID, wager.MatchWager{FixtureID: i, Home: 0, Away: 1, Stake: 10})
		require.NoError(t, err)
		e.src.finish(i, 1, 0)
	}

	var wg sync.WaitGroup
	sums := make([]*Summary, 2)
	for i := range sums {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := e.settler.SettleAll(ctx)
			assert.NoError(t, err)
			sums[i] = s
		}(i)
	}
	wg.Wait()

	require.NotNil(t, sums[0])
	require.NotNil(t, sums[1])
	assert.Equal(t, 8, sums[0].Settled+sums[1].Settled)
	assert.EqualValues(t, 60+80, dbtest.Balance(t, e.db, a.ID))
	assert.EqualValues(t, 60, dbtest.Balance(t, e.db, b.ID))
}
