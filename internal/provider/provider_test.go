package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

const finishedFixture = `{"data":{
	"id": 19134454, "league_id": 8, "season_id": 21646, "state_id": 5,
	"starting_at_timestamp": 1716130800,
	"participants": [
		{"id": 1, "name": "Arsenal", "image_path": "https://cdn/1.png", "meta": {"location": "home"}},
		{"id": 2, "name": "Everton", "image_path": "https://cdn/2.png", "meta": {"location": "away"}}
	],
	"scores": [
		{"description": "1ST_HALF", "score": {"goals": 1, "participant": "home"}},
		{"description": "CURRENT", "score": {"goals": 2, "participant": "home"}},
		{"description": "CURRENT", "score": {"goals": 1, "participant": "away"}}
	],
	"state": {"state": "FT", "short_name": "FT", "developer_name": "FT"},
	"league": {"name": "Premier League"},
	"venue": {"name": "Emirates Stadium"}
}}`

func TestSportMonks_Fixture(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fixtures/19134454", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("api_token"))
		assert.Equal(t, fixtureIncludes, r.URL.Query().Get("include"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, finishedFixture)
	}))
	defer srv.Close()

	sm := NewSportMonks(srv.URL, "tok", quietLogger(), nil)
	snap, err := sm.Fixture(context.Background(), 19134454)
	require.NoError(t, err)

	assert.EqualValues(t, 19134454, snap.ID)
	assert.Equal(t, "Arsenal", snap.Home.Name)
	assert.Equal(t, "Everton", snap.Away.Name)
	require.NotNil(t, snap.HomeScore)
	require.NotNil(t, snap.AwayScore)
	assert.Equal(t, 2, *snap.HomeScore)
	assert.Equal(t, 1, *snap.AwayScore)
	assert.Equal(t, "FT", snap.State)
	assert.Equal(t, "Premier League", snap.LeagueName)
	assert.Equal(t, "Emirates Stadium", snap.Venue)
	require.NotNil(t, snap.StartingAt)
	assert.EqualValues(t, 1716130800, snap.StartingAt.Unix())
	assert.True(t, snap.HasFinalScore())

	f := snap.ToFixture()
	assert.EqualValues(t, 19134454, f.ExternalID)
	assert.EqualValues(t, 21646, f.SeasonID)
}

func TestSportMonks_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message":"down"}`)
	}))
	defer srv.Close()

	sm := NewSportMonks(srv.URL, "tok", quietLogger(), nil)
	_, err := sm.Fixture(context.Background(), 1)

	var up *UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, http.StatusServiceUnavailable, up.Status)
	assert.Equal(t, "sportmonks", up.Provider)
}

func TestSportMonks_FixturesByDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fixtures/date/2024-05-19", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"id":1,"state":{"short_name":"NS"}},{"id":2}]}`)
	}))
	defer srv.Close()

	sm := NewSportMonks(srv.URL, "tok", quietLogger(), nil)
	snaps, err := sm.FixturesByDate(context.Background(), "2024-05-19")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "NS", snaps[0].State)
	assert.False(t, snaps[0].HasFinalScore())
	assert.Nil(t, snaps[1].HomeScore)
}

func TestSofaScore_Standings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/unique-tournament/17/season/61627/standings/total", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"standings":[]}`)
	}))
	defer srv.Close()

	ss := NewSofaScore(srv.URL, quietLogger(), nil)
	raw, err := ss.Standings(context.Background(), 17, 61627)
	require.NoError(t, err)
	assert.JSONEq(t, `{"standings":[]}`, string(raw))
}

func TestSofaScore_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ss := NewSofaScore(srv.URL, quietLogger(), nil)
	_, err := ss.Player(context.Background(), 5)
	var up *UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, http.StatusNotFound, up.Status)
}

func TestSofaScore_DirectURL(t *testing.T) {
	ss := NewSofaScore("https://api.sofascore.com/api/v1/", quietLogger(), nil)
	assert.Equal(t, "https://api.sofascore.com/api/v1/event/42", ss.DirectURL("/event/42"))
}
