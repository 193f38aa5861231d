package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"matchday/internal/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const fixtureIncludes = "participants;scores;state;league;venue"

// SportMonks is the fixtures, livescores and teams provider. Calls carry the
// server-held api token, so the browser never sees it.
type SportMonks struct {
	client  *resty.Client
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// NewSportMonks creates a client against baseURL.
func NewSportMonks(baseURL, token string, log logrus.FieldLogger, m *metrics.Metrics) *SportMonks {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json").
		SetQueryParam("api_token", token)
	return &SportMonks{client: client, log: log, metrics: m}
}

type smParticipant struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
	Meta      struct {
		Location string `json:"location"`
	} `json:"meta"`
}

type smScore struct {
	Description string `json:"description"`
	Score       struct {
		Goals       int    `json:"goals"`
		Participant string `json:"participant"`
	} `json:"score"`
}

type smFixture struct {
	ID                  int64           `json:"id"`
	LeagueID            int64           `json:"league_id"`
	SeasonID            int64           `json:"season_id"`
	StateID             int             `json:"state_id"`
	StartingAtTimestamp int64           `json:"starting_at_timestamp"`
	Participants        []smParticipant `json:"participants"`
	Scores              []smScore       `json:"scores"`
	State               *struct {
		State         string `json:"state"`
		ShortName     string `json:"short_name"`
		DeveloperName string `json:"developer_name"`
	} `json:"state"`
	League *struct {
		Name string `json:"name"`
	} `json:"league"`
	Venue *struct {
		Name string `json:"name"`
	} `json:"venue"`
}

func (f *smFixture) snapshot() *FixtureSnapshot {
	s := &FixtureSnapshot{
		ID:       f.ID,
		LeagueID: f.LeagueID,
		SeasonID: f.SeasonID,
		StateID:  f.StateID,
	}
	if f.StartingAtTimestamp > 0 {
		t := time.Unix(f.StartingAtTimestamp, 0).UTC()
		s.StartingAt = &t
	}
	for _, p := range f.Participants {
		team := Team{ID: p.ID, Name: p.Name, Logo: p.ImagePath}
		switch p.Meta.Location {
		case "home":
			s.Home = team
		case "away":
			s.Away = team
		}
	}
	for _, sc := range f.Scores {
		if sc.Description != "CURRENT" {
			continue
		}
		goals := sc.Score.Goals
		switch sc.Score.Participant {
		case "home":
			s.HomeScore = &goals
		case "away":
			s.AwayScore = &goals
		}
	}
	if f.State != nil {
		s.State = f.State.DeveloperName
		if s.State == "" {
			s.State = f.State.ShortName
		}
	}
	if f.League != nil {
		s.LeagueName = f.League.Name
	}
	if f.Venue != nil {
		s.Venue = f.Venue.Name
	}
	return s
}

// get issues a GET and returns the body of a 2xx response.
func (c *SportMonks) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		c.metrics.ProviderRequest("sportmonks", "error")
		return nil, fmt.Errorf("sportmonks %s: %w", path, err)
	}
	c.log.WithFields(logrus.Fields{"path": path, "status": resp.StatusCode()}).Debug("sportmonks request")
	if !resp.IsSuccess() {
		c.metrics.ProviderRequest("sportmonks", "upstream_"+strconv.Itoa(resp.StatusCode()))
		return nil, &UpstreamError{Provider: "sportmonks", Status: resp.StatusCode(), Body: truncate(resp.String(), 200)}
	}
	c.metrics.ProviderRequest("sportmonks", "ok")
	return resp.Body(), nil
}

// Fixture fetches one fixture with teams, scores, state, league and venue.
func (c *SportMonks) Fixture(ctx context.Context, id int64) (*FixtureSnapshot, error) {
	body, err := c.get(ctx, "/fixtures/"+strconv.FormatInt(id, 10), map[string]string{"include": fixtureIncludes})
	if err != nil {
		return nil, err
	}
	var out struct {
		Data smFixture `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode sportmonks fixture %d: %w", id, err)
	}
	if out.Data.ID == 0 {
		return nil, &UpstreamError{Provider: "sportmonks", Status: 404, Body: "empty fixture payload"}
	}
	return out.Data.snapshot(), nil
}

// FixturesByDate lists fixtures scheduled on date (YYYY-MM-DD).
func (c *SportMonks) FixturesByDate(ctx context.Context, date string) ([]FixtureSnapshot, error) {
	return c.list(ctx, "/fixtures/date/"+date)
}

// Livescores lists fixtures currently in play.
func (c *SportMonks) Livescores(ctx context.Context) ([]FixtureSnapshot, error) {
	return c.list(ctx, "/livescores/inplay")
}

func (c *SportMonks) list(ctx context.Context, path string) ([]FixtureSnapshot, error) {
	body, err := c.get(ctx, path, map[string]string{"include": fixtureIncludes})
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []smFixture `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode sportmonks %s: %w", path, err)
	}
	snaps := make([]FixtureSnapshot, 0, len(out.Data))
	for i := range out.Data {
		snaps = append(snaps, *out.Data[i].snapshot())
	}
	return snaps, nil
}

// TeamsBySeason returns the raw team listing of a season.
func (c *SportMonks) TeamsBySeason(ctx context.Context, seasonID int64) (json.RawMessage, error) {
	body, err := c.get(ctx, "/teams/seasons/"+strconv.FormatInt(seasonID, 10), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
