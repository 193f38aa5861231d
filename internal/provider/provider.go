// Package provider talks to the third-party football data APIs.
package provider

import (
	"context"
	"fmt"
	"time"

	"matchday/internal/domain"
)

// FixtureSource resolves a single fixture by its provider id.
type FixtureSource interface {
	Fixture(ctx context.Context, id int64) (*FixtureSnapshot, error)
}

// UpstreamError is returned when a provider answers with a non-2xx status.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Status, e.Body)
}

// Team is one side of a fixture.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// FixtureSnapshot is a provider-neutral view of one match.
type FixtureSnapshot struct {
	ID         int64      `json:"id"`
	Home       Team       `json:"home"`
	Away       Team       `json:"away"`
	StartingAt *time.Time `json:"starting_at,omitempty"`
	LeagueID   int64      `json:"league_id"`
	LeagueName string     `json:"league_name"`
	SeasonID   int64      `json:"season_id"`
	Venue      string     `json:"venue,omitempty"`
	HomeScore  *int       `json:"home_score"`
	AwayScore  *int       `json:"away_score"`
	State      string     `json:"state"`
	StateID    int        `json:"state_id"`
}

// HasFinalScore reports whether the match is over and both scores are known.
func (s *FixtureSnapshot) HasFinalScore() bool {
	return domain.IsFinishedState(s.State) && s.HomeScore != nil && s.AwayScore != nil
}

// ToFixture maps the snapshot onto the cached fixture row.
func (s *FixtureSnapshot) ToFixture() domain.Fixture {
	return domain.Fixture{
		ExternalID: s.ID,
		HomeTeamID: s.Home.ID,
		HomeTeam:   s.Home.Name,
		HomeLogo:   s.Home.Logo,
		AwayTeamID: s.Away.ID,
		AwayTeam:   s.Away.Name,
		AwayLogo:   s.Away.Logo,
		StartingAt: s.StartingAt,
		LeagueID:   s.LeagueID,
		LeagueName: s.LeagueName,
		SeasonID:   s.SeasonID,
		Venue:      s.Venue,
		HomeScore:  s.HomeScore,
		AwayScore:  s.AwayScore,
		State:      s.State,
		StateID:    s.StateID,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
