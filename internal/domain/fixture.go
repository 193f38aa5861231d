package domain

import "time"

// Fixture Model mirrors one match from the fixtures provider
type Fixture struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	ExternalID  int64      `gorm:"uniqueIndex;not null" json:"id"` // Provider fixture id
	HomeTeamID  int64      `json:"home_team_id"`
	HomeTeam    string     `gorm:"size:128" json:"home_team"`
	HomeLogo    string     `gorm:"size:255" json:"home_logo,omitempty"`
	AwayTeamID  int64      `json:"away_team_id"`
	AwayTeam    string     `gorm:"size:128" json:"away_team"`
	AwayLogo    string     `gorm:"size:255" json:"away_logo,omitempty"`
	StartingAt  *time.Time `json:"starting_at,omitempty"`
	LeagueID    int64      `gorm:"index" json:"league_id"`
	LeagueName  string     `gorm:"size:128" json:"league_name"`
	SeasonID    int64      `json:"season_id"`
	Venue       string     `gorm:"size:128" json:"venue,omitempty"`
	HomeScore   *int       `json:"home_score"` // Null until known
	AwayScore   *int       `json:"away_score"`
	State       string     `gorm:"size:16" json:"state"` // Provider short code: NS, LIVE, FT...
	StateID     int        `json:"state_id"`
	Placeholder bool       `json:"placeholder"` // Inserted without provider data
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Finished states reported by the fixtures provider.
var finishedStates = map[string]bool{
	"FT":     true, // Full time
	"AET":    true, // After extra time
	"FT_PEN": true, // After penalties
}

// IsFinishedState reports whether a provider state code means the result is final.
func IsFinishedState(state string) bool {
	return finishedStates[state]
}
