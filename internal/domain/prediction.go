package domain

import (
	"time"

	"gorm.io/gorm"
)

// PredictionKind discriminates what a wager targets
type PredictionKind string

const (
	KindMatch  PredictionKind = "match"
	KindLeague PredictionKind = "league"
)

// Verdict is the resolved outcome of a wager
type Verdict string

const (
	VerdictPending Verdict = "pending"
	VerdictWin     Verdict = "win"
	VerdictLose    Verdict = "lose"
)

// PayoutMultiplier is applied to the stake of a winning wager.
const PayoutMultiplier = 2

// Prediction Model
type Prediction struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AccountID uint           `gorm:"index:idx_prediction_account_fixture;not null" json:"account_id"`
	Kind      PredictionKind `gorm:"size:8;not null" json:"kind"`

	// Match wagers
	FixtureID *int64 `gorm:"index:idx_prediction_account_fixture" json:"fixture_id,omitempty"` // Fixture external id
	HomeScore *int   `json:"home_score,omitempty"`
	AwayScore *int   `json:"away_score,omitempty"`

	// League wagers
	LeagueID *int64 `json:"league_id,omitempty"`
	SeasonID *int64 `json:"season_id,omitempty"`
	TeamID   *int64 `json:"team_id,omitempty"`
	TeamName string `gorm:"size:128" json:"team_name,omitempty"`

	Stake     int64          `gorm:"not null" json:"stake"`
	IsSettled bool           `gorm:"index;not null;default:false" json:"is_settled"`
	Verdict   Verdict        `gorm:"size:8;not null" json:"verdict"`
	CoinsWon  int64          `gorm:"not null;default:0" json:"coins_won"`
	SettledAt *time.Time     `json:"settled_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Fixture *Fixture `gorm:"foreignKey:FixtureID;references:ExternalID" json:"fixture,omitempty"`
}

// Judge returns the verdict and payout for a match wager against a final score.
// Only an exact score wins.
func (p *Prediction) Judge(home, away int) (Verdict, int64) {
	if p.HomeScore != nil && p.AwayScore != nil && *p.HomeScore == home && *p.AwayScore == away {
		return VerdictWin, p.Stake * PayoutMultiplier
	}
	return VerdictLose, 0
}
