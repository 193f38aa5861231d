// Package wager accepts match and league predictions and debits their stakes.
package wager

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"matchday/internal/domain"
	"matchday/internal/fixture"
	"matchday/internal/ledger"
	"matchday/internal/metrics"
	"matchday/internal/provider"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MatchWager predicts the exact final score of a fixture.
type MatchWager struct {
	FixtureID int64
	Home      int
	Away      int
	Stake     int64
}

// LeagueWager predicts the winner of a league season.
type LeagueWager struct {
	LeagueID int64
	SeasonID int64
	TeamID   int64
	TeamName string
	Stake    int64
}

// Service places wagers.
type Service struct {
	db       *gorm.DB
	fixtures *fixture.Store
	source   provider.FixtureSource
	maxScore int
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

// NewService creates a wager Service. maxScore caps each predicted score.
func NewService(db *gorm.DB, fixtures *fixture.Store, source provider.FixtureSource, maxScore int, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{db: db, fixtures: fixtures, source: source, maxScore: maxScore, log: log, metrics: m}
}

// PlaceMatch records a score prediction for a fixture and debits the stake.
func (s *Service) PlaceMatch(ctx context.Context, accountID uint, w MatchWager) (*domain.Prediction, error) {
	if w.FixtureID <= 0 {
		return nil, domain.ErrValidation("fixture_id must be positive")
	}
	if w.Home < 0 || w.Away < 0 || w.Home > s.maxScore || w.Away > s.maxScore {
		return nil, domain.ErrValidation(fmt.Sprintf("scores must be between 0 and %d", s.maxScore))
	}
	if err := s.checkFunds(ctx, accountID, w.Stake); err != nil {
		return nil, err
	}
	dup, err := hasMatchPrediction(s.db.WithContext(ctx), accountID, w.FixtureID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, domain.ErrDuplicatePrediction()
	}

	// Best effort: a provider outage leaves a placeholder fixture behind.
	if _, err := s.fixtures.Ensure(ctx, s.source, w.FixtureID); err != nil {
		return nil, domain.ErrInternal("cache fixture", err)
	}

	fixtureID, home, away := w.FixtureID, w.Home, w.Away
	p := &domain.Prediction{
		AccountID: accountID,
		Kind:      domain.KindMatch,
		FixtureID: &fixtureID,
		HomeScore: &home,
		AwayScore: &away,
		Stake:     w.Stake,
		Verdict:   domain.VerdictPending,
	}
	if err := s.place(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PlaceLeague records a league winner prediction and debits the stake.
// Several league wagers on the same season are allowed.
func (s *Service) PlaceLeague(ctx context.Context, accountID uint, w LeagueWager) (*domain.Prediction, error) {
	if w.LeagueID <= 0 || w.TeamID <= 0 {
		return nil, domain.ErrValidation("league_id and team_id must be positive")
	}
	if w.SeasonID < 0 {
		return nil, domain.ErrValidation("season_id must not be negative")
	}
	if err := s.checkFunds(ctx, accountID, w.Stake); err != nil {
		return nil, err
	}

	leagueID, teamID := w.LeagueID, w.TeamID
	p := &domain.Prediction{
		AccountID: accountID,
		Kind:      domain.KindLeague,
		LeagueID:  &leagueID,
		TeamID:    &teamID,
		TeamName:  w.TeamName,
		Stake:     w.Stake,
		Verdict:   domain.VerdictPending,
	}
	if w.SeasonID > 0 {
		seasonID := w.SeasonID
		p.SeasonID = &seasonID
	}
	if err := s.place(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) checkFunds(ctx context.Context, accountID uint, stake int64) error {
	if stake <= 0 {
		return domain.ErrValidation("stake must be positive")
	}
	var acc domain.Account
	err := s.db.WithContext(ctx).Select("id", "coins").First(&acc, accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound("account", strconv.FormatUint(uint64(accountID), 10))
	}
	if err != nil {
		return domain.ErrInternal("load account", err)
	}
	if acc.Coins < stake {
		return domain.ErrInsufficientBalance()
	}
	return nil
}

// place inserts the prediction and debits its stake in one transaction.
func (s *Service) place(ctx context.Context, p *domain.Prediction) error {
	var balance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.Kind == domain.KindMatch {
			dup, err := hasMatchPrediction(tx, p.AccountID, *p.FixtureID)
			if err != nil {
				return err
			}
			if dup {
				return domain.ErrDuplicatePrediction()
			}
		}
		if err := tx.Omit("Fixture").Create(p).Error; err != nil {
			return fmt.Errorf("insert prediction: %w", err)
		}
		var err error
		balance, err = ledger.Apply(tx, p.AccountID, -p.Stake, domain.TxWagerStake, "prediction:"+strconv.FormatUint(uint64(p.ID), 10))
		return err
	})
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		s.log.WithFields(logrus.Fields{
			"account_id": p.AccountID,
			"kind":       p.Kind,
			"stake":      p.Stake,
			"error":      err.Error(),
		}).Error("Wager failed")
		return domain.ErrInternal("place wager", err)
	}

	s.metrics.PredictionPlaced(string(p.Kind))
	s.log.WithFields(logrus.Fields{
		"account_id":    p.AccountID,
		"prediction_id": p.ID,
		"kind":          p.Kind,
		"stake":         p.Stake,
		"balance":       balance,
	}).Info("Wager placed")
	return nil
}

func hasMatchPrediction(db *gorm.DB, accountID uint, fixtureID int64) (bool, error) {
	var n int64
	err := db.Model(&domain.Prediction{}).
		Where("account_id = ? AND kind = ? AND fixture_id = ?", accountID, domain.KindMatch, fixtureID).
		Count(&n).Error
	if err != nil {
		return false, domain.ErrInternal("check duplicate prediction", err)
	}
	return n > 0, nil
}

// List returns the predictions of an account, newest first. status filters
// on "pending" or "settled"; anything else returns all.
func (s *Service) List(ctx context.Context, accountID uint, status string) ([]domain.Prediction, error) {
	q := s.db.WithContext(ctx).Preload("Fixture").Where("account_id = ?", accountID)
	switch status {
	case "pending":
		q = q.Where("is_settled = ?", false)
	case "settled":
		q = q.Where("is_settled = ?", true)
	}
	var out []domain.Prediction
	if err := q.Order("created_at desc, id desc").Find(&out).Error; err != nil {
		return nil, domain.ErrInternal("list predictions", err)
	}
	return out, nil
}

// Stats summarizes the wagering record of an account.
type Stats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Wins    int64 `json:"wins"`
	Losses  int64 `json:"losses"`
	Staked  int64 `json:"staked"`
	Won     int64 `json:"won"`
}

// Stats aggregates predictions by verdict.
func (s *Service) Stats(ctx context.Context, accountID uint) (*Stats, error) {
	var rows []struct {
		Verdict domain.Verdict
		N       int64
		Staked  int64
		Won     int64
	}
	err := s.db.WithContext(ctx).Model(&domain.Prediction{}).
		Select("verdict, COUNT(*) AS n, COALESCE(SUM(stake), 0) AS staked, COALESCE(SUM(coins_won), 0) AS won").
		Where("account_id = ?", accountID).
		Group("verdict").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.ErrInternal("prediction stats", err)
	}
	st := &Stats{}
	for _, r := range rows {
		st.Total += r.N
		st.Staked += r.Staked
		st.Won += r.Won
		switch r.Verdict {
		case domain.VerdictPending:
			st.Pending = r.N
		case domain.VerdictWin:
			st.Wins = r.N
		case domain.VerdictLose:
			st.Losses = r.N
		}
	}
	return st, nil
}
