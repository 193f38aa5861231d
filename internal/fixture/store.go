// Package fixture keeps the local fixture cache in step with the provider.
package fixture

import (
	"context"
	"errors"
	"fmt"

	"matchday/internal/domain"
	"matchday/internal/provider"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// refreshed lists the columns a provider snapshot overwrites.
var refreshed = []string{
	"home_team_id", "home_team", "home_logo",
	"away_team_id", "away_team", "away_logo",
	"starting_at", "league_id", "league_name", "season_id", "venue",
	"home_score", "away_score", "state", "state_id", "placeholder", "updated_at",
}

// Store reads and writes cached fixtures.
type Store struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewStore creates a Store.
func NewStore(db *gorm.DB, log logrus.FieldLogger) *Store {
	return &Store{db: db, log: log}
}

// Get returns the cached fixture or nil when it was never seen.
func (s *Store) Get(ctx context.Context, externalID int64) (*domain.Fixture, error) {
	var f domain.Fixture
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load fixture %d: %w", externalID, err)
	}
	return &f, nil
}

// Upsert writes a provider snapshot over the cached row.
func (s *Store) Upsert(ctx context.Context, snap *provider.FixtureSnapshot) (*domain.Fixture, error) {
	f := snap.ToFixture()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns(refreshed),
	}).Create(&f).Error
	if err != nil {
		return nil, fmt.Errorf("upsert fixture %d: %w", snap.ID, err)
	}
	return s.Get(ctx, snap.ID)
}

// UpsertAll writes every snapshot, stopping at the first failure.
func (s *Store) UpsertAll(ctx context.Context, snaps []provider.FixtureSnapshot) error {
	for i := range snaps {
		if _, err := s.Upsert(ctx, &snaps[i]); err != nil {
			return err
		}
	}
	return nil
}

// Ensure returns the cached fixture, fetching it from src the first time it is
// referenced. When the provider cannot be reached a placeholder row is stored
// instead, so callers never fail on a provider outage.
func (s *Store) Ensure(ctx context.Context, src provider.FixtureSource, externalID int64) (*domain.Fixture, error) {
	f, err := s.Get(ctx, externalID)
	if err != nil || f != nil {
		return f, err
	}

	snap, err := src.Fixture(ctx, externalID)
	if err == nil {
		return s.Upsert(ctx, snap)
	}

	s.log.WithFields(logrus.Fields{
		"fixture_id": externalID,
		"error":      err.Error(),
	}).Warn("Fixture lookup failed, storing placeholder")

	placeholder := domain.Fixture{
		ExternalID:  externalID,
		HomeTeam:    "TBD",
		AwayTeam:    "TBD",
		State:       "NS",
		Placeholder: true,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&placeholder).Error; err != nil {
		return nil, fmt.Errorf("store placeholder fixture %d: %w", externalID, err)
	}
	return s.Get(ctx, externalID)
}
