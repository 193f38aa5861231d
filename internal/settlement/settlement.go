// Package settlement resolves pending match wagers against final scores.
package settlement

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"matchday/internal/domain"
	"matchday/internal/fixture"
	"matchday/internal/ledger"
	"matchday/internal/metrics"
	"matchday/internal/provider"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// State is the settlement-relevant part of a prediction.
type State struct {
	IsSettled bool           `json:"is_settled"`
	Verdict   domain.Verdict `json:"verdict"`
	CoinsWon  int64          `json:"coins_won"`
}

// Result describes one prediction settled in a run.
type Result struct {
	PredictionID uint  `json:"prediction_id"`
	AccountID    uint  `json:"account_id"`
	FixtureID    int64 `json:"fixture_id"`
	Before       State `json:"before"`
	After        State `json:"after"`
	ActualHome   int   `json:"actual_home"`
	ActualAway   int   `json:"actual_away"`
}

// Summary is returned by every settlement run.
type Summary struct {
	Checked      int      `json:"checked"`
	Settled      int      `json:"settled"`
	CoinsAwarded int64    `json:"coins_awarded"`
	Results      []Result `json:"results"`
}

// Options tune how hard settlement leans on the provider.
type Options struct {
	RatePerSecond float64 // Provider calls per second, <= 0 means unlimited
	Concurrency   int     // Predictions resolved in parallel
}

// Settler runs settlement.
type Settler struct {
	db          *gorm.DB
	fixtures    *fixture.Store
	source      provider.FixtureSource
	limiter     *rate.Limiter
	concurrency int
	log         logrus.FieldLogger
	metrics     *metrics.Metrics
}

// NewSettler creates a Settler.
func NewSettler(db *gorm.DB, fixtures *fixture.Store, source provider.FixtureSource, opts Options, log logrus.FieldLogger, m *metrics.Metrics) *Settler {
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Settler{
		db:          db,
		fixtures:    fixtures,
		source:      source,
		limiter:     rate.NewLimiter(limit, 1),
		concurrency: opts.Concurrency,
		log:         log,
		metrics:     m,
	}
}

// SettleAccount settles the pending predictions of one account.
func (s *Settler) SettleAccount(ctx context.Context, accountID uint) (*Summary, error) {
	var pending []domain.Prediction
	if err := s.db.WithContext(ctx).
		Where("account_id = ? AND is_settled = ?", accountID, false).
		Order("id").
		Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("load pending predictions: %w", err)
	}
	return s.run(ctx, pending), nil
}

// SettleAll settles every pending prediction in the system.
func (s *Settler) SettleAll(ctx context.Context) (*Summary, error) {
	var pending []domain.Prediction
	if err := s.db.WithContext(ctx).
		Where("is_settled = ? AND kind = ?", false, domain.KindMatch).
		Order("id").
		Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("load pending predictions: %w", err)
	}
	return s.run(ctx, pending), nil
}

func (s *Settler) run(ctx context.Context, pending []domain.Prediction) *Summary {
	sum := &Summary{Checked: len(pending), Results: []Result{}}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range pending {
		p := pending[i]
		g.Go(func() error {
			res, err := s.settleOne(ctx, &p)
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"prediction_id": p.ID,
					"account_id":    p.AccountID,
					"error":         err.Error(),
				}).Error("Settlement failed")
				s.metrics.SettlementSkipped("error")
				return nil
			}
			if res == nil {
				return nil
			}
			mu.Lock()
			sum.Settled++
			sum.CoinsAwarded += res.After.CoinsWon
			sum.Results = append(sum.Results, *res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // Workers never return errors

	sort.Slice(sum.Results, func(i, j int) bool { return sum.Results[i].PredictionID < sum.Results[j].PredictionID })
	return sum
}

// settleOne returns nil, nil when the prediction must stay pending.
func (s *Settler) settleOne(ctx context.Context, p *domain.Prediction) (*Result, error) {
	if p.FixtureID == nil || *p.FixtureID <= 0 {
		s.metrics.SettlementSkipped("no_fixture")
		return nil, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for provider slot: %w", err)
	}

	snap, err := s.source.Fixture(ctx, *p.FixtureID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"prediction_id": p.ID,
			"fixture_id":    *p.FixtureID,
			"error":         err.Error(),
		}).Warn("Fixture lookup failed, leaving prediction pending")
		s.metrics.SettlementSkipped("provider")
		return nil, nil
	}
	if !snap.HasFinalScore() {
		s.metrics.SettlementSkipped("unfinished")
		return nil, nil
	}

	if _, err := s.fixtures.Upsert(ctx, snap); err != nil {
		// The cache refresh is opportunistic; the verdict does not depend on it.
		s.log.WithFields(logrus.Fields{"fixture_id": snap.ID, "error": err.Error()}).Warn("Fixture refresh failed")
	}

	home, away := *snap.HomeScore, *snap.AwayScore
	verdict, coins := p.Judge(home, away)
	before := State{IsSettled: p.IsSettled, Verdict: p.Verdict, CoinsWon: p.CoinsWon}

	settled := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&domain.Prediction{}).
			Where("id = ? AND is_settled = ?", p.ID, false).
			Updates(map[string]any{
				"is_settled": true,
				"verdict":    verdict,
				"coins_won":  coins,
				"settled_at": &now,
			})
		if res.Error != nil {
			return fmt.Errorf("mark prediction %d settled: %w", p.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil // Another run got here first
		}
		settled = true
		if coins > 0 {
			ref := "prediction:" + strconv.FormatUint(uint64(p.ID), 10)
			if _, err := ledger.Apply(tx, p.AccountID, coins, domain.TxWagerWin, ref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !settled {
		return nil, nil
	}

	s.metrics.PredictionSettled(string(verdict), coins)
	s.log.WithFields(logrus.Fields{
		"prediction_id": p.ID,
		"account_id":    p.AccountID,
		"fixture_id":    *p.FixtureID,
		"verdict":       verdict,
		"coins_won":     coins,
	}).Info("Prediction settled")

	return &Result{
		PredictionID: p.ID,
		AccountID:    p.AccountID,
		FixtureID:    *p.FixtureID,
		Before:       before,
		After:        State{IsSettled: true, Verdict: verdict, CoinsWon: coins},
		ActualHome:   home,
		ActualAway:   away,
	}, nil
}
