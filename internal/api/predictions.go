package api

import (
	"net/http" // HTTP status codes

	"matchday/internal/domain"     // Error envelope
	"matchday/internal/middleware" // Session helpers
	"matchday/internal/settlement" // Settlement job
	"matchday/internal/wager"      // Wager creation

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// PredictionRequest is the body of POST /api/predictions. Kind defaults to match.
type PredictionRequest struct {
	Kind      string `json:"kind" binding:"omitempty,oneof=match league"`
	Stake     int64  `json:"stake" binding:"required,gt=0"`
	FixtureID int64  `json:"fixture_id" binding:"omitempty,gt=0"`
	HomeScore *int   `json:"home_score" binding:"omitempty,score"`
	AwayScore *int   `json:"away_score" binding:"omitempty,score"`
	LeagueID  int64  `json:"league_id" binding:"omitempty,gt=0"`
	SeasonID  int64  `json:"season_id" binding:"omitempty,gt=0"`
	TeamID    int64  `json:"team_id" binding:"omitempty,gt=0"`
	TeamName  string `json:"team_name" binding:"max=128"`
}

// ListPredictionsHandler lists the caller's predictions, optionally by ?status=pending|settled
func ListPredictionsHandler(wagers *wager.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, _ := middleware.AccountID(c)
		preds, err := wagers.List(c.Request.Context(), accountID, c.Query("status"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"predictions": preds})
	}
}

// CreatePredictionHandler places a match or league wager
func CreatePredictionHandler(wagers *wager.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, _ := middleware.AccountID(c)
		var req PredictionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, bindError(err))
			return
		}

		var (
			pred *domain.Prediction
			err  error
		)
		ctx := c.Request.Context()
		switch domain.PredictionKind(req.Kind) {
		case domain.KindLeague:
			if req.LeagueID == 0 || req.TeamID == 0 {
				respondError(c, domain.ErrValidation("league_id and team_id are required for league predictions"))
				return
			}
			pred, err = wagers.PlaceLeague(ctx, accountID, wager.LeagueWager{
				LeagueID: req.LeagueID,
				SeasonID: req.SeasonID,
				TeamID:   req.TeamID,
				TeamName: req.TeamName,
				Stake:    req.Stake,
			})
		default:
			if req.FixtureID == 0 || req.HomeScore == nil || req.AwayScore == nil {
				respondError(c, domain.ErrValidation("fixture_id, home_score and away_score are required for match predictions"))
				return
			}
			pred, err = wagers.PlaceMatch(ctx, accountID, wager.MatchWager{
				FixtureID: req.FixtureID,
				Home:      *req.HomeScore,
				Away:      *req.AwayScore,
				Stake:     req.Stake,
			})
		}
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateBalances(c, rdb, accountID) // Stake left the balance
		c.JSON(http.StatusCreated, gin.H{"prediction": pred})
	}
}

// SettleHandler settles the caller's pending predictions on demand
func SettleHandler(settler *settlement.Settler, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, _ := middleware.AccountID(c)
		summary, err := settler.SettleAccount(c.Request.Context(), accountID)
		if err != nil {
			respondError(c, err)
			return
		}
		if summary.Settled > 0 {
			invalidateBalances(c, rdb, accountID)
		}
		c.JSON(http.StatusOK, summary)
	}
}
