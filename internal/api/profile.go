package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // Id formatting

	"matchday/internal/domain"     // Importing domain models
	"matchday/internal/middleware" // Session helpers
	"matchday/internal/settlement" // Settlement job
	"matchday/internal/wager"      // Wager stats

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
	"gorm.io/gorm"                 // GORM ORM library
)

// ProfileHandler settles the caller's pending predictions, then returns the account
// together with its wagering record and what this visit settled
func ProfileHandler(db *gorm.DB, settler *settlement.Settler, wagers *wager.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, _ := middleware.AccountID(c)
		ctx := c.Request.Context()

		summary, err := settler.SettleAccount(ctx, accountID)
		if err != nil {
			// The profile is still worth showing when settlement could not run
			middleware.Logger(c).WithFields(logrus.Fields{"account_id": accountID, "error": err.Error()}).Error("Settlement on profile view failed")
			summary = &settlement.Summary{Results: []settlement.Result{}}
		}
		if summary.Settled > 0 {
			invalidateBalances(c, rdb, accountID)
		}

		var acc domain.Account // Read after settlement so the balance includes payouts
		if err := db.WithContext(ctx).First(&acc, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, domain.ErrNotFound("account", strconv.FormatUint(uint64(accountID), 10)))
				return
			}
			respondError(c, domain.ErrInternal("load account", err))
			return
		}
		stats, err := wagers.Stats(ctx, accountID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"account":    acc,
			"stats":      stats,
			"settlement": summary,
		})
	}
}
