package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"matchday/internal/domain"     // Error envelope
	"matchday/internal/ledger"     // Coin history
	"matchday/internal/middleware" // Session helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// pagination reads ?page= and ?page_size=, falling back to 1 and 20
func pagination(c *gin.Context) (int, int) {
	page := 1      // Default page number
	pageSize := 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return page, pageSize
}

// CoinHistoryHandler pages the caller's coin transactions, newest first
func CoinHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, _ := middleware.AccountID(c)
		page, pageSize := pagination(c)
		key := historyPrefix(accountID) + "page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)

		res, err := cached(c, rdb, key, historyTTL, func() (*ledger.Page, error) {
			p, err := ledger.History(db.WithContext(c.Request.Context()), accountID, page, pageSize)
			if err != nil {
				return nil, domain.ErrInternal("load coin history", err)
			}
			return p, nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
