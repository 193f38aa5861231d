package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // Cache key building
	"time"     // Date filters

	"matchday/internal/domain"     // Importing domain models
	"matchday/internal/middleware" // Request logger
	"matchday/internal/settlement" // Settlement job

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
	"gorm.io/gorm"                 // GORM ORM library
)

// AccountAdminResponse is an account as administrators see it
type AccountAdminResponse struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	Handle      string    `json:"handle"`
	Role        string    `json:"role"`
	Coins       int64     `json:"coins"`
	Predictions int64     `json:"predictions"`
	CreatedAt   time.Time `json:"created_at"`
}

// AccountsPage is a page of accounts
type AccountsPage struct {
	Accounts   []AccountAdminResponse `json:"accounts"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	Total      int64                  `json:"total"`
	TotalPages int                    `json:"total_pages"`
}

// TransactionsPage is a page of coin transactions across accounts
type TransactionsPage struct {
	Transactions []domain.CoinTransaction `json:"transactions"`
	Page         int                      `json:"page"`
	PageSize     int                      `json:"page_size"`
	Total        int64                    `json:"total"`
	TotalPages   int                      `json:"total_pages"`
}

// ListAccountsHandler returns every account with its prediction count
func ListAccountsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := pagination(c)
		key := adminPrefix + "accounts:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)

		res, err := cached(c, rdb, key, adminTTL, func() (*AccountsPage, error) {
			q := db.WithContext(c.Request.Context())
			var total int64 // Count total accounts for pagination
			if err := q.Model(&domain.Account{}).Count(&total).Error; err != nil {
				return nil, domain.ErrInternal("count accounts", err)
			}
			var rows []AccountAdminResponse
			err := q.Model(&domain.Account{}).
				Select("accounts.id, accounts.email, accounts.handle, accounts.role, accounts.coins, accounts.created_at, " +
					"(SELECT COUNT(*) FROM predictions p WHERE p.account_id = accounts.id AND p.deleted_at IS NULL) AS predictions").
				Order("accounts.id").
				Offset((page - 1) * pageSize).
				Limit(pageSize).
				Scan(&rows).Error
			if err != nil {
				return nil, domain.ErrInternal("list accounts", err)
			}
			if rows == nil {
				rows = []AccountAdminResponse{}
			}
			return &AccountsPage{
				Accounts:   rows,
				Page:       page,
				PageSize:   pageSize,
				Total:      total,
				TotalPages: (int(total) + pageSize - 1) / pageSize, // Calculate total pages
			}, nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// ListTransactionsHandler lists coin transactions filtered by
// ?account_id=, ?type=, ?from=YYYY-MM-DD and ?to=YYYY-MM-DD (inclusive)
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Build cache key from every filter
		var keyParts []string
		for _, k := range []string{"account_id", "type", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.Query(k))
		}
		key := adminPrefix + "transactions:" + strings.Join(keyParts, ":")

		q := db.WithContext(c.Request.Context()).Model(&domain.CoinTransaction{})
		if v := c.Query("account_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				respondError(c, domain.ErrValidation("account_id must be a positive integer"))
				return
			}
			q = q.Where("account_id = ?", id)
		}
		if v := c.Query("type"); v != "" {
			q = q.Where("type = ?", v)
		}
		if v := c.Query("from"); v != "" {
			from, err := time.Parse(time.DateOnly, v)
			if err != nil {
				respondError(c, domain.ErrValidation("from must be YYYY-MM-DD"))
				return
			}
			q = q.Where("created_at >= ?", from.UnixMilli())
		}
		if v := c.Query("to"); v != "" {
			to, err := time.Parse(time.DateOnly, v)
			if err != nil {
				respondError(c, domain.ErrValidation("to must be YYYY-MM-DD"))
				return
			}
			q = q.Where("created_at < ?", to.AddDate(0, 0, 1).UnixMilli()) // Whole day included
		}
		q = q.Session(&gorm.Session{})
		page, pageSize := pagination(c)

		res, err := cached(c, rdb, key, adminTTL, func() (*TransactionsPage, error) {
			var total int64
			if err := q.Count(&total).Error; err != nil {
				return nil, domain.ErrInternal("count transactions", err)
			}
			txs := []domain.CoinTransaction{}
			if err := q.Order("created_at desc, id desc").Offset((page - 1) * pageSize).Limit(pageSize).Find(&txs).Error; err != nil {
				return nil, domain.ErrInternal("list transactions", err)
			}
			return &TransactionsPage{
				Transactions: txs,
				Page:         page,
				PageSize:     pageSize,
				Total:        total,
				TotalPages:   (int(total) + pageSize - 1) / pageSize,
			}, nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// SweepHandler settles pending match predictions of every account
func SweepHandler(settler *settlement.Settler, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := settler.SettleAll(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if summary.Settled > 0 {
			invalidateBalances(c, rdb) // Many accounts may have moved
		}
		middleware.Logger(c).WithFields(logrus.Fields{
			"checked":       summary.Checked,
			"settled":       summary.Settled,
			"coins_awarded": summary.CoinsAwarded,
		}).Info("Settlement sweep")
		c.JSON(http.StatusOK, summary)
	}
}
