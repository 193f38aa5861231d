package api

import (
	"context"
	"errors"
	"strconv"
	"time"

	"matchday/internal/middleware"
	"matchday/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache lifetimes
const (
	leaderboardTTL = 60 * time.Second
	fixturesTTL    = 60 * time.Second
	statsTTL       = 5 * time.Minute // SofaScore and team listings change slowly
	historyTTL     = 5 * time.Minute // Invalidated on every coin movement
	adminTTL       = 30 * time.Second
)

// Key prefixes
const (
	leaderboardPrefix = "leaderboard:"
	adminPrefix       = "admin:"
)

func historyPrefix(accountID uint) string {
	return "coins:history:" + strconv.FormatUint(uint64(accountID), 10) + ":"
}

// InvalidateBalanceCaches drops every cached view derived from balances after
// coins moved. With no accountIDs every account's history is dropped.
func InvalidateBalanceCaches(ctx context.Context, rdb *redis.Client, accountIDs ...uint) error {
	prefixes := []string{leaderboardPrefix, adminPrefix}
	if len(accountIDs) == 0 {
		prefixes = append(prefixes, "coins:history:")
	}
	for _, id := range accountIDs {
		prefixes = append(prefixes, historyPrefix(id))
	}
	var errs []error
	for _, p := range prefixes {
		if err := utils.DeleteCachePrefix(ctx, rdb, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func invalidateBalances(c *gin.Context, rdb *redis.Client, accountIDs ...uint) {
	if err := InvalidateBalanceCaches(c.Request.Context(), rdb, accountIDs...); err != nil {
		middleware.Logger(c).WithField("error", err.Error()).Warn("Cache invalidation failed")
	}
}

// cached serves key from redis when present; otherwise it calls load, stores the
// result for ttl and serves it. Redis failures only cost a cache miss.
func cached[T any](c *gin.Context, rdb *redis.Client, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	ctx := c.Request.Context()
	var out T
	found, err := utils.GetCache(ctx, rdb, key, &out)
	if err == nil && found {
		c.Header("X-Cache", "HIT")
		return out, nil
	}
	if err != nil {
		middleware.Logger(c).WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache read failed")
	}
	out, err = load()
	if err != nil {
		return out, err
	}
	if err := utils.SetCache(ctx, rdb, key, out, ttl); err != nil {
		middleware.Logger(c).WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("Cache write failed")
	}
	c.Header("X-Cache", "MISS")
	return out, nil
}
