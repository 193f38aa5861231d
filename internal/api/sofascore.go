package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"matchday/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// StatsFeed is the statistics provider surface the handlers use
type StatsFeed interface {
	Standings(ctx context.Context, tournamentID, seasonID int64) (json.RawMessage, error)
	Event(ctx context.Context, id int64) (json.RawMessage, error)
	Team(ctx context.Context, id int64) (json.RawMessage, error)
	Player(ctx context.Context, id int64) (json.RawMessage, error)
	DirectURL(path string) string
}

// StandingsHandler serves /api/standings/:tournament/:season
func StandingsHandler(feed StatsFeed, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournament, ok := positiveParam(c, "tournament")
		if !ok {
			return
		}
		season, ok := positiveParam(c, "season")
		if !ok {
			return
		}
		key := "sofa:standings:" + c.Param("tournament") + ":" + c.Param("season")
		passthrough(c, rdb, key, func(ctx context.Context) (json.RawMessage, error) {
			return feed.Standings(ctx, tournament, season)
		})
	}
}

// SofaEntityHandler serves one entity kind by :id, e.g. events or players
func SofaEntityHandler(kind string, fetch func(ctx context.Context, id int64) (json.RawMessage, error), rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := positiveParam(c, "id")
		if !ok {
			return
		}
		passthrough(c, rdb, "sofa:"+kind+":"+c.Param("id"), func(ctx context.Context) (json.RawMessage, error) {
			return fetch(ctx, id)
		})
	}
}

// DeprecatedSofaHandler answers the old proxy route with the address to call directly
func DeprecatedSofaHandler(feed StatsFeed) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.TrimPrefix(c.Param("path"), "/")
		c.JSON(http.StatusOK, gin.H{
			"deprecated": true,
			"redirect":   feed.DirectURL(path),
		})
	}
}

func passthrough(c *gin.Context, rdb *redis.Client, key string, fetch func(ctx context.Context) (json.RawMessage, error)) {
	raw, err := cached(c, rdb, key, statsTTL, func() (json.RawMessage, error) {
		return fetch(c.Request.Context())
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func positiveParam(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		respondError(c, domain.ErrValidation(name+" must be a positive integer"))
		return 0, false
	}
	return v, true
}
