package api

import (
	"context"       // Provider calls
	"encoding/json" // Raw passthrough payloads
	"net/http"      // HTTP status codes
	"strconv"       // String conversion
	"time"          // Date parsing

	"matchday/internal/domain"     // Error envelope
	"matchday/internal/fixture"    // Fixture cache
	"matchday/internal/middleware" // Request logger
	"matchday/internal/provider"   // Provider types

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
)

// FixtureFeed is the fixtures provider surface the handlers use
type FixtureFeed interface {
	provider.FixtureSource
	FixturesByDate(ctx context.Context, date string) ([]provider.FixtureSnapshot, error)
	Livescores(ctx context.Context) ([]provider.FixtureSnapshot, error)
	TeamsBySeason(ctx context.Context, seasonID int64) (json.RawMessage, error)
}

// FixturesByDateHandler lists fixtures on ?date=YYYY-MM-DD (today when omitted) and caches them locally
func FixturesByDateHandler(feed FixtureFeed, store *fixture.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.DefaultQuery("date", time.Now().UTC().Format(time.DateOnly))
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			respondError(c, domain.ErrValidation("date must be YYYY-MM-DD"))
			return
		}
		snaps, err := cached(c, rdb, "fixtures:date:"+date, fixturesTTL, func() ([]provider.FixtureSnapshot, error) {
			snaps, err := feed.FixturesByDate(c.Request.Context(), date)
			if err != nil {
				return nil, err
			}
			refresh(c, store, snaps)
			return snaps, nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"date": date, "fixtures": snaps})
	}
}

// FixtureHandler returns the cached fixture, or fetches and caches it when unknown or a placeholder
func FixtureHandler(feed FixtureFeed, store *fixture.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			respondError(c, domain.ErrValidation("fixture id must be a positive integer"))
			return
		}
		ctx := c.Request.Context()
		f, err := store.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if f != nil && !f.Placeholder {
			c.JSON(http.StatusOK, gin.H{"fixture": f, "source": "cache"})
			return
		}
		snap, err := feed.Fixture(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		f, err = store.Upsert(ctx, snap)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"fixture": f, "source": "provider"})
	}
}

// LivescoresHandler returns in-play fixtures and refreshes their cached rows
func LivescoresHandler(feed FixtureFeed, store *fixture.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		snaps, err := feed.Livescores(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		refresh(c, store, snaps)
		c.JSON(http.StatusOK, gin.H{"fixtures": snaps})
	}
}

// TeamsHandler passes through the team listing of ?season_id=
func TeamsHandler(feed FixtureFeed, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		seasonID, err := strconv.ParseInt(c.Query("season_id"), 10, 64)
		if err != nil || seasonID <= 0 {
			respondError(c, domain.ErrValidation("season_id must be a positive integer"))
			return
		}
		raw, err := cached(c, rdb, "teams:season:"+strconv.FormatInt(seasonID, 10), statsTTL, func() (json.RawMessage, error) {
			return feed.TeamsBySeason(c.Request.Context(), seasonID)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
	}
}

// refresh upserts listed fixtures; a failure only costs freshness
func refresh(c *gin.Context, store *fixture.Store, snaps []provider.FixtureSnapshot) {
	if err := store.UpsertAll(c.Request.Context(), snaps); err != nil {
		middleware.Logger(c).WithFields(logrus.Fields{"count": len(snaps), "error": err.Error()}).Warn("Fixture cache refresh failed")
	}
}
