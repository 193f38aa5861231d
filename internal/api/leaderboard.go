package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"matchday/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

const maxLeaderboard = 100

// LeaderboardEntry is one public row of the leaderboard
type LeaderboardEntry struct {
	Rank       int             `json:"rank"`
	Handle     string          `json:"handle"`
	Coins      int64           `json:"coins"`
	Badges     []string        `json:"badges"`
	Avatar     domain.EquipRef `json:"avatar"`
	Background domain.EquipRef `json:"background"`
	Frame      domain.EquipRef `json:"frame"`
	Effect     domain.EquipRef `json:"effect"`
	Title      domain.EquipRef `json:"title"`
}

// LeaderboardHandler ranks accounts by coins; ties go to the older account
func LeaderboardHandler(db *gorm.DB, rdb *redis.Client, defaultSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultSize
		if l := c.Query("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 {
				limit = v
			}
		}
		if limit > maxLeaderboard {
			limit = maxLeaderboard
		}

		entries, err := cached(c, rdb, leaderboardPrefix+strconv.Itoa(limit), leaderboardTTL, func() ([]LeaderboardEntry, error) {
			var accounts []domain.Account
			if err := db.WithContext(c.Request.Context()).
				Order("coins desc, id asc").
				Limit(limit).
				Find(&accounts).Error; err != nil {
				return nil, domain.ErrInternal("load leaderboard", err)
			}
			out := make([]LeaderboardEntry, 0, len(accounts))
			for i, a := range accounts {
				badges := []string(a.Badges)
				if badges == nil {
					badges = []string{}
				}
				out = append(out, LeaderboardEntry{
					Rank:       i + 1,
					Handle:     a.Handle,
					Coins:      a.Coins,
					Badges:     badges,
					Avatar:     a.Avatar,
					Background: a.Background,
					Frame:      a.Frame,
					Effect:     a.Effect,
					Title:      a.Title,
				})
			}
			return out, nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
	}
}
