package api

import (
	"net/http"

	"matchday/internal/fixture"
	"matchday/internal/middleware"
	"matchday/internal/settlement"
	"matchday/internal/shop"
	"matchday/internal/utils"
	"matchday/internal/wager"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps is everything the routes need
type Deps struct {
	DB          *gorm.DB
	Redis       *redis.Client // Optional, nil disables caching
	Revocations *utils.Revocations
	Log         logrus.FieldLogger

	Fixtures *fixture.Store
	Feed     FixtureFeed
	Stats    StatsFeed

	Wagers  *wager.Service
	Settler *settlement.Settler
	Shop    *shop.Service

	Session         SessionSettings
	StartingCoins   int64
	LeaderboardSize int
	TrustedProxies  []string
	Metrics         http.Handler // Served on /metrics when set
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}

	r.GET("/healthz", HealthHandler(d.DB, d.Redis))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	pub := r.Group("/api")
	pub.POST("/auth/register", RegisterHandler(d.DB, d.StartingCoins))
	pub.POST("/auth/login", LoginHandler(d.DB, d.Session))
	pub.GET("/leaderboard", LeaderboardHandler(d.DB, d.Redis, d.LeaderboardSize))
	pub.GET("/fixtures", FixturesByDateHandler(d.Feed, d.Fixtures, d.Redis))
	pub.GET("/fixtures/:id", FixtureHandler(d.Feed, d.Fixtures))
	pub.GET("/livescores", LivescoresHandler(d.Feed, d.Fixtures))
	pub.GET("/teams", TeamsHandler(d.Feed, d.Redis))
	pub.GET("/standings/:tournament/:season", StandingsHandler(d.Stats, d.Redis))
	pub.GET("/events/:id", SofaEntityHandler("events", d.Stats.Event, d.Redis))
	pub.GET("/players/:id", SofaEntityHandler("players", d.Stats.Player, d.Redis))
	pub.GET("/sofa-teams/:id", SofaEntityHandler("teams", d.Stats.Team, d.Redis))
	pub.GET("/sofascore/*path", DeprecatedSofaHandler(d.Stats))
	pub.GET("/shop/items", ShopItemsHandler())

	// Session protected routes
	auth := r.Group("/api")
	auth.Use(middleware.SessionAuth(d.Session.Secret, d.Revocations))
	auth.POST("/auth/logout", LogoutHandler(d.Revocations, d.Session))
	auth.GET("/profile", ProfileHandler(d.DB, d.Settler, d.Wagers, d.Redis))
	auth.GET("/predictions", ListPredictionsHandler(d.Wagers))
	auth.POST("/predictions", CreatePredictionHandler(d.Wagers, d.Redis))
	auth.POST("/predictions/settle", SettleHandler(d.Settler, d.Redis))
	auth.POST("/shop/purchase", PurchaseHandler(d.Shop, d.Redis))
	auth.POST("/shop/equip", EquipHandler(d.Shop, d.Redis))
	auth.GET("/shop/inventory", InventoryHandler(d.Shop))
	auth.GET("/coins/history", CoinHistoryHandler(d.DB, d.Redis))

	// Admin routes (protected, admin only)
	admin := r.Group("/admin")
	admin.Use(middleware.SessionAuth(d.Session.Secret, d.Revocations), middleware.AdminOnly(d.DB))
	admin.GET("/accounts", ListAccountsHandler(d.DB, d.Redis))
	admin.GET("/transactions", ListTransactionsHandler(d.DB, d.Redis))
	admin.POST("/settlement/sweep", SweepHandler(d.Settler, d.Redis))

	return r, nil
}
