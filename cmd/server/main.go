package main

import (
	"context"   // Context for Redis and shutdown
	"errors"    // Error inspection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"matchday/internal/api"        // HTTP handlers
	"matchday/internal/config"     // Configuration
	"matchday/internal/db"         // Database
	"matchday/internal/fixture"    // Fixture cache
	"matchday/internal/metrics"    // Prometheus collectors
	"matchday/internal/provider"   // Sports data providers
	"matchday/internal/settlement" // Settlement job
	"matchday/internal/shop"       // Cosmetics shop
	"matchday/internal/utils"      // Session revocation
	"matchday/internal/wager"      // Wager creation

	"github.com/gin-gonic/gin"                                  // Gin web framework
	"github.com/prometheus/client_golang/prometheus"            // Metrics registry
	"github.com/prometheus/client_golang/prometheus/collectors" // Runtime collectors
	"github.com/prometheus/client_golang/prometheus/promhttp"   // Metrics endpoint
	"github.com/redis/go-redis/v9"                              // Redis client
	"github.com/robfig/cron/v3"                                 // Scheduled sweep
	"github.com/sirupsen/logrus"                                // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}

	// Setup logger
	log := logrus.StandardLogger()
	if cfg.IsProd {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("Unknown LOG_LEVEL, keeping info")
	}

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Services
	sportmonks := provider.NewSportMonks(cfg.SportMonksBaseURL, cfg.SportMonksToken, log.WithField("provider", "sportmonks"), m)
	sofascore := provider.NewSofaScore(cfg.SofaScoreBaseURL, log.WithField("provider", "sofascore"), m)
	fixtures := fixture.NewStore(conn, log)
	wagers := wager.NewService(conn, fixtures, sportmonks, cfg.MaxScore, log, m)
	settler := settlement.NewSettler(conn, fixtures, sportmonks, settlement.Options{
		RatePerSecond: cfg.SettlementRPS,
		Concurrency:   cfg.SettlementConcurrency,
	}, log.WithField("component", "settlement"), m)
	shopSvc := shop.NewService(conn, log, m)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := api.RegisterValidators(cfg.MaxScore); err != nil {
		log.Fatalf("failed to register validators: %v", err)
	}

	r, err := api.NewRouter(api.Deps{
		DB:              conn,
		Redis:           redisClient,
		Revocations:     utils.NewRevocations(redisClient),
		Log:             log,
		Fixtures:        fixtures,
		Feed:            sportmonks,
		Stats:           sofascore,
		Wagers:          wagers,
		Settler:         settler,
		Shop:            shopSvc,
		Session:         api.SessionSettings{Secret: cfg.JWTSecret, TTL: cfg.SessionTTL, Secure: cfg.IsProd},
		StartingCoins:   cfg.StartingCoins,
		LeaderboardSize: cfg.LeaderboardSize,
		TrustedProxies:  []string{"127.0.0.1"},
		Metrics:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	// Optional background sweep
	var sweeper *cron.Cron
	if cfg.SettlementSweepSpec != "" {
		sweeper = cron.New()
		_, err := sweeper.AddFunc(cfg.SettlementSweepSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			summary, err := settler.SettleAll(ctx)
			if err != nil {
				log.WithField("error", err.Error()).Error("Scheduled sweep failed")
				return
			}
			if summary.Settled > 0 {
				// Cached balances are stale now
				if err := api.InvalidateBalanceCaches(ctx, redisClient); err != nil {
					log.WithField("error", err.Error()).Warn("Cache invalidation failed")
				}
			}
			log.WithFields(logrus.Fields{
				"checked":       summary.Checked,
				"settled":       summary.Settled,
				"coins_awarded": summary.CoinsAwarded,
			}).Info("Scheduled sweep")
		})
		if err != nil {
			log.Fatalf("invalid SETTLEMENT_SWEEP_SPEC: %v", err)
		}
		sweeper.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if sweeper != nil {
		<-sweeper.Stop().Done() // Let a running sweep finish
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.WithField("error", err.Error()).Error("Graceful shutdown failed")
	}
	_ = redisClient.Close()
}
