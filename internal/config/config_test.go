package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 20, cfg.MaxScore)
	assert.EqualValues(t, 1000, cfg.StartingCoins)
	assert.Equal(t, 4, cfg.SettlementConcurrency)
	assert.Empty(t, cfg.SettlementSweepSpec)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("MAX_SCORE", "9")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SETTLEMENT_RPS", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 9, cfg.MaxScore)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.InDelta(t, 2.5, cfg.SettlementRPS, 0.0001)
}

func TestValidate(t *testing.T) {
	base := Config{DBDriver: "mysql", JWTSecret: "short", SettlementConcurrency: 1}
	require.NoError(t, base.Validate())

	prod := base
	prod.IsProd = true
	assert.Error(t, prod.Validate())

	noSecret := base
	noSecret.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	badDriver := base
	badDriver.DBDriver = "oracle"
	assert.Error(t, badDriver.Validate())
}

func TestDSN(t *testing.T) {
	my := Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "h", DBName: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?parseTime=true", my.DSN())

	pg := Config{DBDriver: "postgres", DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5433", DBName: "d"}
	assert.Equal(t, "host=h user=u password=p dbname=d port=5433 sslmode=disable", pg.DSN())
}
