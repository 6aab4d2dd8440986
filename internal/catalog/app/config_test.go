package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"DATABASE_DRIVER", "DATABASE_FILE", "SESSION_TTL", "PORT", "ENV", "COOKIE_SECURE", "HOUSEKEEPING_INTERVAL"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "catalog.db", cfg.DatabaseFile)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "dev", cfg.Env)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("SESSION_TTL", "90")
	t.Setenv("PORT", "9000")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "nonsense")

	cfg := LoadConfig()
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, 90*time.Minute, cfg.SessionTTL)
	require.Equal(t, 9000, cfg.Port)
	require.True(t, cfg.CookieSecure)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
}

func validConfig() Config {
	return Config{
		DatabaseDriver: DriverSQLite,
		DatabaseFile:   "catalog.db",
		SessionTTL:     time.Hour,
		Env:            "dev",
		Port:           8080,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	t.Run("prod needs a secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "prod"
		require.ErrorContains(t, cfg.Validate(), "SESSION_SECRET")

		cfg.SessionSecret = strings.Repeat("x", 32)
		require.NoError(t, cfg.Validate())
	})

	t.Run("short secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.SessionSecret = "short"
		require.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabaseDriver = "mysql"
		require.ErrorContains(t, cfg.Validate(), "DATABASE_DRIVER")
	})

	t.Run("postgres needs url", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabaseDriver = DriverPostgres
		require.ErrorContains(t, cfg.Validate(), "DATABASE_URL")
	})

	t.Run("bad ttl and port", func(t *testing.T) {
		cfg := validConfig()
		cfg.SessionTTL = 0
		cfg.Port = 70000
		err := cfg.Validate()
		require.ErrorContains(t, err, "SESSION_TTL")
		require.ErrorContains(t, err, "PORT")
	})
}
