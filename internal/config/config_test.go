package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoadDBDefaults(t *testing.T) {
    t.Setenv("DB_USER", "app")
    t.Setenv("DB_HOST", "db")
    t.Setenv("DB_PORT", "3306")
    t.Setenv("DB_NAME", "travel")
    t.Setenv("DB_MAX_OPEN_CONNS", "")

    c, err := LoadDB()
    require.NoError(t, err)
    assert.Equal(t, 10, c.MaxOpenConns)
    assert.Equal(t, 2, c.MaxIdleConns)
    assert.Equal(t, 30*time.Minute, c.ConnMaxLifetime)
}

func TestLoadReportsEveryMissingVariable(t *testing.T) {
    for _, k := range []string{"APP_ENV", "APP_PORT", "JWT_SECRET", "DB_USER", "DB_HOST", "DB_PORT", "DB_NAME",
        "ACCESS_TOKEN_TTL_MIN", "REFRESH_TOKEN_TTL_DAYS"} {
        t.Setenv(k, "")
    }
    t.Setenv("BCRYPT_COST", "ten")

    _, err := Load()
    require.Error(t, err)
    for _, want := range []string{"APP_ENV", "JWT_SECRET", "DB_NAME", "ACCESS_TOKEN_TTL_MIN", `invalid int for BCRYPT_COST: "ten"`} {
        assert.Contains(t, err.Error(), want)
    }

    _, err = LoadDB()
    assert.ErrorContains(t, err, "missing required env var: DB_USER")
}

func TestLoadBrokerFallsBackToAMQPURL(t *testing.T) {
    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")
    assert.Equal(t, "amqp://u:p@mq:5672/", LoadBroker().URL)
}

func TestRateLimitClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")
    c := LoadRateLimitConfig()
    assert.Equal(t, 1, c.Capacity)
    assert.Equal(t, 10*time.Second, c.TTL)
}

func TestEnvBool(t *testing.T) {
    t.Setenv("X_FLAG", "Off")
    assert.False(t, envBool("X_FLAG", true))
    t.Setenv("X_FLAG", "maybe")
    assert.True(t, envBool("X_FLAG", true))
}
