package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(flag.NewFlagSet("test", flag.ContinueOnError), []string{})

	require.NoError(t, err)
	assert.Equal(t, serverAddressDefault, cfg.Server.ServerAddress)
	assert.Equal(t, redisAddressDefault, cfg.Redis.Address)
	assert.Equal(t, 24*time.Hour, cfg.DepositTTL)
	assert.Equal(t, 4, cfg.Expiry.Pool.WorkersCount)
	assert.Equal(t, 16, cfg.Expiry.Pool.TasksBufferLength)
}

func TestEnvironmentOverridesFlags(t *testing.T) {
	t.Setenv("RUN_ADDRESS", ":9090")
	t.Setenv("QRPAY_SECRET", "qr-secret")
	t.Setenv("DEPOSIT_TTL", "1m")
	t.Setenv("EXPIRY_RETRY_DELAYS", "1s,2s")

	cfg, err := load(
		flag.NewFlagSet("test", flag.ContinueOnError),
		[]string{"-a", ":8000", "-d", "postgres://db", "-l", "debug"},
	)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.ServerAddress)
	assert.Equal(t, "postgres://db", cfg.DB.ConnectionString)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "qr-secret", cfg.QRPay.Secret)
	assert.Equal(t, time.Minute, cfg.DepositTTL)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, cfg.Expiry.RetryDelays)
}

func TestBadEnvironmentValue(t *testing.T) {
	t.Setenv("EXPIRY_WORKERS", "many")

	_, err := load(flag.NewFlagSet("test", flag.ContinueOnError), []string{})

	require.Error(t, err)
}
