package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendidero/shiptastic-ups/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.UPSEnabled)
	assert.False(t, cfg.UPSSandbox)
	assert.Equal(t, config.TokenCacheMemory, cfg.TokenCache)
	assert.False(t, cfg.UseRedis())
	assert.Equal(t, "shiptastic-ups", cfg.ServiceName)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("UPS_CLIENT_ID", "client")
	t.Setenv("UPS_CLIENT_SECRET", "secret")
	t.Setenv("UPS_ACCOUNT_NUMBER", "A1B2C3")
	t.Setenv("UPS_SANDBOX", "true")
	t.Setenv("UPS_LABEL_ROTATION", "90")
	t.Setenv("TOKEN_CACHE", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "A1B2C3", cfg.UPSAccountNumber)
	assert.True(t, cfg.UPSSandbox)
	assert.Equal(t, 90, cfg.UPSLabelRotation)
	assert.True(t, cfg.UseRedis())
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)

	id, secret := cfg.UPSCredentials()
	assert.Equal(t, "client", id)
	assert.Equal(t, "secret", secret)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TOKEN_CACHE", "memcached")
	_, err := config.Load()
	assert.ErrorContains(t, err, "TOKEN_CACHE")

	t.Setenv("TOKEN_CACHE", "memory")
	t.Setenv("UPS_LABEL_ROTATION", "45")
	_, err = config.Load()
	assert.ErrorContains(t, err, "UPS_LABEL_ROTATION")

	t.Setenv("UPS_LABEL_ROTATION", "0")
	t.Setenv("PORT", "eighty")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestUPSCredentials_LegacyAliases(t *testing.T) {
	cfg := &config.Config{UPSAPIUsername: "legacy-user", UPSAPIPassword: "legacy-pass"}

	id, secret := cfg.UPSCredentials()
	assert.Equal(t, "legacy-user", id)
	assert.Equal(t, "legacy-pass", secret)

	cfg.UPSClientID = "client"
	id, _ = cfg.UPSCredentials()
	assert.Equal(t, "client", id)
}

func TestAttributes(t *testing.T) {
	cfg := &config.Config{ServiceName: "svc", Version: "1.2.3", UPSEnabled: true, TokenCache: "Redis"}

	attrs := map[string]string{}
	for _, kv := range cfg.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.NotContains(t, attrs, "service.name")
	assert.Equal(t, "true", attrs["ups.enabled"])
	assert.Equal(t, "redis", attrs["token.cache"])
}
