package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Token cache backends.
const (
	TokenCacheMemory = "memory"
	TokenCacheRedis  = "redis"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS
	UPSEnabled       bool   `envconfig:"UPS_ENABLED" default:"true"`
	UPSClientID      string `envconfig:"UPS_CLIENT_ID"`
	UPSClientSecret  string `envconfig:"UPS_CLIENT_SECRET"`
	UPSAPIUsername   string `envconfig:"UPS_API_USERNAME"`
	UPSAPIPassword   string `envconfig:"UPS_API_PASSWORD"`
	UPSAccountNumber string `envconfig:"UPS_ACCOUNT_NUMBER"`
	UPSSandbox       bool   `envconfig:"UPS_SANDBOX" default:"false"`
	UPSBaseURL       string `envconfig:"UPS_BASE_URL"`
	UPSUseMock       bool   `envconfig:"UPS_USE_MOCK" default:"false"`
	UPSLabelRotation int    `envconfig:"UPS_LABEL_ROTATION" default:"0"`

	// Token cache
	TokenSecret   string `envconfig:"TOKEN_SECRET"`
	TokenCache    string `envconfig:"TOKEN_CACHE" default:"memory"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Label files
	ArtifactDir string `envconfig:"ARTIFACT_DIR" default:"./labels"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"shiptastic-ups"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch strings.ToLower(c.TokenCache) {
	case TokenCacheMemory, TokenCacheRedis:
	default:
		return fmt.Errorf("invalid TOKEN_CACHE %q: use %q or %q", c.TokenCache, TokenCacheMemory, TokenCacheRedis)
	}
	if c.UPSLabelRotation%90 != 0 {
		return fmt.Errorf("invalid UPS_LABEL_ROTATION %d: must be a multiple of 90", c.UPSLabelRotation)
	}
	return nil
}

// UPSCredentials returns the OAuth client id and secret. The legacy API
// username and password are used when no client credentials are set.
func (c *Config) UPSCredentials() (clientID, clientSecret string) {
	clientID, clientSecret = c.UPSClientID, c.UPSClientSecret
	if clientID == "" {
		clientID = c.UPSAPIUsername
	}
	if clientSecret == "" {
		clientSecret = c.UPSAPIPassword
	}
	return clientID, clientSecret
}

// UseRedis reports whether tokens are cached in Redis.
func (c *Config) UseRedis() bool {
	return strings.EqualFold(c.TokenCache, TokenCacheRedis)
}

// Attributes returns the deployment attributes added to the trace resource.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool("ups.enabled", c.UPSEnabled),
		attribute.Bool("ups.sandbox", c.UPSSandbox),
		attribute.String("token.cache", strings.ToLower(c.TokenCache)),
	}
}
