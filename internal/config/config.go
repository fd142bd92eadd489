// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/viper"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultCatalogTTL = 300 * time.Second
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogMode selects the zap preset: "development" or "production". Empty follows Env.
	LogMode string `mapstructure:"LOG_MODE"`

	// JWTPublicKey is the PEM-encoded public key (RSA or ECDSA) or a path to it. Auth is disabled when empty.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTPrivateKey is the PEM-encoded private key or a path to it; only cmd/seed mints tokens with it.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTIssuer is the expected iss claim.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the expected aud claim.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the lifetime of tokens minted by cmd/seed (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`

	// GlobalCatalogTTL is how long a global catalog snapshot is served before a refresh (e.g. "300s").
	GlobalCatalogTTL string `mapstructure:"GLOBAL_CATALOG_TTL"`
	// AuthzPolicyFile optionally replaces the built-in Rego authorization policy.
	AuthzPolicyFile string `mapstructure:"AUTHZ_POLICY_FILE"`

	// OTelEndpoint is the OTLP gRPC collector address; no-op providers are used when empty.
	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTelServiceName is the service.name resource attribute.
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	// OTelInsecure disables TLS to the collector.
	OTelInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_MODE", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_ISSUER", "f3-auth")
	v.SetDefault("JWT_AUDIENCE", "f3-catalog")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("GLOBAL_CATALOG_TTL", "300s")
	v.SetDefault("AUTHZ_POLICY_FILE", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_SERVICE_NAME", "f3-catalog")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}
	if d, err := time.ParseDuration(cfg.GlobalCatalogTTL); err == nil && d <= 0 {
		return nil, errors.New("config: GLOBAL_CATALOG_TTL must be positive")
	}
	if cfg.AuthEnabled() && (cfg.JWTIssuer == "" || cfg.JWTAudience == "") {
		return nil, errors.New("config: JWT_ISSUER and JWT_AUDIENCE must be set when JWT keys are set")
	}
	if !cfg.AuthEnabled() && cfg.IsProduction() {
		return nil, errors.New("config: JWT_PUBLIC_KEY must be set when APP_ENV=production")
	}

	return &cfg, nil
}

// AuthEnabled reports whether access tokens are validated. Any configured key enables it; a lone
// private key verifies with its public half.
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTPublicKey) != "" || strings.TrimSpace(c.JWTPrivateKey) != ""
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// LoggerMode returns LogMode, or "production" for production environments and "development" otherwise.
func (c *Config) LoggerMode() string {
	if c.LogMode != "" {
		return c.LogMode
	}
	if c.IsProduction() {
		return "production"
	}
	return "development"
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return defaultAccessTTL
	}
	return d
}

// CatalogTTL parses GlobalCatalogTTL as a time.Duration. Returns 300s if unset or invalid.
func (c *Config) CatalogTTL() time.Duration {
	d, err := time.ParseDuration(c.GlobalCatalogTTL)
	if err != nil || d <= 0 {
		return defaultCatalogTTL
	}
	return d
}
