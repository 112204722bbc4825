package api

import (
	"os"
	"time"

	"github.com/marmos91/tagkeep/internal/logger"
)

// EnvControlPlaneSecret overrides the configured JWT signing secret.
const EnvControlPlaneSecret = "TAGKEEP_CONTROLPLANE_SECRET"

// MinSecretLength is the shortest signing secret NewJWTService accepts.
const MinSecretLength = 32

// Server defaults.
const (
	DefaultPort          = 8080
	DefaultReadTimeout   = 10 * time.Second
	DefaultWriteTimeout  = 60 * time.Second
	DefaultIdleTimeout   = 60 * time.Second
	DefaultTokenDuration = 30 * 24 * time.Hour
)

// APIConfig configures the REST API server.
type APIConfig struct {
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout must outlast a full manual housekeeping pass, which is
	// answered synchronously.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`
}

// JWTConfig holds the bearer token settings.
type JWTConfig struct {
	// Secret is the HMAC key. EnvControlPlaneSecret wins when set.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// TokenDuration is the lifetime of tokens minted without an explicit TTL.
	TokenDuration time.Duration `mapstructure:"token_duration" yaml:"token_duration"`
}

// ApplyDefaults fills zero values.
func (c *APIConfig) ApplyDefaults() {
	setDefault(&c.ReadTimeout, DefaultReadTimeout)
	setDefault(&c.WriteTimeout, DefaultWriteTimeout)
	setDefault(&c.IdleTimeout, DefaultIdleTimeout)
	setDefault(&c.JWT.TokenDuration, DefaultTokenDuration)
	if c.Port == 0 {
		c.Port = DefaultPort
	}
}

func setDefault(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

// GetJWTSecret returns the signing secret, environment first. It is empty
// when neither source sets one.
func (c *APIConfig) GetJWTSecret() string {
	env := os.Getenv(EnvControlPlaneSecret)
	if env == "" {
		return c.JWT.Secret
	}
	if c.JWT.Secret != "" && c.JWT.Secret != env {
		logger.Warn("JWT secret from environment overrides the config file",
			"env_var", EnvControlPlaneSecret)
	}
	return env
}

// HasJWTSecret reports whether any secret is configured.
func (c *APIConfig) HasJWTSecret() bool {
	return c.GetJWTSecret() != ""
}
