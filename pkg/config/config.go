package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "STOCKTAKE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Gateway       GatewayConfig
	Redis         RedisConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Gateway.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKTAKE_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKTAKE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKTAKE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKTAKE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// GatewayConfig points at the hosted data/auth backend.
type GatewayConfig struct {
	BaseURL string        `envconfig:"STOCKTAKE_GATEWAY_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"STOCKTAKE_GATEWAY_API_KEY" required:"true"`
	Timeout time.Duration `envconfig:"STOCKTAKE_GATEWAY_TIMEOUT" default:"10s"`

	// RefreshLeeway is how long before access-token expiry the session
	// refresher runs.
	RefreshLeeway time.Duration `envconfig:"STOCKTAKE_GATEWAY_REFRESH_LEEWAY" default:"30s"`
}

func (g GatewayConfig) validate() error {
	parsed, err := url.Parse(g.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing gateway base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("gateway base url must be absolute, got %q", g.BaseURL)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKTAKE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKTAKE_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKTAKE_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKTAKE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKTAKE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKTAKE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKTAKE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKTAKE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKTAKE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"STOCKTAKE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"STOCKTAKE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"STOCKTAKE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOCKTAKE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
