package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT       JWTConfig
	Security  SecurityConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Notifier  NotifierConfig
	Events    EventsConfig
}

// JWTConfig controls the token codec. The signing key has no default: the
// process must not start without one.
type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET, required"`
	Issuer     string        `env:"JWT_ISSUER,      default=tutoring-platform"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL,  default=15m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL, default=168h"`
}

type SecurityConfig struct {
	LockoutThreshold int           `env:"LOCKOUT_THRESHOLD,     default=5"`
	LockoutDuration  time.Duration `env:"LOCKOUT_DURATION,      default=30m"`
	ResetTokenTTL    time.Duration `env:"RESET_TOKEN_TTL,       default=1h"`
	VerifyTokenTTL   time.Duration `env:"VERIFY_TOKEN_TTL,      default=24h"`
	TwoFactorCodeTTL time.Duration `env:"TWO_FACTOR_CODE_TTL,   default=5m"`
	TwoFactorIssuer  string        `env:"TWO_FACTOR_ISSUER,     default=TutoringPlatform"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_user_service"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// NotifierConfig points at the external notification service. An empty URL
// disables outbound email entirely (no-op notifier).
type NotifierConfig struct {
	URL         string `env:"NOTIFICATION_URL"`
	FrontendURL string `env:"FRONTEND_URL, default=http://localhost:3000"`
}

// EventsConfig names the Redis stream domain events are published to. An
// empty stream name degrades publication to a no-op.
type EventsConfig struct {
	Stream  string `env:"EVENT_STREAM, default=user-events"`
	Workers int    `env:"EVENT_WORKERS, default=8"`
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error (rather than panicking) so main can fail fast with a
// proper log line — the missing JWT secret being the expected culprit.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
