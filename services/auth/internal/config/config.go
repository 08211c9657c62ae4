package config

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/planbookai/platform/pkg/config"
	"github.com/planbookai/platform/pkg/db"
	"github.com/planbookai/platform/pkg/events"
	"github.com/planbookai/platform/pkg/revocation"
)

type Config struct {
	Addr        string
	DBDriver    string
	DatabaseURL string
	LogLevel    string

	JWTSecret  []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int

	Revocation revocation.Backend

	KafkaBrokers []string
	EventsTopic  string

	SeedUsers    bool
	SeedPassword string
}

func Load() Config {
	config.LoadDotEnv()

	cfg := Config{
		Addr:         config.EnvDefault("AUTH_ADDR", ":8081"),
		DBDriver:     config.EnvDefault("DB_DRIVER", db.DriverPostgres),
		DatabaseURL:  config.EnvDefault("DATABASE_URL", ""),
		LogLevel:     config.EnvDefault("LOG_LEVEL", "info"),
		JWTSecret:    []byte(config.EnvDefault("JWT_SECRET", "")),
		AccessTTL:    config.EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:   config.EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		BcryptCost:   config.EnvIntDefault("BCRYPT_COST", bcrypt.DefaultCost),
		Revocation:   revocation.BackendFromEnv(),
		KafkaBrokers: config.CSV(config.EnvDefault("KAFKA_BROKERS", "")),
		EventsTopic:  config.EnvDefault("USER_EVENTS_TOPIC", events.DefaultUserTopic),
		SeedUsers:    config.EnvBoolDefault("SEED_DEFAULT_USERS", false),
		SeedPassword: config.EnvDefault("SEED_DEFAULT_PASSWORD", ""),
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustSecret(cfg.JWTSecret, "JWT_SECRET")
	if cfg.SeedUsers {
		config.MustNonEmpty(cfg.SeedPassword, "SEED_DEFAULT_PASSWORD")
	}
	return cfg
}
