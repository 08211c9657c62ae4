package config

import (
	"time"

	"github.com/planbookai/platform/pkg/config"
	"github.com/planbookai/platform/pkg/db"
	"github.com/planbookai/platform/pkg/revocation"
)

const DefaultPublicPaths = "/api/auth,/eureka,/health"

type Config struct {
	ListenAddr   string
	AuthURL      string
	PackageURL   string
	QuestionURL  string
	DiscoveryURL string

	PublicPaths   []string
	JWTSecret     []byte
	LookupTimeout time.Duration
	LogLevel      string

	Revocation  revocation.Backend
	DBDriver    string
	DatabaseURL string
}

func Load() *Config {
	config.LoadDotEnv()

	cfg := &Config{
		ListenAddr:    config.EnvDefault("GATEWAY_ADDR", ":8080"),
		AuthURL:       config.EnvDefault("AUTH_URL", ""),
		PackageURL:    config.EnvDefault("PACKAGE_URL", ""),
		QuestionURL:   config.EnvDefault("QUESTION_URL", ""),
		DiscoveryURL:  config.EnvDefault("DISCOVERY_URL", ""),
		PublicPaths:   config.CSV(config.EnvDefault("GATEWAY_PUBLIC_PATHS", DefaultPublicPaths)),
		JWTSecret:     []byte(config.EnvDefault("JWT_SECRET", "")),
		LookupTimeout: config.EnvDurationDefault("REVOCATION_LOOKUP_TIMEOUT", 500*time.Millisecond),
		LogLevel:      config.EnvDefault("LOG_LEVEL", "info"),
		Revocation:    revocation.BackendFromEnv(),
		DBDriver:      config.EnvDefault("DB_DRIVER", db.DriverPostgres),
		DatabaseURL:   config.EnvDefault("DATABASE_URL", ""),
	}

	config.MustNonEmpty(cfg.AuthURL, "AUTH_URL")
	config.MustSecret(cfg.JWTSecret, "JWT_SECRET")
	if cfg.Revocation.Kind != revocation.BackendRedis {
		config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	}
	return cfg
}
