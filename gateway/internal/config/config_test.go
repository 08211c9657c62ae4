package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_URL", "http://auth:8081")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DATABASE_URL", "postgres://gw@db/auth")
	t.Setenv("GATEWAY_PUBLIC_PATHS", "")
	t.Setenv("REVOCATION_LOOKUP_TIMEOUT", "")
	t.Setenv("PACKAGE_URL", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, []string{"/api/auth", "/eureka", "/health"}, cfg.PublicPaths)
	assert.Equal(t, 500*time.Millisecond, cfg.LookupTimeout)
	assert.Empty(t, cfg.PackageURL)
}

func TestLoad_RedisBackendNeedsNoDatabase(t *testing.T) {
	t.Setenv("AUTH_URL", "http://auth:8081")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REVOCATION_STORE", "redis")
	t.Setenv("GATEWAY_PUBLIC_PATHS", "/api/auth, /public")
	t.Setenv("REVOCATION_LOOKUP_TIMEOUT", "200ms")

	cfg := Load()

	assert.Equal(t, "redis", cfg.Revocation.Kind)
	assert.Equal(t, []string{"/api/auth", "/public"}, cfg.PublicPaths)
	assert.Equal(t, 200*time.Millisecond, cfg.LookupTimeout)
}
