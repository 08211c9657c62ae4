package revocation

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/planbookai/platform/pkg/cache"
	"github.com/planbookai/platform/pkg/config"
)

const (
	BackendDB    = "db"
	BackendRedis = "redis"
)

// Backend selects where revocation entries live. The auth service and the
// gateway must point at the same backend.
type Backend struct {
	Kind          string
	Redis         cache.RedisConfig
	PurgeSchedule string
}

func BackendFromEnv() Backend {
	return Backend{
		Kind: config.EnvDefault("REVOCATION_STORE", BackendDB),
		Redis: cache.RedisConfig{
			Addr:     config.EnvDefault("REDIS_ADDR", ""),
			Password: config.EnvDefault("REDIS_PASSWORD", ""),
			DB:       config.EnvIntDefault("REDIS_DB", 0),
		},
		PurgeSchedule: config.EnvDefault("REVOCATION_PURGE_SCHEDULE", DefaultPurgeSchedule),
	}
}

// Open builds the configured store. gdb is only used by the db backend and
// must already be connected. The returned close func releases what Open
// created and never touches gdb.
func Open(ctx context.Context, b Backend, gdb *gorm.DB) (Store, func() error, error) {
	switch b.Kind {
	case "", BackendDB:
		if gdb == nil {
			return nil, nil, fmt.Errorf("revocation backend %q needs a database", BackendDB)
		}
		s := NewGormStore(gdb)
		if err := s.Migrate(); err != nil {
			return nil, nil, fmt.Errorf("migrate revoked_tokens: %w", err)
		}
		return s, func() error { return nil }, nil
	case BackendRedis:
		client, err := cache.NewRedisClient(ctx, b.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported revocation backend %q", b.Kind)
	}
}
