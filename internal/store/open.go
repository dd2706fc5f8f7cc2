package store

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/pkg/database"
)

// Open builds the backend named by cfg.Driver. SQL backends are migrated
// before they are returned. rdb is only consulted for the redis driver.
func Open(ctx context.Context, cfg config.StorageConfig, rdb goredis.UniversalClient) (Backend, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryBackend(cfg.MaxRecordsPerStore), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis storage driver requires a redis client")
		}
		return NewRedisBackend(rdb, cfg.MaxRecordsPerStore), nil
	case "sqlite", "postgres":
		dbCfg := database.FromCentralConfig(cfg)
		db, err := database.Open(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db, dbCfg.Dialect); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLBackend(db, dbCfg.Dialect, cfg.MaxRecordsPerStore), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
