// Package bootstrap wires the process-level dependencies (database, Redis,
// blob storage) shared by the server and the maintenance commands.
package bootstrap

import (
	"context"
	"fmt"

	"alphaboard/internal/cache"
	"alphaboard/internal/config"
	"alphaboard/internal/database"
	"alphaboard/internal/observability"
	"alphaboard/internal/service"
	"alphaboard/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// Migrate runs schema migration after connecting. The server leaves it
	// off and relies on the migrate command; one-off tools turn it on.
	Migrate bool
}

// Runtime holds the initialized process-level dependencies. Redis and Blobs
// may be nil: both subsystems degrade rather than block startup.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Blobs service.BlobStore
}

// InitRuntime connects to the database, Redis and the blob store.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.Migrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("schema migration failed: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)

	var blobs service.BlobStore
	if cfg.BlobEndpoint != "" {
		store, err := storage.NewMinioStore(ctx, cfg)
		if err != nil {
			// Attachments are a best-effort feature; the engine runs without
			// them rather than refusing to start.
			observability.GlobalLogger.Warn("blob store unavailable", "error", err)
		} else {
			blobs = store
		}
	}

	return &Runtime{DB: db, Redis: cache.GetClient(), Blobs: blobs}, nil
}
