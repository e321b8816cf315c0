package app

import (
	"context"
	"fmt"

	"github.com/abgdnv/product-catalog/internal/config"
	"github.com/abgdnv/product-catalog/internal/platform/bootstrap"
	"github.com/abgdnv/product-catalog/internal/product/store"
	"go.uber.org/zap"
)

// CloseFunc releases the resources held by a store.
type CloseFunc func(ctx context.Context) error

// NewStore connects to the backend selected by database.driver.
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.ProductStore, CloseFunc, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return store.NewInMemoryStore(), func(context.Context) error { return nil }, nil

	case config.DriverMongo:
		client, err := bootstrap.NewMongoClient(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully connected to MongoDB", zap.String("database", cfg.Database.Name))
		return store.NewMongoStore(client, cfg.Database.Name), client.Disconnect, nil

	case config.DriverPostgres:
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, err
		}
		pgStore := store.NewPgStore(dbPool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			dbPool.Close()
			return nil, nil, fmt.Errorf("failed to prepare schema: %w", err)
		}
		logger.Info("Successfully connected to the database!")
		return pgStore, func(context.Context) error {
			dbPool.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
