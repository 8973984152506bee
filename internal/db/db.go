// Package db opens the entity store selected by configuration.
package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/config"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/internal/repository/memory"
	"github.com/Harshul8824/BIM/internal/repository/mongo"
	"github.com/Harshul8824/BIM/internal/repository/postgres"
	pkgdb "github.com/Harshul8824/BIM/pkg/db"
)

// Open 按 store.driver 建立连接并准备表或索引
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.Store, error) {
	logger.Info("Opening entity store", zap.String("driver", cfg.Store.Driver))

	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.New(), nil

	case config.DriverPostgres:
		pool, err := pkgdb.NewConnection(ctx, cfg.DB, logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.New(pool, logger), nil

	case config.DriverMongo:
		client, database, err := pkgdb.NewMongoClient(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, database, logger); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return mongo.New(client, database, logger), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
