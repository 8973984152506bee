package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/pkg/config"
)

// NewMongoClient 连接 MongoDB 并返回配置的数据库
func NewMongoClient(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	if cfg.URI == "" {
		return nil, nil, fmt.Errorf("mongo uri is empty")
	}
	if cfg.Database == "" {
		cfg.Database = "bim"
	}

	logger.Info("Initializing MongoDB client", zap.String("db", cfg.Database))

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(10).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		logger.Error("MongoDB connection failed", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to ping: %w", err)
	}

	logger.Info("MongoDB connection established successfully")
	return client, client.Database(cfg.Database), nil
}
