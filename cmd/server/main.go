package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/config"
	"github.com/Harshul8824/BIM/internal/db"
	"github.com/Harshul8824/BIM/internal/event"
	"github.com/Harshul8824/BIM/internal/handler"
	"github.com/Harshul8824/BIM/internal/httpserver"
	"github.com/Harshul8824/BIM/internal/service"
	"github.com/Harshul8824/BIM/pkg/logger"
	"github.com/Harshul8824/BIM/pkg/mailer"
	"github.com/Harshul8824/BIM/pkg/mq"
	"github.com/Harshul8824/BIM/pkg/otel"
	"github.com/Harshul8824/BIM/pkg/redis"
	"github.com/Harshul8824/BIM/pkg/util"
)

// version 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger 还没建好，用默认的开发配置输出
		logger.NewLogger("").Fatal("Failed to load config", zap.Error(err))
	}

	log := logger.NewLogger(cfg.Env)
	defer log.Sync()

	log.Info("Starting bim-api...",
		zap.String("env", cfg.Env),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("port", cfg.Server.Port),
	)

	shutdownTracing, err := otel.Init(cfg.Otel, version, log)
	if err != nil {
		log.Fatal("Failed to init OpenTelemetry", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := db.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	log.Info("Entity store ready", zap.String("driver", cfg.Store.Driver))

	// Redis 只用于经理请求去重，不可用时关闭去重
	var deduper service.RequestDeduper
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := redis.NewRedisClient(ctx, cfg.Redis, log)
		cancel()
		if err != nil {
			log.Warn("Redis unavailable, duplicate suppression disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			deduper = util.NewDeduper(rdb, cfg.DedupTTL(), log)
		}
	}

	var events event.Publisher = event.Nop{}
	if cfg.MQ.URL != "" {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Warn("MQ unavailable, domain events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			events = event.NewMQPublisher(publisher, log)
			log.Info("Domain events enabled", zap.String("exchange", mq.ExchangeName))
		}
	}

	sender := mailer.New(cfg.SMTP, log)

	userService := service.NewUserService(store.Users, events, log)
	projectService := service.NewProjectService(store.Projects, events, log, nil)
	progressService := service.NewProgressService(store.Progress, store.Projects, store.Users, events, log)
	requestService := service.NewManagerRequestService(store.Users, sender, log,
		service.WithDeduper(deduper),
		service.WithEvents(events),
		service.WithAppName(cfg.App.Name),
		service.WithDashboardURL(cfg.App.DashboardURL),
	)

	router := httpserver.NewRouter(httpserver.Handlers{
		Users:    handler.NewUserHandler(userService, requestService, log),
		Projects: handler.NewProjectHandler(projectService, log),
		Progress: handler.NewProgressHandler(progressService, log),
	}, httpserver.Options{
		AllowOrigins:   cfg.Server.AllowOrigins,
		RequestTimeout: cfg.RequestTimeout(),
		Ping:           store.Ping,
	}, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down bim-api gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("Closing entity store...")
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("Store close error", zap.Error(err))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("TracerProvider shutdown error", zap.Error(err))
	}

	log.Info("bim-api shutdown complete")
}
