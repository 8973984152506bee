package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/handler"
	"github.com/Harshul8824/BIM/pkg/otel"
)

// Handlers 路由需要的全部 handler
type Handlers struct {
	Users    *handler.UserHandler
	Projects *handler.ProjectHandler
	Progress *handler.ProgressHandler
}

// Options 路由配置
type Options struct {
	// AllowOrigins 为空时允许所有来源
	AllowOrigins   []string
	RequestTimeout time.Duration
	// Ping 就绪检查，通常是存储的 Ping
	Ping func(ctx context.Context) error
}

func NewRouter(h Handlers, opts Options, logger *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(
		corsMiddleware(opts.AllowOrigins),
		traceMiddleware(),
		otel.GinMiddleware(),
		requestLogMiddleware(logger),
		metricsMiddleware(),
		timeoutMiddleware(opts.RequestTimeout),
	)

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		if opts.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
			defer cancel()

			if err := opts.Ping(ctx); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	users := api.Group("/users")
	{
		users.GET("", h.Users.ListUsers)
		users.POST("", h.Users.CreateUser)
		users.GET("/managers", h.Users.ListManagers)
		users.POST("/req", h.Users.SendManagerRequest)
		users.GET("/:id", h.Users.GetUser)
		users.PUT("/:id", h.Users.UpdateUser)
		users.DELETE("/:id", h.Users.DeleteUser)
		users.POST("/:id/clients", h.Users.AddClient)
	}

	projects := api.Group("/projects")
	{
		projects.GET("", h.Projects.ListProjects)
		projects.POST("", h.Projects.CreateProject)
		projects.GET("/:id", h.Projects.GetProject)
		projects.PUT("/:id", h.Projects.UpdateProject)
		projects.DELETE("/:id", h.Projects.DeleteProject)
	}

	progress := api.Group("/progress")
	{
		progress.GET("", h.Progress.ListProgress)
		progress.POST("", h.Progress.CreateProgress)
		progress.GET("/project/:projectId", h.Progress.ListProjectProgress)
		progress.GET("/:id", h.Progress.GetProgress)
		progress.PUT("/:id", h.Progress.UpdateProgress)
		progress.DELETE("/:id", h.Progress.DeleteProgress)
	}

	return r
}
