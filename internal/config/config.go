package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	pkgconfig "github.com/Harshul8824/BIM/pkg/config"
)

// 存储后端
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// StoreConfig 选择存储后端
type StoreConfig struct {
	Driver string `yaml:"driver"`
}

// DedupConfig 经理请求去重窗口
type DedupConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// AppConfig 邮件中展示的应用信息
type AppConfig struct {
	Name string `yaml:"name"`
	// DashboardURL 为空时邮件不显示仪表盘链接
	DashboardURL string `yaml:"dashboard_url"`
}

type Config struct {
	Env    string                 `yaml:"-"`
	App    AppConfig              `yaml:"app"`
	Server pkgconfig.ServerConfig `yaml:"server"`
	Store  StoreConfig            `yaml:"store"`
	DB     pkgconfig.DBConfig     `yaml:"db"`
	Mongo  pkgconfig.MongoConfig  `yaml:"mongo"`
	MQ     pkgconfig.MQConfig     `yaml:"mq"`
	Redis  pkgconfig.RedisConfig  `yaml:"redis"`
	Dedup  DedupConfig            `yaml:"dedup"`
	SMTP   pkgconfig.SMTPConfig   `yaml:"smtp"`
	Otel   pkgconfig.OtelConfig   `yaml:"otel"`
}

// Load 读取 CONFIG_DIR 下的配置（环境由 CONFIG_ENV 决定），再用环境变量覆盖
func Load() (*Config, error) {
	env := pkgconfig.GetConfigEnv()

	cfg := &Config{}
	if err := pkgconfig.Load(env, pkgconfig.GetConfigDir(), cfg); err != nil {
		return nil, err
	}
	cfg.Env = env

	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideMongoFromEnv(&cfg.Mongo)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideSMTPFromEnv(&cfg.SMTP)
	pkgconfig.OverrideOtelFromEnv(&cfg.Otel)
	if url := os.Getenv("APP_DASHBOARD_URL"); url != "" {
		cfg.App.DashboardURL = url
	}
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SERVER_PORT") == "" {
		cfg.Server.Port = port
	}
	if ttl := os.Getenv("DEDUP_TTL_SECONDS"); ttl != "" {
		if v, err := strconv.Atoi(ttl); err == nil {
			cfg.Dedup.TTLSeconds = v
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "BIM"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = 15
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Dedup.TTLSeconds <= 0 {
		c.Dedup.TTLSeconds = 60
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 465
	}
	if c.Otel.ServiceName == "" {
		c.Otel.ServiceName = "bim-api"
	}
}

// Validate 检查后端选择和必要的连接参数
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			return fmt.Errorf("store.driver=postgres requires db.host and db.name")
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("store.driver=mongo requires mongo.uri")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	return nil
}

// RequestTimeout 请求边界超时
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// DedupTTL 去重窗口
func (c *Config) DedupTTL() time.Duration {
	return time.Duration(c.Dedup.TTLSeconds) * time.Second
}
