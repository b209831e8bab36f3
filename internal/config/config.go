package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/checkout/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	ArcPay    ArcPayConfig    `mapstructure:"arcpay"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	Mode          string `mapstructure:"mode"`            // debug / release
	PublicBaseURL string `mapstructure:"public_base_url"` // 对外链接（条款/隐私）的基础地址

	ReadHeaderTimeoutSeconds int `mapstructure:"read_header_timeout_seconds"`
	IdleTimeoutSeconds       int `mapstructure:"idle_timeout_seconds"`
	ShutdownTimeoutSeconds   int `mapstructure:"shutdown_timeout_seconds"`
}

// ShutdownTimeout 优雅停机等待时间，不短于一次扣款轮询窗口
func (c *Config) ShutdownTimeout() time.Duration {
	timeout := time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
	poll := time.Duration(c.ArcPay.PollTimeoutMS)*time.Millisecond + time.Second
	if timeout < poll {
		return poll
	}
	return timeout
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`   // 留空时按 server.mode 推导
	Service    string `mapstructure:"service"` // 写入每条日志的 service 字段
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Service:    c.Service,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 目录数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
	LogSQL bool               `mapstructure:"log_sql"`
}

// CatalogConfig 商品目录配置
type CatalogConfig struct {
	Seed bool `mapstructure:"seed"` // 目录为空时写入演示商品
}

// RedisConfig Redis 配置（购物车/订单存储）
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Checkout RateLimitRuleConfig `mapstructure:"checkout"`
}

// RateLimitRuleConfig 单条限流规则
type RateLimitRuleConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// CheckoutConfig 结账会话配置
type CheckoutConfig struct {
	DefaultCurrency       string   `mapstructure:"default_currency"`
	Timezone              string   `mapstructure:"timezone"`
	CartTTLHours          int      `mapstructure:"cart_ttl_hours"`
	ClosedCartTTLHours    int      `mapstructure:"closed_cart_ttl_hours"`
	OrderTTLHours         int      `mapstructure:"order_ttl_hours"`
	LockTTLSeconds        int      `mapstructure:"lock_ttl_seconds"`
	LockWaitSeconds       int      `mapstructure:"lock_wait_seconds"`
	ShipCutoffHour        int      `mapstructure:"ship_cutoff_hour"`
	SendAtHour            int      `mapstructure:"send_at_hour"`
	ReceiveAtHour         int      `mapstructure:"receive_at_hour"`
	PaymentProvider       string   `mapstructure:"payment_provider"`
	PaymentMethods        []string `mapstructure:"payment_methods"`
	ReconcileDelaySeconds int      `mapstructure:"reconcile_delay_seconds"`
	ReconcileMaxAttempts  int      `mapstructure:"reconcile_max_attempts"`
}

// Location 解析配置时区，无效时回退到本地时区
func (c CheckoutConfig) Location() *time.Location {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warnw("config_timezone_invalid", "timezone", name, "error", err)
		return time.Local
	}
	return loc
}

// StoreTTLs 存储过期策略
func (c CheckoutConfig) StoreTTLs() (openCart, closedCart, order time.Duration) {
	return hoursOr(c.CartTTLHours, 24), hoursOr(c.ClosedCartTTLHours, 720), hoursOr(c.OrderTTLHours, 2160)
}

// ArcPayConfig ArcPay 扣款服务配置
type ArcPayConfig struct {
	APIURL           string              `mapstructure:"api_url"`
	APIKey           string              `mapstructure:"api_key"`
	PollIntervalMS   int                 `mapstructure:"poll_interval_ms"`
	PollTimeoutMS    int                 `mapstructure:"poll_timeout_ms"`
	RequestTimeoutMS int                 `mapstructure:"request_timeout_ms"`
	Breaker          ArcPayBreakerConfig `mapstructure:"breaker"`
}

// ArcPayBreakerConfig 熔断配置
type ArcPayBreakerConfig struct {
	MaxFailures int `mapstructure:"max_failures"`
	OpenSeconds int `mapstructure:"open_seconds"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	// 环境变量支持（例如 server.port -> SERVER_PORT，arcpay.api_key -> ARCPAY_API_KEY）
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}
	cfg.normalize()
	return &cfg
}

// 锁有效期在扣款轮询窗口之外额外保留的时间
const lockPollMarginSeconds = 30

// normalize 修正相互依赖的配置项
func (c *Config) normalize() {
	pollSeconds := (c.ArcPay.PollTimeoutMS + 999) / 1000
	if minTTL := pollSeconds + lockPollMarginSeconds; c.Checkout.LockTTLSeconds < minTTL {
		logger.Warnw("config_lock_ttl_raised",
			"configured_seconds", c.Checkout.LockTTLSeconds,
			"effective_seconds", minTTL,
			"poll_timeout_ms", c.ArcPay.PollTimeoutMS,
		)
		c.Checkout.LockTTLSeconds = minTTL
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.public_base_url", "http://localhost:8080")
	v.SetDefault("server.read_header_timeout_seconds", 10)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("log.level", "")
	v.SetDefault("log.service", "acp-checkout")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/checkout.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("database.log_sql", false)
	v.SetDefault("catalog.seed", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "acp")
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Idempotency-Key",
		"Request-Id",
		"X-Request-ID",
	})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("rate_limit.checkout.window_seconds", 60)
	v.SetDefault("rate_limit.checkout.max_requests", 120)
	v.SetDefault("checkout.default_currency", "USD")
	v.SetDefault("checkout.timezone", "Local")
	v.SetDefault("checkout.cart_ttl_hours", 24)
	v.SetDefault("checkout.closed_cart_ttl_hours", 720)
	v.SetDefault("checkout.order_ttl_hours", 2160)
	v.SetDefault("checkout.lock_ttl_seconds", 90)
	v.SetDefault("checkout.lock_wait_seconds", 5)
	v.SetDefault("checkout.ship_cutoff_hour", 13)
	v.SetDefault("checkout.send_at_hour", 10)
	v.SetDefault("checkout.receive_at_hour", 18)
	v.SetDefault("checkout.payment_provider", "arc_pay")
	v.SetDefault("checkout.payment_methods", []string{"wallet"})
	v.SetDefault("checkout.reconcile_delay_seconds", 30)
	v.SetDefault("checkout.reconcile_max_attempts", 10)
	v.SetDefault("arcpay.api_url", "https://dev.arcpay.ai")
	v.SetDefault("arcpay.api_key", "")
	v.SetDefault("arcpay.poll_interval_ms", 2000)
	v.SetDefault("arcpay.poll_timeout_ms", 60000)
	v.SetDefault("arcpay.request_timeout_ms", 12000)
	v.SetDefault("arcpay.breaker.max_failures", 5)
	v.SetDefault("arcpay.breaker.open_seconds", 30)
}

func hoursOr(hours int, fallback int) time.Duration {
	if hours <= 0 {
		hours = fallback
	}
	return time.Duration(hours) * time.Hour
}
