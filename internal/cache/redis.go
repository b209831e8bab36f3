package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/checkout/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "acp"

// Client 带键前缀的 Redis 客户端
type Client struct {
	rdb    *redis.Client
	prefix string
}

// New 根据配置创建 Redis 客户端
func New(cfg *config.RedisConfig) *Client {
	addr := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	prefix := ""
	if cfg != nil {
		if host := strings.TrimSpace(cfg.Host); host != "" {
			addr = host
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
		prefix = cfg.Prefix
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", addr, port),
		Password: password,
		DB:       db,
	})
	return NewWithClient(rdb, prefix)
}

// NewWithClient 使用已有连接创建客户端
func NewWithClient(rdb *redis.Client, prefix string) *Client {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Client{rdb: rdb, prefix: prefix}
}

// Redis 返回底层客户端
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Ping 检查连接可用
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key 拼接带前缀的键
func (c *Client) Key(parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, c.prefix)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, ":")
}

// GetJSON 读取 JSON 记录
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 记录，ttl<=0 表示不过期
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	return c.rdb.Set(ctx, key, payload, ttl).Err()
}

// Del 删除键
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
