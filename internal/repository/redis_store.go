package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/checkout/internal/cache"
	"github.com/dujiao-next/checkout/internal/logger"
	"github.com/dujiao-next/checkout/internal/models"

	"github.com/redis/go-redis/v9"
)

// TTLPolicy 购物车/订单记录过期策略
type TTLPolicy struct {
	OpenCart   time.Duration // shopping / checkout
	ClosedCart time.Duration // completed / cancelled
	Order      time.Duration
}

// DefaultTTLPolicy 默认过期策略
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		OpenCart:   24 * time.Hour,
		ClosedCart: 720 * time.Hour,
		Order:      2160 * time.Hour,
	}
}

// CartTTL 根据购物车状态返回过期时间
func (p TTLPolicy) CartTTL(cart *models.Cart) time.Duration {
	if cart.IsTerminal() {
		return p.ClosedCart
	}
	return p.OpenCart
}

// CartStore 购物车存储接口
type CartStore interface {
	Load(ctx context.Context, id string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	List(ctx context.Context) ([]models.Cart, error)
}

// OrderStore 订单存储接口
type OrderStore interface {
	Load(ctx context.Context, id string) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	List(ctx context.Context) ([]models.Order, error)
}

// RedisCartStore Redis 实现
type RedisCartStore struct {
	client *cache.Client
	policy TTLPolicy
}

// NewCartStore 创建购物车存储
func NewCartStore(client *cache.Client, policy TTLPolicy) *RedisCartStore {
	return &RedisCartStore{client: client, policy: policy}
}

// Load 读取购物车，不存在返回 nil
func (s *RedisCartStore) Load(ctx context.Context, id string) (*models.Cart, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var cart models.Cart
	found, err := s.client.GetJSON(ctx, s.client.Key("cart", id), &cart)
	if err != nil || !found {
		return nil, err
	}
	return &cart, nil
}

// Save 写入购物车并刷新索引
func (s *RedisCartStore) Save(ctx context.Context, cart *models.Cart) error {
	if cart == nil || cart.ID == "" {
		return errors.New("cart id is required")
	}
	return saveIndexed(ctx, s.client, s.client.Key("cart", cart.ID), s.client.Key("carts"), cart.ID, cart, s.policy.CartTTL(cart), cart.UpdatedAt)
}

// List 按更新时间倒序列出未过期的购物车
func (s *RedisCartStore) List(ctx context.Context) ([]models.Cart, error) {
	return listIndexed[models.Cart](ctx, s.client, s.client.Key("carts"), func(id string) string {
		return s.client.Key("cart", id)
	})
}

// RedisOrderStore Redis 实现
type RedisOrderStore struct {
	client *cache.Client
	policy TTLPolicy
}

// NewOrderStore 创建订单存储
func NewOrderStore(client *cache.Client, policy TTLPolicy) *RedisOrderStore {
	return &RedisOrderStore{client: client, policy: policy}
}

// Load 读取订单，不存在返回 nil
func (s *RedisOrderStore) Load(ctx context.Context, id string) (*models.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var order models.Order
	found, err := s.client.GetJSON(ctx, s.client.Key("order", id), &order)
	if err != nil || !found {
		return nil, err
	}
	return &order, nil
}

// Save 写入订单并刷新索引
func (s *RedisOrderStore) Save(ctx context.Context, order *models.Order) error {
	if order == nil || order.ID == "" {
		return errors.New("order id is required")
	}
	return saveIndexed(ctx, s.client, s.client.Key("order", order.ID), s.client.Key("orders"), order.ID, order, s.policy.Order, order.ProcessedAt)
}

// List 按处理时间倒序列出未过期的订单
func (s *RedisOrderStore) List(ctx context.Context) ([]models.Order, error) {
	return listIndexed[models.Order](ctx, s.client, s.client.Key("orders"), func(id string) string {
		return s.client.Key("order", id)
	})
}

func saveIndexed(ctx context.Context, client *cache.Client, key, indexKey, member string, value interface{}, ttl time.Duration, updatedAt time.Time) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err = client.Redis().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, payload, ttl)
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(updatedAt.UnixMilli()), Member: member})
		return nil
	})
	return err
}

func listIndexed[T any](ctx context.Context, client *cache.Client, indexKey string, keyOf func(id string) string) ([]T, error) {
	ids, err := client.Redis().ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyOf(id)
	}
	values, err := client.Redis().MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	expired := make([]interface{}, 0)
	for i, raw := range values {
		payload, ok := raw.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			logger.Warnw("store_record_decode_failed", "key", keys[i], "error", err)
			continue
		}
		out = append(out, item)
	}
	if len(expired) > 0 {
		if err := client.Redis().ZRem(ctx, indexKey, expired...).Err(); err != nil {
			logger.Warnw("store_index_prune_failed", "index", indexKey, "error", err)
		}
	}
	return out, nil
}
