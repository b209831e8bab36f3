package provider

import (
	"strings"
	"time"

	"github.com/dujiao-next/checkout/internal/acp"
	"github.com/dujiao-next/checkout/internal/cache"
	"github.com/dujiao-next/checkout/internal/config"
	"github.com/dujiao-next/checkout/internal/fulfillment"
	"github.com/dujiao-next/checkout/internal/logger"
	"github.com/dujiao-next/checkout/internal/models"
	"github.com/dujiao-next/checkout/internal/payment/arcpay"
	"github.com/dujiao-next/checkout/internal/pricing"
	"github.com/dujiao-next/checkout/internal/queue"
	"github.com/dujiao-next/checkout/internal/repository"
	"github.com/dujiao-next/checkout/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	Cache       *cache.Client
	Locker      *cache.Locker
	QueueClient *queue.Client
	ArcPay      *arcpay.Client

	// Repositories
	CatalogRepo repository.CatalogRepository
	CartStore   repository.CartStore
	OrderStore  repository.OrderStore

	// Services
	PricingEngine   *service.PricingEngine
	PaymentService  *service.PaymentService
	CheckoutService *service.CheckoutService
	CatalogService  *service.CatalogService

	// Protocol
	Mapper *acp.Mapper
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	c := &Container{
		Config: cfg,
		Cache:  cache.New(&cfg.Redis),
	}
	c.Locker = cache.NewLocker(
		c.Cache,
		seconds(cfg.Checkout.LockTTLSeconds),
		seconds(cfg.Checkout.LockWaitSeconds),
	)

	// 初始化队列客户端
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			c.QueueClient = qc
		}
	}

	// 初始化扣款客户端
	if strings.TrimSpace(cfg.ArcPay.APIKey) == "" {
		logger.Warnw("provider_arcpay_api_key_missing", "effect", "all captures are declined")
	} else {
		client, err := arcpay.New(arcpay.Config{
			APIURL:              cfg.ArcPay.APIURL,
			APIKey:              cfg.ArcPay.APIKey,
			RequestTimeout:      millis(cfg.ArcPay.RequestTimeoutMS),
			BreakerMaxFailures:  cfg.ArcPay.Breaker.MaxFailures,
			BreakerOpenDuration: seconds(cfg.ArcPay.Breaker.OpenSeconds),
		}, nil)
		if err != nil {
			logger.Errorw("provider_init_arcpay_failed", "error", err)
		} else {
			c.ArcPay = client
		}
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	openTTL, closedTTL, orderTTL := c.Config.Checkout.StoreTTLs()
	policy := repository.TTLPolicy{OpenCart: openTTL, ClosedCart: closedTTL, Order: orderTTL}
	c.CatalogRepo = repository.NewCatalogRepository(models.DB)
	c.CartStore = repository.NewCartStore(c.Cache, policy)
	c.OrderStore = repository.NewOrderStore(c.Cache, policy)
}

func (c *Container) initServices() {
	cfg := c.Config

	// 接口变量需显式保持 nil，避免持有 nil 指针
	var capture service.CaptureClient
	if c.ArcPay != nil {
		capture = c.ArcPay
	}
	var scheduler service.ReconcileScheduler
	if c.QueueClient.Enabled() {
		scheduler = c.QueueClient
	}

	c.PricingEngine = service.NewPricingEngine(c.CatalogRepo, pricing.NewTaxResolver(), fulfillment.NewStaticResolver(nil))
	c.PaymentService = service.NewPaymentService(c.OrderStore, c.CartStore, capture, scheduler, c.Locker, service.PaymentOptions{
		Poll: arcpay.PollOptions{
			Interval: millis(cfg.ArcPay.PollIntervalMS),
			Timeout:  millis(cfg.ArcPay.PollTimeoutMS),
		},
		ReconcileDelay:       seconds(cfg.Checkout.ReconcileDelaySeconds),
		ReconcileMaxAttempts: cfg.Checkout.ReconcileMaxAttempts,
	})
	c.CheckoutService = service.NewCheckoutService(
		c.CartStore,
		c.OrderStore,
		c.PricingEngine,
		service.NewOrderFactory(),
		c.PaymentService,
		c.Locker,
		service.CheckoutOptions{
			DefaultCurrency: cfg.Checkout.DefaultCurrency,
			PaymentProvider: models.PaymentProvider{
				Provider:         strings.TrimSpace(cfg.Checkout.PaymentProvider),
				SupportedMethods: cfg.Checkout.PaymentMethods,
			},
		},
	)
	c.CatalogService = service.NewCatalogService(c.CatalogRepo, c.CartStore, c.OrderStore)

	estimator := fulfillment.NewEstimator(
		cfg.Checkout.Location(),
		cfg.Checkout.ShipCutoffHour,
		cfg.Checkout.SendAtHour,
		cfg.Checkout.ReceiveAtHour,
	)
	c.Mapper = acp.NewMapper(estimator, cfg.Server.PublicBaseURL)
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logger.Warnw("provider_close_redis_failed", "error", err)
		}
	}
}

func seconds(v int) time.Duration {
	return time.Duration(v) * time.Second
}

func millis(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
