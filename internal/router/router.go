package router

import (
	"fmt"
	"strings"

	"github.com/dujiao-next/checkout/internal/config"
	acphandlers "github.com/dujiao-next/checkout/internal/http/handlers/acp"
	publichandlers "github.com/dujiao-next/checkout/internal/http/handlers/public"
	"github.com/dujiao-next/checkout/internal/http/handlers/shared"
	"github.com/dujiao-next/checkout/internal/http/response"
	"github.com/dujiao-next/checkout/internal/logger"
	"github.com/dujiao-next/checkout/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler
	acpHandler := acphandlers.New(c)
	publicHandler := publichandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "acp"
	}
	var redisClient *redis.Client
	if c.Cache != nil {
		redisClient = c.Cache.Redis()
	}
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.RateLimit.Checkout.WindowSeconds,
		MaxRequests:   cfg.RateLimit.Checkout.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	api := r.Group("/api")
	{
		// 结账会话
		sessions := api.Group("/acp/checkout_sessions")
		sessions.Use(RateLimitMiddleware(redisClient, checkoutRule, KeyByIP))
		{
			sessions.POST("", acpHandler.CreateSession)
			sessions.GET("/:id", acpHandler.GetSession)
			sessions.POST("/:id", acpHandler.UpdateSession)
			sessions.POST("/:id/complete", acpHandler.CompleteSession)
			sessions.POST("/:id/cancel", acpHandler.CancelSession)
		}

		// 只读查询
		api.GET("/products", publicHandler.GetProducts)
		api.GET("/carts", publicHandler.GetCarts)
		api.GET("/orders", publicHandler.GetOrders)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.NoRoute(func(c *gin.Context) {
		shared.RespondError(c, response.NotFound("Resource not found"))
	})

	return r
}
