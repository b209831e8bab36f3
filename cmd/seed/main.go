package main

import (
	"flag"

	"github.com/dujiao-next/checkout/internal/config"
	"github.com/dujiao-next/checkout/internal/logger"
	"github.com/dujiao-next/checkout/internal/models"
)

func main() {
	var reset bool
	flag.BoolVar(&reset, "reset", false, "清空目录后重新写入演示商品")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		LogSQL:                 cfg.Database.LogSQL,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if reset {
		if err := models.DB.Where("1 = 1").Delete(&models.ProductVariant{}).Error; err != nil {
			stdLog.Fatalf("Failed to clear variants: %v", err)
		}
		if err := models.DB.Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
			stdLog.Fatalf("Failed to clear products: %v", err)
		}
		stdLog.Printf("Catalog cleared")
	}

	if err := models.SeedCatalog(nil); err != nil {
		stdLog.Fatalf("Failed to seed catalog: %v", err)
	}

	var products []models.Product
	if err := models.DB.Preload("Variants").Order("id ASC").Find(&products).Error; err != nil {
		stdLog.Fatalf("Failed to load catalog: %v", err)
	}
	for _, product := range products {
		stdLog.Printf("Product %s (%s): %d variant(s)", product.ID, product.Title, len(product.Variants))
	}
	stdLog.Printf("Seed completed")
}
