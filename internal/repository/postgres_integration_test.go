//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/dujiao-next/checkout/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.ProductVariant{},
		&models.Product{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(&models.Product{}, &models.ProductVariant{}); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCatalogRepository(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	if err := models.SeedCatalog(db); err != nil {
		t.Fatalf("seed catalog failed: %v", err)
	}
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	products, err := repo.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if len(products) != len(models.DemoCatalog()) {
		t.Fatalf("expected %d products, got %d", len(models.DemoCatalog()), len(products))
	}

	product, err := repo.FindProduct(ctx, "var_tshirt_l")
	if err != nil {
		t.Fatalf("find by variant failed: %v", err)
	}
	if product == nil || product.ID != "prod_tshirt" {
		t.Fatalf("expected prod_tshirt, got %+v", product)
	}
	variant, ok := product.FindVariant("var_tshirt_l")
	if !ok || variant.AvailableForSale {
		t.Fatalf("expected unavailable L variant, got %+v", variant)
	}

	missing, err := repo.FindProduct(ctx, "var_missing")
	if err != nil {
		t.Fatalf("find missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}
}
