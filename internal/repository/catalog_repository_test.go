package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/dujiao-next/checkout/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCatalogRepositoryTest(t *testing.T) *GormCatalogRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ProductVariant{}); err != nil {
		t.Fatalf("migrate catalog failed: %v", err)
	}
	if err := models.SeedCatalog(db); err != nil {
		t.Fatalf("seed catalog failed: %v", err)
	}
	return NewCatalogRepository(db)
}

func TestCatalogFindProductByProductID(t *testing.T) {
	repo := setupCatalogRepositoryTest(t)

	product, err := repo.FindProduct(context.Background(), "prod_tshirt")
	if err != nil {
		t.Fatalf("find product failed: %v", err)
	}
	if product == nil || len(product.Variants) != 3 {
		t.Fatalf("expected t-shirt with 3 variants, got %+v", product)
	}
	variant, ok := product.FindVariant("prod_tshirt")
	if !ok || variant.ID != "var_tshirt_m" {
		t.Fatalf("expected default variant fallback, got %+v", variant)
	}
}

func TestCatalogFindProductByVariantID(t *testing.T) {
	repo := setupCatalogRepositoryTest(t)

	product, err := repo.FindProduct(context.Background(), "var_tshirt_l")
	if err != nil {
		t.Fatalf("find product failed: %v", err)
	}
	if product == nil || product.ID != "prod_tshirt" {
		t.Fatalf("expected parent product, got %+v", product)
	}
	variant, ok := product.FindVariant("var_tshirt_l")
	if !ok {
		t.Fatalf("expected variant to resolve")
	}
	if variant.AvailableForSale {
		t.Fatalf("expected large size to be unavailable")
	}
}

func TestCatalogFindProductUnknown(t *testing.T) {
	repo := setupCatalogRepositoryTest(t)

	product, err := repo.FindProduct(context.Background(), "var_missing")
	if err != nil {
		t.Fatalf("find product failed: %v", err)
	}
	if product != nil {
		t.Fatalf("expected nil product, got %+v", product)
	}
}

func TestCatalogListProductsKeepsFlags(t *testing.T) {
	repo := setupCatalogRepositoryTest(t)

	products, err := repo.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if len(products) != len(models.DemoCatalog()) {
		t.Fatalf("unexpected product count: %d", len(products))
	}
	var giftcard *models.Product
	for i := range products {
		if products[i].ID == "prod_giftcard" {
			giftcard = &products[i]
		}
	}
	if giftcard == nil || len(giftcard.Variants) != 1 {
		t.Fatalf("gift card not listed: %+v", giftcard)
	}
	if giftcard.Variants[0].Taxable {
		t.Fatalf("expected gift card to stay non-taxable after seeding")
	}
}
