package models

import (
	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/logger"

	"gorm.io/gorm"
)

// SeedCatalog 目录为空时写入演示商品
func SeedCatalog(db *gorm.DB) error {
	if db == nil {
		db = DB
	}
	var count int64
	if err := db.Model(&Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Debugw("catalog_seed_skip_not_empty", "products", count)
		return nil
	}

	products := DemoCatalog()
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range products {
			if err := tx.Create(&products[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("catalog_seeded", "products", len(products))
	return nil
}

// DemoCatalog 演示目录：实物 T 恤（含缺货与低库存变体）、马克杯、电子书与礼品卡
func DemoCatalog() []Product {
	usd := constants.DefaultCurrency
	return []Product{
		{
			ID:               "prod_tshirt",
			Title:            "Classic Cotton T-Shirt",
			Description:      "Soft everyday t-shirt made from organic cotton.",
			Brand:            "Dujiao",
			Category:         "apparel",
			Currency:         usd,
			FulfillmentType:  constants.FulfillmentTypeShipping,
			DefaultVariantID: "var_tshirt_m",
			Variants: []ProductVariant{
				{ID: "var_tshirt_s", Title: "S / Black", SKU: "TS-BLK-S", Price: 2500, Currency: usd, AvailableForSale: true, QuantityAvailable: 40, Taxable: true},
				{ID: "var_tshirt_m", Title: "M / Black", SKU: "TS-BLK-M", Price: 2500, Currency: usd, AvailableForSale: true, QuantityAvailable: 3, Taxable: true},
				{ID: "var_tshirt_l", Title: "L / Black", SKU: "TS-BLK-L", Price: 2700, Currency: usd, AvailableForSale: false, QuantityAvailable: 0, Taxable: true},
			},
		},
		{
			ID:               "prod_mug",
			Title:            "Ceramic Mug",
			Description:      "350ml stoneware mug.",
			Brand:            "Dujiao",
			Category:         "home",
			Currency:         usd,
			FulfillmentType:  constants.FulfillmentTypeShipping,
			DefaultVariantID: "var_mug_white",
			Variants: []ProductVariant{
				{ID: "var_mug_white", Title: "White", SKU: "MUG-WHT", Price: 1200, Currency: usd, AvailableForSale: true, QuantityAvailable: 100, Taxable: true},
			},
		},
		{
			ID:               "prod_ebook",
			Title:            "Field Guide to Checkout Protocols",
			Description:      "DRM-free e-book (EPUB + PDF).",
			Brand:            "Dujiao Press",
			Category:         "books",
			Currency:         usd,
			FulfillmentType:  constants.FulfillmentTypeDigital,
			DefaultVariantID: "var_ebook",
			Variants: []ProductVariant{
				{ID: "var_ebook", Title: "E-book", SKU: "EBOOK-ACP", Price: 1500, Currency: usd, AvailableForSale: true, QuantityAvailable: 10000, Taxable: true},
			},
		},
		{
			ID:               "prod_giftcard",
			Title:            "Gift Card",
			Description:      "Digital gift card delivered by email.",
			Brand:            "Dujiao",
			Category:         "gift_cards",
			Currency:         usd,
			FulfillmentType:  constants.FulfillmentTypeDigital,
			DefaultVariantID: "var_giftcard_50",
			Variants: []ProductVariant{
				{ID: "var_giftcard_50", Title: "$50", SKU: "GC-50", Price: 5000, Currency: usd, AvailableForSale: true, QuantityAvailable: 500, Taxable: false},
			},
		},
	}
}
