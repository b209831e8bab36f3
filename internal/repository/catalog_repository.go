package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/dujiao-next/checkout/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository 商品目录数据访问接口
type CatalogRepository interface {
	FindProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	WithTx(tx *gorm.DB) CatalogRepository
}

// GormCatalogRepository GORM 实现
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建商品目录仓库
func NewCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCatalogRepository) WithTx(tx *gorm.DB) CatalogRepository {
	if tx == nil {
		return r
	}
	return &GormCatalogRepository{db: tx}
}

// FindProduct 按商品ID或变体ID查找商品（含变体），未命中返回 nil
func (r *GormCatalogRepository) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	db := r.db.WithContext(ctx)
	productID := id

	var variant models.ProductVariant
	err := db.Select("product_id").Where("id = ?", id).Take(&variant).Error
	switch {
	case err == nil:
		productID = variant.ProductID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	var product models.Product
	if err := db.Preload("Variants", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id ASC")
	}).Where("id = ?", productID).Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListProducts 商品列表（含变体）
func (r *GormCatalogRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id ASC")
		}).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
