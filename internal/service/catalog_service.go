package service

import (
	"context"
	"strings"

	"github.com/dujiao-next/checkout/internal/models"
	"github.com/dujiao-next/checkout/internal/repository"
)

// CatalogService 目录与购物车/订单列表查询
type CatalogService struct {
	catalog repository.CatalogRepository
	carts   repository.CartStore
	orders  repository.OrderStore
}

// NewCatalogService 创建查询服务
func NewCatalogService(catalog repository.CatalogRepository, carts repository.CartStore, orders repository.OrderStore) *CatalogService {
	return &CatalogService{catalog: catalog, carts: carts, orders: orders}
}

// ListProducts 列出商品，findID 非空时仅返回匹配的商品（商品ID或变体ID）
func (s *CatalogService) ListProducts(ctx context.Context, findID string) ([]models.Product, error) {
	findID = strings.TrimSpace(findID)
	if findID == "" {
		products, err := s.catalog.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		if products == nil {
			products = []models.Product{}
		}
		return products, nil
	}
	product, err := s.catalog.FindProduct(ctx, findID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return []models.Product{}, nil
	}
	return []models.Product{*product}, nil
}

// ListCarts 列出未过期的购物车
func (s *CatalogService) ListCarts(ctx context.Context) ([]models.Cart, error) {
	return s.carts.List(ctx)
}

// ListOrders 列出未过期的订单
func (s *CatalogService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx)
}
