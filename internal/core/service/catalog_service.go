package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

type NewProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Category      string
	ImageURL      string
}

type CatalogService struct {
	products port.CatalogRepository
	audit    port.AuditRepository
	logger   *zap.Logger
}

func NewCatalogService(products port.CatalogRepository, audit port.AuditRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{products: products, audit: audit, logger: logger}
}

func (s *CatalogService) CreateProduct(ctx context.Context, artisanID int64, in NewProductInput, clientAddress string) (domain.Product, error) {
	switch {
	case in.Name == "":
		return domain.Product{}, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	case !in.Price.IsPositive():
		return domain.Product{}, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	case !in.Price.Equal(in.Price.Round(domain.CurrencyPlaces)):
		return domain.Product{}, fmt.Errorf("%w: price has more than %d decimal places", ErrInvalidInput, domain.CurrencyPlaces)
	case in.StockQuantity < 0:
		return domain.Product{}, fmt.Errorf("%w: stock quantity cannot be negative", ErrInvalidInput)
	}

	product, err := s.products.CreateProduct(ctx, domain.Product{
		ArtisanID:     artisanID,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		Category:      in.Category,
		ImageURL:      in.ImageURL,
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	entry, err := domain.NewAuditEntry(artisanID, domain.AuditActionProductCreated, domain.AuditEntityProduct, product.ID,
		map[string]string{"product_name": product.Name}, clientAddress)
	if err == nil {
		err = s.audit.InsertAudit(ctx, entry)
	}
	if err != nil {
		// the product exists; a missing audit row is reported, not fatal
		s.logger.Error("audit product creation", zap.Int64("product_id", product.ID), zap.Error(err))
	}

	s.logger.Info("product created", zap.Int64("product_id", product.ID), zap.Int64("artisan_id", artisanID))
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if errors.Is(err, port.ErrNotFound) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error) {
	products, err := s.products.ListProducts(ctx, availableOnly)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) ListArtisanProducts(ctx context.Context, artisanID int64) ([]domain.ProductSales, error) {
	products, err := s.products.ListArtisanProducts(ctx, artisanID)
	if err != nil {
		return nil, fmt.Errorf("list artisan products: %w", err)
	}
	return products, nil
}
