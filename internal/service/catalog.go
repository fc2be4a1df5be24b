package service

import (
	"context"
	"log/slog"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/repository"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
)

const (
	defaultProductPageSize = 24
	maxProductPageSize     = 100
)

// CatalogService serves the browsable product catalog.
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(repo repository.CatalogRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// ListProducts returns a page of products, optionally filtered by category.
func (s *CatalogService) ListProducts(ctx context.Context, category string, limit, offset int) ([]domain.Product, int, error) {
	if limit <= 0 {
		limit = defaultProductPageSize
	}
	if limit > maxProductPageSize {
		limit = maxProductPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListProducts(ctx, repository.ProductFilter{
		Category: category,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetProduct returns a single product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	return s.repo.GetProduct(ctx, id)
}

// ListCategories returns all product categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// ListActiveOffers returns currently running promotions.
func (s *CatalogService) ListActiveOffers(ctx context.Context) ([]domain.Offer, error) {
	return s.repo.ListActiveOffers(ctx)
}
