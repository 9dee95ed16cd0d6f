package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/utafrali/techstore/internal/domain"
	"github.com/utafrali/techstore/internal/repository"
	apperrors "github.com/utafrali/techstore/pkg/errors"
)

// CatalogService serves the product catalog from memory. The catalog is read
// once at construction and is immutable afterwards.
type CatalogService struct {
	products   []domain.Product
	byID       map[int]domain.Product
	categories []string
}

// NewCatalogService loads and validates the catalog from repo.
func NewCatalogService(ctx context.Context, repo repository.ProductRepository, logger *slog.Logger) (*CatalogService, error) {
	products, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	byID := make(map[int]domain.Product, len(products))
	for _, p := range products {
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("load catalog: duplicate product id %d", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("load catalog: product %d has negative price %d", p.ID, p.Price)
		}
		byID[p.ID] = p
	}

	categories := domain.Categories(products)
	logger.Info("catalog loaded",
		slog.Int("products", len(products)),
		slog.Int("categories", len(categories)-1),
	)

	return &CatalogService{
		products:   products,
		byID:       byID,
		categories: categories,
	}, nil
}

// Products returns the products in category, in catalog order. An empty
// category is treated as domain.AllCategories.
func (s *CatalogService) Products(category string) []domain.Product {
	if category == "" {
		category = domain.AllCategories
	}
	return slices.Clone(domain.FilterByCategory(s.products, category))
}

// Categories returns the category filter values, domain.AllCategories first.
func (s *CatalogService) Categories() []string {
	return slices.Clone(s.categories)
}

// Product returns a single product by id.
func (s *CatalogService) Product(id int) (domain.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return p, nil
}
