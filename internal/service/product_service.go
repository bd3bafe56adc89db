package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-storefront/internal/apperr"
	"go-storefront/internal/core/auth"
	"go-storefront/internal/core/cache"
	"go-storefront/internal/domain"
	"go-storefront/internal/repo"
)

const (
	catalogCacheKey = "products:all"
	catalogCacheTTL = 30 * time.Second
)

type ProductService struct {
	products domain.ProductRepository
	cache    *cache.Cache // nil disables the read-through cache
	log      *zap.Logger
}

func NewProductService(products domain.ProductRepository, c *cache.Cache, log *zap.Logger) *ProductService {
	return &ProductService{products: products, cache: c, log: log}
}

// List returns the catalog newest first. The unbounded listing goes through
// the cache; limited queries hit the store directly.
func (s *ProductService) List(ctx context.Context, limit int64) ([]domain.Product, error) {
	if s.cache != nil && limit <= 0 {
		out, err := cache.GetOrLoadJSON(s.cache, ctx, catalogCacheKey, catalogCacheTTL,
			func(ctx context.Context) (*[]domain.Product, error) {
				ps, e := s.products.List(ctx, 0)
				if e != nil {
					return nil, e
				}
				return &ps, nil
			})
		if err == nil && out != nil {
			return *out, nil
		}
		if err != nil {
			// Cache trouble must not take the catalog down.
			s.log.Warn("catalog cache bypassed", zap.Error(err))
		}
	}
	ps, err := s.products.List(ctx, limit)
	if err != nil {
		return nil, apperr.Internal("list products failed", err)
	}
	return ps, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repo.ErrInvalidID) {
		return nil, apperr.Invalid("Invalid id")
	}
	if err != nil {
		return nil, apperr.Internal("load product failed", err)
	}
	if p == nil {
		return nil, apperr.NotFound("product not found")
	}
	return p, nil
}

type RatingInput struct {
	Rate  float64 `json:"rate" validate:"gte=0,lte=5"`
	Count int     `json:"count" validate:"gte=0"`
}

type ProductInput struct {
	Title       string      `json:"title" validate:"required,min=3"`
	Price       float64     `json:"price" validate:"required,gt=0"`
	Description string      `json:"description" validate:"required,min=10"`
	Category    string      `json:"category" validate:"required"`
	Image       string      `json:"image" validate:"required,url"`
	Rating      RatingInput `json:"rating"`
}

// Create persists a catalog item. The role is re-checked here; the
// presentation-layer filter is not a security boundary.
func (s *ProductService) Create(ctx context.Context, role auth.Role, in ProductInput) (*domain.Product, error) {
	if !role.Can(auth.CapCreateProduct) {
		return nil, apperr.Forbidden("admin role required")
	}
	if err := validate.Struct(in); err != nil {
		return nil, apperr.Invalid(firstValidationMessage(err))
	}

	p := &domain.Product{
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		Image:       in.Image,
		Rating:      domain.Rating{Rate: in.Rating.Rate, Count: in.Rating.Count},
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, apperr.Internal("create product failed", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, catalogCacheKey)
	}
	s.log.Info("product created", zap.String("product_id", p.ID))
	return p, nil
}

type CatalogStats struct {
	Total      int64                  `json:"total"`
	Categories []domain.CategoryCount `json:"categories"`
	Newest     []domain.Product       `json:"newest"`
}

// Stats feeds the dashboard analytics charts.
func (s *ProductService) Stats(ctx context.Context) (*CatalogStats, error) {
	total, err := s.products.Count(ctx)
	if err != nil {
		return nil, apperr.Internal("load stats failed", err)
	}
	cats, err := s.products.CountByCategory(ctx)
	if err != nil {
		return nil, apperr.Internal("load stats failed", err)
	}
	newest, err := s.products.List(ctx, 5)
	if err != nil {
		return nil, apperr.Internal("load stats failed", err)
	}
	return &CatalogStats{Total: total, Categories: cats, Newest: newest}, nil
}
