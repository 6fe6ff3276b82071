package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/agoodis/product-management-system/internal/dto"
	"github.com/agoodis/product-management-system/internal/model"
	"github.com/agoodis/product-management-system/internal/ownership"
	"github.com/agoodis/product-management-system/internal/repository"
)

const (
	cacheKeyBrands     = "cache:filters:brands"
	cacheKeyCategories = "cache:filters:categories"
	filterCacheTTL     = 5 * time.Minute
)

// ProductService is the read/patch surface exposed to the UI collaborator.
type ProductService interface {
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Get(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	Patch(ctx context.Context, barcode string, req dto.PatchProductRequest) (*dto.ProductResponse, error)
	Brands(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]string, error)
}

type productService struct {
	repo            repository.ProductRepository
	rdb             *redis.Client
	defaultPageSize int
}

// NewProductService builds the read/patch surface. defaultPageSize applies to
// list requests that do not set page_size; non-positive values fall back to
// 100.
func NewProductService(repo repository.ProductRepository, rdb *redis.Client, defaultPageSize int) ProductService {
	if defaultPageSize < 1 {
		defaultPageSize = 100
	}
	return &productService{repo: repo, rdb: rdb, defaultPageSize: defaultPageSize}
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = s.defaultPageSize
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, dto.NewProductResponse(&products[i]))
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	return &dto.ProductListResponse{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *productService) Get(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	p, err := s.repo.Get(ctx, barcode)
	if err != nil {
		return nil, err
	}
	resp := dto.NewProductResponse(p)
	return &resp, nil
}

// Patch applies a manual edit under the same ownership rules the imports use:
// the manual source has present-only authority over scalar fields and never
// touches marketplace subtrees. Unknown barcodes are rejected, never created.
func (s *productService) Patch(ctx context.Context, barcode string, req dto.PatchProductRequest) (*dto.ProductResponse, error) {
	src := model.SourceManual

	p, err := s.repo.Upsert(ctx, barcode, func(p *model.Product, created bool) error {
		if created {
			return repository.ErrNotFound
		}

		if err := applyStringPtr(src, ownership.FieldArticle1C, req.Article1C, &p.Article1C); err != nil {
			return err
		}
		if err := applyStringPtr(src, ownership.FieldName, req.Name, &p.Name); err != nil {
			return err
		}
		if err := applyStringPtr(src, ownership.FieldBrand, req.Brand, &p.Brand); err != nil {
			return err
		}
		if err := applyStringPtr(src, ownership.FieldProductCategory, req.ProductCategory, &p.ProductCategory); err != nil {
			return err
		}
		if err := applyStringPtr(src, ownership.FieldSize, req.Size, &p.Size); err != nil {
			return err
		}
		if err := applyStringPtr(src, ownership.FieldSeason, req.Season, &p.Season); err != nil {
			return err
		}
		if err := applyStringPtr(src, ownership.FieldCollection, req.Collection, &p.Collection); err != nil {
			return err
		}
		if err := applyIntPtr(src, ownership.FieldStockTotal, req.StockTotal, &p.StockTotal); err != nil {
			return err
		}
		if req.PurchasePrice != nil {
			if err := applyDecimal(src, ownership.FieldPurchasePrice, *req.PurchasePrice, &p.PurchasePrice); err != nil {
				return err
			}
		}
		if err := applyDecimalPtr(src, ownership.FieldAvgDailySales, req.AvgDailySales, &p.AvgDailySales); err != nil {
			return err
		}

		Recalculate(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFilterCache(ctx)
	resp := dto.NewProductResponse(p)
	return &resp, nil
}

func (s *productService) Brands(ctx context.Context) ([]string, error) {
	return s.cachedList(ctx, cacheKeyBrands, s.repo.DistinctBrands)
}

func (s *productService) Categories(ctx context.Context) ([]string, error) {
	return s.cachedList(ctx, cacheKeyCategories, s.repo.DistinctCategories)
}

// cachedList serves the distinct-value filter lists from Redis with a short
// TTL; on any cache trouble it falls back straight to the store.
func (s *productService) cachedList(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var values []string
			if json.Unmarshal([]byte(raw), &values) == nil {
				return values, nil
			}
		}
	}

	values, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(values); err == nil {
			if err := s.rdb.Set(ctx, key, raw, filterCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("key", key).Msg("filter cache write failed")
			}
		}
	}
	return values, nil
}

func (s *productService) invalidateFilterCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKeyBrands, cacheKeyCategories).Err(); err != nil {
		log.Debug().Err(err).Msg("filter cache invalidation failed")
	}
}

// Pointer variants of the ownership appliers, for partial-update requests
// where nil means "not supplied".

func applyStringPtr(src model.Source, f ownership.Field, incoming *string, target *string) error {
	if incoming == nil {
		_, err := ownership.Resolve(src, f)
		return err
	}
	return applyString(src, f, *incoming, target)
}

func applyIntPtr(src model.Source, f ownership.Field, incoming *int, target *int) error {
	if incoming == nil {
		_, err := ownership.Resolve(src, f)
		return err
	}
	return applyInt(src, f, *incoming, target)
}
