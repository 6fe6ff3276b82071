package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/agoodis/product-management-system/internal/dto"
	"github.com/agoodis/product-management-system/internal/model"
)

// ErrNotFound is returned by lookups that miss. Callers use errors.Is.
var ErrNotFound = errors.New("record not found")

// ProductRepository is the canonical store contract. Upsert is the sole
// mutation entry point and serializes concurrent mutations per barcode while
// unrelated barcodes proceed in parallel.
type ProductRepository interface {
	Get(ctx context.Context, barcode string) (*model.Product, error)

	// Upsert loads or creates the product for barcode under the per-barcode
	// lock, applies mutate inside one transaction and persists the result.
	// created tells the mutator whether the product did not exist before; a
	// mutator error rolls everything back, making each row merge
	// all-or-nothing.
	Upsert(ctx context.Context, barcode string, mutate func(p *model.Product, created bool) error) (*model.Product, error)

	// FindBarcodeByExternalID resolves a marketplace's own identifier to the
	// canonical barcode, for price feeds that do not carry barcodes.
	FindBarcodeByExternalID(ctx context.Context, m model.Marketplace, externalID string) (string, error)

	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	DistinctBrands(ctx context.Context) ([]string, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	ListLowStock(ctx context.Context, threshold int) ([]model.Product, error)

	// WalkAll streams every product in stable batches; used by exports and the
	// bulk recalculation worker. fn errors stop the walk.
	WalkAll(ctx context.Context, fn func(p *model.Product) error) error
}

// barcodeLocks is the process-wide mutation guard. Every repository handle
// shares it, so exclusivity is a property of the barcode itself: a background
// recalculation and an HTTP import contend on the same lock even when they
// were wired with separate handles.
var barcodeLocks = newKeyedMutex()

type productRepo struct {
	db    *gorm.DB
	locks *keyedMutex
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db, locks: barcodeLocks}
}

func (r *productRepo) Get(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Upsert(ctx context.Context, barcode string, mutate func(p *model.Product, created bool) error) (*model.Product, error) {
	unlock := r.locks.Lock(barcode)
	defer unlock()

	var result *model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Product
		created := false
		err := tx.Where("barcode = ?", barcode).First(&p).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p = model.Product{Barcode: barcode, Marketplaces: model.MarketplaceSet{}}
			created = true
		case err != nil:
			return err
		}

		if err := mutate(&p, created); err != nil {
			return err
		}

		if created {
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		} else if err := tx.Save(&p).Error; err != nil {
			return err
		}
		result = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepo) FindBarcodeByExternalID(ctx context.Context, m model.Marketplace, externalID string) (string, error) {
	var barcode string
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("barcode").
		Where("marketplaces -> ? ->> 'external_id' = ?", string(m), externalID).
		Limit(1).
		Scan(&barcode).Error
	if err != nil {
		return "", err
	}
	if barcode == "" {
		return "", ErrNotFound
	}
	return barcode, nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR barcode ILIKE ? OR article_1c ILIKE ?", like, like, like)
	}
	if filter.Brand != "" {
		q = q.Where("brand = ?", filter.Brand)
	}
	if filter.ProductCategory != "" {
		q = q.Where("product_category = ?", filter.ProductCategory)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := q.Order("name ASC, barcode ASC").Limit(filter.PageSize).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) DistinctBrands(ctx context.Context) ([]string, error) {
	var brands []string
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Distinct("brand").
		Where("brand <> ''").
		Order("brand ASC").
		Pluck("brand", &brands).Error
	return brands, err
}

func (r *productRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Distinct("product_category").
		Where("product_category <> ''").
		Order("product_category ASC").
		Pluck("product_category", &categories).Error
	return categories, err
}

func (r *productRepo) ListLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("stock_total > 0 AND stock_total <= ?", threshold).
		Order("stock_total ASC, name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) WalkAll(ctx context.Context, fn func(p *model.Product) error) error {
	var batch []model.Product
	res := r.db.WithContext(ctx).Order("barcode ASC").FindInBatches(&batch, 500, func(_ *gorm.DB, _ int) error {
		for i := range batch {
			if err := fn(&batch[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return res.Error
}
