package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/agoodis/product-management-system/internal/dto"
	"github.com/agoodis/product-management-system/internal/model"
	"github.com/agoodis/product-management-system/internal/repository"
)

var hundred = decimal.NewFromInt(100)

// Recalculate refreshes the derived metrics of p in place. It runs inside the
// same store mutation that changed the inputs, so no caller ever observes a
// product whose calculated data is stale.
func Recalculate(p *model.Product) {
	p.Calculated.MarginPercent = marginPercent(p)
	p.Calculated.TurnoverRate = turnoverRate(p)
}

// marginPercent = (price − purchase) / purchase × 100 against the lowest
// marketplace current_price. Nil when purchase price is not positive or no
// marketplace has a price: the worst-case margin across channels, never a
// fabricated zero.
func marginPercent(p *model.Product) *decimal.Decimal {
	if !p.PurchasePrice.IsPositive() {
		return nil
	}
	var lowest *decimal.Decimal
	for _, e := range p.Marketplaces {
		if e.CurrentPrice == nil {
			continue
		}
		if lowest == nil || e.CurrentPrice.LessThan(*lowest) {
			lowest = e.CurrentPrice
		}
	}
	if lowest == nil {
		return nil
	}
	m := lowest.Sub(p.PurchasePrice).Div(p.PurchasePrice).Mul(hundred).Round(2)
	return &m
}

// turnoverRate = avg_daily_sales / stock_total. The demand signal is supplied
// externally (manual edit or analytics feed); nil until both inputs exist.
func turnoverRate(p *model.Product) *decimal.Decimal {
	if p.AvgDailySales == nil || p.StockTotal <= 0 {
		return nil
	}
	r := p.AvgDailySales.Div(decimal.NewFromInt(int64(p.StockTotal))).Round(4)
	return &r
}

// CalculationService exposes the bulk/reporting side of the calculation
// engine: full recalculation sweeps and stock reports.
type CalculationService interface {
	RecalculateAll(ctx context.Context) (int, error)
	LowStock(ctx context.Context, threshold int) ([]dto.LowStockItem, error)
}

type calculationService struct {
	repo repository.ProductRepository
}

func NewCalculationService(repo repository.ProductRepository) CalculationService {
	return &calculationService{repo: repo}
}

// RecalculateAll re-derives metrics for every product. Each product is
// refreshed through Upsert so the per-barcode exclusivity invariant holds
// against concurrent imports.
func (s *calculationService) RecalculateAll(ctx context.Context) (int, error) {
	var barcodes []string
	err := s.repo.WalkAll(ctx, func(p *model.Product) error {
		barcodes = append(barcodes, p.Barcode)
		return nil
	})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, barcode := range barcodes {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		_, err := s.repo.Upsert(ctx, barcode, func(p *model.Product, created bool) error {
			Recalculate(p)
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("barcode", barcode).Msg("recalculate: product refresh failed")
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *calculationService) LowStock(ctx context.Context, threshold int) ([]dto.LowStockItem, error) {
	products, err := s.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LowStockItem, 0, len(products))
	for i := range products {
		p := &products[i]
		items = append(items, dto.LowStockItem{
			Barcode:    p.Barcode,
			Name:       p.Name,
			Brand:      p.Brand,
			StockTotal: p.StockTotal,
		})
	}
	return items, nil
}
