package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoodis/product-management-system/internal/model"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestMarginUsesLowestMarketplacePrice(t *testing.T) {
	p := &model.Product{
		Barcode:       "123",
		PurchasePrice: decimal.NewFromInt(500),
	}
	p.Entry(model.MarketplaceWB).CurrentPrice = dec("650")
	p.Entry(model.MarketplaceOzon).CurrentPrice = dec("800")

	Recalculate(p)

	// Worst case across channels: (650 - 500) / 500 * 100 = 30
	require.NotNil(t, p.Calculated.MarginPercent)
	assert.True(t, p.Calculated.MarginPercent.Equal(decimal.NewFromInt(30)))
}

func TestMarginRounding(t *testing.T) {
	p := &model.Product{
		Barcode:       "123",
		PurchasePrice: decimal.NewFromInt(350),
	}
	p.Entry(model.MarketplaceWB).CurrentPrice = dec("990")

	Recalculate(p)

	// (990 - 350) / 350 * 100 = 182.857… → 182.86
	require.NotNil(t, p.Calculated.MarginPercent)
	assert.True(t, p.Calculated.MarginPercent.Equal(decimal.RequireFromString("182.86")))
}

func TestMarginUndefinedCases(t *testing.T) {
	// No marketplace price at all
	p := &model.Product{Barcode: "1", PurchasePrice: decimal.NewFromInt(100)}
	Recalculate(p)
	assert.Nil(t, p.Calculated.MarginPercent)

	// Entry exists but price unknown
	p = &model.Product{Barcode: "2", PurchasePrice: decimal.NewFromInt(100)}
	p.Entry(model.MarketplaceWB)
	Recalculate(p)
	assert.Nil(t, p.Calculated.MarginPercent)

	// Zero purchase price never yields a margin, even with a sale price
	p = &model.Product{Barcode: "3"}
	p.Entry(model.MarketplaceWB).CurrentPrice = dec("650")
	Recalculate(p)
	assert.Nil(t, p.Calculated.MarginPercent)

	// Negative margin is a value, not an absence
	p = &model.Product{Barcode: "4", PurchasePrice: decimal.NewFromInt(1000)}
	p.Entry(model.MarketplaceWB).CurrentPrice = dec("800")
	Recalculate(p)
	require.NotNil(t, p.Calculated.MarginPercent)
	assert.True(t, p.Calculated.MarginPercent.Equal(decimal.NewFromInt(-20)))
}

func TestTurnoverRate(t *testing.T) {
	p := &model.Product{Barcode: "1", StockTotal: 42, AvgDailySales: dec("6")}
	Recalculate(p)
	// 6 / 42 = 0.142857… → 0.1429
	require.NotNil(t, p.Calculated.TurnoverRate)
	assert.True(t, p.Calculated.TurnoverRate.Equal(decimal.RequireFromString("0.1429")))

	// No demand signal yet
	p = &model.Product{Barcode: "2", StockTotal: 42}
	Recalculate(p)
	assert.Nil(t, p.Calculated.TurnoverRate)

	// Zero stock: undefined, not division by zero
	p = &model.Product{Barcode: "3", StockTotal: 0, AvgDailySales: dec("6")}
	Recalculate(p)
	assert.Nil(t, p.Calculated.TurnoverRate)
}

func TestRecalculateAllSweepsEveryProduct(t *testing.T) {
	repo := newMemProductRepo()
	ctx := context.Background()

	// Seed products with stale (empty) calculated data
	for _, barcode := range []string{"1", "2", "3"} {
		_, err := repo.Upsert(ctx, barcode, func(p *model.Product, created bool) error {
			p.PurchasePrice = decimal.NewFromInt(500)
			p.Entry(model.MarketplaceWB).CurrentPrice = dec("650")
			return nil
		})
		require.NoError(t, err)
	}

	svc := NewCalculationService(repo)
	updated, err := svc.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	for _, barcode := range []string{"1", "2", "3"} {
		p, err := repo.Get(ctx, barcode)
		require.NoError(t, err)
		require.NotNil(t, p.Calculated.MarginPercent, "barcode %s", barcode)
		assert.True(t, p.Calculated.MarginPercent.Equal(decimal.NewFromInt(30)))
	}
}

func TestLowStockReport(t *testing.T) {
	repo := newMemProductRepo()
	ctx := context.Background()

	stocks := map[string]int{"a": 0, "b": 3, "c": 5, "d": 50}
	for barcode, stock := range stocks {
		barcode, stock := barcode, stock
		_, err := repo.Upsert(ctx, barcode, func(p *model.Product, created bool) error {
			p.Name = barcode
			p.StockTotal = stock
			return nil
		})
		require.NoError(t, err)
	}

	svc := NewCalculationService(repo)
	items, err := svc.LowStock(ctx, 5)
	require.NoError(t, err)

	// Zero stock means sold out, not low; well stocked excluded
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Barcode)
	assert.Equal(t, "c", items[1].Barcode)
}
