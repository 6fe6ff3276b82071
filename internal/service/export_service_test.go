package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agoodis/product-management-system/internal/dto"
	"github.com/agoodis/product-management-system/internal/model"
)

func seedExportFixture(t *testing.T, repo *memProductRepo) {
	t.Helper()
	ctx := context.Background()

	// Mapped to WB, in stock
	_, err := repo.Upsert(ctx, "111", func(p *model.Product, created bool) error {
		p.Name = "Футболка"
		p.Brand = "Nordwind"
		p.Size = "M"
		p.Season = "Лето"
		p.StockTotal = 10
		p.PurchasePrice = decimal.NewFromInt(350)
		wb := p.Entry(model.MarketplaceWB)
		wb.Article = "TS-001"
		wb.CurrentPrice = dec("990")
		wb.DiscountPercent = dec("15")
		Recalculate(p)
		return nil
	})
	require.NoError(t, err)

	// Mapped to both, zero stock
	_, err = repo.Upsert(ctx, "222", func(p *model.Product, created bool) error {
		p.Name = "Рубашка"
		p.StockTotal = 0
		p.Entry(model.MarketplaceWB).CurrentPrice = dec("1790")
		p.Entry(model.MarketplaceOzon).SKU = "SH-220_S"
		return nil
	})
	require.NoError(t, err)

	// Mapped to Ozon only, in stock
	_, err = repo.Upsert(ctx, "333", func(p *model.Product, created bool) error {
		p.Name = "Джинсы"
		p.Season = "Всесезон"
		p.StockTotal = 8
		ozon := p.Entry(model.MarketplaceOzon)
		ozon.SKU = "JN-104_32"
		ozon.ExternalID = "987654"
		ozon.PriceBeforeDiscount = dec("3500")
		ozon.CurrentPrice = dec("2890")
		ozon.MinPrice = dec("2500")
		return nil
	})
	require.NoError(t, err)

	// ERP only, never exported to a marketplace
	_, err = repo.Upsert(ctx, "444", func(p *model.Product, created bool) error {
		p.Name = "Носки"
		p.StockTotal = 100
		return nil
	})
	require.NoError(t, err)
}

func TestWBSheet(t *testing.T) {
	repo := newMemProductRepo()
	seedExportFixture(t, repo)
	svc := NewExportService(repo)

	sheet, err := svc.Sheet(context.Background(), dto.ExportWB)
	require.NoError(t, err)

	// Only mapped, in-stock products: 111 (222 has zero stock, 333/444 unmapped)
	require.Len(t, sheet.Rows, 1)
	row := sheet.Rows[0]
	assert.Equal(t, "111", row[0])
	assert.Equal(t, "TS-001", row[1])
	assert.Equal(t, "10", row[5])
	assert.Equal(t, "990", row[6])
	assert.Equal(t, "15", row[7])
}

func TestOzonSheetProjectsPriceFieldsOnly(t *testing.T) {
	repo := newMemProductRepo()
	seedExportFixture(t, repo)
	svc := NewExportService(repo)

	sheet, err := svc.Sheet(context.Background(), dto.ExportOzon)
	require.NoError(t, err)

	// ERP-owned attributes never leak into the Ozon projection
	assert.NotContains(t, sheet.Headers, "Сезон")
	assert.NotContains(t, sheet.Headers, "Название")

	require.Len(t, sheet.Rows, 1)
	row := sheet.Rows[0]
	assert.Equal(t, "JN-104_32", row[0])
	assert.Equal(t, "987654", row[1])
	assert.Equal(t, "3500", row[2])
	assert.Equal(t, "2890", row[3])
	assert.Equal(t, "", row[4]) // unknown discount stays empty, never "0"
	assert.Equal(t, "2500", row[5])
}

func TestFullSheetCoversEveryProduct(t *testing.T) {
	repo := newMemProductRepo()
	seedExportFixture(t, repo)
	svc := NewExportService(repo)

	sheet, err := svc.Sheet(context.Background(), dto.ExportFull)
	require.NoError(t, err)

	assert.Len(t, sheet.Rows, 4)
	require.Equal(t, len(sheet.Headers), len(sheet.Rows[0]))

	// The WB-mapped product carries its calculated margin
	var found bool
	for _, row := range sheet.Rows {
		if row[0] == "111" {
			found = true
			assert.Equal(t, "182.86", row[len(row)-2])
		}
	}
	assert.True(t, found)
}

func TestUnknownExportTarget(t *testing.T) {
	svc := NewExportService(newMemProductRepo())
	_, err := svc.Sheet(context.Background(), dto.ExportTarget("csv"))
	assert.Error(t, err)
}

func TestParseExportTarget(t *testing.T) {
	for _, s := range []string{"wb", "ozon", "full"} {
		target, ok := dto.ParseExportTarget(s)
		assert.True(t, ok)
		assert.Equal(t, dto.ExportTarget(s), target)
	}
	_, ok := dto.ParseExportTarget("amazon")
	assert.False(t, ok)
}
