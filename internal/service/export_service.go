package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/agoodis/product-management-system/internal/dto"
	"github.com/agoodis/product-management-system/internal/model"
	"github.com/agoodis/product-management-system/internal/repository"
)

// ExportService projects canonical products into marketplace-specific flat
// row sets. Pure read side: it never mutates state, and each product is read
// as one consistent snapshot.
type ExportService interface {
	Sheet(ctx context.Context, target dto.ExportTarget) (*dto.ExportSheet, error)
}

type exportService struct {
	repo repository.ProductRepository
}

func NewExportService(repo repository.ProductRepository) ExportService {
	return &exportService{repo: repo}
}

func (s *exportService) Sheet(ctx context.Context, target dto.ExportTarget) (*dto.ExportSheet, error) {
	switch target {
	case dto.ExportWB:
		return s.wbSheet(ctx)
	case dto.ExportOzon:
		return s.ozonSheet(ctx)
	case dto.ExportFull:
		return s.fullSheet(ctx)
	}
	return nil, fmt.Errorf("unknown export target %q", target)
}

// wbSheet: WB repricing file with barcode, article, name, brand, size, stock,
// price, discount. Only products actually mapped to WB and in stock.
func (s *exportService) wbSheet(ctx context.Context) (*dto.ExportSheet, error) {
	sheet := &dto.ExportSheet{
		Name: "Wildberries",
		Headers: []string{
			"Штрихкод", "Артикул", "Название", "Бренд", "Размер",
			"Остаток", "Цена", "Скидка %",
		},
	}
	err := s.repo.WalkAll(ctx, func(p *model.Product) error {
		e, ok := p.Marketplaces[model.MarketplaceWB]
		if !ok || p.StockTotal <= 0 {
			return nil
		}
		sheet.Rows = append(sheet.Rows, []string{
			p.Barcode, e.Article, p.Name, p.Brand, p.Size,
			strconv.Itoa(p.StockTotal), decCell(e.CurrentPrice), decCell(e.DiscountPercent),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// ozonSheet: Ozon price file with SKU, product id and the price fields only.
// ERP-owned attributes (name, season, …) stay out of this projection.
func (s *exportService) ozonSheet(ctx context.Context) (*dto.ExportSheet, error) {
	sheet := &dto.ExportSheet{
		Name: "Ozon",
		Headers: []string{
			"SKU", "Ozon Product ID", "Цена до скидки", "Текущая цена",
			"Скидка %", "Минимальная цена",
		},
	}
	err := s.repo.WalkAll(ctx, func(p *model.Product) error {
		e, ok := p.Marketplaces[model.MarketplaceOzon]
		if !ok || p.StockTotal <= 0 {
			return nil
		}
		sheet.Rows = append(sheet.Rows, []string{
			e.SKU, e.ExternalID,
			decCell(e.PriceBeforeDiscount), decCell(e.CurrentPrice),
			decCell(e.DiscountPercent), decCell(e.MinPrice),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// fullSheet: the whole canonical record, one row per product, including both
// marketplace subtrees and the calculated data.
func (s *exportService) fullSheet(ctx context.Context) (*dto.ExportSheet, error) {
	sheet := &dto.ExportSheet{
		Name: "Все товары",
		Headers: []string{
			"Штрихкод", "Артикул 1С", "Название", "Бренд", "Тип товара",
			"Коллекция", "Сезон", "Размер", "Остаток общий", "Закупочная цена",
			"WB Артикул", "WB ID", "WB Цена", "WB Скидка %", "WB Мин. цена",
			"Ozon SKU", "Ozon Product ID", "Ozon Цена до скидки", "Ozon Цена",
			"Ozon Скидка %", "Ozon Мин. цена",
			"Наценка %", "Оборачиваемость",
		},
	}
	err := s.repo.WalkAll(ctx, func(p *model.Product) error {
		wb := p.Marketplaces[model.MarketplaceWB]
		ozon := p.Marketplaces[model.MarketplaceOzon]
		if wb == nil {
			wb = &model.MarketplaceEntry{}
		}
		if ozon == nil {
			ozon = &model.MarketplaceEntry{}
		}
		sheet.Rows = append(sheet.Rows, []string{
			p.Barcode, p.Article1C, p.Name, p.Brand, p.ProductCategory,
			p.Collection, p.Season, p.Size,
			strconv.Itoa(p.StockTotal), p.PurchasePrice.String(),
			wb.Article, wb.ExternalID, decCell(wb.CurrentPrice),
			decCell(wb.DiscountPercent), decCell(wb.MinPrice),
			ozon.SKU, ozon.ExternalID, decCell(ozon.PriceBeforeDiscount),
			decCell(ozon.CurrentPrice), decCell(ozon.DiscountPercent),
			decCell(ozon.MinPrice),
			decCell(p.Calculated.MarginPercent), decCell(p.Calculated.TurnoverRate),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// decCell renders a nullable decimal; absence stays an empty cell, never "0".
func decCell(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
