package dto

import (
	"github.com/shopspring/decimal"

	"github.com/agoodis/product-management-system/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PatchProductRequest is a manual edit over the scalar product fields. Nil
// means "leave unchanged"; the ownership rules for the manual source apply.
type PatchProductRequest struct {
	Article1C       *string          `json:"article_1c"`
	Name            *string          `json:"name"            validate:"omitempty,min=1,max=250"`
	Brand           *string          `json:"brand"`
	ProductCategory *string          `json:"product_category"`
	Size            *string          `json:"size"`
	Season          *string          `json:"season"`
	Collection      *string          `json:"collection"`
	StockTotal      *int             `json:"stock_total"     validate:"omitempty,min=0"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	AvgDailySales   *decimal.Decimal `json:"avg_daily_sales"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Search          string `form:"search"`
	Brand           string `form:"brand"`
	ProductCategory string `form:"product_category"`
	Page            int    `form:"page,default=1"       validate:"min=1"`
	PageSize        int    `form:"page_size,default=100" validate:"min=1,max=1000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MarketplaceEntryResponse struct {
	Marketplace         model.Marketplace `json:"marketplace"`
	Article             string            `json:"article,omitempty"`
	ExternalID          string            `json:"external_id,omitempty"`
	SKU                 string            `json:"sku,omitempty"`
	PriceBeforeDiscount *decimal.Decimal  `json:"price_before_discount"`
	CurrentPrice        *decimal.Decimal  `json:"current_price"`
	DiscountPercent     *decimal.Decimal  `json:"discount_percent"`
	MinPrice            *decimal.Decimal  `json:"min_price"`
}

type CalculatedResponse struct {
	MarginPercent *decimal.Decimal `json:"margin_percent"`
	TurnoverRate  *decimal.Decimal `json:"turnover_rate"`
}

type ProductResponse struct {
	Barcode         string                                       `json:"barcode"`
	Article1C       string                                       `json:"article_1c"`
	Name            string                                       `json:"name"`
	Brand           string                                       `json:"brand"`
	ProductCategory string                                       `json:"product_category"`
	Size            string                                       `json:"size"`
	Season          string                                       `json:"season"`
	Collection      string                                       `json:"collection"`
	StockTotal      int                                          `json:"stock_total"`
	PurchasePrice   decimal.Decimal                              `json:"purchase_price"`
	AvgDailySales   *decimal.Decimal                             `json:"avg_daily_sales"`
	Marketplaces    map[model.Marketplace]MarketplaceEntryResponse `json:"marketplace_data"`
	Calculated      CalculatedResponse                           `json:"calculated_data"`
}

type ProductListResponse struct {
	Items      []ProductResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// NewProductResponse flattens the canonical entity into the API shape.
func NewProductResponse(p *model.Product) ProductResponse {
	mps := make(map[model.Marketplace]MarketplaceEntryResponse, len(p.Marketplaces))
	for id, e := range p.Marketplaces {
		mps[id] = MarketplaceEntryResponse{
			Marketplace:         e.Marketplace,
			Article:             e.Article,
			ExternalID:          e.ExternalID,
			SKU:                 e.SKU,
			PriceBeforeDiscount: e.PriceBeforeDiscount,
			CurrentPrice:        e.CurrentPrice,
			DiscountPercent:     e.DiscountPercent,
			MinPrice:            e.MinPrice,
		}
	}
	return ProductResponse{
		Barcode:         p.Barcode,
		Article1C:       p.Article1C,
		Name:            p.Name,
		Brand:           p.Brand,
		ProductCategory: p.ProductCategory,
		Size:            p.Size,
		Season:          p.Season,
		Collection:      p.Collection,
		StockTotal:      p.StockTotal,
		PurchasePrice:   p.PurchasePrice,
		AvgDailySales:   p.AvgDailySales,
		Marketplaces:    mps,
		Calculated: CalculatedResponse{
			MarginPercent: p.Calculated.MarginPercent,
			TurnoverRate:  p.Calculated.TurnoverRate,
		},
	}
}
