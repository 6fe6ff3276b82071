package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical merged record for one physical SKU across all
// sources, keyed by barcode. Scalar fields are ERP-owned; the marketplace
// subtrees are owned by their respective marketplace feeds.
type Product struct {
	Barcode         string `gorm:"primaryKey"`
	Article1C       string `gorm:"column:article_1c;index"`
	Name            string `gorm:"index;not null"`
	Brand           string `gorm:"index"`
	ProductCategory string `gorm:"index"`
	Size            string
	Season          string
	Collection      string

	StockTotal    int             `gorm:"not null;default:0"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// AvgDailySales is an externally supplied demand signal (manual edit or a
	// future analytics feed). Turnover is derived from it; nil means unknown.
	AvgDailySales *decimal.Decimal `gorm:"type:decimal(12,4)"`

	// Marketplaces holds exactly one entry per marketplace id. Persisted as a
	// JSONB map so the uniqueness invariant and O(1) lookup come for free.
	Marketplaces MarketplaceSet `gorm:"type:jsonb;not null;default:'{}'"`

	// Calculated is derived data, never written by any import source.
	Calculated Calculated `gorm:"type:jsonb;not null;default:'{}'"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Product) TableName() string { return "products" }

// Entry returns the marketplace entry for m, creating it on first use so that
// merge code can write through the returned pointer.
func (p *Product) Entry(m Marketplace) *MarketplaceEntry {
	if p.Marketplaces == nil {
		p.Marketplaces = MarketplaceSet{}
	}
	e, ok := p.Marketplaces[m]
	if !ok {
		e = &MarketplaceEntry{Marketplace: m}
		p.Marketplaces[m] = e
	}
	return e
}

// MarketplaceEntry is the per-marketplace identifier/price subtree.
// Nil price pointers mean "unknown", never zero.
type MarketplaceEntry struct {
	Marketplace Marketplace `json:"marketplace"`
	Article     string      `json:"article,omitempty"`
	ExternalID  string      `json:"external_id,omitempty"`
	SKU         string      `json:"sku,omitempty"`

	PriceBeforeDiscount *decimal.Decimal `json:"price_before_discount,omitempty"`
	CurrentPrice        *decimal.Decimal `json:"current_price,omitempty"`
	DiscountPercent     *decimal.Decimal `json:"discount_percent,omitempty"`
	MinPrice            *decimal.Decimal `json:"min_price,omitempty"`
}

// MarketplaceSet maps marketplace id → entry. Stored as a single JSONB column
// so every product mutation is one atomic row write.
type MarketplaceSet map[Marketplace]*MarketplaceEntry

func (s MarketplaceSet) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

func (s *MarketplaceSet) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = MarketplaceSet{}
		return nil
	}
	return fmt.Errorf("marketplace set: unsupported scan type %T", src)
}

func (MarketplaceSet) GormDataType() string { return "jsonb" }

// Calculated holds derived commercial metrics. Nil means "not computable"
// and renders as a placeholder, never as zero.
type Calculated struct {
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty"`
	TurnoverRate  *decimal.Decimal `json:"turnover_rate,omitempty"`
}

func (c Calculated) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Calculated) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = Calculated{}
		return nil
	}
	return fmt.Errorf("calculated data: unsupported scan type %T", src)
}

func (Calculated) GormDataType() string { return "jsonb" }
