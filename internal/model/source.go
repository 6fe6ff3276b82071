package model

// Marketplace identifies an external sales channel attached to a product.
type Marketplace string

const (
	MarketplaceWB   Marketplace = "wb"
	MarketplaceOzon Marketplace = "ozon"
)

// Marketplaces lists every known marketplace id. Extending the set only
// requires a new constant here plus ownership table entries.
var Marketplaces = []Marketplace{MarketplaceWB, MarketplaceOzon}

// Source is the origin feed type of an import row.
type Source string

const (
	SourceERP          Source = "erp"
	SourceWBBarcodes   Source = "wb_barcodes"
	SourceWBPrices     Source = "wb_prices"
	SourceWBMinPrices  Source = "wb_min_prices"
	SourceOzonBarcodes Source = "ozon_barcodes"
	SourceOzonPrices   Source = "ozon_prices"

	// SourceManual is the internal source tag for PATCH edits from the UI.
	// It never appears in import logs.
	SourceManual Source = "manual"
)

// ImportSources are the sources accepted by the import endpoint.
var ImportSources = []Source{
	SourceERP,
	SourceWBBarcodes,
	SourceWBPrices,
	SourceWBMinPrices,
	SourceOzonBarcodes,
	SourceOzonPrices,
}

// ParseSource validates an import source tag from the URL.
func ParseSource(s string) (Source, bool) {
	for _, src := range ImportSources {
		if string(src) == s {
			return src, true
		}
	}
	return "", false
}

// MarketplaceOf returns the marketplace a source writes to, or "" for ERP/manual.
func (s Source) MarketplaceOf() Marketplace {
	switch s {
	case SourceWBBarcodes, SourceWBPrices, SourceWBMinPrices:
		return MarketplaceWB
	case SourceOzonBarcodes, SourceOzonPrices:
		return MarketplaceOzon
	}
	return ""
}

// CanCreate reports whether rows from this source are authorized to create a
// product that does not exist yet. Bare price rows cannot originate a product.
func (s Source) CanCreate() bool {
	switch s {
	case SourceERP, SourceWBBarcodes, SourceOzonBarcodes:
		return true
	}
	return false
}
