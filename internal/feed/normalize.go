package feed

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agoodis/product-management-system/internal/model"
)

// Column headers as they appear in the uploaded files. The ERP sheet and the
// marketplace exports are Russian-language spreadsheets; headers are matched
// verbatim after trimming. Unknown or extra columns are ignored.
const (
	colBarcode          = "ШК"
	colArticle          = "Артикул"
	colName             = "Номенклатура"
	colBrand            = "Фирма"
	colCategory         = "Тип товара"
	colCollection       = "Коллекция"
	colSeason           = "Сезон"
	colSize             = "Размер"
	colStockEsenina     = "Склад на Есенина"
	colStockEseninaSoft = "Склад на Есенина SOFT"
	colStockEseninaFar  = "Склад на Есенина Дальний"
	colPurchasePrice    = "Закупочная цена"

	colWBExternalID = "Арт ВБ"
	colCurrentPrice = "Текущая цена"
	colWBDiscount   = "Текущая скидка"
	colWBMinPrice   = "Текущая минимальная цена для применения скидки по автоакции"

	colOzonProductID = "Ozon Product ID"
	colPriceBefore   = "Цена до скидки"
	colDiscountPct   = "Скидка %"
	colMinPrice      = "Минимальная цена"
)

// Normalized is the fixed tagged union of known source-row shapes. The
// reconciler switches on the concrete type instead of dispatching on raw
// column names.
type Normalized interface{ normalizedRow() }

// ERPRow carries the ERP stock/price sheet fields. Per-warehouse stocks are
// already summed into StockTotal.
type ERPRow struct {
	Barcode         string
	Article1C       string
	Name            string
	Brand           string
	ProductCategory string
	Size            string
	Season          string
	Collection      string
	StockTotal      int
	PurchasePrice   decimal.Decimal
}

// BarcodeMapRow links a canonical barcode to a marketplace's own identifiers.
type BarcodeMapRow struct {
	Marketplace model.Marketplace
	Barcode     string
	Article     string
	ExternalID  string
	SKU         string
}

// PriceRow carries marketplace price fields. Identity is the barcode or, for
// feeds keyed by the marketplace's article, the external id. Nil decimals mean
// the cell was empty.
type PriceRow struct {
	Marketplace         model.Marketplace
	Barcode             string
	ExternalID          string
	CurrentPrice        *decimal.Decimal
	MinPrice            *decimal.Decimal
	PriceBeforeDiscount *decimal.Decimal
	DiscountPercent     *decimal.Decimal
}

func (ERPRow) normalizedRow()        {}
func (BarcodeMapRow) normalizedRow() {}
func (PriceRow) normalizedRow()      {}

// Normalize validates one raw row against its source's column map and returns
// the typed shape. Errors are always *ValidationError: the row is failed, the
// run continues.
func Normalize(src model.Source, row Row) (Normalized, error) {
	switch src {
	case model.SourceERP:
		return normalizeERP(row)
	case model.SourceWBBarcodes:
		return normalizeWBBarcodes(row)
	case model.SourceWBPrices:
		return normalizeWBPrices(row)
	case model.SourceWBMinPrices:
		return normalizeWBMinPrices(row)
	case model.SourceOzonBarcodes:
		return normalizeOzonBarcodes(row)
	case model.SourceOzonPrices:
		return normalizeOzonPrices(row)
	}
	return nil, &ValidationError{Field: "source", Reason: fmt.Sprintf("unknown source %q", src)}
}

func normalizeERP(row Row) (Normalized, error) {
	barcode := row.Get(colBarcode)
	if barcode == "" {
		return nil, &ValidationError{Field: colBarcode, Reason: "missing barcode"}
	}

	stockMain, err := parseStock(colStockEsenina, row.Get(colStockEsenina))
	if err != nil {
		return nil, err
	}
	stockSoft, err := parseStock(colStockEseninaSoft, row.Get(colStockEseninaSoft))
	if err != nil {
		return nil, err
	}
	stockFar, err := parseStock(colStockEseninaFar, row.Get(colStockEseninaFar))
	if err != nil {
		return nil, err
	}

	purchase, err := parsePrice(colPurchasePrice, row.Get(colPurchasePrice))
	if err != nil {
		return nil, err
	}
	price := decimal.Zero
	if purchase != nil {
		price = *purchase
	}

	return ERPRow{
		Barcode:         barcode,
		Article1C:       row.Get(colArticle),
		Name:            row.Get(colName),
		Brand:           row.Get(colBrand),
		ProductCategory: row.Get(colCategory),
		Size:            row.Get(colSize),
		Season:          row.Get(colSeason),
		Collection:      row.Get(colCollection),
		StockTotal:      stockMain + stockSoft + stockFar,
		PurchasePrice:   price,
	}, nil
}

func normalizeWBBarcodes(row Row) (Normalized, error) {
	barcode := row.Get(colBarcode)
	if barcode == "" {
		return nil, &ValidationError{Field: colBarcode, Reason: "missing barcode"}
	}
	return BarcodeMapRow{
		Marketplace: model.MarketplaceWB,
		Barcode:     barcode,
		Article:     row.Get(colArticle),
		ExternalID:  row.Get(colWBExternalID),
	}, nil
}

func normalizeWBPrices(row Row) (Normalized, error) {
	barcode := row.Get(colBarcode)
	if barcode == "" {
		return nil, &ValidationError{Field: colBarcode, Reason: "missing barcode"}
	}
	current, err := parsePrice(colCurrentPrice, row.Get(colCurrentPrice))
	if err != nil {
		return nil, err
	}
	discount, err := parseDiscount(colWBDiscount, row.Get(colWBDiscount))
	if err != nil {
		return nil, err
	}
	return PriceRow{
		Marketplace:     model.MarketplaceWB,
		Barcode:         barcode,
		CurrentPrice:    current,
		DiscountPercent: discount,
	}, nil
}

func normalizeWBMinPrices(row Row) (Normalized, error) {
	externalID := row.Get(colWBExternalID)
	if externalID == "" {
		return nil, &ValidationError{Field: colWBExternalID, Reason: "missing WB article"}
	}
	minPrice, err := parseMinPriceText(row.Get(colWBMinPrice))
	if err != nil {
		return nil, err
	}
	return PriceRow{
		Marketplace: model.MarketplaceWB,
		ExternalID:  externalID,
		MinPrice:    minPrice,
	}, nil
}

func normalizeOzonBarcodes(row Row) (Normalized, error) {
	barcode := row.Get(colBarcode)
	if barcode == "" {
		return nil, &ValidationError{Field: colBarcode, Reason: "missing barcode"}
	}
	article := row.Get(colArticle)
	size := row.Get(colSize)
	sku := article
	if article != "" && size != "" {
		sku = article + "_" + size
	}
	return BarcodeMapRow{
		Marketplace: model.MarketplaceOzon,
		Barcode:     barcode,
		Article:     article,
		SKU:         sku,
		ExternalID:  row.Get(colOzonProductID),
	}, nil
}

func normalizeOzonPrices(row Row) (Normalized, error) {
	barcode := row.Get(colBarcode)
	if barcode == "" {
		return nil, &ValidationError{Field: colBarcode, Reason: "missing barcode"}
	}
	before, err := parsePrice(colPriceBefore, row.Get(colPriceBefore))
	if err != nil {
		return nil, err
	}
	current, err := parsePrice(colCurrentPrice, row.Get(colCurrentPrice))
	if err != nil {
		return nil, err
	}
	discount, err := parseDiscount(colDiscountPct, row.Get(colDiscountPct))
	if err != nil {
		return nil, err
	}
	minPrice, err := parsePrice(colMinPrice, row.Get(colMinPrice))
	if err != nil {
		return nil, err
	}
	return PriceRow{
		Marketplace:         model.MarketplaceOzon,
		Barcode:             barcode,
		PriceBeforeDiscount: before,
		CurrentPrice:        current,
		DiscountPercent:     discount,
		MinPrice:            minPrice,
	}, nil
}

// ── Cell parsing ─────────────────────────────────────────────────────────────

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// cleanNumber undoes the usual spreadsheet formatting: thousands separators
// (spaces, NBSP) and comma decimal points.
func cleanNumber(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, ",", ".")
}

// parsePrice returns nil for an empty cell (absence, never zero) and rejects
// negatives and garbage.
func parsePrice(field, s string) (*decimal.Decimal, error) {
	s = cleanNumber(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: "not a number"}
	}
	if d.IsNegative() {
		return nil, &ValidationError{Field: field, Reason: "negative price"}
	}
	return &d, nil
}

func parseDiscount(field, s string) (*decimal.Decimal, error) {
	d, err := parsePrice(field, s)
	if err != nil || d == nil {
		return d, err
	}
	if d.GreaterThan(decimal.NewFromInt(100)) {
		return nil, &ValidationError{Field: field, Reason: "discount above 100%"}
	}
	return d, nil
}

func parseStock(field, s string) (int, error) {
	s = cleanNumber(s)
	if s == "" {
		return 0, nil
	}
	// ERP exports occasionally format counts as "10.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: "not a number"}
	}
	if f < 0 {
		return 0, &ValidationError{Field: field, Reason: "negative stock"}
	}
	return int(f), nil
}

// parseMinPriceText extracts the leading price from WB auto-promo cells, which
// look like "1234 (для участия в акции)" or plain numbers with stray text.
func parseMinPriceText(s string) (*decimal.Decimal, error) {
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	s = nonNumeric.ReplaceAllString(cleanNumber(s), "")
	if s == "" || s == "." {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, &ValidationError{Field: colWBMinPrice, Reason: "not a number"}
	}
	return &d, nil
}
