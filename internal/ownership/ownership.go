// Package ownership is the single source of truth for merge conflicts: a pure,
// total mapping from (source, field) to the action a merge may take. Every
// field the pipeline can write must have an entry for every source; a missing
// entry is a configuration error surfaced at startup, never a silent skip.
package ownership

import (
	"fmt"

	"github.com/agoodis/product-management-system/internal/model"
)

// Action is what a source may do to one target field.
type Action int

const (
	// Ignore: the source has no authority over this field.
	Ignore Action = iota
	// Overwrite: the source always replaces the stored value.
	Overwrite
	// OverwriteIfPresent: replace only when the incoming value is non-null, so
	// a partial feed never nulls out a previously known value.
	OverwriteIfPresent
)

func (a Action) String() string {
	switch a {
	case Overwrite:
		return "overwrite"
	case OverwriteIfPresent:
		return "overwrite-if-present"
	default:
		return "ignore"
	}
}

// Field names one writable slot of the canonical product. Marketplace entry
// fields are shared across marketplaces; which entry they land in is decided
// by the source's marketplace tag, so the table stays per-field, not per-slot.
type Field string

const (
	FieldArticle1C       Field = "article_1c"
	FieldName            Field = "name"
	FieldBrand           Field = "brand"
	FieldProductCategory Field = "product_category"
	FieldSize            Field = "size"
	FieldSeason          Field = "season"
	FieldCollection      Field = "collection"
	FieldStockTotal      Field = "stock_total"
	FieldPurchasePrice   Field = "purchase_price"
	FieldAvgDailySales   Field = "avg_daily_sales"

	FieldMPArticle             Field = "marketplace.article"
	FieldMPExternalID          Field = "marketplace.external_id"
	FieldMPSKU                 Field = "marketplace.sku"
	FieldMPCurrentPrice        Field = "marketplace.current_price"
	FieldMPMinPrice            Field = "marketplace.min_price"
	FieldMPPriceBeforeDiscount Field = "marketplace.price_before_discount"
	FieldMPDiscountPercent     Field = "marketplace.discount_percent"
)

// allFields is the closed set the resolver must be total over.
var allFields = []Field{
	FieldArticle1C, FieldName, FieldBrand, FieldProductCategory,
	FieldSize, FieldSeason, FieldCollection,
	FieldStockTotal, FieldPurchasePrice, FieldAvgDailySales,
	FieldMPArticle, FieldMPExternalID, FieldMPSKU,
	FieldMPCurrentPrice, FieldMPMinPrice,
	FieldMPPriceBeforeDiscount, FieldMPDiscountPercent,
}

// allSources is every source the pipeline accepts rows from.
var allSources = []model.Source{
	model.SourceERP,
	model.SourceWBBarcodes, model.SourceWBPrices, model.SourceWBMinPrices,
	model.SourceOzonBarcodes, model.SourceOzonPrices,
	model.SourceManual,
}

// erpScalar are the product fields the ERP feed has full authority over.
var erpScalar = map[Field]Action{
	FieldArticle1C:       Overwrite,
	FieldName:            Overwrite,
	FieldBrand:           Overwrite,
	FieldProductCategory: Overwrite,
	FieldSize:            Overwrite,
	FieldSeason:          Overwrite,
	FieldCollection:      Overwrite,
	FieldStockTotal:      Overwrite,
	FieldPurchasePrice:   Overwrite,
}

// table is keyed by source; fields missing from a source's row default to
// Ignore only through an explicit entry, see Validate.
var table = map[model.Source]map[Field]Action{
	model.SourceERP: merge(erpScalar, map[Field]Action{
		FieldAvgDailySales:         Ignore,
		FieldMPArticle:             Ignore,
		FieldMPExternalID:          Ignore,
		FieldMPSKU:                 Ignore,
		FieldMPCurrentPrice:        Ignore,
		FieldMPMinPrice:            Ignore,
		FieldMPPriceBeforeDiscount: Ignore,
		FieldMPDiscountPercent:     Ignore,
	}),

	model.SourceWBBarcodes:   marketplaceSource(FieldMPArticle, FieldMPExternalID),
	model.SourceWBPrices:     marketplaceSource(FieldMPCurrentPrice, FieldMPDiscountPercent),
	model.SourceWBMinPrices:  marketplaceSource(FieldMPMinPrice),
	model.SourceOzonBarcodes: marketplaceSource(FieldMPArticle, FieldMPExternalID, FieldMPSKU),
	model.SourceOzonPrices: marketplaceSource(
		FieldMPPriceBeforeDiscount, FieldMPCurrentPrice,
		FieldMPDiscountPercent, FieldMPMinPrice,
	),

	// Manual edits have full authority over scalar fields, applied only to the
	// fields actually present in the patch request.
	model.SourceManual: merge(scalarIfPresent(), map[Field]Action{
		FieldMPArticle:             Ignore,
		FieldMPExternalID:          Ignore,
		FieldMPSKU:                 Ignore,
		FieldMPCurrentPrice:        Ignore,
		FieldMPMinPrice:            Ignore,
		FieldMPPriceBeforeDiscount: Ignore,
		FieldMPDiscountPercent:     Ignore,
	}),
}

func merge(a, b map[Field]Action) map[Field]Action {
	out := make(map[Field]Action, len(a)+len(b))
	for f, act := range a {
		out[f] = act
	}
	for f, act := range b {
		out[f] = act
	}
	return out
}

// scalarIfPresent gives a source authority over every scalar field but only
// when the incoming value is present (partial-update semantics).
func scalarIfPresent() map[Field]Action {
	out := make(map[Field]Action, len(erpScalar)+1)
	for f := range erpScalar {
		out[f] = OverwriteIfPresent
	}
	out[FieldAvgDailySales] = OverwriteIfPresent
	return out
}

// marketplaceSource builds a row owning only the named marketplace entry
// fields, each with overwrite-if-present semantics, ignoring everything else.
func marketplaceSource(owned ...Field) map[Field]Action {
	out := make(map[Field]Action, len(allFields))
	for _, f := range allFields {
		out[f] = Ignore
	}
	for _, f := range owned {
		out[f] = OverwriteIfPresent
	}
	return out
}

// ConfigurationError reports a hole in the ownership table. It is fatal: the
// pipeline refuses to start rather than silently skipping a field.
type ConfigurationError struct {
	Source model.Source
	Field  Field
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ownership table has no entry for source %q, field %q", e.Source, e.Field)
}

// Resolve maps (source, field) to its merge action.
func Resolve(src model.Source, f Field) (Action, error) {
	byField, ok := table[src]
	if !ok {
		return Ignore, &ConfigurationError{Source: src, Field: f}
	}
	act, ok := byField[f]
	if !ok {
		return Ignore, &ConfigurationError{Source: src, Field: f}
	}
	return act, nil
}

// Validate checks the table is total: every source has an entry for every
// field. Called once at startup; a non-nil error must abort boot.
func Validate() error {
	for _, src := range allSources {
		byField, ok := table[src]
		if !ok {
			return &ConfigurationError{Source: src}
		}
		for _, f := range allFields {
			if _, ok := byField[f]; !ok {
				return &ConfigurationError{Source: src, Field: f}
			}
		}
	}
	return nil
}
