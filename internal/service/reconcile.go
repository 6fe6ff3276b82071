package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/agoodis/product-management-system/internal/feed"
	"github.com/agoodis/product-management-system/internal/model"
	"github.com/agoodis/product-management-system/internal/ownership"
	"github.com/agoodis/product-management-system/internal/repository"
)

// Outcome classifies one successfully merged row.
type Outcome int

const (
	OutcomeAdded Outcome = iota + 1
	OutcomeUpdated
)

// AuthorityError marks a row that references a product it has no authority to
// create, typically a bare price row for an unknown barcode. Counted as a
// failed row; the run continues and the store is left untouched.
type AuthorityError struct {
	Source model.Source
	Key    string
}

func (e *AuthorityError) Error() string {
	return fmt.Sprintf("source %q may not create product for identity %q", e.Source, e.Key)
}

// Reconciler merges one normalized row into the canonical store under the
// field-ownership rules. Each row is all-or-nothing: a mutator error rolls
// back the whole product mutation.
type Reconciler struct {
	products repository.ProductRepository
}

func NewReconciler(products repository.ProductRepository) *Reconciler {
	return &Reconciler{products: products}
}

// Reconcile processes one raw row for src. Row-level failures come back as
// *feed.ValidationError or *AuthorityError; anything else is an
// infrastructure error the orchestrator also counts against the row.
func (r *Reconciler) Reconcile(ctx context.Context, src model.Source, raw feed.Row) (Outcome, error) {
	normalized, err := feed.Normalize(src, raw)
	if err != nil {
		return 0, err
	}

	switch row := normalized.(type) {
	case feed.ERPRow:
		return r.applyERP(ctx, src, row)
	case feed.BarcodeMapRow:
		return r.applyBarcodeMap(ctx, src, row)
	case feed.PriceRow:
		return r.applyPrice(ctx, src, row)
	}
	return 0, &feed.ValidationError{Field: "row", Reason: "unrecognized row shape"}
}

func (r *Reconciler) applyERP(ctx context.Context, src model.Source, row feed.ERPRow) (Outcome, error) {
	var outcome Outcome
	_, err := r.products.Upsert(ctx, row.Barcode, func(p *model.Product, created bool) error {
		outcome = outcomeFor(created)

		if err := applyString(src, ownership.FieldArticle1C, row.Article1C, &p.Article1C); err != nil {
			return err
		}
		if err := applyString(src, ownership.FieldName, row.Name, &p.Name); err != nil {
			return err
		}
		if err := applyString(src, ownership.FieldBrand, row.Brand, &p.Brand); err != nil {
			return err
		}
		if err := applyString(src, ownership.FieldProductCategory, row.ProductCategory, &p.ProductCategory); err != nil {
			return err
		}
		if err := applyString(src, ownership.FieldSize, row.Size, &p.Size); err != nil {
			return err
		}
		if err := applyString(src, ownership.FieldSeason, row.Season, &p.Season); err != nil {
			return err
		}
		if err := applyString(src, ownership.FieldCollection, row.Collection, &p.Collection); err != nil {
			return err
		}
		if err := applyInt(src, ownership.FieldStockTotal, row.StockTotal, &p.StockTotal); err != nil {
			return err
		}
		if err := applyDecimal(src, ownership.FieldPurchasePrice, row.PurchasePrice, &p.PurchasePrice); err != nil {
			return err
		}

		Recalculate(p)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

func (r *Reconciler) applyBarcodeMap(ctx context.Context, src model.Source, row feed.BarcodeMapRow) (Outcome, error) {
	var outcome Outcome
	_, err := r.products.Upsert(ctx, row.Barcode, func(p *model.Product, created bool) error {
		if created && !src.CanCreate() {
			return &AuthorityError{Source: src, Key: row.Barcode}
		}
		outcome = outcomeFor(created)

		entry := p.Entry(row.Marketplace)
		if err := applyStringPresent(src, ownership.FieldMPArticle, row.Article, &entry.Article); err != nil {
			return err
		}
		if err := applyStringPresent(src, ownership.FieldMPExternalID, row.ExternalID, &entry.ExternalID); err != nil {
			return err
		}
		if err := applyStringPresent(src, ownership.FieldMPSKU, row.SKU, &entry.SKU); err != nil {
			return err
		}

		Recalculate(p)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

func (r *Reconciler) applyPrice(ctx context.Context, src model.Source, row feed.PriceRow) (Outcome, error) {
	barcode := row.Barcode
	if barcode == "" {
		// Feed keyed by the marketplace's own identifier; resolve it against
		// identifiers already stored by a barcode-mapping import.
		found, err := r.products.FindBarcodeByExternalID(ctx, row.Marketplace, row.ExternalID)
		if errors.Is(err, repository.ErrNotFound) {
			return 0, &AuthorityError{Source: src, Key: row.ExternalID}
		}
		if err != nil {
			return 0, err
		}
		barcode = found
	}

	var outcome Outcome
	_, err := r.products.Upsert(ctx, barcode, func(p *model.Product, created bool) error {
		if created {
			// Bare price rows cannot originate a product; rolling back here
			// leaves the store untouched.
			return &AuthorityError{Source: src, Key: barcode}
		}
		outcome = outcomeFor(created)

		entry := p.Entry(row.Marketplace)
		if err := applyDecimalPtr(src, ownership.FieldMPCurrentPrice, row.CurrentPrice, &entry.CurrentPrice); err != nil {
			return err
		}
		if err := applyDecimalPtr(src, ownership.FieldMPMinPrice, row.MinPrice, &entry.MinPrice); err != nil {
			return err
		}
		if err := applyDecimalPtr(src, ownership.FieldMPPriceBeforeDiscount, row.PriceBeforeDiscount, &entry.PriceBeforeDiscount); err != nil {
			return err
		}
		if err := applyDecimalPtr(src, ownership.FieldMPDiscountPercent, row.DiscountPercent, &entry.DiscountPercent); err != nil {
			return err
		}

		Recalculate(p)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

func outcomeFor(created bool) Outcome {
	if created {
		return OutcomeAdded
	}
	return OutcomeUpdated
}

// ── Ownership-driven field application ───────────────────────────────────────
// Every write goes through ownership.Resolve; a missing table entry surfaces
// as a configuration error and aborts the row mutation.

func applyString(src model.Source, f ownership.Field, incoming string, target *string) error {
	act, err := ownership.Resolve(src, f)
	if err != nil {
		return err
	}
	switch act {
	case ownership.Overwrite:
		*target = incoming
	case ownership.OverwriteIfPresent:
		if incoming != "" {
			*target = incoming
		}
	}
	return nil
}

// applyStringPresent treats "" as absent even under Overwrite, matching the
// marketplace subtree semantics where a partial sheet must not erase ids.
func applyStringPresent(src model.Source, f ownership.Field, incoming string, target *string) error {
	if incoming == "" {
		_, err := ownership.Resolve(src, f)
		return err
	}
	return applyString(src, f, incoming, target)
}

func applyInt(src model.Source, f ownership.Field, incoming int, target *int) error {
	act, err := ownership.Resolve(src, f)
	if err != nil {
		return err
	}
	if act == ownership.Overwrite || act == ownership.OverwriteIfPresent {
		*target = incoming
	}
	return nil
}

func applyDecimal(src model.Source, f ownership.Field, incoming decimal.Decimal, target *decimal.Decimal) error {
	act, err := ownership.Resolve(src, f)
	if err != nil {
		return err
	}
	if act == ownership.Overwrite || act == ownership.OverwriteIfPresent {
		*target = incoming
	}
	return nil
}

func applyDecimalPtr(src model.Source, f ownership.Field, incoming *decimal.Decimal, target **decimal.Decimal) error {
	act, err := ownership.Resolve(src, f)
	if err != nil {
		return err
	}
	switch act {
	case ownership.Overwrite:
		*target = incoming
	case ownership.OverwriteIfPresent:
		if incoming != nil {
			*target = incoming
		}
	}
	return nil
}
