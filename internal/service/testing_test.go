package service

// In-memory fakes shared by the service tests. memProductRepo mirrors the
// transactional contract of the real repository: the mutator runs against a
// copy and the copy is committed only when the mutator returns nil.

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/agoodis/product-management-system/internal/dto"
	"github.com/agoodis/product-management-system/internal/model"
	"github.com/agoodis/product-management-system/internal/repository"
)

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[string]*model.Product)}
}

func cloneProduct(p *model.Product) *model.Product {
	cp := *p
	cp.Marketplaces = make(model.MarketplaceSet, len(p.Marketplaces))
	for id, e := range p.Marketplaces {
		ec := *e
		cp.Marketplaces[id] = &ec
	}
	return &cp
}

func (r *memProductRepo) Get(_ context.Context, barcode string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[barcode]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *memProductRepo) Upsert(_ context.Context, barcode string, mutate func(p *model.Product, created bool) error) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[barcode]
	var work *model.Product
	if ok {
		work = cloneProduct(stored)
	} else {
		work = &model.Product{Barcode: barcode, Marketplaces: model.MarketplaceSet{}}
	}

	if err := mutate(work, !ok); err != nil {
		return nil, err
	}
	r.products[barcode] = work
	return cloneProduct(work), nil
}

func (r *memProductRepo) FindBarcodeByExternalID(_ context.Context, m model.Marketplace, externalID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if e, ok := p.Marketplaces[m]; ok && e.ExternalID == externalID && externalID != "" {
			return p.Barcode, nil
		}
	}
	return "", repository.ErrNotFound
}

func (r *memProductRepo) sorted() []*model.Product {
	out := make([]*model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Barcode < out[j].Barcode
	})
	return out
}

func (r *memProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []model.Product
	for _, p := range r.sorted() {
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.Name), s) &&
				!strings.Contains(strings.ToLower(p.Barcode), s) &&
				!strings.Contains(strings.ToLower(p.Article1C), s) {
				continue
			}
		}
		if filter.Brand != "" && p.Brand != filter.Brand {
			continue
		}
		if filter.ProductCategory != "" && p.ProductCategory != filter.ProductCategory {
			continue
		}
		matched = append(matched, *cloneProduct(p))
	}

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memProductRepo) DistinctBrands(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, p := range r.products {
		if p.Brand != "" && !seen[p.Brand] {
			seen[p.Brand] = true
			out = append(out, p.Brand)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *memProductRepo) DistinctCategories(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, p := range r.products {
		if p.ProductCategory != "" && !seen[p.ProductCategory] {
			seen[p.ProductCategory] = true
			out = append(out, p.ProductCategory)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *memProductRepo) ListLowStock(_ context.Context, threshold int) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.sorted() {
		if p.StockTotal > 0 && p.StockTotal <= threshold {
			out = append(out, *cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockTotal < out[j].StockTotal })
	return out, nil
}

func (r *memProductRepo) WalkAll(_ context.Context, fn func(p *model.Product) error) error {
	r.mu.Lock()
	snapshot := make([]*model.Product, 0, len(r.products))
	for _, p := range r.sorted() {
		snapshot = append(snapshot, cloneProduct(p))
	}
	r.mu.Unlock()

	for _, p := range snapshot {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// memImportLogRepo stores logs in memory, newest last.
type memImportLogRepo struct {
	mu   sync.Mutex
	logs []*model.ImportLog
}

func newMemImportLogRepo() *memImportLogRepo { return &memImportLogRepo{} }

func (r *memImportLogRepo) Create(_ context.Context, l *model.ImportLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = uint(len(r.logs) + 1)
	cp := *l
	r.logs = append(r.logs, &cp)
	return nil
}

func (r *memImportLogRepo) Finalize(_ context.Context, l *model.ImportLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, stored := range r.logs {
		if stored.ID == l.ID {
			cp := *l
			r.logs[i] = &cp
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memImportLogRepo) ListRecent(_ context.Context, limit int) ([]model.ImportLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ImportLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.logs[i])
	}
	return out, nil
}
