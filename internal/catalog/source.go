package catalog

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/freshcart/storefront/pkg/db/models"
	pkgerrors "github.com/freshcart/storefront/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListOptions are the light server-side filters a Source understands.
// Limit <= 0 means no limit.
type ListOptions struct {
	Category string
	Brand    string
	Limit    int
}

// Source supplies the resident product set.
type Source interface {
	ListProducts(ctx context.Context, opts ListOptions) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
}

// Repository reads and writes the products table.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListProducts returns products newest first.
func (r *Repository) ListProducts(ctx context.Context, opts ListOptions) ([]Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if opts.Category != "" {
		q = q.Where("category = ?", opts.Category)
	}
	if opts.Brand != "" {
		q = q.Where("brand = ?", opts.Brand)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var rows []models.Product
	if err := q.Order("created_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

// GetProduct loads a single product.
func (r *Repository) GetProduct(ctx context.Context, id string) (Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get product")
	}
	return FromModel(row), nil
}

// Upsert inserts products or overwrites existing rows with the same id.
func (r *Repository) Upsert(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]models.Product, 0, len(products))
	for _, p := range products {
		rows = append(rows, ToModel(p))
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert products")
	}
	return nil
}

// StaticSource serves a fixed product set from memory.
type StaticSource struct {
	mu       sync.RWMutex
	products []Product
}

// NewStaticSource copies products into a new source.
func NewStaticSource(products []Product) *StaticSource {
	return &StaticSource{products: slices.Clone(products)}
}

// Replace swaps the served product set.
func (s *StaticSource) Replace(products []Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = slices.Clone(products)
}

func (s *StaticSource) ListProducts(_ context.Context, opts ListOptions) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if opts.Category != "" && p.Category != opts.Category {
			continue
		}
		if opts.Brand != "" && p.Brand != opts.Brand {
			continue
		}
		out = append(out, p.Clone())
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *StaticSource) GetProduct(_ context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
