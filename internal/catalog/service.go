package catalog

import (
	"context"
	"time"

	"github.com/freshcart/storefront/pkg/logger"
	"github.com/freshcart/storefront/pkg/metrics"
	"github.com/freshcart/storefront/pkg/pagination"
)

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Source          Source
	Logger          *logger.Logger
	Metrics         *metrics.ShoppingMetrics
	FetchLimit      int
	DefaultPageSize int
	MaxPageSize     int
}

// Service fetches the resident product set and runs queries over it.
type Service struct {
	source          Source
	logg            *logger.Logger
	metrics         *metrics.ShoppingMetrics
	fetchLimit      int
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// BrowseResult is one page of a query plus facets of the full product set.
type BrowseResult struct {
	Page   Page   `json:"page"`
	Facets Facets `json:"facets"`
}

// NewService builds a catalog service. Source is required.
func NewService(params ServiceParams) *Service {
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		source:          params.Source,
		logg:            logg,
		metrics:         params.Metrics,
		fetchLimit:      params.FetchLimit,
		defaultPageSize: pagination.NormalizePageSize(params.DefaultPageSize, pagination.DefaultPageSize, 0),
		maxPageSize:     params.MaxPageSize,
		now:             time.Now,
	}
}

// Products returns the resident product set.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return s.source.ListProducts(ctx, ListOptions{Limit: s.fetchLimit})
}

// Product loads a single product by id.
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	return s.source.GetProduct(ctx, id)
}

// Browse queries the resident set and cuts the requested page.
func (s *Service) Browse(ctx context.Context, criteria Criteria, state PageState) (BrowseResult, error) {
	products, err := s.Products(ctx)
	if err != nil {
		s.logg.Error(ctx, "catalog fetch failed", err)
		return BrowseResult{}, err
	}

	start := s.now()
	results := Query(products, criteria)
	s.metrics.ObserveQuery(criteria.Sort.OrDefault().String(), s.now().Sub(start), len(results))

	state.PageSize = pagination.NormalizePageSize(state.PageSize, s.defaultPageSize, s.maxPageSize)
	return BrowseResult{
		Page:   Paginate(results, state),
		Facets: BuildFacets(products),
	}, nil
}

// Facets summarises the resident set.
func (s *Service) Facets(ctx context.Context) (Facets, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return Facets{}, err
	}
	return BuildFacets(products), nil
}
