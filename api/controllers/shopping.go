package controllers

import (
	"context"

	"github.com/freshcart/storefront/api/middleware"
	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/internal/checkout"
	"github.com/freshcart/storefront/internal/shopping"
	pkgerrors "github.com/freshcart/storefront/pkg/errors"
	"github.com/freshcart/storefront/pkg/logger"
)

// ShoppingDeps groups what the cart, wishlist and checkout handlers share.
type ShoppingDeps struct {
	Registry *shopping.Registry
	Catalog  *catalog.Service
	Policy   checkout.Policy
	Logger   *logger.Logger
}

type cartLineResponse struct {
	Product   catalog.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal string          `json:"line_total"`
}

type cartResponse struct {
	Items          []cartLineResponse `json:"items"`
	Total          string             `json:"total"`
	Count          int                `json:"count"`
	UniqueProducts int                `json:"unique_products"`
	Quote          checkout.Quote     `json:"quote"`
}

type wishlistResponse struct {
	Items []catalog.Product `json:"items"`
	Count int               `json:"count"`
}

// engine leases the caller's engine; release must run once the handler is done.
func (d ShoppingDeps) engine(ctx context.Context) (*shopping.Engine, func(), error) {
	if d.Registry == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "shopping registry unavailable")
	}
	profileID := middleware.ProfileIDFromContext(ctx)
	if profileID == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	return d.Registry.Acquire(ctx, profileID)
}

// refresh re-snapshots the engine from the catalog. Failures leave the
// stored snapshots in place; reads still succeed.
func (d ShoppingDeps) refresh(ctx context.Context, engine *shopping.Engine) {
	if d.Catalog == nil {
		return
	}
	logg := d.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	products, err := d.Catalog.Products(ctx)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "snapshot refresh skipped")
		return
	}
	if _, err := engine.Refresh(ctx, products); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "snapshot refresh not persisted")
	}
}

func (d ShoppingDeps) cartView(engine *shopping.Engine) cartResponse {
	snap := engine.Snapshot()
	items := make([]cartLineResponse, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		lineTotal := line.Product.Price.Mul(decimalFromInt(line.Quantity))
		items = append(items, cartLineResponse{
			Product:   line.Product,
			Quantity:  line.Quantity,
			LineTotal: checkout.FormatAmount(lineTotal),
		})
	}
	quote := d.Policy.QuoteSnapshot(snap)
	return cartResponse{
		Items:          items,
		Total:          quote.Formatted.Subtotal,
		Count:          quote.Units,
		UniqueProducts: quote.Lines,
		Quote:          quote,
	}
}

func wishlistView(engine *shopping.Engine) wishlistResponse {
	entries := engine.Wishlist()
	items := make([]catalog.Product, 0, len(entries))
	for _, entry := range entries {
		items = append(items, entry.Product)
	}
	return wishlistResponse{Items: items, Count: len(items)}
}
