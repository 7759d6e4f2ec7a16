package shopping

import (
	"context"

	"github.com/freshcart/storefront/internal/catalog"
	"go.uber.org/multierr"
)

// Refresh replaces cart and wishlist snapshots with the matching products from
// a fresh catalog read. Items missing from products keep their old snapshot.
// Only collections that changed are committed. It returns how many snapshots
// were replaced.
func (e *Engine) Refresh(ctx context.Context, products []catalog.Product) (int, error) {
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cartChanged, wishlistChanged := 0, 0
	for i := range e.cart {
		if fresh, ok := byID[e.cart[i].Product.ID]; ok && !sameSnapshot(e.cart[i].Product, fresh) {
			e.cart[i].Product = fresh.Clone()
			cartChanged++
		}
	}
	for i := range e.wishlist {
		if fresh, ok := byID[e.wishlist[i].Product.ID]; ok && !sameSnapshot(e.wishlist[i].Product, fresh) {
			e.wishlist[i].Product = fresh.Clone()
			wishlistChanged++
		}
	}

	var err error
	if cartChanged > 0 {
		e.metrics.IncMutation("refresh_cart")
		err = multierr.Append(err, e.commitCart(ctx))
	}
	if wishlistChanged > 0 {
		e.metrics.IncMutation("refresh_wishlist")
		err = multierr.Append(err, e.commitWishlist(ctx))
	}
	return cartChanged + wishlistChanged, err
}

func sameSnapshot(a, b catalog.Product) bool {
	if a.ID != b.ID ||
		a.Name != b.Name ||
		a.Description != b.Description ||
		!a.Price.Equal(b.Price) ||
		a.Category != b.Category ||
		a.Brand != b.Brand ||
		a.Available != b.Available ||
		a.Quantity != b.Quantity ||
		a.ImageURL != b.ImageURL ||
		!a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	if a.Rating == nil || b.Rating == nil {
		return a.Rating == nil && b.Rating == nil
	}
	return *a.Rating == *b.Rating
}
