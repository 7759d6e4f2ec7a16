package shopping

import (
	"context"

	"github.com/freshcart/storefront/internal/catalog"
	"go.uber.org/multierr"
)

// AddToWishlist saves product unless an entry with its id already exists.
func (e *Engine) AddToWishlist(ctx context.Context, product catalog.Product) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.wishlistIndex(product.ID) >= 0 {
		return nil
	}
	e.metrics.IncMutation("add_to_wishlist")
	e.wishlist = append(e.wishlist, WishlistEntry{Product: product.Clone()})
	return e.commitWishlist(ctx)
}

// RemoveFromWishlist deletes the entry for productID. Absent ids are a no-op.
func (e *Engine) RemoveFromWishlist(ctx context.Context, productID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.removeFromWishlistLocked(productID) {
		return nil
	}
	return e.commitWishlist(ctx)
}

func (e *Engine) removeFromWishlistLocked(productID string) bool {
	i := e.wishlistIndex(productID)
	if i < 0 {
		return false
	}
	e.metrics.IncMutation("remove_from_wishlist")
	e.wishlist = append(e.wishlist[:i], e.wishlist[i+1:]...)
	return true
}

// IsInWishlist reports whether productID is saved.
func (e *Engine) IsInWishlist(productID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wishlistIndex(productID) >= 0
}

// MoveToCart adds one unit of the saved product to the cart and removes it
// from the wishlist. Absent ids are a no-op. Both collections change in
// memory even if a commit fails.
func (e *Engine) MoveToCart(ctx context.Context, productID string) error {
	return e.MoveToCartChecked(ctx, productID, nil)
}

// MoveToCartChecked is MoveToCart with guard consulted on the resulting cart
// line quantity. A rejected move leaves both collections untouched.
func (e *Engine) MoveToCartChecked(ctx context.Context, productID string, guard Guard) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.wishlistIndex(productID)
	if i < 0 {
		return nil
	}
	entry := e.wishlist[i]
	if guard != nil {
		if err := guard(e.lineQuantityLocked(productID) + 1); err != nil {
			return err
		}
	}

	e.addToCartLocked(entry.Product, 1)
	e.removeFromWishlistLocked(productID)
	e.metrics.IncMutation("move_to_cart")

	return multierr.Append(e.commitCart(ctx), e.commitWishlist(ctx))
}

// Wishlist returns a copy of the entries in insertion order.
func (e *Engine) Wishlist() []WishlistEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]WishlistEntry, len(e.wishlist))
	for i, entry := range e.wishlist {
		out[i] = WishlistEntry{Product: entry.Product.Clone()}
	}
	return out
}

func (e *Engine) wishlistIndex(productID string) int {
	for i, entry := range e.wishlist {
		if entry.Product.ID == productID {
			return i
		}
	}
	return -1
}
