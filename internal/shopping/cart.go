package shopping

import (
	"context"

	"github.com/freshcart/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// Guard vets the quantity a cart line would hold after a mutation. It runs
// under the engine lock, so no other mutation of the same profile can change
// the line between the check and the write. A non-nil error aborts the
// mutation with nothing changed.
type Guard func(resulting int) error

// CartSnapshot is a consistent view of the cart taken under a single lock.
type CartSnapshot struct {
	Lines  []CartLine
	Total  decimal.Decimal
	Count  int
	Unique int
}

// AddToCart adds quantity units of product, merging into an existing line.
// A quantity below 1 adds a single unit. Stock is not checked here.
func (e *Engine) AddToCart(ctx context.Context, product catalog.Product, quantity int) error {
	return e.AddToCartChecked(ctx, product, quantity, nil)
}

// AddToCartChecked is AddToCart with guard consulted on the resulting line
// quantity before anything changes.
func (e *Engine) AddToCartChecked(ctx context.Context, product catalog.Product, quantity int, guard Guard) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if guard != nil {
		if err := guard(e.lineQuantityLocked(product.ID) + max(quantity, 1)); err != nil {
			return err
		}
	}
	e.addToCartLocked(product, quantity)
	return e.commitCart(ctx)
}

func (e *Engine) addToCartLocked(product catalog.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	e.metrics.IncMutation("add_to_cart")
	if i := e.cartIndex(product.ID); i >= 0 {
		e.cart[i].Quantity += quantity
		return
	}
	e.cart = append(e.cart, CartLine{Product: product.Clone(), Quantity: quantity})
}

// RemoveFromCart deletes the line for productID. Absent ids are a no-op.
func (e *Engine) RemoveFromCart(ctx context.Context, productID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.removeFromCartLocked(productID) {
		return nil
	}
	return e.commitCart(ctx)
}

func (e *Engine) removeFromCartLocked(productID string) bool {
	i := e.cartIndex(productID)
	if i < 0 {
		return false
	}
	e.metrics.IncMutation("remove_from_cart")
	e.cart = append(e.cart[:i], e.cart[i+1:]...)
	return true
}

// UpdateQuantity sets the line's quantity. A quantity of 0 or less removes
// the line. Absent ids are a no-op.
func (e *Engine) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	return e.UpdateQuantityChecked(ctx, productID, quantity, nil)
}

// UpdateQuantityChecked is UpdateQuantity with guard consulted when the line
// exists and would grow or shrink to a positive quantity.
func (e *Engine) UpdateQuantityChecked(ctx context.Context, productID string, quantity int, guard Guard) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		if !e.removeFromCartLocked(productID) {
			return nil
		}
		return e.commitCart(ctx)
	}

	i := e.cartIndex(productID)
	if i < 0 || e.cart[i].Quantity == quantity {
		return nil
	}
	if guard != nil {
		if err := guard(quantity); err != nil {
			return err
		}
	}
	e.metrics.IncMutation("update_quantity")
	e.cart[i].Quantity = quantity
	return e.commitCart(ctx)
}

// ClearCart empties the cart.
func (e *Engine) ClearCart(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.IncMutation("clear_cart")
	e.cart = []CartLine{}
	return e.commitCart(ctx)
}

// CartTotal is the sum of price times quantity over every line.
func (e *Engine) CartTotal() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := decimal.Zero
	for _, line := range e.cart {
		total = total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// CartCount is the total number of units in the cart.
func (e *Engine) CartCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for _, line := range e.cart {
		count += line.Quantity
	}
	return count
}

// UniqueProductCount is the number of distinct products in the cart.
func (e *Engine) UniqueProductCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cart)
}

// LineQuantity is the quantity of productID in the cart, or 0.
func (e *Engine) LineQuantity(productID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lineQuantityLocked(productID)
}

func (e *Engine) lineQuantityLocked(productID string) int {
	if i := e.cartIndex(productID); i >= 0 {
		return e.cart[i].Quantity
	}
	return 0
}

// Snapshot copies the lines and their aggregates together.
func (e *Engine) Snapshot() CartSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := CartSnapshot{
		Lines:  e.cartCopyLocked(),
		Total:  decimal.Zero,
		Unique: len(e.cart),
	}
	for _, line := range e.cart {
		snap.Total = snap.Total.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		snap.Count += line.Quantity
	}
	return snap
}

// Cart returns a copy of the cart lines in insertion order.
func (e *Engine) Cart() []CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cartCopyLocked()
}

func (e *Engine) cartCopyLocked() []CartLine {
	out := make([]CartLine, len(e.cart))
	for i, line := range e.cart {
		out[i] = CartLine{Product: line.Product.Clone(), Quantity: line.Quantity}
	}
	return out
}

func (e *Engine) cartIndex(productID string) int {
	for i, line := range e.cart {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}
