package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/freshcart/storefront/api/responses"
	"github.com/freshcart/storefront/api/validators"
	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/internal/shopping"
	pkgerrors "github.com/freshcart/storefront/pkg/errors"
)

// maxLineQuantity caps a single request; stock is checked separately.
const maxLineQuantity = 99

type addCartItemPayload struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
}

type updateCartItemPayload struct {
	Quantity *int `json:"quantity" validate:"required,lte=99"`
}

func decimalFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}

// CartGet returns the profile's cart with aggregates and a delivery quote.
func CartGet(deps ShoppingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		engine, release, err := deps.engine(ctx)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		defer release()
		deps.refresh(ctx, engine)
		responses.WriteSuccess(w, deps.cartView(engine))
	}
}

// CartAddItem adds units of a catalog product. The product must be in stock
// and the resulting line must not exceed stock on hand.
func CartAddItem(deps ShoppingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload addCartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		engine, release, err := deps.engine(ctx)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		defer release()
		product, err := deps.lookupProduct(r, payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		if err := engine.AddToCartChecked(ctx, product, payload.Quantity, stockGuard(product)); err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, deps.cartView(engine))
	}
}

// CartUpdateItem sets a line's quantity; 0 removes the line.
func CartUpdateItem(deps ShoppingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload updateCartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}

		engine, release, err := deps.engine(ctx)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		defer release()
		productID := chi.URLParam(r, "productId")
		quantity := *payload.Quantity

		var guard shopping.Guard
		if quantity > 0 {
			product, err := deps.lookupProduct(r, productID)
			switch {
			case err == nil:
				guard = stockGuard(product)
			case pkgerrors.IsCode(err, pkgerrors.CodeNotFound) && engine.LineQuantity(productID) == 0:
				// unknown everywhere; the update is a no-op
			default:
				responses.WriteError(ctx, deps.Logger, w, err)
				return
			}
		}

		if err := engine.UpdateQuantityChecked(ctx, productID, quantity, guard); err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		responses.WriteSuccess(w, deps.cartView(engine))
	}
}

// CartRemoveItem drops a line. Unknown ids succeed.
func CartRemoveItem(deps ShoppingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		engine, release, err := deps.engine(ctx)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		defer release()
		if err := engine.RemoveFromCart(ctx, chi.URLParam(r, "productId")); err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		responses.WriteSuccess(w, deps.cartView(engine))
	}
}

// CartClear empties the cart.
func CartClear(deps ShoppingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		engine, release, err := deps.engine(ctx)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		defer release()
		if err := engine.ClearCart(ctx); err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		responses.WriteSuccess(w, deps.cartView(engine))
	}
}

func (d ShoppingDeps) lookupProduct(r *http.Request, productID string) (catalog.Product, error) {
	if d.Catalog == nil {
		return catalog.Product{}, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable")
	}
	return d.Catalog.Product(r.Context(), productID)
}

// stockGuard checks the resulting line quantity against product under the
// engine lock, so concurrent requests for one profile cannot both pass.
func stockGuard(product catalog.Product) shopping.Guard {
	return func(resulting int) error {
		return checkStock(product, resulting)
	}
}

func checkStock(product catalog.Product, wanted int) error {
	if !product.InStock() {
		return pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock").
			WithDetails(map[string]any{"product_id": product.ID})
	}
	if wanted > product.Quantity || wanted > maxLineQuantity {
		limit := min(product.Quantity, maxLineQuantity)
		return pkgerrors.Newf(pkgerrors.CodeConflict, "only %d units available", limit).
			WithDetails(map[string]any{"product_id": product.ID, "available": limit})
	}
	return nil
}
