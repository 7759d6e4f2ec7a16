package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshcart/storefront/api/responses"
	"github.com/freshcart/storefront/api/validators"
	"github.com/freshcart/storefront/internal/shopping"
)

type addWishlistItemPayload struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
}

// WishlistList returns the profile's saved products.
func WishlistList(deps ShoppingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		engine, release, err := deps.engine(ctx)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		defer release()
		deps.refresh(ctx, engine)
		responses.WriteSuccess(w, wishlistView(engine))
	}
}

// WishlistAddItem saves a catalog product. Saving twice is a no-op.
func WishlistAddItem(deps ShoppingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload addWishlistItemPayload
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
		product, err := deps.lookupProduct(r, payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		if err := engine.AddToWishlist(ctx, product); err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, wishlistView(engine))
	}
}

// WishlistRemoveItem drops a saved product. Unknown ids succeed.
func WishlistRemoveItem(deps ShoppingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		engine, release, err := deps.engine(ctx)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		defer release()
		if err := engine.RemoveFromWishlist(ctx, chi.URLParam(r, "productId")); err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		responses.WriteSuccess(w, wishlistView(engine))
	}
}

type moveToCartResponse struct {
	Cart     cartResponse     `json:"cart"`
	Wishlist wishlistResponse `json:"wishlist"`
}

// WishlistMoveToCart moves one unit of a saved product into the cart. The
// saved snapshot is refreshed first and the move obeys the same stock rules
// as adding to the cart. Unknown ids succeed.
func WishlistMoveToCart(deps ShoppingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		engine, release, err := deps.engine(ctx)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		defer release()

		productID := chi.URLParam(r, "productId")
		if !engine.IsInWishlist(productID) {
			responses.WriteSuccess(w, moveToCartView(deps, engine))
			return
		}
		deps.refresh(ctx, engine)
		product, err := deps.lookupProduct(r, productID)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		if err := engine.MoveToCartChecked(ctx, productID, stockGuard(product)); err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		responses.WriteSuccess(w, moveToCartView(deps, engine))
	}
}

func moveToCartView(deps ShoppingDeps, engine *shopping.Engine) moveToCartResponse {
	return moveToCartResponse{Cart: deps.cartView(engine), Wishlist: wishlistView(engine)}
}
