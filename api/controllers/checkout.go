package controllers

import (
	"net/http"

	"github.com/freshcart/storefront/api/responses"
)

// CheckoutQuote prices the current cart including the delivery surcharge.
func CheckoutQuote(deps ShoppingDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		engine, release, err := deps.engine(ctx)
		if err != nil {
			responses.WriteError(ctx, deps.Logger, w, err)
			return
		}
		defer release()
		deps.refresh(ctx, engine)
		responses.WriteSuccess(w, deps.Policy.QuoteCart(engine))
	}
}
