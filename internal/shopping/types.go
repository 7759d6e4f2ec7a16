package shopping

import (
	"encoding/json"

	"github.com/freshcart/storefront/internal/catalog"
)

// CartLine is one product snapshot and how many units of it are in the cart.
// Quantity is always at least 1.
type CartLine struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// WishlistEntry is a saved-for-later product snapshot. It serializes as the
// bare product.
type WishlistEntry struct {
	Product catalog.Product
}

func (w WishlistEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Product)
}

func (w *WishlistEntry) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &w.Product)
}

const (
	collectionCart     = "cart"
	collectionWishlist = "wishlist"
)
