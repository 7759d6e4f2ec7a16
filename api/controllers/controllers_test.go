package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/freshcart/storefront/api/middleware"
	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/internal/checkout"
	"github.com/freshcart/storefront/internal/shopping"
	"github.com/freshcart/storefront/pkg/kvstore"
	"github.com/freshcart/storefront/pkg/logger"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type cartBody struct {
	Items []struct {
		Product   catalog.Product `json:"product"`
		Quantity  int             `json:"quantity"`
		LineTotal string          `json:"line_total"`
	} `json:"items"`
	Total          string `json:"total"`
	Count          int    `json:"count"`
	UniqueProducts int    `json:"unique_products"`
	Quote          struct {
		FreeDelivery bool `json:"free_delivery"`
	} `json:"quote"`
}

func seedProducts() []catalog.Product {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return []catalog.Product{
		{ID: "milk", Name: "Toned Milk", Category: "dairy", Brand: "Amul", Price: decimal.NewFromInt(60), Available: true, Quantity: 5, CreatedAt: created},
		{ID: "bread", Name: "Brown Bread", Category: "bakery", Brand: "Modern", Price: decimal.NewFromInt(45), Available: true, Quantity: 2, CreatedAt: created.Add(time.Hour)},
		{ID: "paneer", Name: "Paneer", Category: "dairy", Brand: "Amul", Price: decimal.NewFromInt(90), Available: false, Quantity: 0, CreatedAt: created.Add(2 * time.Hour)},
	}
}

type harness struct {
	router http.Handler
	source *catalog.StaticSource
	store  *kvstore.Memory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logg := logger.Nop()
	source := catalog.NewStaticSource(seedProducts())
	store := kvstore.NewMemory()
	registry, err := shopping.NewRegistry(shopping.RegistryParams{Store: store, Logger: logg})
	require.NoError(t, err)

	deps := ShoppingDeps{
		Registry: registry,
		Catalog:  catalog.NewService(catalog.ServiceParams{Source: source, Logger: logg, DefaultPageSize: 2, MaxPageSize: 10}),
		Policy:   checkout.DefaultPolicy(),
		Logger:   logg,
	}

	r := chi.NewRouter()
	r.Get("/products", ProductsList(deps.Catalog, logg))
	r.Get("/products/facets", ProductsFacets(deps.Catalog, logg))
	r.Get("/products/{productId}", ProductDetail(deps.Catalog, logg))
	r.Group(func(r chi.Router) {
		r.Use(middleware.Profile(logg))
		r.Get("/cart", CartGet(deps))
		r.Post("/cart/items", CartAddItem(deps))
		r.Patch("/cart/items/{productId}", CartUpdateItem(deps))
		r.Delete("/cart/items/{productId}", CartRemoveItem(deps))
		r.Delete("/cart", CartClear(deps))
		r.Get("/wishlist", WishlistList(deps))
		r.Post("/wishlist/items", WishlistAddItem(deps))
		r.Delete("/wishlist/items/{productId}", WishlistRemoveItem(deps))
		r.Post("/wishlist/items/{productId}/move-to-cart", WishlistMoveToCart(deps))
		r.Get("/checkout/quote", CheckoutQuote(deps))
	})
	return &harness{router: r, source: source, store: store}
}

func (h *harness) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.ProfileHeader, "shopper-1")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func decodeCart(t *testing.T, env envelope) cartBody {
	t.Helper()
	var body cartBody
	require.NoError(t, json.Unmarshal(env.Data, &body))
	return body
}

func TestProductsListFiltersAndPaginates(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodGet, "/products?category=dairy&sort=price_asc&page_size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Page struct {
			Items []catalog.Product `json:"items"`
			Total int               `json:"total"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Equal(t, 2, result.Page.Total)
	require.Equal(t, "milk", result.Page.Items[0].ID)
	require.Equal(t, "paneer", result.Page.Items[1].ID)
}

func TestProductsListIgnoresMalformedParams(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodGet, "/products?price_min=abc&rating_min=9&sort=bogus&page=-3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Page struct {
			Page     int `json:"page"`
			PageSize int `json:"page_size"`
			Total    int `json:"total"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Equal(t, 3, result.Page.Total)
	require.Equal(t, 1, result.Page.Page)
	require.Equal(t, 2, result.Page.PageSize)
}

func TestProductsListHugePageIsEmpty(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodGet, "/products?page=4611686018427387905&page_size=4", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Page struct {
			Items []catalog.Product `json:"items"`
			Total int               `json:"total"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Equal(t, 3, result.Page.Total)
	require.Empty(t, result.Page.Items)
}

func TestProductDetailNotFound(t *testing.T) {
	h := newHarness(t)
	rec, env := h.do(t, http.MethodGet, "/products/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCartAddUpdateRemove(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodPost, "/cart/items", `{"product_id":"milk","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	cart := decodeCart(t, env)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 2, cart.Count)
	require.Equal(t, "120.00", cart.Total)
	require.Equal(t, "120.00", cart.Items[0].LineTotal)

	rec, env = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"bread"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	cart = decodeCart(t, env)
	require.Equal(t, 3, cart.Count)
	require.Equal(t, 2, cart.UniqueProducts)

	rec, env = h.do(t, http.MethodPatch, "/cart/items/milk", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeCart(t, env)
	require.Len(t, cart.Items, 1)
	require.Equal(t, "bread", cart.Items[0].Product.ID)

	rec, env = h.do(t, http.MethodDelete, "/cart/items/bread", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeCart(t, env).Items)
}

func TestCartAddRejectsOutOfStockAndOverStock(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodPost, "/cart/items", `{"product_id":"paneer","quantity":1}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "CONFLICT", env.Error.Code)

	rec, _ = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"bread","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"bread","quantity":1}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "CONFLICT", env.Error.Code)
	require.Contains(t, rec.Body.String(), `"available":2`)
}

func TestCartAddValidatesBody(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodPost, "/cart/items", `{"quantity":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, _ = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"milk","quantity":500}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRequiresProfileHeader(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartGetRefreshesSnapshots(t *testing.T) {
	h := newHarness(t)
	_, _ = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"milk","quantity":1}`)

	updated := seedProducts()
	updated[0].Price = decimal.NewFromInt(65)
	h.source.Replace(updated)

	rec, env := h.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeCart(t, env)
	require.Equal(t, "65.00", cart.Total)
}

func TestCartClear(t *testing.T) {
	h := newHarness(t)
	_, _ = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"milk","quantity":1}`)

	rec, env := h.do(t, http.MethodDelete, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeCart(t, env)
	require.Empty(t, cart.Items)
	require.Equal(t, 0, cart.Count)
}

func TestWishlistAddMoveAndRemove(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(t, http.MethodPost, "/wishlist/items", `{"product_id":"milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var wishlist struct {
		Items []catalog.Product `json:"items"`
		Count int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &wishlist))
	require.Equal(t, 1, wishlist.Count)

	_, _ = h.do(t, http.MethodPost, "/wishlist/items", `{"product_id":"milk"}`)
	_, _ = h.do(t, http.MethodPost, "/wishlist/items", `{"product_id":"bread"}`)

	rec, env = h.do(t, http.MethodPost, "/wishlist/items/milk/move-to-cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var moved struct {
		Cart     cartBody `json:"cart"`
		Wishlist struct {
			Count int `json:"count"`
		} `json:"wishlist"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &moved))
	require.Equal(t, 1, moved.Cart.Count)
	require.Equal(t, 1, moved.Wishlist.Count)

	rec, env = h.do(t, http.MethodDelete, "/wishlist/items/bread", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &wishlist))
	require.Equal(t, 0, wishlist.Count)
	require.Empty(t, wishlist.Items)
}

func TestCheckoutQuoteAppliesDeliveryFee(t *testing.T) {
	h := newHarness(t)
	_, _ = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"milk","quantity":1}`)

	rec, env := h.do(t, http.MethodGet, "/checkout/quote", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var quote struct {
		FreeDelivery bool `json:"free_delivery"`
		Formatted    struct {
			DeliveryFee string `json:"delivery_fee"`
		} `json:"formatted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &quote))
	require.False(t, quote.FreeDelivery)
	require.Equal(t, "40.00", quote.Formatted.DeliveryFee)
}

func TestCartAddConcurrentRequestsNeverExceedStock(t *testing.T) {
	h := newHarness(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"product_id":"bread","quantity":1}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(middleware.ProfileHeader, "shopper-1")
			rec := httptest.NewRecorder()
			h.router.ServeHTTP(rec, req)
			if rec.Code == http.StatusCreated {
				mu.Lock()
				created++
				mu.Unlock()
			} else if rec.Code != http.StatusConflict {
				t.Errorf("unexpected status %d: %s", rec.Code, rec.Body.String())
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 2, created)
	_, env := h.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, 2, decodeCart(t, env).Count)
}

func TestCartUpdateChecksStockAndIgnoresUnknownIDs(t *testing.T) {
	h := newHarness(t)
	_, _ = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"milk","quantity":1}`)

	rec, env := h.do(t, http.MethodPatch, "/cart/items/milk", `{"quantity":6}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "CONFLICT", env.Error.Code)

	rec, env = h.do(t, http.MethodPatch, "/cart/items/ghost", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, decodeCart(t, env).Count)
}

func TestWishlistMoveToCartRejectsUnavailableProduct(t *testing.T) {
	h := newHarness(t)
	rec, _ := h.do(t, http.MethodPost, "/wishlist/items", `{"product_id":"bread"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	updated := seedProducts()
	updated[1].Price = decimal.NewFromInt(70)
	updated[1].Available = false
	updated[1].Quantity = 0
	h.source.Replace(updated)

	rec, env := h.do(t, http.MethodPost, "/wishlist/items/bread/move-to-cart", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "CONFLICT", env.Error.Code)

	_, env = h.do(t, http.MethodGet, "/cart", "")
	require.Empty(t, decodeCart(t, env).Items)

	_, env = h.do(t, http.MethodGet, "/wishlist", "")
	var wishlist struct {
		Items []catalog.Product `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &wishlist))
	require.Len(t, wishlist.Items, 1)
	require.Equal(t, "70", wishlist.Items[0].Price.String())
}

func TestWishlistMoveToCartUsesFreshPriceAndStock(t *testing.T) {
	h := newHarness(t)
	_, _ = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"bread","quantity":1}`)
	_, _ = h.do(t, http.MethodPost, "/wishlist/items", `{"product_id":"bread"}`)

	updated := seedProducts()
	updated[1].Price = decimal.NewFromInt(50)
	h.source.Replace(updated)

	rec, env := h.do(t, http.MethodPost, "/wishlist/items/bread/move-to-cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var moved struct {
		Cart cartBody `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &moved))
	require.Equal(t, 2, moved.Cart.Count)
	require.Equal(t, "100.00", moved.Cart.Total)

	_, _ = h.do(t, http.MethodPost, "/wishlist/items", `{"product_id":"bread"}`)
	rec, env = h.do(t, http.MethodPost, "/wishlist/items/bread/move-to-cart", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), `"available":2`)

	rec, _ = h.do(t, http.MethodPost, "/wishlist/items/ghost/move-to-cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCartViewTotalsMatchLines(t *testing.T) {
	h := newHarness(t)
	_, _ = h.do(t, http.MethodPost, "/cart/items", `{"product_id":"milk","quantity":3}`)
	rec, env := h.do(t, http.MethodPost, "/cart/items", `{"product_id":"bread","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	cart := decodeCart(t, env)
	count := 0
	sum := decimal.Zero
	for _, item := range cart.Items {
		count += item.Quantity
		lineTotal, err := decimal.NewFromString(item.LineTotal)
		require.NoError(t, err)
		sum = sum.Add(lineTotal)
	}
	require.Equal(t, count, cart.Count)
	require.Equal(t, len(cart.Items), cart.UniqueProducts)
	require.Equal(t, checkout.FormatAmount(sum), cart.Total)
}
