package shopping

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/freshcart/storefront/pkg/errors"
	"github.com/freshcart/storefront/pkg/kvstore"
	"github.com/freshcart/storefront/pkg/logger"
	"github.com/freshcart/storefront/pkg/metrics"
)

// DefaultNamespace prefixes every persisted key.
const DefaultNamespace = "fc"

// Options configures an Engine.
type Options struct {
	ProfileID string
	Namespace string
	Logger    *logger.Logger
	Metrics   *metrics.ShoppingMetrics
}

// Engine owns one profile's cart and wishlist. Every mutation is written
// through to the store before it returns. All methods are safe for concurrent
// use and apply in call order.
type Engine struct {
	mu sync.Mutex

	store       kvstore.Store
	profileID   string
	cartKey     string
	wishlistKey string
	logg        *logger.Logger
	metrics     *metrics.ShoppingMetrics

	cart        []CartLine
	wishlist    []WishlistEntry
	cartRev     int64
	wishlistRev int64
}

// CartKey is the store key holding a profile's cart.
func CartKey(namespace, profileID string) string {
	return kvstore.Key(namespaceOrDefault(namespace), collectionCart, profileID)
}

// WishlistKey is the store key holding a profile's wishlist.
func WishlistKey(namespace, profileID string) string {
	return kvstore.Key(namespaceOrDefault(namespace), collectionWishlist, profileID)
}

func namespaceOrDefault(ns string) string {
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}

// Load restores both collections from store. Missing, unreadable or corrupt
// values start empty; Load fails only when store is nil.
func Load(ctx context.Context, store kvstore.Store, opts Options) (*Engine, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	e := &Engine{
		store:       store,
		profileID:   opts.ProfileID,
		cartKey:     CartKey(opts.Namespace, opts.ProfileID),
		wishlistKey: WishlistKey(opts.Namespace, opts.ProfileID),
		logg:        logg,
		metrics:     opts.Metrics,
	}
	ctx = e.logCtx(ctx)

	var dirty bool
	if lines, rev, ok := loadCollection[CartLine](ctx, e, collectionCart, e.cartKey); ok {
		e.cart, dirty = sanitizeCart(lines)
		e.cartRev = rev
		if dirty {
			e.logg.Warn(ctx, "dropped invalid cart lines on load")
		}
	}
	if entries, rev, ok := loadCollection[WishlistEntry](ctx, e, collectionWishlist, e.wishlistKey); ok {
		e.wishlist, dirty = sanitizeWishlist(entries)
		e.wishlistRev = rev
		if dirty {
			e.logg.Warn(ctx, "dropped invalid wishlist entries on load")
		}
	}
	if e.cart == nil {
		e.cart = []CartLine{}
	}
	if e.wishlist == nil {
		e.wishlist = []WishlistEntry{}
	}
	return e, nil
}

func loadCollection[T any](ctx context.Context, e *Engine, collection, key string) ([]T, int64, bool) {
	ctx = e.logg.WithFields(ctx, map[string]any{"collection": collection, "key": key})

	raw, err := e.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		e.logg.Debug(ctx, "no persisted collection, starting empty")
		return nil, 0, false
	}
	if err != nil {
		e.metrics.IncLoadFallback(collection, "unavailable")
		e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), "persisted collection unreadable, starting empty")
		return nil, 0, false
	}

	items, rev, err := decodeCollection[T](raw)
	if err != nil {
		e.metrics.IncLoadFallback(collection, "corrupt")
		e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), "persisted collection corrupt, starting empty")
		return nil, 0, false
	}
	return items, rev, true
}

// ProfileID returns the profile this engine serves.
func (e *Engine) ProfileID() string {
	return e.profileID
}

func (e *Engine) logCtx(ctx context.Context) context.Context {
	if e.profileID == "" {
		return ctx
	}
	return e.logg.WithProfileID(ctx, e.profileID)
}

func (e *Engine) commitCart(ctx context.Context) error {
	payload := func(rev int64) (string, error) { return encodeCollection(rev, e.cart) }
	return e.commit(ctx, collectionCart, e.cartKey, &e.cartRev, payload)
}

func (e *Engine) commitWishlist(ctx context.Context) error {
	payload := func(rev int64) (string, error) { return encodeCollection(rev, e.wishlist) }
	return e.commit(ctx, collectionWishlist, e.wishlistKey, &e.wishlistRev, payload)
}

// commit writes the collection at the next revision. A stored revision ahead
// of the one this engine last saw means another engine wrote in between; that
// write is overwritten and reported.
func (e *Engine) commit(ctx context.Context, collection, key string, rev *int64, payload func(int64) (string, error)) error {
	ctx = e.logg.WithFields(e.logCtx(ctx), map[string]any{"collection": collection, "key": key})

	base := *rev
	if raw, err := e.store.Get(ctx, key); err == nil {
		if stored, ok := peekRevision(raw); ok && stored > base {
			e.metrics.IncConflict(collection)
			e.logg.Warn(e.logg.WithFields(ctx, map[string]any{
				"seen_revision":   base,
				"stored_revision": stored,
			}), "overwriting newer persisted collection")
			base = stored
		}
	}

	next := base + 1
	value, err := payload(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+collection)
	}
	if err := e.store.Set(ctx, key, value); err != nil {
		e.metrics.IncPersistFailure(collection)
		e.logg.Error(ctx, "persist collection failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist "+collection)
	}
	*rev = next
	return nil
}
