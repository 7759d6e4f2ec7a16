package shopping

import (
	"context"
	"strings"
	"sync"

	pkgerrors "github.com/freshcart/storefront/pkg/errors"
	"github.com/freshcart/storefront/pkg/kvstore"
	"github.com/freshcart/storefront/pkg/logger"
	"github.com/freshcart/storefront/pkg/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRegistrySize bounds how many profile engines stay resident.
const DefaultRegistrySize = 1024

// RegistryParams groups dependencies for the engine registry.
type RegistryParams struct {
	Store     kvstore.Store
	Namespace string
	Size      int
	Logger    *logger.Logger
	Metrics   *metrics.ShoppingMetrics
}

// Registry hands out one Engine per profile, loading it from the store on
// first use. Callers hold an engine through a lease from Acquire. Least
// recently used engines leave the cache once Size is exceeded, but an engine
// that is still leased stays pinned and is handed to later callers until its
// last lease is released, so a profile never has two live engines.
type Registry struct {
	mu        sync.Mutex
	store     kvstore.Store
	namespace string
	logg      *logger.Logger
	metrics   *metrics.ShoppingMetrics
	engines   *lru.Cache[string, *resident]
	pinned    map[string]*resident
}

type resident struct {
	engine *Engine
	refs   int
}

// NewRegistry builds a registry over store.
func NewRegistry(params RegistryParams) (*Registry, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	size := params.Size
	if size <= 0 {
		size = DefaultRegistrySize
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	r := &Registry{
		store:     params.Store,
		namespace: namespaceOrDefault(params.Namespace),
		logg:      logg,
		metrics:   params.Metrics,
		pinned:    make(map[string]*resident),
	}
	// The callback runs synchronously inside Add and Remove, which are only
	// called with r.mu held.
	engines, err := lru.NewWithEvict[string, *resident](size, r.onEvict)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create engine cache")
	}
	r.engines = engines
	return r, nil
}

func (r *Registry) onEvict(profileID string, res *resident) {
	if res.refs > 0 {
		r.pinned[profileID] = res
	}
}

// Acquire returns the engine for profileID and a release func the caller
// must invoke once done with it. Release is safe to call more than once.
func (r *Registry) Acquire(ctx context.Context, profileID string) (*Engine, func(), error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.engines.Get(profileID)
	if !ok {
		if res, ok = r.pinned[profileID]; ok {
			delete(r.pinned, profileID)
		} else {
			engine, err := Load(ctx, r.store, Options{
				ProfileID: profileID,
				Namespace: r.namespace,
				Logger:    r.logg,
				Metrics:   r.metrics,
			})
			if err != nil {
				return nil, nil, err
			}
			res = &resident{engine: engine}
		}
		r.engines.Add(profileID, res)
	}
	res.refs++

	var once sync.Once
	release := func() {
		once.Do(func() { r.release(profileID, res) })
	}
	return res.engine, release, nil
}

func (r *Registry) release(profileID string, res *resident) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res.refs--
	if res.refs > 0 {
		return
	}
	if cur, ok := r.pinned[profileID]; ok && cur == res {
		delete(r.pinned, profileID)
	}
}

// Forget drops the cached engine for profileID. Once no lease holds it, the
// next Acquire reloads it from the store.
func (r *Registry) Forget(profileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines.Remove(profileID)
}

// Len reports how many engines are cached, not counting pinned ones.
func (r *Registry) Len() int {
	return r.engines.Len()
}

// Pinned reports how many evicted engines are still leased.
func (r *Registry) Pinned() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pinned)
}

// Store exposes the backing store for readiness checks.
func (r *Registry) Store() kvstore.Store {
	return r.store
}
