package shopping

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/freshcart/storefront/internal/catalog"
	"github.com/freshcart/storefront/pkg/kvstore"
	"github.com/shopspring/decimal"
)

var errMediumDown = errors.New("quota exceeded")

// recordingStore wraps the memory store, counting writes and injecting
// failures on demand.
type recordingStore struct {
	*kvstore.Memory

	mu      sync.Mutex
	sets    int
	failSet bool
	failGet bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Memory: kvstore.NewMemory()}
}

func (s *recordingStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return "", errMediumDown
	}
	return s.Memory.Get(ctx, key)
}

func (s *recordingStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	fail := s.failSet
	if !fail {
		s.sets++
	}
	s.mu.Unlock()
	if fail {
		return errMediumDown
	}
	return s.Memory.Set(ctx, key, value)
}

func (s *recordingStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

func mustLoad(t *testing.T, store kvstore.Store, profile string) *Engine {
	t.Helper()
	engine, err := Load(context.Background(), store, Options{ProfileID: profile})
	if err != nil {
		t.Fatalf("load engine: %v", err)
	}
	return engine
}

func testProduct(id string, price int64) catalog.Product {
	return catalog.Product{
		ID:        id,
		Name:      "Product " + id,
		Price:     decimal.NewFromInt(price),
		Category:  "milk",
		Brand:     "Amul",
		Available: true,
		Quantity:  20,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}
