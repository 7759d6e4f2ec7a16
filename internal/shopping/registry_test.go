package shopping

import (
	"context"
	"fmt"
	"sync"
	"testing"

	pkgerrors "github.com/freshcart/storefront/pkg/errors"
	"github.com/freshcart/storefront/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReturnsSameEngineForProfile(t *testing.T) {
	ctx := context.Background()
	reg, err := NewRegistry(RegistryParams{Store: kvstore.NewMemory(), Size: 4})
	require.NoError(t, err)

	a, releaseA, err := reg.Acquire(ctx, "alice")
	require.NoError(t, err)
	defer releaseA()
	again, releaseAgain, err := reg.Acquire(ctx, " alice ")
	require.NoError(t, err)
	defer releaseAgain()
	assert.Same(t, a, again)

	b, releaseB, err := reg.Acquire(ctx, "bob")
	require.NoError(t, err)
	defer releaseB()
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistryEvictionReloadsPersistedState(t *testing.T) {
	ctx := context.Background()
	reg, err := NewRegistry(RegistryParams{Store: kvstore.NewMemory(), Size: 2})
	require.NoError(t, err)

	alice, release, err := reg.Acquire(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, alice.AddToCart(ctx, testProduct("A", 10), 3))
	release()

	for _, profile := range []string{"bob", "carol"} {
		_, release, err := reg.Acquire(ctx, profile)
		require.NoError(t, err)
		release()
	}
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 0, reg.Pinned())

	reloaded, release, err := reg.Acquire(ctx, "alice")
	require.NoError(t, err)
	release()
	assert.NotSame(t, alice, reloaded)
	assert.Equal(t, 3, reloaded.CartCount())

	reg.Forget("alice")
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryKeepsLeasedEngineAcrossEviction(t *testing.T) {
	ctx := context.Background()
	reg, err := NewRegistry(RegistryParams{Store: kvstore.NewMemory(), Size: 1})
	require.NoError(t, err)

	held, releaseHeld, err := reg.Acquire(ctx, "alice")
	require.NoError(t, err)

	_, releaseBob, err := reg.Acquire(ctx, "bob")
	require.NoError(t, err)
	releaseBob()
	assert.Equal(t, 1, reg.Pinned())

	second, releaseSecond, err := reg.Acquire(ctx, "alice")
	require.NoError(t, err)
	assert.Same(t, held, second)
	assert.Equal(t, 0, reg.Pinned())

	require.NoError(t, held.AddToCart(ctx, testProduct("X", 10), 1))
	require.NoError(t, second.AddToCart(ctx, testProduct("Y", 20), 1))
	releaseHeld()
	releaseSecond()
	releaseSecond()

	reloaded := mustLoad(t, reg.Store(), "alice")
	assert.Equal(t, 2, reloaded.UniqueProductCount())
	assert.Equal(t, "30", reloaded.CartTotal().String())
}

func TestRegistryDropsPinnedEngineOnLastRelease(t *testing.T) {
	ctx := context.Background()
	reg, err := NewRegistry(RegistryParams{Store: kvstore.NewMemory(), Size: 1})
	require.NoError(t, err)

	first, release, err := reg.Acquire(ctx, "alice")
	require.NoError(t, err)
	reg.Forget("alice")
	assert.Equal(t, 1, reg.Pinned())

	release()
	assert.Equal(t, 0, reg.Pinned())

	next, releaseNext, err := reg.Acquire(ctx, "alice")
	require.NoError(t, err)
	defer releaseNext()
	assert.NotSame(t, first, next)
}

func TestRegistryRejectsBlankProfile(t *testing.T) {
	reg, err := NewRegistry(RegistryParams{Store: kvstore.NewMemory()})
	require.NoError(t, err)
	_, _, err = reg.Acquire(context.Background(), "  ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = NewRegistry(RegistryParams{})
	assert.Error(t, err)
}

func TestEngineSerializesConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	reg, err := NewRegistry(RegistryParams{Store: kvstore.NewMemory(), Size: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			profile := "shared"
			if i%4 == 0 {
				profile = fmt.Sprintf("other-%d", i)
			}
			engine, release, err := reg.Acquire(ctx, profile)
			if err != nil {
				t.Errorf("engine: %v", err)
				return
			}
			defer release()
			if err := engine.AddToCart(ctx, testProduct(fmt.Sprintf("P%d", i%5), 10), 1); err != nil {
				t.Errorf("add: %v", err)
			}
		}(i)
	}
	wg.Wait()

	reloaded := mustLoad(t, reg.Store(), "shared")
	assert.Equal(t, 15, reloaded.CartCount())
	assert.Equal(t, 5, reloaded.UniqueProductCount())
	assert.Equal(t, "150", reloaded.CartTotal().String())
	assert.Equal(t, 0, reg.Pinned())
}
