package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, err := store.Get(ctx, "fc:cart:p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	if err := store.Set(ctx, "fc:cart:p1", "[]"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Set(ctx, "fc:cart:p1", `[{"quantity":1}]`); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, err := store.Get(ctx, "fc:cart:p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != `[{"quantity":1}]` {
		t.Fatalf("expected last write to win, got %q", got)
	}

	if err := store.Delete(ctx, "fc:cart:p1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "fc:cart:p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestKeySkipsEmptyParts(t *testing.T) {
	if got := Key("fc", "cart", "p1"); got != "fc:cart:p1" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := Key("fc", "wishlist", " ", "p1"); got != "fc:wishlist:p1" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
	if got := Key("", "cart"); got != "cart" {
		t.Fatalf("empty namespace should be skipped, got %s", got)
	}
}

func TestMemoryExpiryAndSetNX(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ok, err := store.SetNX(ctx, "fc:idem:k1", "pending", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX = %v, %v; want true", ok, err)
	}
	ok, err = store.SetNX(ctx, "fc:idem:k1", "other", time.Minute)
	if err != nil || ok {
		t.Fatalf("second SetNX = %v, %v; want false", ok, err)
	}
	if err := store.SetWithTTL(ctx, "fc:idem:k1", "done", time.Minute); err != nil {
		t.Fatalf("SetWithTTL failed: %v", err)
	}
	if got, _ := store.Get(ctx, "fc:idem:k1"); got != "done" {
		t.Fatalf("expected overwrite, got %q", got)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "fc:idem:k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired key to read as missing, got %v", err)
	}
	ok, err = store.SetNX(ctx, "fc:idem:k1", "again", time.Minute)
	if err != nil || !ok {
		t.Fatalf("SetNX after expiry = %v, %v; want true", ok, err)
	}

	if err := store.Set(ctx, "fc:idem:k1", "durable"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	now = now.Add(time.Hour)
	if got, err := store.Get(ctx, "fc:idem:k1"); err != nil || got != "durable" {
		t.Fatalf("plain Set must clear expiry, got %q, %v", got, err)
	}

	_ = store.SetWithTTL(ctx, "fc:idem:k2", "done", time.Minute)
	now = now.Add(time.Minute)
	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("Sweep removed %d keys, want 1", removed)
	}
	if got, err := store.Get(ctx, "fc:idem:k1"); err != nil || got != "durable" {
		t.Fatalf("Sweep dropped a durable key: %q, %v", got, err)
	}
}
