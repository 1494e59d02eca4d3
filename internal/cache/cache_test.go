package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute, 10)

	if _, ok, _ := store.Get(ctx, "missing"); ok {
		t.Fatal("expected miss on empty store")
	}

	if err := store.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	val, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get = %v, %v; want hit", ok, err)
	}
	if string(val) != "v" {
		t.Errorf("value = %q, want %q", val, "v")
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute, 10)

	current := time.Unix(1000, 0)
	store.now = func() time.Time { return current }

	_ = store.Put(ctx, "k", []byte("v"))

	// Still fresh just inside the TTL.
	current = current.Add(time.Minute)
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("expected hit inside TTL")
	}

	// A stale read behaves exactly like a miss and drops the entry.
	current = current.Add(time.Second)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected miss after TTL expiry")
	}
	if store.Len() != 0 {
		t.Errorf("expired entry not removed, len = %d", store.Len())
	}
}

func TestMemoryStoreCapacityEvictsOldest(t *testing.T) {
	ctx := context.Background()
	capacity := 5
	store := NewMemoryStore(time.Hour, capacity)

	current := time.Unix(1000, 0)
	store.now = func() time.Time { return current }

	// Fill to capacity with strictly increasing insertion times.
	for i := 0; i < capacity; i++ {
		current = current.Add(time.Second)
		_ = store.Put(ctx, fmt.Sprintf("key-%d", i), []byte("v"))
	}

	// One insertion beyond capacity evicts exactly the earliest entry.
	current = current.Add(time.Second)
	_ = store.Put(ctx, "overflow", []byte("v"))

	if store.Len() != capacity {
		t.Fatalf("len = %d, want %d", store.Len(), capacity)
	}
	if _, ok, _ := store.Get(ctx, "key-0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	for i := 1; i < capacity; i++ {
		if _, ok, _ := store.Get(ctx, fmt.Sprintf("key-%d", i)); !ok {
			t.Errorf("key-%d should have survived eviction", i)
		}
	}
	if _, ok, _ := store.Get(ctx, "overflow"); !ok {
		t.Error("new entry should be present")
	}
}

func TestMemoryStoreEvictOldest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, 10)

	current := time.Unix(1000, 0)
	store.now = func() time.Time { return current }

	_ = store.Put(ctx, "first", []byte("v"))
	current = current.Add(time.Second)
	_ = store.Put(ctx, "second", []byte("v"))

	_ = store.EvictOldest(ctx)

	if _, ok, _ := store.Get(ctx, "first"); ok {
		t.Error("first entry should have been evicted")
	}
	if _, ok, _ := store.Get(ctx, "second"); !ok {
		t.Error("second entry should remain")
	}

	// EvictOldest on an empty store is a no-op.
	_ = store.EvictOldest(ctx)
	_ = store.EvictOldest(ctx)
}
