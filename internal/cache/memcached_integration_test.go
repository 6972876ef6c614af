package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// Integration tests against a live memcached. Skipped unless
// MEMCACHED_ADDRS points at a reachable instance.
func memcachedStore(t *testing.T) *MemcachedStore {
	t.Helper()
	addrs := os.Getenv("MEMCACHED_ADDRS")
	if addrs == "" {
		t.Skip("MEMCACHED_ADDRS not set, skipping memcached integration test")
	}
	s := NewMemcachedStore(addrs, time.Second, 2, 10*time.Minute, time.Hour)
	if err := s.Ping(); err != nil {
		t.Skipf("memcached not reachable at %s: %v", addrs, err)
	}
	return s
}

func TestMemcachedStore_StoreLookup(t *testing.T) {
	s := memcachedStore(t)
	ctx := context.Background()

	if _, err := s.Store(ctx, 47.6062, -122.3321, snapshotFor("Seattle, US")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	got, ok, err := s.Lookup(ctx, 47.6062, -122.3321)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok {
		t.Fatal("Lookup() ok = false, want hit")
	}
	if got.Current.Location != "Seattle, US" {
		t.Errorf("Lookup() location = %q, want %q", got.Current.Location, "Seattle, US")
	}
}

func TestMemcachedStore_Miss(t *testing.T) {
	s := memcachedStore(t)

	_, ok, err := s.Lookup(context.Background(), 89.9999, 179.9999)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if ok {
		t.Error("Lookup() ok = true, want miss for unused coordinates")
	}
}
