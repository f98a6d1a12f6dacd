package store

import (
	"sync"
	"testing"
)

func TestStore_SetAndGet(t *testing.T) {
	s := New()
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("expected missing key to report not found")
	}

	s.Set("x", "1")
	v, ok := s.Get("x")
	if !ok || v != "1" {
		t.Fatalf("expected x=1, got %q ok=%v", v, ok)
	}
}

func TestStore_ConcurrentWrites(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	keys := []string{"a", "b", "c", "d"}
	for _, k := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			s.Set(key, key+"-value")
		}(k)
	}
	wg.Wait()

	snap := s.Snapshot()
	if len(snap) != len(keys) {
		t.Fatalf("expected %d keys, got %d", len(keys), len(snap))
	}
	for _, k := range keys {
		if snap[k] != k+"-value" {
			t.Fatalf("unexpected value for %s: %s", k, snap[k])
		}
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := New()
	s.Set("x", "1")
	snap := s.Snapshot()
	snap["x"] = "mutated"

	v, _ := s.Get("x")
	if v != "1" {
		t.Fatalf("mutating the snapshot must not affect the store, got %q", v)
	}
}
