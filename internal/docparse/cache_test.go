package docparse

import (
	"testing"

	"github.com/hamiltonlab/bluebook/internal/home"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	homeDir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	return NewCache(homeDir)
}

func TestCacheGetMiss(t *testing.T) {
	cache := newTestCache(t)

	text, ok, err := cache.Get("2013_0")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() on empty cache reported a hit")
	}
	if text != "" {
		t.Errorf("Get() = %q, want empty", text)
	}
}

func TestCachePutGet(t *testing.T) {
	cache := newTestCache(t)

	const doc = "## FRANCE\n\nH.E. Mr. Example, Ambassador"
	if err := cache.Put("2013_0", doc); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	text, ok, err := cache.Get("2013_0")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() after Put reported a miss")
	}
	if text != doc {
		t.Errorf("Get() = %q, want %q", text, doc)
	}
}

func TestCacheEntriesAndClear(t *testing.T) {
	cache := newTestCache(t)

	if err := cache.Put("2014_0", "b"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := cache.Put("2013_0", "a"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	entries, err := cache.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Entries() returned %d, want 2", len(entries))
	}
	// Sorted by stem
	if entries[0].Stem != "2013_0" || entries[1].Stem != "2014_0" {
		t.Errorf("Entries() order = [%s %s], want [2013_0 2014_0]", entries[0].Stem, entries[1].Stem)
	}
	if entries[0].Size != 1 {
		t.Errorf("Entries()[0].Size = %d, want 1", entries[0].Size)
	}

	removed, err := cache.Clear()
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Clear() removed %d, want 2", removed)
	}

	entries, err = cache.Entries()
	if err != nil {
		t.Fatalf("Entries() after Clear error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Entries() after Clear returned %d, want 0", len(entries))
	}
}

func TestCacheEntriesMissingDir(t *testing.T) {
	cache := newTestCache(t)

	// Cache directory was never created; listing should not error.
	entries, err := cache.Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if entries != nil {
		t.Errorf("Entries() = %v, want nil", entries)
	}
}
