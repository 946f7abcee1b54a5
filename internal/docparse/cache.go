package docparse

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hamiltonlab/bluebook/internal/home"
)

const cacheExt = ".txt"

// Cache is a read-through store for extracted document text, one UTF-8
// file per source document keyed by filename stem. There is no
// invalidation; clearing is explicit.
type Cache struct {
	home *home.Dir
}

// NewCache creates a cache rooted in the home cache directory.
func NewCache(homeDir *home.Dir) *Cache {
	return &Cache{home: homeDir}
}

// Get returns the cached text for a document stem, if present.
func (c *Cache) Get(stem string) (string, bool, error) {
	data, err := os.ReadFile(c.home.CacheFile(stem))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache for %s: %w", stem, err)
	}
	return string(data), true, nil
}

// Put stores extracted text for a document stem.
func (c *Cache) Put(stem, text string) error {
	if err := os.MkdirAll(c.home.CachePath(), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(c.home.CacheFile(stem), []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write cache for %s: %w", stem, err)
	}
	return nil
}

// Entry describes one cached document.
type Entry struct {
	Stem     string    `json:"stem"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Entries lists cached documents sorted by stem.
func (c *Cache) Entries() ([]Entry, error) {
	dirents, err := os.ReadDir(c.home.CachePath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), cacheExt) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Stem:     strings.TrimSuffix(de.Name(), cacheExt),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Stem < entries[j].Stem })
	return entries, nil
}

// Clear removes all cached text and returns the number of entries removed.
func (c *Cache) Clear() (int, error) {
	entries, err := c.Entries()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if err := os.Remove(c.home.CacheFile(e.Stem)); err != nil {
			return removed, fmt.Errorf("failed to remove cache for %s: %w", e.Stem, err)
		}
		removed++
	}
	return removed, nil
}
